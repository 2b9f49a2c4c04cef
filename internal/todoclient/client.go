// Package todoclient holds the state of the todo page and the operations that
// change it.
//
// A Client owns one State. Operations are blocking: they apply a "begin"
// transition, call the backend without holding the lock, then apply the
// outcome. Each transition is a pure function in reducer.go. After every
// applied transition the observer, if any, receives a snapshot.
//
// Fetches and actions (create, delete) are single-flight per kind: a second
// call while one of the same kind is running returns ErrBusy. Every request
// is cancelled when the client is closed, and results that arrive after
// Close are dropped.
package todoclient

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/nibzard/retrotodo/internal/api"
	"github.com/nibzard/retrotodo/internal/theme"
	"github.com/nibzard/retrotodo/internal/todo"
)

// Backend is the REST surface the client depends on. *api.Client satisfies it.
type Backend interface {
	List(ctx context.Context) (todo.List, []string, error)
	Create(ctx context.Context, text string) (todo.Task, error)
	Delete(ctx context.Context, id string) error
}

// ThemeSink receives the active theme whenever it changes.
type ThemeSink interface {
	ApplyTheme(theme.Theme)
}

// ThemeSinkFunc adapts a function to ThemeSink.
type ThemeSinkFunc func(theme.Theme)

func (f ThemeSinkFunc) ApplyTheme(t theme.Theme) { f(t) }

// Option configures a Client.
type Option func(*Client)

// WithTheme sets the initial theme.
func WithTheme(t theme.Theme) Option {
	return func(c *Client) {
		if t.Valid() {
			c.state.Theme = t
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithObserver registers fn to be called with a snapshot after each state
// change. fn runs with the client lock held and must not call back into the
// client.
func WithObserver(fn func(State)) Option {
	return func(c *Client) {
		c.observer = fn
	}
}

// WithThemeSink mirrors the theme to sink on construction and on every toggle.
func WithThemeSink(sink ThemeSink) Option {
	return func(c *Client) {
		c.sink = sink
	}
}

// Client is the todo page component.
type Client struct {
	backend  Backend
	logger   *log.Logger
	observer func(State)
	sink     ThemeSink

	lifetime context.Context
	cancel   context.CancelFunc

	mu    sync.Mutex
	state State
}

// New creates a client bound to ctx. Cancelling ctx has the same effect as Close.
func New(ctx context.Context, backend Backend, opts ...Option) *Client {
	lifetime, cancel := context.WithCancel(ctx)
	c := &Client{
		backend:  backend,
		logger:   log.New(io.Discard),
		lifetime: lifetime,
		cancel:   cancel,
		state: State{
			Tasks: todo.List{},
			Theme: theme.Default,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.sink != nil {
		c.sink.ApplyTheme(c.state.Theme)
	}
	return c
}

// FetchTodos replaces the task list with the backend's.
func (c *Client) FetchTodos(ctx context.Context) error {
	c.mu.Lock()
	if c.closedLocked() {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.state.Loading {
		c.mu.Unlock()
		return ErrBusy
	}
	c.applyLocked(beginFetch)
	c.mu.Unlock()

	rctx, done := c.requestContext(ctx)
	tasks, dropped, err := c.backend.List(rctx)
	done()

	var malformed *api.MalformedResponseError
	if errors.As(err, &malformed) {
		c.logger.Warn("list response is not a JSON array, showing no tasks", "err", malformed.Err)
		tasks, err = todo.List{}, nil
	}
	if len(dropped) > 0 {
		c.logger.Warn("dropped tasks with duplicate ids", "ids", dropped)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closedLocked() {
		c.applyLocked(fetchAbandoned)
		return ErrClosed
	}
	if err != nil {
		c.logger.Error("fetch todos failed", "err", err)
		c.applyLocked(func(s State) State { return fetchFailed(s, err) })
		return err
	}
	c.logger.Debug("fetched todos", "count", len(tasks))
	c.applyLocked(func(s State) State { return fetchSucceeded(s, tasks) })
	return nil
}

// AddTodo creates a task from the current draft and prepends it.
func (c *Client) AddTodo(ctx context.Context) error {
	c.mu.Lock()
	if c.closedLocked() {
		c.mu.Unlock()
		return ErrClosed
	}
	text := strings.TrimSpace(c.state.Draft)
	if text == "" {
		verr := &ValidationError{Op: "add", Message: msgEmptyDraft}
		c.applyLocked(func(s State) State { return validationFailed(s, verr) })
		c.mu.Unlock()
		return verr
	}
	if c.state.ActionLoading {
		c.mu.Unlock()
		return ErrBusy
	}
	c.applyLocked(beginAction)
	c.mu.Unlock()

	rctx, done := c.requestContext(ctx)
	task, err := c.backend.Create(rctx, text)
	done()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closedLocked() {
		c.applyLocked(actionAbandoned)
		return ErrClosed
	}
	if err != nil {
		c.logger.Error("add todo failed", "err", err)
		c.applyLocked(func(s State) State { return actionFailed(s, "add", err) })
		return err
	}
	c.logger.Debug("added todo", "id", task.ID)
	c.applyLocked(func(s State) State { return addSucceeded(s, task) })
	return nil
}

// DeleteTodo deletes the task with the given id. An empty id is a no-op.
func (c *Client) DeleteTodo(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}

	c.mu.Lock()
	if c.closedLocked() {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.isPlaceholderLocked(id) {
		verr := &ValidationError{Op: "delete", Message: msgPlaceholderDelete}
		c.applyLocked(func(s State) State { return validationFailed(s, verr) })
		c.mu.Unlock()
		return verr
	}
	if c.state.ActionLoading {
		c.mu.Unlock()
		return ErrBusy
	}
	c.applyLocked(beginAction)
	c.mu.Unlock()

	rctx, done := c.requestContext(ctx)
	err := c.backend.Delete(rctx, id)
	done()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closedLocked() {
		c.applyLocked(actionAbandoned)
		return ErrClosed
	}
	if err != nil {
		c.logger.Error("delete todo failed", "id", id, "err", err)
		c.applyLocked(func(s State) State { return actionFailed(s, "delete", err) })
		return err
	}
	c.logger.Debug("deleted todo", "id", id)
	c.applyLocked(func(s State) State { return deleteSucceeded(s, id) })
	return nil
}

// ToggleTheme flips the theme and mirrors it to the theme sink.
func (c *Client) ToggleTheme() theme.Theme {
	c.mu.Lock()
	c.applyLocked(toggledTheme)
	t := c.state.Theme
	c.mu.Unlock()

	if c.sink != nil {
		c.sink.ApplyTheme(t)
	}
	c.logger.Info("theme toggled", "theme", t)
	return t
}

// SetDraft replaces the input draft.
func (c *Client) SetDraft(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Draft == text {
		return
	}
	c.applyLocked(func(s State) State { return draftChanged(s, text) })
}

// State returns a snapshot of the current state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// View returns the presentation derived from the current state.
func (c *Client) View() View {
	return c.State().View()
}

// Close cancels in-flight requests. Results arriving afterwards are dropped,
// their loading flag is cleared, and later operations return ErrClosed.
// Close is idempotent.
func (c *Client) Close() {
	c.cancel()
}

// Closed reports whether the client has been closed.
func (c *Client) Closed() bool {
	return c.lifetime.Err() != nil
}

func (c *Client) closedLocked() bool {
	return c.lifetime.Err() != nil
}

// isPlaceholderLocked reports whether id names a placeholder task in the
// list. Ids the list does not hold are left to the backend.
func (c *Client) isPlaceholderLocked(id string) bool {
	t, ok := c.state.Tasks.Find(id)
	return ok && t.Placeholder
}

func (c *Client) applyLocked(transition func(State) State) {
	c.state = transition(c.state)
	if c.observer != nil {
		c.observer(c.state.Clone())
	}
}

// requestContext derives a context that ends when either ctx or the client
// lifetime ends.
func (c *Client) requestContext(ctx context.Context) (context.Context, func()) {
	rctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(c.lifetime, cancel)
	return rctx, func() {
		stop()
		cancel()
	}
}
