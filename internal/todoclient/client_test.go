package todoclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nibzard/retrotodo/internal/api"
	"github.com/nibzard/retrotodo/internal/theme"
	"github.com/nibzard/retrotodo/internal/todo"
)

type fakeBackend struct {
	mu    sync.Mutex
	calls []string

	list   func(ctx context.Context) (todo.List, []string, error)
	create func(ctx context.Context, text string) (todo.Task, error)
	del    func(ctx context.Context, id string) error
}

func (f *fakeBackend) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeBackend) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeBackend) List(ctx context.Context) (todo.List, []string, error) {
	f.record("list")
	if f.list == nil {
		return todo.List{}, nil, nil
	}
	return f.list(ctx)
}

func (f *fakeBackend) Create(ctx context.Context, text string) (todo.Task, error) {
	f.record("create:" + text)
	if f.create == nil {
		return todo.Task{ID: "new", Text: text}, nil
	}
	return f.create(ctx, text)
}

func (f *fakeBackend) Delete(ctx context.Context, id string) error {
	f.record("delete:" + id)
	if f.del == nil {
		return nil
	}
	return f.del(ctx, id)
}

func listOf(ids ...string) todo.List {
	l := make(todo.List, 0, len(ids))
	for _, id := range ids {
		l = append(l, todo.Task{ID: id, Text: "task " + id})
	}
	return l
}

func seeded(t *testing.T, fb *fakeBackend, ids ...string) *Client {
	t.Helper()
	fb.list = func(context.Context) (todo.List, []string, error) { return listOf(ids...), nil, nil }
	c := New(context.Background(), fb)
	t.Cleanup(c.Close)
	require.NoError(t, c.FetchTodos(context.Background()))
	return c
}

// newHTTPClient wires a Client to an httptest backend through api.Client.
func newHTTPClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	backend, err := api.New(srv.URL)
	require.NoError(t, err)
	c := New(context.Background(), backend)
	t.Cleanup(c.Close)
	return c
}

func TestNewDefaults(t *testing.T) {
	var applied []theme.Theme
	c := New(context.Background(), &fakeBackend{},
		WithThemeSink(ThemeSinkFunc(func(th theme.Theme) { applied = append(applied, th) })))
	defer c.Close()

	s := c.State()
	assert.Equal(t, theme.Light, s.Theme)
	assert.False(t, s.Loading)
	assert.False(t, s.ActionLoading)
	assert.Empty(t, s.Err)
	assert.Empty(t, s.Tasks)
	assert.Equal(t, []theme.Theme{theme.Light}, applied)
	assert.Equal(t, ViewEmpty, c.View().Kind)
}

func TestFetchTodos(t *testing.T) {
	t.Run("title is normalized to text", func(t *testing.T) {
		c := newHTTPClient(t, func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `[{"id":"1","title":"Buy milk"}]`)
		})
		require.NoError(t, c.FetchTodos(context.Background()))

		s := c.State()
		require.Len(t, s.Tasks, 1)
		assert.Equal(t, todo.Task{ID: "1", Text: "Buy milk"}, s.Tasks[0])
		assert.Equal(t, ViewList, c.View().Kind)
	})

	t.Run("ids equal normalized backend ids in order", func(t *testing.T) {
		c := newHTTPClient(t, func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `[{"_id":"c"},{"todo_id":7,"task":"x"},{"id":"a","text":"y"}]`)
		})
		require.NoError(t, c.FetchTodos(context.Background()))
		assert.Equal(t, []string{"c", "7", "a"}, c.State().Tasks.IDs())
	})

	t.Run("http failure keeps list and sets message", func(t *testing.T) {
		var fail atomic.Bool
		c := newHTTPClient(t, func(w http.ResponseWriter, r *http.Request) {
			if fail.Load() {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			io.WriteString(w, `[{"id":"1"}]`)
		})
		require.NoError(t, c.FetchTodos(context.Background()))

		fail.Store(true)
		err := c.FetchTodos(context.Background())
		assert.True(t, api.IsStatus(err, http.StatusServiceUnavailable))

		s := c.State()
		assert.Equal(t, []string{"1"}, s.Tasks.IDs())
		assert.Equal(t, "Failed to fetch todos: 503 Service Unavailable", s.Err)
		assert.ErrorAs(t, s.LastErr, new(*api.HTTPError))
		assert.False(t, s.Loading)
	})

	t.Run("non-array body degrades to empty list", func(t *testing.T) {
		fb := &fakeBackend{}
		c := seeded(t, fb, "1", "2")
		fb.list = func(context.Context) (todo.List, []string, error) {
			return nil, nil, &api.MalformedResponseError{Op: "list", Err: todo.ErrNotArray}
		}
		require.NoError(t, c.FetchTodos(context.Background()))
		s := c.State()
		assert.Empty(t, s.Tasks)
		assert.Empty(t, s.Err)
	})

	t.Run("unparseable body degrades to empty list", func(t *testing.T) {
		c := newHTTPClient(t, func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `<html>`)
		})
		require.NoError(t, c.FetchTodos(context.Background()))
		assert.Equal(t, ViewEmpty, c.View().Kind)
	})

	t.Run("starting a fetch clears the previous error", func(t *testing.T) {
		fb := &fakeBackend{}
		c := New(context.Background(), fb)
		defer c.Close()
		c.SetDraft("  ")
		require.Error(t, c.AddTodo(context.Background()))
		require.NotEmpty(t, c.State().Err)

		require.NoError(t, c.FetchTodos(context.Background()))
		assert.Empty(t, c.State().Err)
	})
}

func TestLoadingOnlyDuringFetch(t *testing.T) {
	outcomes := map[string]func(context.Context) (todo.List, []string, error){
		"success": func(context.Context) (todo.List, []string, error) {
			return listOf("1"), nil, nil
		},
		"http failure": func(context.Context) (todo.List, []string, error) {
			return nil, nil, &api.HTTPError{Status: 500, StatusText: "Internal Server Error"}
		},
		"network failure": func(context.Context) (todo.List, []string, error) {
			return nil, nil, &api.NetworkError{Op: "list", Err: errors.New("connection refused")}
		},
	}

	for name, outcome := range outcomes {
		t.Run(name, func(t *testing.T) {
			var seen []bool
			var during bool
			fb := &fakeBackend{}
			var c *Client
			fb.list = func(ctx context.Context) (todo.List, []string, error) {
				during = c.State().Loading
				return outcome(ctx)
			}
			c = New(context.Background(), fb, WithObserver(func(s State) { seen = append(seen, s.Loading) }))
			defer c.Close()

			assert.False(t, c.State().Loading)
			_ = c.FetchTodos(context.Background())
			assert.True(t, during)
			assert.False(t, c.State().Loading)
			assert.Equal(t, []bool{true, false}, seen)
		})
	}
}

func TestNetworkFailureMessage(t *testing.T) {
	fb := &fakeBackend{list: func(context.Context) (todo.List, []string, error) {
		return nil, nil, &api.NetworkError{Op: "list", Err: errors.New("connection refused")}
	}}
	c := New(context.Background(), fb)
	defer c.Close()

	err := c.FetchTodos(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Failed to fetch todos: network error: connection refused", c.State().Err)
}

func TestAddTodo(t *testing.T) {
	t.Run("whitespace draft never calls the backend", func(t *testing.T) {
		for _, draft := range []string{"", " ", "\t\n  "} {
			fb := &fakeBackend{}
			c := New(context.Background(), fb)
			c.SetDraft(draft)

			err := c.AddTodo(context.Background())
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.True(t, IsValidation(err))
			assert.Equal(t, "Please enter a task before adding.", c.State().Err)
			assert.Empty(t, fb.Calls())
			assert.False(t, c.State().ActionLoading)
			c.Close()
		}
	})

	t.Run("created task is prepended and draft cleared", func(t *testing.T) {
		posted := make(chan string, 1)
		c := newHTTPClient(t, func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				io.WriteString(w, `[{"id":"1","text":"Buy milk"}]`)
			case http.MethodPost:
				body, _ := io.ReadAll(r.Body)
				posted <- string(body)
				w.WriteHeader(http.StatusCreated)
				io.WriteString(w, `{"id":"2","text":"Walk dog"}`)
			}
		})
		require.NoError(t, c.FetchTodos(context.Background()))

		c.SetDraft("  Walk dog ")
		require.NoError(t, c.AddTodo(context.Background()))

		s := c.State()
		assert.JSONEq(t, `{"text":"Walk dog"}`, <-posted)
		assert.Equal(t, []string{"2", "1"}, s.Tasks.IDs())
		assert.Equal(t, "Walk dog", s.Tasks[0].Text)
		assert.Empty(t, s.Draft)
		assert.False(t, s.ActionLoading)
	})

	t.Run("failure keeps list and draft", func(t *testing.T) {
		fb := &fakeBackend{}
		c := seeded(t, fb, "1")
		fb.create = func(context.Context, string) (todo.Task, error) {
			return todo.Task{}, &api.HTTPError{Status: 400, StatusText: "Bad Request"}
		}

		c.SetDraft("Walk dog")
		err := c.AddTodo(context.Background())
		require.Error(t, err)

		s := c.State()
		assert.Equal(t, []string{"1"}, s.Tasks.IDs())
		assert.Equal(t, "Walk dog", s.Draft)
		assert.Equal(t, "Failed to add todo: 400 Bad Request", s.Err)
		assert.False(t, s.ActionLoading)
	})

	t.Run("malformed create response surfaces as failure", func(t *testing.T) {
		c := newHTTPClient(t, func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `ok`)
		})
		c.SetDraft("x")
		err := c.AddTodo(context.Background())
		require.ErrorAs(t, err, new(*api.MalformedResponseError))
		assert.Contains(t, c.State().Err, "Failed to add todo: malformed response")
		assert.Equal(t, "x", c.State().Draft)
	})

	t.Run("action loading brackets the request", func(t *testing.T) {
		var seen []bool
		fb := &fakeBackend{}
		c := New(context.Background(), fb, WithObserver(func(s State) { seen = append(seen, s.ActionLoading) }))
		defer c.Close()

		c.SetDraft("x")
		require.NoError(t, c.AddTodo(context.Background()))
		// draft change, begin, success
		assert.Equal(t, []bool{false, true, false}, seen)
	})
}

func TestDeleteTodo(t *testing.T) {
	t.Run("removes the task", func(t *testing.T) {
		fb := &fakeBackend{}
		c := seeded(t, fb, "1", "2", "3")
		require.NoError(t, c.DeleteTodo(context.Background(), "2"))
		s := c.State()
		assert.False(t, s.Tasks.Contains("2"))
		assert.Equal(t, []string{"1", "3"}, s.Tasks.IDs())
		assert.False(t, s.ActionLoading)
	})

	t.Run("unknown id leaves list unchanged and is not an error", func(t *testing.T) {
		fb := &fakeBackend{}
		c := seeded(t, fb, "1")
		require.NoError(t, c.DeleteTodo(context.Background(), "42"))
		s := c.State()
		assert.Equal(t, []string{"1"}, s.Tasks.IDs())
		assert.Empty(t, s.Err)
	})

	t.Run("placeholder-shaped id not in the list goes to the backend", func(t *testing.T) {
		fb := &fakeBackend{}
		c := seeded(t, fb, "1")
		require.NoError(t, c.DeleteTodo(context.Background(), "tmp-42"))
		assert.Equal(t, []string{"list", "delete:tmp-42"}, fb.Calls())
		s := c.State()
		assert.Empty(t, s.Err)
		assert.Equal(t, []string{"1"}, s.Tasks.IDs())
	})

	t.Run("empty id is a no-op", func(t *testing.T) {
		fb := &fakeBackend{}
		c := seeded(t, fb, "1")
		require.NoError(t, c.DeleteTodo(context.Background(), ""))
		assert.Equal(t, []string{"list"}, fb.Calls())
	})

	t.Run("placeholder id is rejected locally", func(t *testing.T) {
		fb := &fakeBackend{}
		placeholder := todo.Task{ID: todo.NewPlaceholderID(), Placeholder: true}
		fb.list = func(context.Context) (todo.List, []string, error) {
			return todo.List{placeholder}, nil, nil
		}
		c := New(context.Background(), fb)
		defer c.Close()
		require.NoError(t, c.FetchTodos(context.Background()))

		err := c.DeleteTodo(context.Background(), placeholder.ID)
		assert.True(t, IsValidation(err))
		assert.Equal(t, []string{"list"}, fb.Calls())
		assert.True(t, c.State().Tasks.Contains(placeholder.ID))
	})

	t.Run("404 keeps the task and reports the status", func(t *testing.T) {
		deletePath := make(chan string, 1)
		c := newHTTPClient(t, func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				io.WriteString(w, `[{"id":"1","text":"Buy milk"}]`)
			case http.MethodDelete:
				deletePath <- r.URL.Path
				http.NotFound(w, r)
			}
		})
		require.NoError(t, c.FetchTodos(context.Background()))

		err := c.DeleteTodo(context.Background(), "1")
		require.Error(t, err)
		assert.Equal(t, "/todos/1", <-deletePath)

		s := c.State()
		assert.Contains(t, s.Err, "404")
		assert.Contains(t, c.View().Banner, "404")
		assert.True(t, s.Tasks.Contains("1"))
		assert.False(t, s.ActionLoading)
	})
}

func TestSingleFlight(t *testing.T) {
	t.Run("second fetch is busy", func(t *testing.T) {
		entered := make(chan struct{})
		release := make(chan struct{})
		fb := &fakeBackend{list: func(context.Context) (todo.List, []string, error) {
			close(entered)
			<-release
			return listOf("1"), nil, nil
		}}
		c := New(context.Background(), fb)
		defer c.Close()

		errc := make(chan error, 1)
		go func() { errc <- c.FetchTodos(context.Background()) }()
		<-entered

		assert.ErrorIs(t, c.FetchTodos(context.Background()), ErrBusy)
		assert.Empty(t, c.State().Err)

		close(release)
		require.NoError(t, <-errc)
		assert.Equal(t, []string{"list"}, fb.Calls())
	})

	t.Run("create and delete share the action guard", func(t *testing.T) {
		entered := make(chan struct{})
		release := make(chan struct{})
		fb := &fakeBackend{}
		c := seeded(t, fb, "1")
		fb.create = func(_ context.Context, text string) (todo.Task, error) {
			close(entered)
			<-release
			return todo.Task{ID: "2", Text: text}, nil
		}

		c.SetDraft("x")
		errc := make(chan error, 1)
		go func() { errc <- c.AddTodo(context.Background()) }()
		<-entered

		assert.ErrorIs(t, c.DeleteTodo(context.Background(), "1"), ErrBusy)
		assert.ErrorIs(t, c.AddTodo(context.Background()), ErrBusy)

		// A fetch may still run next to an action.
		assert.NoError(t, c.FetchTodos(context.Background()))

		close(release)
		require.NoError(t, <-errc)
		assert.Equal(t, []string{"2", "1"}, c.State().Tasks.IDs())
	})
}

func TestClose(t *testing.T) {
	t.Run("in-flight request is cancelled and its result dropped", func(t *testing.T) {
		entered := make(chan struct{})
		var reqErr error
		fb := &fakeBackend{list: func(ctx context.Context) (todo.List, []string, error) {
			close(entered)
			<-ctx.Done()
			reqErr = ctx.Err()
			return nil, nil, &api.NetworkError{Op: "list", Err: ctx.Err()}
		}}
		c := New(context.Background(), fb)

		errc := make(chan error, 1)
		go func() { errc <- c.FetchTodos(context.Background()) }()
		<-entered
		c.Close()

		select {
		case err := <-errc:
			assert.ErrorIs(t, err, ErrClosed)
		case <-time.After(5 * time.Second):
			t.Fatal("fetch did not return after Close")
		}
		assert.ErrorIs(t, reqErr, context.Canceled)
		s := c.State()
		assert.Empty(t, s.Err)
		assert.False(t, s.Loading)
		assert.True(t, c.Closed())
	})

	t.Run("late success is discarded", func(t *testing.T) {
		entered := make(chan struct{})
		release := make(chan struct{})
		fb := &fakeBackend{create: func(context.Context, string) (todo.Task, error) {
			close(entered)
			<-release
			return todo.Task{ID: "late"}, nil
		}}
		c := New(context.Background(), fb)
		c.SetDraft("x")

		errc := make(chan error, 1)
		go func() { errc <- c.AddTodo(context.Background()) }()
		<-entered
		c.Close()
		close(release)

		assert.ErrorIs(t, <-errc, ErrClosed)
		s := c.State()
		assert.Empty(t, s.Tasks)
		assert.Equal(t, "x", s.Draft)
		assert.False(t, s.ActionLoading)
	})

	t.Run("delete interrupted by close clears action loading", func(t *testing.T) {
		entered := make(chan struct{})
		fb := &fakeBackend{}
		c := seeded(t, fb, "1")
		fb.del = func(ctx context.Context, _ string) error {
			close(entered)
			<-ctx.Done()
			return &api.NetworkError{Op: "delete", Err: ctx.Err()}
		}

		var mu sync.Mutex
		var last State
		c.observer = func(s State) {
			mu.Lock()
			last = s
			mu.Unlock()
		}

		errc := make(chan error, 1)
		go func() { errc <- c.DeleteTodo(context.Background(), "1") }()
		<-entered
		c.Close()

		assert.ErrorIs(t, <-errc, ErrClosed)
		s := c.State()
		assert.False(t, s.ActionLoading)
		assert.Empty(t, s.Err)
		assert.Equal(t, []string{"1"}, s.Tasks.IDs())

		mu.Lock()
		defer mu.Unlock()
		assert.False(t, last.ActionLoading)
	})

	t.Run("operations after close", func(t *testing.T) {
		fb := &fakeBackend{}
		c := New(context.Background(), fb)
		c.Close()
		c.Close()

		c.SetDraft("x")
		assert.ErrorIs(t, c.FetchTodos(context.Background()), ErrClosed)
		assert.ErrorIs(t, c.AddTodo(context.Background()), ErrClosed)
		assert.ErrorIs(t, c.DeleteTodo(context.Background(), "1"), ErrClosed)
		assert.Empty(t, fb.Calls())
	})

	t.Run("cancelling the constructor context closes the client", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		c := New(ctx, &fakeBackend{})
		cancel()
		assert.True(t, c.Closed())
		assert.ErrorIs(t, c.FetchTodos(context.Background()), ErrClosed)
	})

	t.Run("caller context cancels only its own request", func(t *testing.T) {
		fb := &fakeBackend{list: func(ctx context.Context) (todo.List, []string, error) {
			<-ctx.Done()
			return nil, nil, &api.NetworkError{Op: "list", Err: ctx.Err()}
		}}
		c := New(context.Background(), fb)
		defer c.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := c.FetchTodos(ctx)
		assert.ErrorIs(t, err, context.Canceled)
		assert.False(t, c.Closed())
		assert.Contains(t, c.State().Err, "Failed to fetch todos")
	})
}

func TestToggleTheme(t *testing.T) {
	var applied []theme.Theme
	c := New(context.Background(), &fakeBackend{},
		WithTheme(theme.Dark),
		WithThemeSink(ThemeSinkFunc(func(th theme.Theme) { applied = append(applied, th) })))
	defer c.Close()

	assert.Equal(t, theme.Light, c.ToggleTheme())
	assert.Equal(t, theme.Dark, c.ToggleTheme())
	assert.Equal(t, theme.Dark, c.State().Theme)
	assert.Equal(t, []theme.Theme{theme.Dark, theme.Light, theme.Dark}, applied)
}

func TestStateIsSnapshot(t *testing.T) {
	fb := &fakeBackend{}
	c := seeded(t, fb, "1")
	s := c.State()
	s.Tasks[0].Text = "mutated"
	assert.Equal(t, "task 1", c.State().Tasks[0].Text)
}

func TestConcurrentFetchAndDeleteApplyInCompletionOrder(t *testing.T) {
	fb := &fakeBackend{}
	c := seeded(t, fb, "1", "2")

	fetchRelease := make(chan struct{})
	fetchEntered := make(chan struct{})
	fb.list = func(context.Context) (todo.List, []string, error) {
		close(fetchEntered)
		<-fetchRelease
		return listOf("1", "2", "3"), nil, nil
	}

	errc := make(chan error, 1)
	go func() { errc <- c.FetchTodos(context.Background()) }()
	<-fetchEntered

	require.NoError(t, c.DeleteTodo(context.Background(), "1"))
	assert.Equal(t, []string{"2"}, c.State().Tasks.IDs())

	close(fetchRelease)
	require.NoError(t, <-errc)
	assert.Equal(t, []string{"1", "2", "3"}, c.State().Tasks.IDs(), fmt.Sprint(fb.Calls()))
}
