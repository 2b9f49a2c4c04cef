// Package ui provides the interactive terminal interface.
package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/nibzard/retrotodo/internal/theme"
	"github.com/nibzard/retrotodo/internal/todoclient"
)

// Options configures the TUI.
type Options struct {
	Theme  theme.Theme
	Logger *log.Logger
}

// RunTUI starts the TUI against backend. It blocks until the user quits or
// ctx is cancelled.
func RunTUI(ctx context.Context, backend todoclient.Backend, opts Options) error {
	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}

	model := newTUIModel(ctx, backend, opts)
	defer model.client.Close()
	return runProgram(ctx, model)
}

func runProgram(ctx context.Context, model *tuiModel) error {
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}

type focusArea int

const (
	focusInput focusArea = iota
	focusList
)

type operation string

const (
	opFetch  operation = "fetch"
	opAdd    operation = "add"
	opDelete operation = "delete"
)

type tuiModel struct {
	ctx     context.Context
	client  *todoclient.Client
	changes <-chan struct{}
	logger  *log.Logger

	styles   theme.Styles
	keys     keyMap
	help     help.Model
	input    textinput.Model
	spinner  spinner.Model
	viewport viewport.Model

	state  todoclient.State
	focus  focusArea
	cursor int
	width  int
	height int
}

// changedMsg reports that the client state changed.
type changedMsg struct{}

// opDoneMsg carries the outcome of an operation run in a command.
type opDoneMsg struct {
	op  operation
	err error
}

func newTUIModel(ctx context.Context, backend todoclient.Backend, opts Options) *tuiModel {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	input := textinput.New()
	input.Placeholder = "Type a task..."
	input.CharLimit = 280
	input.Prompt = "> "
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	changes := make(chan struct{}, 1)
	m := &tuiModel{
		ctx:      ctx,
		changes:  changes,
		logger:   logger,
		keys:     defaultKeyMap(),
		help:     help.New(),
		input:    input,
		spinner:  sp,
		viewport: viewport.New(0, 0),
		focus:    focusInput,
	}

	t := opts.Theme
	if !t.Valid() {
		t = theme.Default
	}
	m.client = todoclient.New(ctx, backend,
		todoclient.WithTheme(t),
		todoclient.WithLogger(logger),
		todoclient.WithThemeSink(m),
		todoclient.WithObserver(func(todoclient.State) {
			select {
			case changes <- struct{}{}:
			default:
			}
		}),
	)
	m.state = m.client.State()
	return m
}

// ApplyTheme swaps the style sheet. It is the client's theme sink.
func (m *tuiModel) ApplyTheme(t theme.Theme) {
	m.styles = theme.NewStyles(t)
	m.input.TextStyle = m.styles.Input
	m.input.PlaceholderStyle = m.styles.Empty
	m.input.PromptStyle = m.styles.Title
	m.spinner.Style = m.styles.Loading
}

func (m *tuiModel) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
		m.run(opFetch, ""),
		waitForChange(m.changes),
	)
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.input.Width = max(msg.Width-24, 10)
		m.resizeViewport()
		m.syncViewport()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case changedMsg:
		m.refresh()
		return m, waitForChange(m.changes)

	case opDoneMsg:
		if msg.err != nil && !errors.Is(msg.err, todoclient.ErrBusy) && !errors.Is(msg.err, todoclient.ErrClosed) {
			m.logger.Debug("operation finished with error", "op", msg.op, "err", msg.err)
		}
		m.refresh()
		return m, nil
	}

	if m.focus == focusInput {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *tuiModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.forceQuit):
		return m.quit()
	case key.Matches(msg, m.keys.toggleTheme):
		m.client.ToggleTheme()
		m.refresh()
		return m, nil
	case key.Matches(msg, m.keys.refresh):
		return m, m.run(opFetch, "")
	case key.Matches(msg, m.keys.switchFocus):
		m.toggleFocus()
		return m, nil
	}

	if m.focus == focusList {
		return m.handleListKey(msg)
	}
	return m.handleInputKey(msg)
}

func (m *tuiModel) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.state.ActionLoading {
		return m, nil
	}
	if key.Matches(msg, m.keys.submit) {
		m.client.SetDraft(m.input.Value())
		return m, m.run(opAdd, "")
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.client.SetDraft(m.input.Value())
	m.state.Draft = m.input.Value()
	return m, cmd
}

func (m *tuiModel) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m.quit()
	case key.Matches(msg, m.keys.toggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		m.resizeViewport()
		return m, nil
	case key.Matches(msg, m.keys.listRefresh):
		return m, m.run(opFetch, "")
	case key.Matches(msg, m.keys.up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.down):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.pageUp):
		m.moveCursor(-max(m.viewport.Height, 1))
	case key.Matches(msg, m.keys.pageDown):
		m.moveCursor(max(m.viewport.Height, 1))
	case key.Matches(msg, m.keys.remove):
		if m.state.ActionLoading || len(m.state.Tasks) == 0 {
			return m, nil
		}
		return m, m.run(opDelete, m.state.Tasks[m.cursor].ID)
	}
	return m, nil
}

func (m *tuiModel) quit() (tea.Model, tea.Cmd) {
	m.client.Close()
	return m, tea.Quit
}

func (m *tuiModel) toggleFocus() {
	if m.focus == focusInput {
		m.focus = focusList
		m.input.Blur()
		return
	}
	m.focus = focusInput
	m.input.Focus()
}

func (m *tuiModel) moveCursor(delta int) {
	if len(m.state.Tasks) == 0 {
		m.cursor = 0
		return
	}
	m.cursor = min(max(m.cursor+delta, 0), len(m.state.Tasks)-1)
	m.syncViewport()
}

// run executes op against the client in a command goroutine.
func (m *tuiModel) run(op operation, id string) tea.Cmd {
	client := m.client
	ctx := m.ctx
	return func() tea.Msg {
		var err error
		switch op {
		case opFetch:
			err = client.FetchTodos(ctx)
		case opAdd:
			err = client.AddTodo(ctx)
		case opDelete:
			err = client.DeleteTodo(ctx, id)
		}
		return opDoneMsg{op: op, err: err}
	}
}

func waitForChange(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-ch
		return changedMsg{}
	}
}

// refresh pulls a fresh snapshot from the client.
func (m *tuiModel) refresh() {
	m.state = m.client.State()
	if m.input.Value() != m.state.Draft {
		m.input.SetValue(m.state.Draft)
	}
	if m.cursor >= len(m.state.Tasks) {
		m.cursor = max(len(m.state.Tasks)-1, 0)
	}
	m.syncViewport()
}

func (m *tuiModel) resizeViewport() {
	if m.height == 0 {
		return
	}
	// title, input, banner, list header, footer, help and padding
	chrome := 14
	if m.help.ShowAll {
		chrome += 4
	}
	m.viewport.Width = max(m.width-8, 10)
	m.viewport.Height = max(m.height-chrome, 3)
}

func (m *tuiModel) syncViewport() {
	m.viewport.SetContent(m.renderTasks())
	if m.viewport.Height <= 0 {
		return
	}
	if m.cursor < m.viewport.YOffset {
		m.viewport.SetYOffset(m.cursor)
	} else if m.cursor >= m.viewport.YOffset+m.viewport.Height {
		m.viewport.SetYOffset(m.cursor - m.viewport.Height + 1)
	}
}
