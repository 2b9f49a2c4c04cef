package todoclient

import (
	"github.com/nibzard/retrotodo/internal/theme"
	"github.com/nibzard/retrotodo/internal/todo"
)

// State is the UI state owned by a Client.
type State struct {
	Tasks         todo.List
	Draft         string
	Theme         theme.Theme
	Loading       bool
	ActionLoading bool

	// Err is the single user-visible error message. LastErr is its cause.
	Err     string
	LastErr error
}

// Clone returns a copy that shares no task storage with s.
func (s State) Clone() State {
	s.Tasks = s.Tasks.Clone()
	return s
}

// ViewKind selects what the task area shows.
type ViewKind int

const (
	ViewLoading ViewKind = iota
	ViewEmpty
	ViewList
)

func (k ViewKind) String() string {
	switch k {
	case ViewLoading:
		return "loading"
	case ViewEmpty:
		return "empty"
	case ViewList:
		return "list"
	default:
		return "unknown"
	}
}

// View is the presentation derived from a State.
type View struct {
	Kind   ViewKind
	Tasks  todo.List
	Banner string
	Theme  theme.Theme

	Draft         string
	Refreshing    bool
	ActionLoading bool
}

// View derives the presentation of s.
func (s State) View() View {
	v := View{
		Tasks:         s.Tasks.Clone(),
		Banner:        s.Err,
		Theme:         s.Theme,
		Draft:         s.Draft,
		Refreshing:    s.Loading,
		ActionLoading: s.ActionLoading,
	}
	switch {
	case s.Loading:
		v.Kind = ViewLoading
	case len(s.Tasks) == 0:
		v.Kind = ViewEmpty
	default:
		v.Kind = ViewList
	}
	return v
}
