package todoclient

import (
	"github.com/nibzard/retrotodo/internal/todo"
)

// Transitions are pure: they take the current state and return the next one
// without touching the input's task storage.

func beginFetch(s State) State {
	s.Loading = true
	s.Err = ""
	s.LastErr = nil
	return s
}

func fetchSucceeded(s State, tasks todo.List) State {
	s.Loading = false
	if tasks == nil {
		tasks = todo.List{}
	}
	s.Tasks = tasks.Clone()
	return s
}

func fetchFailed(s State, err error) State {
	s.Loading = false
	s.Err = failureMessage("fetch todos", err)
	s.LastErr = err
	return s
}

// fetchAbandoned ends a fetch whose result was discarded.
func fetchAbandoned(s State) State {
	s.Loading = false
	return s
}

func beginAction(s State) State {
	s.ActionLoading = true
	s.Err = ""
	s.LastErr = nil
	return s
}

func addSucceeded(s State, task todo.Task) State {
	s.ActionLoading = false
	s.Tasks = s.Tasks.Prepend(task)
	s.Draft = ""
	return s
}

func deleteSucceeded(s State, id string) State {
	s.ActionLoading = false
	s.Tasks, _ = s.Tasks.Remove(id)
	return s
}

func actionFailed(s State, verb string, err error) State {
	s.ActionLoading = false
	s.Err = failureMessage(verb+" todo", err)
	s.LastErr = err
	return s
}

func actionAbandoned(s State) State {
	s.ActionLoading = false
	return s
}

func validationFailed(s State, err *ValidationError) State {
	s.Err = err.Message
	s.LastErr = err
	return s
}

func draftChanged(s State, text string) State {
	s.Draft = text
	return s
}

func toggledTheme(s State) State {
	s.Theme = s.Theme.Toggle()
	return s
}

func failureMessage(what string, err error) string {
	return "Failed to " + what + ": " + err.Error()
}
