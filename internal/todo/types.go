package todo

import (
	"strings"

	"github.com/google/uuid"
)

// PlaceholderPrefix marks ids generated on the client.
const PlaceholderPrefix = "tmp-"

// Task is a single todo item.
type Task struct {
	ID          string `json:"id"`
	Text        string `json:"text"`
	Placeholder bool   `json:"placeholder,omitempty"`
}

// NewPlaceholderID returns a random id for a task the backend sent without one.
func NewPlaceholderID() string {
	return PlaceholderPrefix + uuid.NewString()
}

// IsPlaceholderID reports whether id was generated by NewPlaceholderID.
func IsPlaceholderID(id string) bool {
	return strings.HasPrefix(id, PlaceholderPrefix)
}

// List is an ordered sequence of tasks with unique ids.
type List []Task

// IDs returns the task ids in list order.
func (l List) IDs() []string {
	ids := make([]string, 0, len(l))
	for _, t := range l {
		ids = append(ids, t.ID)
	}
	return ids
}

// Index returns the position of the task with the given id, or -1.
func (l List) Index(id string) int {
	for i, t := range l {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// Contains reports whether a task with the given id is in the list.
func (l List) Contains(id string) bool {
	return l.Index(id) >= 0
}

// Find returns the task with the given id.
func (l List) Find(id string) (Task, bool) {
	if i := l.Index(id); i >= 0 {
		return l[i], true
	}
	return Task{}, false
}

// Clone returns a copy that shares no backing array with l.
func (l List) Clone() List {
	if l == nil {
		return nil
	}
	out := make(List, len(l))
	copy(out, l)
	return out
}

// Prepend returns a new list with t at the head. An existing task with the
// same id is dropped so ids stay unique.
func (l List) Prepend(t Task) List {
	out := make(List, 0, len(l)+1)
	out = append(out, t)
	for _, existing := range l {
		if existing.ID == t.ID {
			continue
		}
		out = append(out, existing)
	}
	return out
}

// Remove returns a new list without the task whose id matches exactly, and
// whether such a task existed. When nothing matches the original list is
// returned unchanged.
func (l List) Remove(id string) (List, bool) {
	i := l.Index(id)
	if i < 0 {
		return l, false
	}
	out := make(List, 0, len(l)-1)
	out = append(out, l[:i]...)
	out = append(out, l[i+1:]...)
	return out, true
}

// Dedupe keeps the first task for each id and returns the ids it dropped.
func Dedupe(l List) (List, []string) {
	seen := make(map[string]bool, len(l))
	out := make(List, 0, len(l))
	var dropped []string
	for _, t := range l {
		if seen[t.ID] {
			dropped = append(dropped, t.ID)
			continue
		}
		seen[t.ID] = true
		out = append(out, t)
	}
	return out, dropped
}
