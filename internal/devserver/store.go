package devserver

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"github.com/nibzard/retrotodo/internal/todo"
)

// ErrNotFound is returned when deleting an id the store does not hold.
var ErrNotFound = errors.New("todo not found")

// Store persists tasks for the server. List returns newest first.
type Store interface {
	List(ctx context.Context) (todo.List, error)
	Create(ctx context.Context, text string) (todo.Task, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

// MemoryStore keeps tasks in memory. IDs are "1", "2", ... in creation order.
type MemoryStore struct {
	mu     sync.Mutex
	nextID int
	tasks  todo.List
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1}
}

func (s *MemoryStore) List(ctx context.Context) (todo.List, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(todo.List, len(s.tasks))
	copy(out, s.tasks)
	return out, nil
}

func (s *MemoryStore) Create(ctx context.Context, text string) (todo.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := todo.Task{ID: strconv.Itoa(s.nextID), Text: text}
	s.nextID++
	s.tasks = s.tasks.Prepend(t)
	return t, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rest, ok := s.tasks.Remove(id)
	if !ok {
		return ErrNotFound
	}
	s.tasks = rest
	return nil
}

func (s *MemoryStore) Close() error { return nil }
