// Package memory keeps users, categories and todos in process memory.
//
// All three repositories share one Store and its lock, so multi-entity
// mutations such as deleting a category are atomic. Values are copied on
// the way in and out so callers cannot mutate stored rows.
package memory

import (
	"sort"
	"sync"
	"time"

	"todo-core/internal/model"
)

// Store is the shared in-memory state behind the repositories.
type Store struct {
	mu         sync.RWMutex
	seq        uint64
	users      map[string]model.User
	categories map[string]entry[model.Category]
	todos      map[string]entry[model.Todo]
}

type entry[T any] struct {
	seq   uint64
	value T
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		users:      make(map[string]model.User),
		categories: make(map[string]entry[model.Category]),
		todos:      make(map[string]entry[model.Todo]),
	}
}

// Users returns the user repository view of s.
func (s *Store) Users() *UserRepository {
	return &UserRepository{s: s}
}

// Categories returns the category repository view of s.
func (s *Store) Categories() *CategoryRepository {
	return &CategoryRepository{s: s}
}

// Todos returns the todo repository view of s.
func (s *Store) Todos() *TodoRepository {
	return &TodoRepository{s: s}
}

// next must be called with mu held for writing.
func (s *Store) next() uint64 {
	s.seq++
	return s.seq
}

// ownsCategory must be called with mu held.
func (s *Store) ownsCategory(userID, categoryID string) bool {
	e, ok := s.categories[categoryID]
	return ok && e.value.UserID == userID
}

// ordered returns entries in insertion order.
func ordered[T any](entries []entry[T]) []T {
	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })
	out := make([]T, len(entries))
	for i, e := range entries {
		out[i] = e.value
	}
	return out
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneTime(p *time.Time) *time.Time {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneUser(u model.User) model.User {
	u.PasswordHash = cloneString(u.PasswordHash)
	u.ExternalID = cloneString(u.ExternalID)
	u.Picture = cloneString(u.Picture)
	return u
}

func cloneCategory(c model.Category) model.Category {
	c.Description = cloneString(c.Description)
	return c
}

func cloneTodo(t model.Todo) model.Todo {
	t.Description = cloneString(t.Description)
	t.DueDate = cloneTime(t.DueDate)
	t.CategoryID = cloneString(t.CategoryID)
	return t
}
