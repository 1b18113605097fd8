package memory

import (
	"context"
	"time"

	"todo-core/internal/apperr"
	"todo-core/internal/model"
	"todo-core/internal/query"
)

var errUnknownCategory = apperr.Validation("category_id", "unknown category")

// TodoRepository is the in-memory todo store.
type TodoRepository struct {
	s *Store
}

func (r *TodoRepository) Create(_ context.Context, todo *model.Todo) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.todos[todo.ID]; exists {
		return apperr.Duplicate("todo id already exists")
	}
	if todo.CategoryID != nil && !r.s.ownsCategory(todo.UserID, *todo.CategoryID) {
		return errUnknownCategory
	}
	r.s.todos[todo.ID] = entry[model.Todo]{seq: r.s.next(), value: cloneTodo(*todo)}
	return nil
}

func (r *TodoRepository) FindByID(_ context.Context, userID, id string) (*model.Todo, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	e, ok := r.s.todos[id]
	if !ok || e.value.UserID != userID {
		return nil, apperr.ErrNotFound
	}
	out := cloneTodo(e.value)
	return &out, nil
}

// ListByUser returns every todo of userID matching f in insertion order.
func (r *TodoRepository) ListByUser(_ context.Context, userID string, f query.Filter) ([]model.Todo, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var entries []entry[model.Todo]
	for _, e := range r.s.todos {
		if e.value.UserID == userID && f.Match(e.value) {
			e.value = cloneTodo(e.value)
			entries = append(entries, e)
		}
	}
	return ordered(entries), nil
}

func (r *TodoRepository) Update(_ context.Context, userID, id string, patch model.TodoPatch, updatedAt time.Time) (*model.Todo, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	e, ok := r.s.todos[id]
	if !ok || e.value.UserID != userID {
		return nil, apperr.ErrNotFound
	}
	if categoryID, set := patch.CategoryID.Get(); set && categoryID != nil && !r.s.ownsCategory(userID, *categoryID) {
		return nil, errUnknownCategory
	}
	updated := cloneTodo(e.value)
	patch.Apply(&updated)
	updated.UpdatedAt = updatedAt
	e.value = cloneTodo(updated)
	r.s.todos[id] = e
	return &updated, nil
}

func (r *TodoRepository) Delete(_ context.Context, userID, id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	e, ok := r.s.todos[id]
	if !ok || e.value.UserID != userID {
		return false, nil
	}
	delete(r.s.todos, id)
	return true, nil
}
