package service

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"todo-core/internal/apperr"
	"todo-core/internal/model"
	"todo-core/internal/query"
	"todo-core/internal/repository"
)

const (
	maxTitleLen       = 100
	maxDescriptionLen = 500
)

// TodoService implements the owner-scoped todo operations.
type TodoService struct {
	todos repository.Todos
	log   *log.Logger
	now   func() time.Time

	mu          sync.Mutex
	lastCreated time.Time
}

func NewTodoService(todos repository.Todos, logger *log.Logger) *TodoService {
	return &TodoService{todos: todos, log: logger, now: time.Now}
}

// createdAt returns a creation time strictly after every earlier one from s,
// so creation order never ties on created_at within a process.
func (s *TodoService) createdAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastCreated = stamp(s.now(), s.lastCreated)
	return s.lastCreated
}

func (s *TodoService) Create(ctx context.Context, userID string, input model.TodoInput) (*model.Todo, error) {
	if input.Status == "" {
		input.Status = model.StatusPending
	}
	if input.Priority == "" {
		input.Priority = model.PriorityMedium
	}

	now := s.createdAt()
	todo := model.Todo{
		ID:          uuid.NewString(),
		UserID:      userID,
		CategoryID:  input.CategoryID,
		Title:       input.Title,
		Description: input.Description,
		Status:      input.Status,
		Priority:    input.Priority,
		DueDate:     utcPtr(input.DueDate),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := validateTodo(&todo); err != nil {
		return nil, err
	}

	if err := s.todos.Create(ctx, &todo); err != nil {
		return nil, fail(s.log, "create todo", err, "user_id", userID)
	}
	return &todo, nil
}

// Get returns apperr.ErrNotFound for missing todos and for todos of other users alike.
func (s *TodoService) Get(ctx context.Context, userID, todoID string) (*model.Todo, error) {
	todo, err := s.todos.FindByID(ctx, userID, todoID)
	if err != nil {
		return nil, fail(s.log, "get todo", err, "user_id", userID, "todo_id", todoID)
	}
	return todo, nil
}

// Update applies the present fields of patch. Only those fields and
// updated_at are written. A patch without fields returns the todo unchanged.
func (s *TodoService) Update(ctx context.Context, userID, todoID string, patch model.TodoPatch) (*model.Todo, error) {
	current, err := s.Get(ctx, userID, todoID)
	if err != nil {
		return nil, err
	}
	if patch.DueDate.Set {
		patch.DueDate.Value = utcPtr(patch.DueDate.Value)
	}
	merged := *current
	if !patch.Apply(&merged) {
		return current, nil
	}
	if err := validateTodo(&merged); err != nil {
		return nil, err
	}

	updated, err := s.todos.Update(ctx, userID, todoID, patch, stamp(s.now(), current.UpdatedAt))
	if err != nil {
		return nil, fail(s.log, "update todo", err, "user_id", userID, "todo_id", todoID)
	}
	return updated, nil
}

// Toggle flips the status between pending and completed.
func (s *TodoService) Toggle(ctx context.Context, userID, todoID string) (*model.Todo, error) {
	todo, err := s.Get(ctx, userID, todoID)
	if err != nil {
		return nil, err
	}
	return s.Update(ctx, userID, todoID, model.TodoPatch{Status: model.Set(todo.Status.Toggled())})
}

// Delete reports false when the todo does not exist or belongs to someone else.
func (s *TodoService) Delete(ctx context.Context, userID, todoID string) (bool, error) {
	deleted, err := s.todos.Delete(ctx, userID, todoID)
	if err != nil {
		return false, fail(s.log, "delete todo", err, "user_id", userID, "todo_id", todoID)
	}
	return deleted, nil
}

// List filters, sorts and paginates the user's todos.
func (s *TodoService) List(ctx context.Context, userID string, req query.Request) (query.Page, error) {
	req, err := req.Normalize()
	if err != nil {
		return query.Page{}, err
	}
	candidates, err := s.todos.ListByUser(ctx, userID, req.Filter)
	if err != nil {
		return query.Page{}, fail(s.log, "list todos", err, "user_id", userID)
	}
	return query.Run(candidates, req)
}

// validateTodo checks field bounds. Category ownership is checked by the
// store together with the write.
func validateTodo(todo *model.Todo) error {
	if err := checkLength("title", todo.Title, 1, maxTitleLen); err != nil {
		return err
	}
	if err := checkOptionalLength("description", todo.Description, maxDescriptionLen); err != nil {
		return err
	}
	if !todo.Status.Valid() {
		return apperr.Validation("status", "must be pending or completed")
	}
	if !todo.Priority.Valid() {
		return apperr.Validation("priority", "must be low, medium or high")
	}
	return nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
