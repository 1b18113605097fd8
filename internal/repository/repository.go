package repository

import (
	"context"
	"time"

	"todo-core/internal/model"
	"todo-core/internal/query"
)

// Users persists accounts. Lookups return apperr.ErrNotFound when absent and
// Create returns an apperr duplicate error when the email is taken.
type Users interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByExternalID(ctx context.Context, externalID string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	ListAll(ctx context.Context) ([]model.User, error)
	// Delete removes the user with all of its categories and todos.
	Delete(ctx context.Context, id string) (bool, error)
	// DeleteAll clears every user, category and todo and returns the number of users removed.
	DeleteAll(ctx context.Context) (int64, error)
}

// Categories persists per-user categories. Every read fills TodoCount.
type Categories interface {
	Create(ctx context.Context, category *model.Category) error
	// SeedIfEmpty inserts seeds only when the user has no categories, checked
	// and written atomically. It reports whether anything was inserted.
	SeedIfEmpty(ctx context.Context, userID string, seeds []model.Category) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]model.Category, error)
	FindByID(ctx context.Context, userID, id string) (*model.Category, error)
	Update(ctx context.Context, category *model.Category) error
	// Delete clears category_id on the referencing todos and removes the
	// category in one atomic step.
	Delete(ctx context.Context, userID, id string) (bool, error)
}

// Todos persists todos scoped by owner. A category_id written by Create or
// Update must name a category of the same user; the check and the write are
// one atomic step, so a concurrent category delete cannot leave a dangling
// reference. A failed check is a validation error on category_id.
type Todos interface {
	Create(ctx context.Context, todo *model.Todo) error
	FindByID(ctx context.Context, userID, id string) (*model.Todo, error)
	// ListByUser returns the user's todos in creation order. Implementations
	// may narrow the result with f but callers must still apply it.
	ListByUser(ctx context.Context, userID string, f query.Filter) ([]model.Todo, error)
	// Update writes only the fields present in patch plus updated_at and
	// returns the stored todo.
	Update(ctx context.Context, userID, id string, patch model.TodoPatch, updatedAt time.Time) (*model.Todo, error)
	Delete(ctx context.Context, userID, id string) (bool, error)
}
