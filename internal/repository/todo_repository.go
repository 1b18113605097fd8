package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"todo-core/internal/apperr"
	"todo-core/internal/model"
	"todo-core/internal/query"
)

// TodoRepository handles CRUD for todos.
type TodoRepository struct {
	db *gorm.DB
}

func NewTodoRepository(db *gorm.DB) *TodoRepository {
	return &TodoRepository{db: db}
}

var errUnknownCategory = apperr.Validation("category_id", "unknown category")

func (r *TodoRepository) Create(ctx context.Context, todo *model.Todo) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if todo.CategoryID != nil {
			if err := lockOwnedCategory(tx, todo.UserID, *todo.CategoryID); err != nil {
				return err
			}
		}
		if err := tx.Create(todo).Error; err != nil {
			return translate("create todo", err)
		}
		return nil
	})
}

func (r *TodoRepository) FindByID(ctx context.Context, userID, id string) (*model.Todo, error) {
	var todo model.Todo
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&todo).Error; err != nil {
		return nil, translate("find todo", err)
	}
	return &todo, nil
}

// ListByUser pushes the exact-match predicates of f into SQL. Search and due
// date ranges are left to the query engine.
func (r *TodoRepository) ListByUser(ctx context.Context, userID string, f query.Filter) ([]model.Todo, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	if f.Priority != nil {
		q = q.Where("priority = ?", *f.Priority)
	}
	if len(f.CategoryIDs) > 0 {
		q = q.Where("category_id IN ?", f.CategoryIDs)
	}

	var todos []model.Todo
	if err := q.Order("created_at ASC, id ASC").Find(&todos).Error; err != nil {
		return nil, translate("list todos", err)
	}
	return todos, nil
}

func (r *TodoRepository) Update(ctx context.Context, userID, id string, patch model.TodoPatch, updatedAt time.Time) (*model.Todo, error) {
	var todo model.Todo
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if categoryID, ok := patch.CategoryID.Get(); ok && categoryID != nil {
			if err := lockOwnedCategory(tx, userID, *categoryID); err != nil {
				return err
			}
		}
		res := tx.Model(&model.Todo{}).
			Where("id = ? AND user_id = ?", id, userID).
			Updates(patchColumns(patch, updatedAt))
		if res.Error != nil {
			return translate("update todo", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.ErrNotFound
		}
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&todo).Error; err != nil {
			return translate("find todo", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &todo, nil
}

func patchColumns(patch model.TodoPatch, updatedAt time.Time) map[string]any {
	cols := map[string]any{"updated_at": updatedAt}
	if v, ok := patch.Title.Get(); ok {
		cols["title"] = v
	}
	if v, ok := patch.Description.Get(); ok {
		cols["description"] = v
	}
	if v, ok := patch.Status.Get(); ok {
		cols["status"] = v
	}
	if v, ok := patch.Priority.Get(); ok {
		cols["priority"] = v
	}
	if v, ok := patch.DueDate.Get(); ok {
		cols["due_date"] = v
	}
	if v, ok := patch.CategoryID.Get(); ok {
		cols["category_id"] = v
	}
	return cols
}

// lockOwnedCategory checks that the category exists for userID and holds its
// row lock until the transaction ends, so a concurrent delete waits for us.
// SQLite has no row locks; its single connection serializes transactions.
func lockOwnedCategory(tx *gorm.DB, userID, categoryID string) error {
	var ids []string
	err := tx.Model(&model.Category{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND user_id = ?", categoryID, userID).
		Limit(1).
		Pluck("id", &ids).Error
	if err != nil {
		return translate("check category", err)
	}
	if len(ids) == 0 {
		return errUnknownCategory
	}
	return nil
}

// Delete removes a todo owned by userID.
func (r *TodoRepository) Delete(ctx context.Context, userID, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&model.Todo{})
	if res.Error != nil {
		return false, translate("delete todo", res.Error)
	}
	return res.RowsAffected > 0, nil
}
