package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"todo-core/internal/apperr"
	"todo-core/internal/logging"
	"todo-core/internal/model"
)

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := NewDB(context.Background(), DriverSQLite, filepath.Join(t.TempDir(), "todo.db"), logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func seedCategory(t *testing.T, repo *CategoryRepository, userID, id, name string) {
	t.Helper()
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Create(context.Background(), &model.Category{
		ID: id, UserID: userID, Name: name, Color: "#3B82F6", CreatedAt: now, UpdatedAt: now,
	}))
}

func seedTodo(t *testing.T, repo *TodoRepository, userID, id string, categoryID *string) {
	t.Helper()
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Create(context.Background(), &model.Todo{
		ID: id, UserID: userID, CategoryID: categoryID, Title: id,
		Status: model.StatusPending, Priority: model.PriorityMedium,
		CreatedAt: now, UpdatedAt: now,
	}))
}

func TestCategoryDeleteDetachesTodos(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)
	categories := NewCategoryRepository(db)
	todos := NewTodoRepository(db)

	seedCategory(t, categories, "alice", "cat-1", "Work")
	categoryID := "cat-1"
	seedTodo(t, todos, "alice", "todo-1", &categoryID)

	deleted, err := categories.Delete(ctx, "alice", "cat-1")
	require.NoError(t, err)
	assert.True(t, deleted)

	got, err := todos.FindByID(ctx, "alice", "todo-1")
	require.NoError(t, err)
	assert.Nil(t, got.CategoryID)

	deleted, err = categories.Delete(ctx, "alice", "cat-1")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestCategoryDeleteRollsBackOnFailure(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)
	categories := NewCategoryRepository(db)
	todos := NewTodoRepository(db)

	seedCategory(t, categories, "alice", "cat-1", "Work")
	categoryID := "cat-1"
	seedTodo(t, todos, "alice", "todo-1", &categoryID)
	seedTodo(t, todos, "alice", "todo-2", &categoryID)

	errDiskFull := errors.New("disk full")
	require.NoError(t, db.Callback().Delete().Before("gorm:delete").Register("test:fail_category_delete", func(tx *gorm.DB) {
		if tx.Statement.Table == "categories" {
			_ = tx.AddError(errDiskFull)
		}
	}))

	deleted, err := categories.Delete(ctx, "alice", "cat-1")
	require.ErrorIs(t, err, errDiskFull)
	assert.False(t, deleted)

	for _, id := range []string{"todo-1", "todo-2"} {
		got, err := todos.FindByID(ctx, "alice", id)
		require.NoError(t, err)
		require.NotNil(t, got.CategoryID, id)
		assert.Equal(t, "cat-1", *got.CategoryID, id)
	}
	_, err = categories.FindByID(ctx, "alice", "cat-1")
	assert.NoError(t, err)
}

func TestTodoWritesRequireOwnedCategory(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)
	categories := NewCategoryRepository(db)
	todos := NewTodoRepository(db)

	seedCategory(t, categories, "bob", "cat-bob", "Garage")
	bobs := "cat-bob"

	err := todos.Create(ctx, &model.Todo{
		ID: "todo-1", UserID: "alice", CategoryID: &bobs, Title: "borrow",
		Status: model.StatusPending, Priority: model.PriorityLow,
	})
	require.ErrorIs(t, err, apperr.ErrValidation)

	seedTodo(t, todos, "alice", "todo-2", nil)
	_, err = todos.Update(ctx, "alice", "todo-2", model.TodoPatch{CategoryID: model.Set(&bobs)}, time.Now().UTC())
	require.ErrorIs(t, err, apperr.ErrValidation)

	_, err = todos.Update(ctx, "alice", "missing", model.TodoPatch{Title: model.Set("x")}, time.Now().UTC())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestTodoUpdateWritesOnlyPatchedColumns(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)
	todos := NewTodoRepository(db)

	seedTodo(t, todos, "alice", "todo-1", nil)
	// A column changed behind the caller's back must survive a title-only patch.
	require.NoError(t, db.Model(&model.Todo{}).Where("id = ?", "todo-1").Update("priority", model.PriorityHigh).Error)

	updatedAt := time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC)
	got, err := todos.Update(ctx, "alice", "todo-1", model.TodoPatch{Title: model.Set("renamed")}, updatedAt)
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Title)
	assert.Equal(t, model.PriorityHigh, got.Priority)
	assert.True(t, got.UpdatedAt.Equal(updatedAt))
}
