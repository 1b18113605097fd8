package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"todo-core/internal/config"
	"todo-core/internal/logging"
	"todo-core/internal/model"
	"todo-core/internal/repository"
)

// clock is a manually advanced time source.
type clock struct {
	now time.Time
}

func newClock() *clock {
	return &clock{now: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time { return c.now }

func (c *clock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type fixture struct {
	ctx        context.Context
	stores     *repository.Stores
	clock      *clock
	todos      *TodoService
	categories *CategoryService
}

func newFixture(t *testing.T, stores *repository.Stores) *fixture {
	t.Helper()
	c := newClock()
	logger := logging.Discard()

	todos := NewTodoService(stores.Todos, logger)
	todos.now = c.Now
	categories := NewCategoryService(stores.Categories, logger)
	categories.now = c.Now

	return &fixture{
		ctx:        context.Background(),
		stores:     stores,
		clock:      c,
		todos:      todos,
		categories: categories,
	}
}

// eachStore runs fn once against the memory store and once against a
// sqlite database in a temp dir.
func eachStore(t *testing.T, fn func(t *testing.T, f *fixture)) {
	t.Run("memory", func(t *testing.T) {
		fn(t, newFixture(t, repository.NewMemoryStores()))
	})
	t.Run("sqlite", func(t *testing.T) {
		cfg := config.Default()
		cfg.Store = config.StoreSQLite
		cfg.DatabaseURL = filepath.Join(t.TempDir(), "todo.db")
		stores, err := repository.Open(context.Background(), cfg, logging.Discard())
		require.NoError(t, err)
		t.Cleanup(func() { _ = stores.Close() })
		fn(t, newFixture(t, stores))
	})
}

// addTodo creates a todo and advances the clock so creation times differ.
func (f *fixture) addTodo(t *testing.T, userID string, input model.TodoInput) *model.Todo {
	t.Helper()
	todo, err := f.todos.Create(f.ctx, userID, input)
	require.NoError(t, err)
	f.clock.Advance(time.Second)
	return todo
}

func (f *fixture) addCategory(t *testing.T, userID, name string) *model.Category {
	t.Helper()
	category, err := f.categories.Create(f.ctx, userID, CategoryInput{Name: name})
	require.NoError(t, err)
	f.clock.Advance(time.Second)
	return category
}

func ptr[T any](v T) *T {
	return &v
}
