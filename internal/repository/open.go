package repository

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"todo-core/internal/config"
	"todo-core/internal/repository/memory"
)

var (
	_ Users      = (*UserRepository)(nil)
	_ Categories = (*CategoryRepository)(nil)
	_ Todos      = (*TodoRepository)(nil)
	_ Users      = (*memory.UserRepository)(nil)
	_ Categories = (*memory.CategoryRepository)(nil)
	_ Todos      = (*memory.TodoRepository)(nil)
)

// Stores bundles the repositories of one backend.
type Stores struct {
	Users      Users
	Categories Categories
	Todos      Todos

	close func() error
}

// Close releases the backend's resources.
func (s *Stores) Close() error {
	if s == nil || s.close == nil {
		return nil
	}
	return s.close()
}

// Open builds the backend selected by cfg.Store.
func Open(ctx context.Context, cfg config.Config, logger *log.Logger) (*Stores, error) {
	switch cfg.Store {
	case config.StoreMemory:
		return NewMemoryStores(), nil
	case config.StoreSQLite, config.StorePostgres:
		db, err := NewDB(ctx, cfg.Store, cfg.DatabaseURL, logger)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("db handle: %w", err)
		}
		return &Stores{
			Users:      NewUserRepository(db),
			Categories: NewCategoryRepository(db),
			Todos:      NewTodoRepository(db),
			close:      sqlDB.Close,
		}, nil
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}

// NewMemoryStores returns repositories over a fresh in-memory store.
func NewMemoryStores() *Stores {
	s := memory.NewStore()
	return &Stores{
		Users:      s.Users(),
		Categories: s.Categories(),
		Todos:      s.Todos(),
	}
}
