package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"todo-core/internal/auth"
	"todo-core/internal/config"
	"todo-core/internal/repository"
	"todo-core/internal/service"
	"todo-core/internal/session"
)

// app holds the wired backend shared by every command.
type app struct {
	stores     *repository.Stores
	sessions   session.Store
	accounts   *service.AccountService
	categories *service.CategoryService
	todos      *service.TodoService
	digest     *service.DigestService
}

func newApp(ctx context.Context, cfg config.Config, logger *log.Logger) (*app, error) {
	stores, err := repository.Open(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	sessions, err := session.Open(cfg.RedisURL)
	if err != nil {
		_ = stores.Close()
		return nil, fmt.Errorf("open session store: %w", err)
	}

	// No identity provider is configured for the command line.
	var external auth.ExternalVerifier
	accounts := service.NewAccountService(
		stores.Users,
		auth.NewBcryptHasher(cfg.BcryptCost),
		auth.NewTokens(cfg.JWTSecret, cfg.AccessTTL),
		sessions,
		external,
		logger.WithPrefix("accounts"),
	)
	todos := service.NewTodoService(stores.Todos, logger.WithPrefix("todos"))

	return &app{
		stores:     stores,
		sessions:   sessions,
		accounts:   accounts,
		categories: service.NewCategoryService(stores.Categories, logger.WithPrefix("categories")),
		todos:      todos,
		digest:     service.NewDigestService(stores.Users, todos, logger.WithPrefix("digest")),
	}, nil
}

func (a *app) Close() error {
	return errors.Join(a.sessions.Close(), a.stores.Close())
}
