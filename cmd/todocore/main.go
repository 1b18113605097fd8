// Command todocore runs the todo backend's maintenance loop and its
// administrative commands.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"

	"todo-core/internal/config"
	"todo-core/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	logger, err := logging.New(os.Stderr, logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging: %v\n", err)
		os.Exit(2)
	}

	if err := run(ctx, cfg, logger, os.Args[1:]); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info("interrupted")
			os.Exit(130)
		}
		logger.Error("command failed", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *log.Logger, args []string) error {
	subcommand := "run"
	if len(args) > 0 && args[0] != "" && args[0][0] != '-' {
		subcommand, args = args[0], args[1:]
	}

	switch subcommand {
	case "run":
		return serveCommand(ctx, cfg, logger, args)
	case "migrate":
		return migrateCommand(ctx, cfg, logger)
	case "register":
		return registerCommand(ctx, cfg, logger, args)
	case "delete-user":
		return deleteUserCommand(ctx, cfg, logger, args)
	case "purge-users":
		return purgeCommand(ctx, cfg, logger, args)
	case "categories":
		return categoriesCommand(ctx, cfg, logger, args)
	case "todos":
		return todosCommand(ctx, cfg, logger, args)
	case "digest":
		return digestCommand(ctx, cfg, logger)
	case "help", "-h", "--help":
		printUsage(os.Stdout)
		return nil
	default:
		printUsage(os.Stderr)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}
