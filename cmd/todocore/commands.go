package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"todo-core/internal/config"
	"todo-core/internal/service"
)

const usage = `usage: todocore [command] [flags]

commands:
  run           run the maintenance scheduler until interrupted (default)
  migrate       create or update the database schema
  register      create a password account (-email, -username, -password)
  delete-user   delete a user and everything it owns (-id)
  purge-users   delete every user (-yes)
  categories    list a user's categories, seeding defaults (-user)
  todos         filter, sort and page a user's todos (-user, -status, -search, -sort, ...)
  digest        log the pending todo digest for every user once
`

func printUsage(w io.Writer) {
	fmt.Fprint(w, usage)
}

func serveCommand(ctx context.Context, cfg config.Config, logger *log.Logger, args []string) error {
	fs := flag.NewFlagSet("todocore run", flag.ContinueOnError)
	digestAt := fs.String("digest-at", cfg.DigestAt, "daily digest time HH:MM, empty to disable")
	sweep := fs.Duration("sweep-interval", cfg.SweepInterval, "revocation sweep interval")
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	err = a.sessions.Ping(pingCtx)
	cancel()
	if err != nil {
		return fmt.Errorf("session store: %w", err)
	}

	scheduler := service.NewSchedulerService(time.Local, logger)
	if *sweep > 0 {
		if _, err := scheduler.ScheduleInterval("sweep", *sweep, func(ctx context.Context) error {
			removed, err := a.sessions.Sweep(ctx)
			if err == nil && removed > 0 {
				logger.Info("swept revoked tokens", "count", removed)
			}
			return err
		}); err != nil {
			return fmt.Errorf("schedule sweep: %w", err)
		}
	}
	if *digestAt != "" {
		if _, err := scheduler.ScheduleDaily("digest", *digestAt, func(ctx context.Context) error {
			return a.digest.Run(ctx, time.Now())
		}); err != nil {
			return fmt.Errorf("schedule digest: %w", err)
		}
	}
	scheduler.Start()
	defer scheduler.Stop()

	logger.Info("todocore started", "store", cfg.Store, "jobs", scheduler.Entries())
	<-ctx.Done()
	logger.Info("shutdown complete")
	return nil
}

func migrateCommand(ctx context.Context, cfg config.Config, logger *log.Logger) error {
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()
	logger.Info("schema up to date", "store", cfg.Store)
	return nil
}

func registerCommand(ctx context.Context, cfg config.Config, logger *log.Logger, args []string) error {
	fs := flag.NewFlagSet("todocore register", flag.ContinueOnError)
	email := fs.String("email", "", "account email")
	username := fs.String("username", "", "display name")
	password := fs.String("password", os.Getenv("TODO_REGISTER_PASSWORD"), "password (defaults to TODO_REGISTER_PASSWORD)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	sess, err := a.accounts.Register(ctx, service.RegisterInput{
		Email:    *email,
		Username: *username,
		Password: *password,
	})
	if err != nil {
		return err
	}
	fmt.Printf("%s\t%s\n", sess.User.ID, sess.Token)
	return nil
}

func deleteUserCommand(ctx context.Context, cfg config.Config, logger *log.Logger, args []string) error {
	fs := flag.NewFlagSet("todocore delete-user", flag.ContinueOnError)
	id := fs.String("id", "", "user id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*id) == "" {
		return errors.New("-id is required")
	}

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	deleted, err := a.accounts.DeleteUser(ctx, *id)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("user %s not found", *id)
	}
	logger.Info("deleted user", "user_id", *id)
	return nil
}

func purgeCommand(ctx context.Context, cfg config.Config, logger *log.Logger, args []string) error {
	fs := flag.NewFlagSet("todocore purge-users", flag.ContinueOnError)
	yes := fs.Bool("yes", false, "confirm deleting every user")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if !*yes {
		return errors.New("refusing to purge without -yes")
	}

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	_, err = a.accounts.PurgeAll(ctx)
	return err
}

func digestCommand(ctx context.Context, cfg config.Config, logger *log.Logger) error {
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()
	return a.digest.Run(ctx, time.Now())
}
