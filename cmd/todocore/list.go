package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"todo-core/internal/config"
	"todo-core/internal/model"
	"todo-core/internal/query"
)

func categoriesCommand(ctx context.Context, cfg config.Config, logger *log.Logger, args []string) error {
	fs := flag.NewFlagSet("todocore categories", flag.ContinueOnError)
	userID := fs.String("user", "", "owner user id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *userID == "" {
		return errors.New("-user is required")
	}

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	categories, err := a.categories.List(ctx, *userID)
	if err != nil {
		return err
	}
	for _, c := range categories {
		fmt.Printf("%s\t%s\t%s\t%d\n", c.ID, c.Color, c.Name, c.TodoCount)
	}
	return nil
}

func todosCommand(ctx context.Context, cfg config.Config, logger *log.Logger, args []string) error {
	fs := flag.NewFlagSet("todocore todos", flag.ContinueOnError)
	userID := fs.String("user", "", "owner user id")
	status := fs.String("status", "", "pending or completed")
	priority := fs.String("priority", "", "low, medium or high")
	search := fs.String("search", "", "case-insensitive text in title or description")
	categories := fs.String("categories", "", "comma-separated category ids")
	dueFrom := fs.String("due-from", "", "earliest due date, RFC 3339")
	dueTo := fs.String("due-to", "", "latest due date, RFC 3339")
	sortBy := fs.String("sort", "", "created_at, due_date, priority or title")
	order := fs.String("order", "", "asc or desc")
	page := fs.Int("page", 1, "page number")
	perPage := fs.Int("per-page", query.DefaultPerPage, "items per page")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *userID == "" {
		return errors.New("-user is required")
	}

	req := query.Request{
		Filter:  query.Filter{Search: *search},
		Sort:    query.Sort{Key: query.SortKey(*sortBy), Direction: query.Direction(*order)},
		Page:    *page,
		PerPage: *perPage,
	}
	if *status != "" {
		s, err := model.ParseStatus(*status)
		if err != nil {
			return err
		}
		req.Filter.Status = &s
	}
	if *priority != "" {
		p, err := model.ParsePriority(*priority)
		if err != nil {
			return err
		}
		req.Filter.Priority = &p
	}
	if *categories != "" {
		req.Filter.CategoryIDs = strings.Split(*categories, ",")
	}
	var err error
	if req.Filter.DueFrom, err = parseTime("due-from", *dueFrom); err != nil {
		return err
	}
	if req.Filter.DueTo, err = parseTime("due-to", *dueTo); err != nil {
		return err
	}

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.todos.List(ctx, *userID, req)
	if err != nil {
		return err
	}
	for _, t := range result.Items {
		due := "-"
		if t.DueDate != nil {
			due = t.DueDate.Format(time.RFC3339)
		}
		fmt.Printf("%s\t%s\t%s\t%s\t%s\n", t.ID, t.Status, t.Priority, due, t.Title)
	}
	fmt.Printf("page %d of %d, %d total\n", result.Page, result.Pages, result.Total)
	return nil
}

func parseTime(name, raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("-%s: %w", name, err)
	}
	return &t, nil
}
