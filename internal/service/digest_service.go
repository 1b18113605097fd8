package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"todo-core/internal/model"
	"todo-core/internal/query"
	"todo-core/internal/repository"
)

const dueSoonWindow = 48 * time.Hour

// Digest counts a user's open work at a point in time.
type Digest struct {
	UserID  string
	At      time.Time
	Pending int
	Overdue int
	DueSoon int
	Next    *model.Todo
}

// String renders the digest as a single human-readable line.
func (d Digest) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📋 %s: %d pending", d.At.Format("2006-01-02"), d.Pending)
	if d.Overdue > 0 {
		fmt.Fprintf(&sb, " · ⚠️ %d overdue", d.Overdue)
	}
	if d.DueSoon > 0 {
		fmt.Fprintf(&sb, " · ⏳ %d due within 48h", d.DueSoon)
	}
	if d.Next != nil && d.Next.DueDate != nil {
		fmt.Fprintf(&sb, " · next: %q by %s", strings.TrimSpace(d.Next.Title), d.Next.DueDate.Format("2006-01-02 15:04"))
	}
	return sb.String()
}

// DigestService builds per-user summaries for the daily digest job.
type DigestService struct {
	users repository.Users
	todos *TodoService
	log   *log.Logger
}

func NewDigestService(users repository.Users, todos *TodoService, logger *log.Logger) *DigestService {
	return &DigestService{users: users, todos: todos, log: logger}
}

// Summarize counts the pending todos of userID, the overdue ones and those
// due within the next 48 hours.
func (s *DigestService) Summarize(ctx context.Context, userID string, now time.Time) (Digest, error) {
	now = now.UTC()
	pending := model.StatusPending
	d := Digest{UserID: userID, At: now}

	all, err := s.todos.List(ctx, userID, query.Request{
		Filter:  query.Filter{Status: &pending},
		PerPage: 1,
	})
	if err != nil {
		return d, err
	}
	d.Pending = all.Total

	overdue, err := s.todos.List(ctx, userID, query.Request{
		Filter:  query.Filter{Status: &pending, DueTo: &now},
		PerPage: 1,
	})
	if err != nil {
		return d, err
	}
	d.Overdue = overdue.Total

	// Strictly after now so nothing counts as both overdue and due soon.
	from := now.Add(time.Microsecond)
	to := now.Add(dueSoonWindow)
	soon, err := s.todos.List(ctx, userID, query.Request{
		Filter:  query.Filter{Status: &pending, DueFrom: &from, DueTo: &to},
		Sort:    query.Sort{Key: query.SortDueDate, Direction: query.Asc},
		PerPage: 1,
	})
	if err != nil {
		return d, err
	}
	d.DueSoon = soon.Total
	if len(soon.Items) > 0 {
		next := soon.Items[0]
		d.Next = &next
	}
	return d, nil
}

// Run logs a digest line for every active user. A failure for one user is
// logged and does not stop the others.
func (s *DigestService) Run(ctx context.Context, now time.Time) error {
	users, err := s.users.ListAll(ctx)
	if err != nil {
		return fail(s.log, "list users", err)
	}
	var errs []error
	for _, user := range users {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !user.IsActive {
			continue
		}
		d, err := s.Summarize(ctx, user.ID, now)
		if err != nil {
			s.log.Warn("digest failed", "user_id", user.ID, "err", err)
			errs = append(errs, err)
			continue
		}
		s.log.Info(d.String(),
			"user_id", user.ID,
			"pending", d.Pending,
			"overdue", d.Overdue,
			"due_soon", d.DueSoon,
		)
	}
	return errors.Join(errs...)
}
