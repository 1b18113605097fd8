// Package query filters, sorts and paginates a user's todos.
//
// Run is pure: it takes the candidate set in store iteration order and
// returns a deterministic page. Ties under the requested sort keep the
// candidate order, so stores must hand candidates over in a stable order
// (creation time, then id).
package query

import (
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"todo-core/internal/apperr"
	"todo-core/internal/model"
)

// SortKey names the field todos are ordered by.
type SortKey string

const (
	SortCreatedAt SortKey = "created_at"
	SortDueDate   SortKey = "due_date"
	SortPriority  SortKey = "priority"
	SortTitle     SortKey = "title"
)

// Direction is the sort order.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// Filter is an AND of optional predicates. Nil or empty fields match everything.
type Filter struct {
	Status      *model.Status
	Priority    *model.Priority
	Search      string
	CategoryIDs []string
	DueFrom     *time.Time
	DueTo       *time.Time
}

// Sort selects the ordering of the result.
type Sort struct {
	Key       SortKey
	Direction Direction
}

// Request is a full list request.
type Request struct {
	Filter  Filter
	Sort    Sort
	Page    int
	PerPage int
}

// Page is one slice of the filtered, sorted result.
type Page struct {
	Items   []model.Todo
	Total   int
	Page    int
	PerPage int
	Pages   int
}

// Normalize fills defaults and rejects out-of-range values.
func (r Request) Normalize() (Request, error) {
	switch {
	case r.Page == 0:
		r.Page = 1
	case r.Page < 0:
		return r, apperr.Validation("page", "must be at least 1")
	}
	switch {
	case r.PerPage == 0:
		r.PerPage = DefaultPerPage
	case r.PerPage < 0 || r.PerPage > MaxPerPage:
		return r, apperr.Validation("per_page", "must be between 1 and 100")
	}

	switch r.Sort.Key {
	case "":
		r.Sort.Key = SortCreatedAt
	case SortCreatedAt, SortDueDate, SortPriority, SortTitle:
	default:
		return r, apperr.Validation("sort_by", "unknown sort key "+string(r.Sort.Key))
	}
	switch r.Sort.Direction {
	case "":
		r.Sort.Direction = Desc
	case Asc, Desc:
	default:
		return r, apperr.Validation("sort_order", "must be asc or desc")
	}

	if r.Filter.Status != nil && !r.Filter.Status.Valid() {
		return r, apperr.Validation("status", "must be pending or completed")
	}
	if r.Filter.Priority != nil && !r.Filter.Priority.Valid() {
		return r, apperr.Validation("priority", "must be low, medium or high")
	}
	return r, nil
}

// Run applies req to candidates.
func Run(candidates []model.Todo, req Request) (Page, error) {
	req, err := req.Normalize()
	if err != nil {
		return Page{}, err
	}

	m := newMatcher(req.Filter)
	filtered := make([]model.Todo, 0, len(candidates))
	for _, t := range candidates {
		if m.match(t) {
			filtered = append(filtered, t)
		}
	}

	sortTodos(filtered, req.Sort)

	total := len(filtered)
	page := Page{
		Items:   []model.Todo{},
		Total:   total,
		Page:    req.Page,
		PerPage: req.PerPage,
		Pages:   pageCount(total, req.PerPage),
	}
	offset := (req.Page - 1) * req.PerPage
	if offset >= total {
		return page, nil
	}
	end := offset + req.PerPage
	if end > total {
		end = total
	}
	page.Items = filtered[offset:end]
	return page, nil
}

func pageCount(total, perPage int) int {
	if total == 0 {
		return 0
	}
	return (total + perPage - 1) / perPage
}

// Match reports whether t satisfies every predicate of f.
func (f Filter) Match(t model.Todo) bool {
	return newMatcher(f).match(t)
}

type matcher struct {
	f          Filter
	needle     string
	fold       cases.Caser
	categories map[string]struct{}
}

func newMatcher(f Filter) *matcher {
	m := &matcher{f: f, fold: cases.Fold()}
	if f.Search != "" {
		m.needle = m.fold.String(f.Search)
	}
	if len(f.CategoryIDs) > 0 {
		m.categories = make(map[string]struct{}, len(f.CategoryIDs))
		for _, id := range f.CategoryIDs {
			m.categories[id] = struct{}{}
		}
	}
	return m
}

func (m *matcher) match(t model.Todo) bool {
	if m.f.Status != nil && t.Status != *m.f.Status {
		return false
	}
	if m.f.Priority != nil && t.Priority != *m.f.Priority {
		return false
	}
	if m.needle != "" && !m.contains(t) {
		return false
	}
	if m.categories != nil {
		if t.CategoryID == nil {
			return false
		}
		if _, ok := m.categories[*t.CategoryID]; !ok {
			return false
		}
	}
	if m.f.DueFrom != nil || m.f.DueTo != nil {
		if t.DueDate == nil {
			return false
		}
		if m.f.DueFrom != nil && t.DueDate.Before(*m.f.DueFrom) {
			return false
		}
		if m.f.DueTo != nil && t.DueDate.After(*m.f.DueTo) {
			return false
		}
	}
	return true
}

func (m *matcher) contains(t model.Todo) bool {
	if strings.Contains(m.fold.String(t.Title), m.needle) {
		return true
	}
	return t.Description != nil && strings.Contains(m.fold.String(*t.Description), m.needle)
}

func sortTodos(todos []model.Todo, s Sort) {
	desc := s.Direction == Desc
	switch s.Key {
	case SortDueDate:
		// Missing due dates go last whichever way the list is ordered.
		sort.SliceStable(todos, func(i, j int) bool {
			a, b := todos[i].DueDate, todos[j].DueDate
			switch {
			case a == nil:
				return false
			case b == nil:
				return true
			case desc:
				return a.After(*b)
			default:
				return a.Before(*b)
			}
		})
	case SortPriority:
		sort.SliceStable(todos, func(i, j int) bool {
			a, b := todos[i].Priority.Weight(), todos[j].Priority.Weight()
			if desc {
				return a > b
			}
			return a < b
		})
	case SortTitle:
		fold := cases.Fold()
		sort.SliceStable(todos, func(i, j int) bool {
			a, b := fold.String(todos[i].Title), fold.String(todos[j].Title)
			if desc {
				return a > b
			}
			return a < b
		})
	default:
		sort.SliceStable(todos, func(i, j int) bool {
			a, b := todos[i].CreatedAt, todos[j].CreatedAt
			if desc {
				return a.After(b)
			}
			return a.Before(b)
		})
	}
}
