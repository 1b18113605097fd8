package model

import (
	"fmt"
	"time"
)

// Status is the completion state of a todo.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusPending || s == StatusCompleted
}

// Toggled returns the opposite status.
func (s Status) Toggled() Status {
	if s == StatusCompleted {
		return StatusPending
	}
	return StatusCompleted
}

// ParseStatus converts raw input into a Status.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.Valid() {
		return "", fmt.Errorf("unknown status %q", raw)
	}
	return s, nil
}

// Priority is the importance of a todo.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// Weight orders priorities: high=3, medium=2, low=1.
func (p Priority) Weight() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityLow:
		return 1
	default:
		return 2
	}
}

// ParsePriority converts raw input into a Priority.
func ParsePriority(raw string) (Priority, error) {
	p := Priority(raw)
	if !p.Valid() {
		return "", fmt.Errorf("unknown priority %q", raw)
	}
	return p, nil
}

// Todo is a single task owned by exactly one user.
type Todo struct {
	ID          string   `gorm:"primaryKey;type:varchar(36)"`
	UserID      string   `gorm:"type:varchar(36);not null;index"`
	CategoryID  *string  `gorm:"type:varchar(36);index"`
	Title       string   `gorm:"size:100;not null"`
	Description *string  `gorm:"size:500"`
	Status      Status   `gorm:"size:16;not null;index"`
	Priority    Priority `gorm:"size:16;not null"`
	DueDate     *time.Time
	CreatedAt   time.Time `gorm:"autoCreateTime:false;index"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime:false"`
}

// TodoInput carries the fields of a new todo. Zero Status and Priority
// fall back to pending and medium.
type TodoInput struct {
	Title       string
	Description *string
	Status      Status
	Priority    Priority
	DueDate     *time.Time
	CategoryID  *string
}

// TodoPatch carries the fields of a partial todo update. Setting a pointer
// field to nil clears it.
type TodoPatch struct {
	Title       Field[string]
	Description Field[*string]
	Status      Field[Status]
	Priority    Field[Priority]
	DueDate     Field[*time.Time]
	CategoryID  Field[*string]
}

// Apply copies every present field onto t and reports whether anything was set.
func (p TodoPatch) Apply(t *Todo) bool {
	changed := p.Title.applyTo(&t.Title)
	changed = p.Description.applyTo(&t.Description) || changed
	changed = p.Status.applyTo(&t.Status) || changed
	changed = p.Priority.applyTo(&t.Priority) || changed
	changed = p.DueDate.applyTo(&t.DueDate) || changed
	changed = p.CategoryID.applyTo(&t.CategoryID) || changed
	return changed
}
