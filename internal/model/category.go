package model

import "time"

// DefaultCategoryColor is used when a category is created without a color.
const DefaultCategoryColor = "#6B7280"

// Category is a per-user named, colored tag for todos.
type Category struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)"`
	UserID      string    `gorm:"type:varchar(36);not null;index;uniqueIndex:idx_user_category_name"`
	Name        string    `gorm:"size:30;not null;uniqueIndex:idx_user_category_name"`
	Color       string    `gorm:"size:7;not null"`
	Description *string   `gorm:"size:200"`
	CreatedAt   time.Time `gorm:"autoCreateTime:false"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime:false"`

	// TodoCount is derived on read and never stored.
	TodoCount int `gorm:"-"`
}

// CategorySeed describes one of the categories every user starts with.
type CategorySeed struct {
	Name        string
	Color       string
	Description string
}

// DefaultCategories are seeded when a user's category list is empty.
var DefaultCategories = []CategorySeed{
	{Name: "Work", Color: "#1976d2", Description: "Work-related tasks"},
	{Name: "Personal", Color: "#388e3c", Description: "Personal tasks"},
	{Name: "Shopping", Color: "#f57c00", Description: "Things to buy"},
	{Name: "Other", Color: "#7b1fa2", Description: "Uncategorized tasks"},
}

// CategoryPatch carries the fields of a partial category update.
type CategoryPatch struct {
	Name        Field[string]
	Color       Field[string]
	Description Field[*string]
}

// Apply copies every present field onto c and reports whether anything was set.
func (p CategoryPatch) Apply(c *Category) bool {
	changed := p.Name.applyTo(&c.Name)
	changed = p.Color.applyTo(&c.Color) || changed
	changed = p.Description.applyTo(&c.Description) || changed
	return changed
}
