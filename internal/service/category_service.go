package service

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"todo-core/internal/apperr"
	"todo-core/internal/model"
	"todo-core/internal/repository"
)

const (
	maxCategoryNameLen        = 30
	maxCategoryDescriptionLen = 200
)

// CategoryInput represents data required to create a category. An empty
// Color falls back to model.DefaultCategoryColor.
type CategoryInput struct {
	Name        string
	Color       string
	Description *string
}

// CategoryService provides the owner-scoped category operations.
type CategoryService struct {
	repo repository.Categories
	log  *log.Logger
	now  func() time.Time
}

func NewCategoryService(repo repository.Categories, logger *log.Logger) *CategoryService {
	return &CategoryService{repo: repo, log: logger, now: time.Now}
}

func (s *CategoryService) Create(ctx context.Context, userID string, input CategoryInput) (*model.Category, error) {
	if input.Color == "" {
		input.Color = model.DefaultCategoryColor
	}
	now := stamp(s.now(), time.Time{})
	category := model.Category{
		ID:          uuid.NewString(),
		UserID:      userID,
		Name:        input.Name,
		Color:       input.Color,
		Description: input.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := validateCategory(&category); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, &category); err != nil {
		return nil, fail(s.log, "create category", err, "user_id", userID)
	}
	return &category, nil
}

// List returns the user's categories with todo counts. An empty list is
// replaced by the default categories, so a user never sees zero categories.
func (s *CategoryService) List(ctx context.Context, userID string) ([]model.Category, error) {
	categories, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fail(s.log, "list categories", err, "user_id", userID)
	}
	if len(categories) > 0 {
		return categories, nil
	}

	seeded, err := s.repo.SeedIfEmpty(ctx, userID, s.defaults(userID))
	switch {
	case errors.Is(err, apperr.ErrDuplicate):
		// A concurrent request seeded first.
	case err != nil:
		return nil, fail(s.log, "seed categories", err, "user_id", userID)
	case seeded:
		s.log.Info("seeded default categories", "user_id", userID, "count", len(model.DefaultCategories))
	}

	categories, err = s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fail(s.log, "list categories", err, "user_id", userID)
	}
	return categories, nil
}

func (s *CategoryService) defaults(userID string) []model.Category {
	base := s.now()
	seeds := make([]model.Category, 0, len(model.DefaultCategories))
	prev := time.Time{}
	for _, d := range model.DefaultCategories {
		// Distinct timestamps keep the seeded order under created_at sorting.
		created := stamp(base, prev)
		prev = created
		description := d.Description
		seeds = append(seeds, model.Category{
			ID:          uuid.NewString(),
			UserID:      userID,
			Name:        d.Name,
			Color:       d.Color,
			Description: &description,
			CreatedAt:   created,
			UpdatedAt:   created,
		})
	}
	return seeds
}

func (s *CategoryService) Get(ctx context.Context, userID, categoryID string) (*model.Category, error) {
	category, err := s.repo.FindByID(ctx, userID, categoryID)
	if err != nil {
		return nil, fail(s.log, "get category", err, "user_id", userID, "category_id", categoryID)
	}
	return category, nil
}

// Update applies the present fields of patch. Renaming onto another
// category's name fails with a duplicate error.
func (s *CategoryService) Update(ctx context.Context, userID, categoryID string, patch model.CategoryPatch) (*model.Category, error) {
	category, err := s.Get(ctx, userID, categoryID)
	if err != nil {
		return nil, err
	}
	if !patch.Apply(category) {
		return category, nil
	}
	if err := validateCategory(category); err != nil {
		return nil, err
	}

	category.UpdatedAt = stamp(s.now(), category.UpdatedAt)
	if err := s.repo.Update(ctx, category); err != nil {
		return nil, fail(s.log, "update category", err, "user_id", userID, "category_id", categoryID)
	}
	return category, nil
}

// Delete removes the category and detaches its todos. It reports false when
// the category does not exist or belongs to someone else.
func (s *CategoryService) Delete(ctx context.Context, userID, categoryID string) (bool, error) {
	deleted, err := s.repo.Delete(ctx, userID, categoryID)
	if err != nil {
		return false, fail(s.log, "delete category", err, "user_id", userID, "category_id", categoryID)
	}
	return deleted, nil
}

func validateCategory(c *model.Category) error {
	if err := checkLength("name", c.Name, 1, maxCategoryNameLen); err != nil {
		return err
	}
	if err := checkColor(c.Color); err != nil {
		return err
	}
	return checkOptionalLength("description", c.Description, maxCategoryDescriptionLen)
}
