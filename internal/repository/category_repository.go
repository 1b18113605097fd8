package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"todo-core/internal/apperr"
	"todo-core/internal/model"
)

// CategoryRepository manages todo categories.
type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

var errDuplicateName = apperr.Duplicate("category name already exists")

func (r *CategoryRepository) Create(ctx context.Context, category *model.Category) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureNameFree(tx, category.UserID, category.Name, ""); err != nil {
			return err
		}
		if err := tx.Create(category).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errDuplicateName
			}
			return translate("create category", err)
		}
		return nil
	})
}

func (r *CategoryRepository) SeedIfEmpty(ctx context.Context, userID string, seeds []model.Category) (bool, error) {
	var seeded bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Category{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
			return translate("count categories", err)
		}
		if count > 0 || len(seeds) == 0 {
			return nil
		}
		if err := tx.Create(&seeds).Error; err != nil {
			return translate("seed categories", err)
		}
		seeded = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return seeded, nil
}

func (r *CategoryRepository) ListByUser(ctx context.Context, userID string) ([]model.Category, error) {
	db := r.db.WithContext(ctx)
	var categories []model.Category
	if err := db.Where("user_id = ?", userID).Order("created_at ASC, id ASC").Find(&categories).Error; err != nil {
		return nil, translate("list categories", err)
	}
	counts, err := todoCounts(db, userID)
	if err != nil {
		return nil, err
	}
	for i := range categories {
		categories[i].TodoCount = counts[categories[i].ID]
	}
	return categories, nil
}

func (r *CategoryRepository) FindByID(ctx context.Context, userID, id string) (*model.Category, error) {
	db := r.db.WithContext(ctx)
	var category model.Category
	if err := db.Where("id = ? AND user_id = ?", id, userID).First(&category).Error; err != nil {
		return nil, translate("find category", err)
	}
	var count int64
	if err := db.Model(&model.Todo{}).Where("user_id = ? AND category_id = ?", userID, id).Count(&count).Error; err != nil {
		return nil, translate("count category todos", err)
	}
	category.TodoCount = int(count)
	return &category, nil
}

func (r *CategoryRepository) Update(ctx context.Context, category *model.Category) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureNameFree(tx, category.UserID, category.Name, category.ID); err != nil {
			return err
		}
		res := tx.Model(&model.Category{}).
			Where("id = ? AND user_id = ?", category.ID, category.UserID).
			Updates(map[string]any{
				"name":        category.Name,
				"color":       category.Color,
				"description": category.Description,
				"updated_at":  category.UpdatedAt,
			})
		if res.Error != nil {
			if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
				return errDuplicateName
			}
			return translate("update category", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.ErrNotFound
		}
		return nil
	})
}

func (r *CategoryRepository) Delete(ctx context.Context, userID, id string) (bool, error) {
	var deleted bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The row lock orders this delete against todo writes referencing it.
		switch err := lockOwnedCategory(tx, userID, id); {
		case errors.Is(err, errUnknownCategory):
			return nil
		case err != nil:
			return err
		}
		if err := tx.Model(&model.Todo{}).
			Where("user_id = ? AND category_id = ?", userID, id).
			Update("category_id", nil).Error; err != nil {
			return translate("detach todos", err)
		}
		if err := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&model.Category{}).Error; err != nil {
			return translate("delete category", err)
		}
		deleted = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

func ensureNameFree(tx *gorm.DB, userID, name, exceptID string) error {
	q := tx.Model(&model.Category{}).Where("user_id = ? AND name = ?", userID, name)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return translate("find category", err)
	}
	if count > 0 {
		return errDuplicateName
	}
	return nil
}

func todoCounts(db *gorm.DB, userID string) (map[string]int, error) {
	var rows []struct {
		CategoryID string
		N          int
	}
	err := db.Model(&model.Todo{}).
		Select("category_id, COUNT(*) AS n").
		Where("user_id = ? AND category_id IS NOT NULL", userID).
		Group("category_id").
		Scan(&rows).Error
	if err != nil {
		return nil, translate("count todos", err)
	}
	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.CategoryID] = row.N
	}
	return counts, nil
}
