package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"todo-core/internal/apperr"
	"todo-core/internal/model"
)

// UserRepository handles CRUD for users.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
			return translate("find user", err)
		}
		if count > 0 {
			return apperr.Duplicate("email already registered")
		}
		if err := tx.Create(user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperr.Duplicate("email already registered")
			}
			return translate("create user", err)
		}
		return nil
	})
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, "email = ?", email)
}

func (r *UserRepository) FindByExternalID(ctx context.Context, externalID string) (*model.User, error) {
	return r.findOne(ctx, "external_id = ?", externalID)
}

func (r *UserRepository) findOne(ctx context.Context, cond string, arg any) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where(cond, arg).First(&user).Error; err != nil {
		return nil, translate("find user", err)
	}
	return &user, nil
}

func (r *UserRepository) Update(ctx context.Context, user *model.User) error {
	res := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", user.ID).Updates(map[string]any{
		"username":      user.Username,
		"password_hash": user.PasswordHash,
		"external_id":   user.ExternalID,
		"picture":       user.Picture,
		"is_active":     user.IsActive,
		"updated_at":    user.UpdatedAt,
	})
	if res.Error != nil {
		return translate("update user", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *UserRepository) ListAll(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := r.db.WithContext(ctx).Order("created_at ASC, id ASC").Find(&users).Error; err != nil {
		return nil, translate("list users", err)
	}
	return users, nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) (bool, error) {
	var deleted bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&model.Todo{}).Error; err != nil {
			return translate("delete user todos", err)
		}
		if err := tx.Where("user_id = ?", id).Delete(&model.Category{}).Error; err != nil {
			return translate("delete user categories", err)
		}
		res := tx.Where("id = ?", id).Delete(&model.User{})
		if res.Error != nil {
			return translate("delete user", res.Error)
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

func (r *UserRepository) DeleteAll(ctx context.Context) (int64, error) {
	var removed int64
	err := r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&model.Todo{}).Error; err != nil {
			return translate("clear todos", err)
		}
		if err := tx.Delete(&model.Category{}).Error; err != nil {
			return translate("clear categories", err)
		}
		res := tx.Delete(&model.User{})
		if res.Error != nil {
			return translate("clear users", res.Error)
		}
		removed = res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}
