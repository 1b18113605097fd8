package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"todo-core/internal/apperr"
)

func translate(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperr.Duplicate(op + ": duplicate key")
	case apperr.IsDomain(err):
		return err
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
