package repositories

import (
	"errors"
	"fmt"

	"motoloans/models"

	"gorm.io/gorm"
)

// translateError переводит ошибки gorm в доменные ошибки
func translateError(err error, entity, id string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return models.NewNotFoundError(entity, id)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return models.NewConflictError("%s violates a uniqueness constraint", entity)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return models.NewConflictError("%s is referenced by or references missing records", entity)
	default:
		return fmt.Errorf("%s storage error: %w", entity, err)
	}
}
