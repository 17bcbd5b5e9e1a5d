package repositories

import (
	"context"

	"motoloans/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormRepository реализует Repository поверх gorm
type GormRepository[T models.Entity] struct {
	db *gorm.DB
}

// NewGormRepository создает репозиторий для сущности T
func NewGormRepository[T models.Entity](db *gorm.DB) *GormRepository[T] {
	return &GormRepository[T]{db: db}
}

func (r *GormRepository[T]) entityName() string {
	var zero T
	return zero.EntityName()
}

// Get возвращает сущность по ID
func (r *GormRepository[T]) Get(ctx context.Context, id string) (*T, error) {
	var entity T
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&entity).Error; err != nil {
		return nil, translateError(err, r.entityName(), id)
	}
	return &entity, nil
}

// FindMany возвращает сущности по фильтру с сортировкой и пагинацией
func (r *GormRepository[T]) FindMany(ctx context.Context, query Query) ([]T, error) {
	var entities []T
	if err := applyQuery(r.db.WithContext(ctx), query).Find(&entities).Error; err != nil {
		return nil, translateError(err, r.entityName(), "")
	}
	return entities, nil
}

// Count возвращает количество сущностей по фильтру
func (r *GormRepository[T]) Count(ctx context.Context, filter Filter) (int64, error) {
	var count int64
	var model T
	tx := r.db.WithContext(ctx).Model(&model)
	if len(filter) > 0 {
		tx = tx.Where(map[string]interface{}(filter))
	}
	if err := tx.Count(&count).Error; err != nil {
		return 0, translateError(err, r.entityName(), "")
	}
	return count, nil
}

// Create сохраняет новую сущность
func (r *GormRepository[T]) Create(ctx context.Context, entity *T) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(entity).Error; err != nil {
		return translateError(err, r.entityName(), (*entity).GetID())
	}
	return nil
}

// Update перезаписывает все поля существующей сущности
func (r *GormRepository[T]) Update(ctx context.Context, entity *T) error {
	id := (*entity).GetID()
	if id == "" {
		return models.NewValidationError("id", "is required")
	}
	result := r.db.WithContext(ctx).Model(entity).
		Select("*").
		Omit("id", "created_at", clause.Associations).
		Updates(entity)
	if result.Error != nil {
		return translateError(result.Error, r.entityName(), id)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError(r.entityName(), id)
	}
	return nil
}

// Delete удаляет сущность по ID
func (r *GormRepository[T]) Delete(ctx context.Context, id string) error {
	var model T
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model)
	if result.Error != nil {
		return translateError(result.Error, r.entityName(), id)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError(r.entityName(), id)
	}
	return nil
}

func applyQuery(tx *gorm.DB, query Query) *gorm.DB {
	if len(query.Filter) > 0 {
		tx = tx.Where(map[string]interface{}(query.Filter))
	}
	if query.OrderBy != "" {
		tx = tx.Order(query.OrderBy)
	}
	if query.Limit > 0 {
		tx = tx.Limit(query.Limit)
	}
	if query.Offset > 0 {
		tx = tx.Offset(query.Offset)
	}
	return tx
}
