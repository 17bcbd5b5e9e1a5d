package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Entity описывает сущность, хранимую через репозиторий
type Entity interface {
	GetID() string
	EntityName() string
}

// Base содержит общие поля всех сущностей
type Base struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	CreatedAt time.Time `json:"createdAt" gorm:"column:created_at;not null"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"column:updated_at;not null"`
}

// GetID возвращает идентификатор сущности
func (b Base) GetID() string {
	return b.ID
}

// BeforeCreate присваивает UUID, если идентификатор не задан
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}
