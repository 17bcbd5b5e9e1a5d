package models

import (
	"gorm.io/datatypes"
)

// Role представляет роль административной учетной записи
type Role string

const (
	RoleUser      Role = "USER"
	RoleAdmin     Role = "ADMIN"
	RoleModerator Role = "MODERATOR"
)

// Owner представляет административную учетную запись
type Owner struct {
	Base
	Username     string                     `json:"username" gorm:"column:username;uniqueIndex;not null;size:100" validate:"required,min=3,max=100"`
	PasswordHash string                     `json:"-" gorm:"column:password_hash;not null;size:100" validate:"required"`
	Roles        datatypes.JSONSlice[Role] `json:"roles" gorm:"column:roles" validate:"dive,oneof=USER ADMIN MODERATOR"`
}

func (Owner) TableName() string {
	return "owners"
}

func (Owner) EntityName() string {
	return "owner"
}

// Validate проверяет инварианты учетной записи
func (o *Owner) Validate() error {
	return ValidateStruct(o)
}

// HasRole проверяет наличие роли
func (o *Owner) HasRole(role Role) bool {
	for _, r := range o.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// NormalizeRoles убирает повторы, сохраняя порядок
func NormalizeRoles(roles []Role) datatypes.JSONSlice[Role] {
	seen := make(map[Role]struct{}, len(roles))
	result := make(datatypes.JSONSlice[Role], 0, len(roles))
	for _, r := range roles {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		result = append(result, r)
	}
	return result
}
