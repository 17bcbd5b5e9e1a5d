package models

import (
	"errors"
	"fmt"
)

// ValidationError представляет ошибку проверки входных данных
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on field %s: %s", e.Field, e.Message)
}

// NewValidationError создает ошибку валидации для поля
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// NotFoundError возвращается, если сущность не найдена
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// NewNotFoundError создает ошибку отсутствия сущности
func NewNotFoundError(entity, id string) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

// ConflictError описывает конкурентное изменение или нарушение бизнес-правила
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return "conflict: " + e.Message
}

// NewConflictError создает ошибку конфликта
func NewConflictError(format string, args ...interface{}) *ConflictError {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// InvalidStateError возвращается, если операция недопустима для текущего статуса кредита
type InvalidStateError struct {
	Operation string
	Status    LoanStatus
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s loan in status %s", e.Operation, e.Status)
}

// NewInvalidStateError создает ошибку недопустимого состояния
func NewInvalidStateError(operation string, status LoanStatus) *InvalidStateError {
	return &InvalidStateError{Operation: operation, Status: status}
}

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target *ConflictError
	return errors.As(err, &target)
}

func IsInvalidState(err error) bool {
	var target *InvalidStateError
	return errors.As(err, &target)
}
