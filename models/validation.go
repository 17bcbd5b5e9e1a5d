package models

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = NewValidator()

// NewValidator создает валидатор, понимающий decimal.Decimal и json-имена полей
func NewValidator() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})

	// decimal сравнивается по числовому значению (gt=0 и т.п.)
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	return v
}

// ValidateStruct проверяет структуру и возвращает первую ошибку как ValidationError
func ValidateStruct(s interface{}) error {
	return TranslateValidation(validate.Struct(s))
}

// TranslateValidation переводит ошибки validator в ValidationError
func TranslateValidation(err error) error {
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return err
	}

	e := validationErrors[0]
	var message string
	switch e.Tag() {
	case "required":
		message = "is required"
	case "gt":
		message = "must be greater than " + e.Param()
	case "gte":
		message = "must be greater than or equal to " + e.Param()
	case "lte":
		message = "must be less than or equal to " + e.Param()
	case "min":
		message = "must be at least " + e.Param() + " long"
	case "max":
		message = "must be at most " + e.Param() + " long"
	case "oneof":
		message = "must be one of: " + e.Param()
	case "dive":
		message = "contains an invalid value"
	default:
		message = "failed on " + e.Tag()
	}

	return NewValidationError(e.Field(), message)
}
