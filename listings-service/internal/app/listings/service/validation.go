package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"wanderlust/listings-service/internal/app/listings/entity"

	"github.com/go-playground/validator/v10"
)

// newValidator создает валидатор с правилом listing_category
// Имена полей в ошибках берутся из json тегов
func newValidator() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})

	_ = v.RegisterValidation("listing_category", func(fl validator.FieldLevel) bool {
		return entity.Category(fl.Field().String()).Valid()
	})

	return v
}

// validateStruct переводит ошибки validator в *ValidationError
func validateStruct(v *validator.Validate, s interface{}) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) || len(fieldErrors) == 0 {
		return &ValidationError{Message: err.Error()}
	}

	fe := fieldErrors[0]
	return &ValidationError{Field: fe.Field(), Message: describe(fe)}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.String {
			return "must not be empty"
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "listing_category":
		return fmt.Sprintf("must be one of %s", categoryList())
	default:
		return fmt.Sprintf("failed on '%s' rule", fe.Tag())
	}
}

func categoryList() string {
	names := make([]string, len(entity.Categories))
	for i, c := range entity.Categories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}
