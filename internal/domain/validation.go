package domain

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationError is returned for malformed or out-of-range input. It is
// always produced before any storage access.
type ValidationError struct {
	Fields []FieldError
}

func NewValidationError(field, code, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Code: code, Message: message}}}
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

var validate = newValidator()

type optionalValue interface {
	validationValue() interface{}
}

func newValidator() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(sf reflect.StructField) string {
		name := strings.SplitN(sf.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return strings.ToLower(sf.Name)
		}
		return name
	})

	// Unset optionals validate as nil so that omitempty skips them.
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if o, ok := field.Interface().(optionalValue); ok {
			return o.validationValue()
		}
		return nil
	}, Optional[string]{}, Optional[float64]{})

	return v
}

func validateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return NewValidationError("", "INVALID", err.Error())
	}

	out := &ValidationError{Fields: make([]FieldError, 0, len(ve))}
	for _, f := range ve {
		code := "INVALID_" + strings.ToUpper(f.Tag())
		if f.Param() != "" {
			code += "|" + f.Param()
		}
		out.Fields = append(out.Fields, FieldError{
			Field:   f.Field(),
			Code:    code,
			Message: fieldMessage(f),
		})
	}
	return out
}

func fieldMessage(f validator.FieldError) string {
	switch f.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", f.Field())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", f.Field(), f.Param())
	case "min":
		if f.Param() == "1" {
			return fmt.Sprintf("%s must not be empty", f.Field())
		}
		return fmt.Sprintf("%s must be at least %s characters", f.Field(), f.Param())
	default:
		return fmt.Sprintf("%s failed on the '%s' rule", f.Field(), f.Tag())
	}
}
