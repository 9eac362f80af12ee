// Package validation turns tagged request structs into either a valid value or
// a list of field errors before any service is invoked.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const (
	maxIntegerDigits  = 15
	maxFractionDigits = 2
)

// FieldError describes one failed constraint.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// Result is either a valid Value or a non-empty list of Errors.
type Result[T any] struct {
	Value  T
	Errors []FieldError
}

// Valid reports whether the value passed every constraint.
func (r Result[T]) Valid() bool {
	return len(r.Errors) == 0
}

// Message returns the first error message, mirroring how single-message error
// bodies are rendered.
func (r Result[T]) Message() string {
	if r.Valid() {
		return ""
	}
	return r.Errors[0].Message
}

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
		v.RegisterCustomTypeFunc(func(field reflect.Value) any {
			if d, ok := field.Interface().(decimal.Decimal); ok {
				return d.String()
			}
			return nil
		}, decimal.Decimal{})
		_ = v.RegisterValidation("money", validateMoney)
		validate = v
	})
	return validate
}

// Check validates v against its `validate` tags.
func Check[T any](v T) Result[T] {
	err := instance().Struct(v)
	if err == nil {
		return Result[T]{Value: v}
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return Result[T]{Errors: []FieldError{{Rule: "invalid", Message: err.Error()}}}
	}

	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{
			Field:   fe.Field(),
			Rule:    fe.Tag(),
			Message: message(fe),
		})
	}
	return Result[T]{Errors: out}
}

// validateMoney accepts positive decimals with up to 15 integer and 2 fraction digits.
func validateMoney(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())
	if err != nil || !d.IsPositive() {
		return false
	}
	if !d.Equal(d.Truncate(maxFractionDigits)) {
		return false
	}
	return len(d.Truncate(0).String()) <= maxIntegerDigits
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "required_without":
		return fmt.Sprintf("%s is required", fe.Field())
	case "money":
		return fmt.Sprintf("%s must be positive with at most %d integer and %d fraction digits", fe.Field(), maxIntegerDigits, maxFractionDigits)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param())
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters", fe.Field(), fe.Param())
	case "numeric":
		return fmt.Sprintf("%s must contain only digits", fe.Field())
	case "uuid":
		return fmt.Sprintf("%s must be a valid UUID", fe.Field())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}
