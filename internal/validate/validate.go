// internal/validate/validate.go
// Package validate holds the invalid-input error shared by every calculator
// and translates struct-tag validation failures into it.
package validate

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidInput is matched by every *InputError through errors.Is.
var ErrInvalidInput = errors.New("invalid input")

// InputError reports a single field that failed validation.
type InputError struct {
	Field  string
	Reason string
}

// Error implements the error interface.
func (e *InputError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid input: %s", e.Reason)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is lets errors.Is(err, ErrInvalidInput) succeed for any InputError.
func (e *InputError) Is(target error) bool {
	return target == ErrInvalidInput
}

// Errorf builds an InputError for field with a formatted reason.
func Errorf(field, format string, args ...any) *InputError {
	return &InputError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

var inputValidate *validator.Validate

func init() {
	inputValidate = validator.New()
	inputValidate.RegisterTagNameFunc(jsonName)
	_ = inputValidate.RegisterValidation("finite", validateFinite)
}

// jsonName reports fields by their wire name so errors match scenario files.
func jsonName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return lowerFirst(fld.Name)
	}
	return name
}

// validateFinite rejects NaN and infinite floats.
func validateFinite(fl validator.FieldLevel) bool {
	switch fl.Field().Kind() {
	case reflect.Float32, reflect.Float64:
		v := fl.Field().Float()
		return !math.IsNaN(v) && !math.IsInf(v, 0)
	default:
		return true
	}
}

// Struct checks s against its `validate` tags. The first violation is
// returned as an InputError whose field is prefix.<json name>.
func Struct(prefix string, s any) error {
	return translate(prefix, inputValidate.Struct(s))
}

// Value checks a single value against a tag expression such as "gt=0,lt=1".
func Value(field string, v any, tag string) error {
	return translate(field, inputValidate.Var(v, tag))
}

func translate(prefix string, err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return Errorf(prefix, "%v", err)
	}
	fe := verrs[0]
	field := prefix
	if name := fe.Field(); name != "" {
		if field != "" {
			field += "."
		}
		field += name
	}
	return &InputError{Field: field, Reason: reason(fe)}
}

// reason renders a FieldError as a sentence.
func reason(fe validator.FieldError) string {
	got := fe.Value()
	switch fe.Tag() {
	case "finite":
		return fmt.Sprintf("must be a finite number, got %v", got)
	case "required":
		return "is required"
	case "gt":
		return fmt.Sprintf("must be greater than %s, got %v", fe.Param(), got)
	case "gte":
		return fmt.Sprintf("must be at least %s, got %v", fe.Param(), got)
	case "lt":
		return fmt.Sprintf("must be less than %s, got %v", fe.Param(), got)
	case "lte":
		return fmt.Sprintf("must be at most %s, got %v", fe.Param(), got)
	case "gtfield":
		return fmt.Sprintf("must be greater than %s, got %v", lowerFirst(fe.Param()), got)
	default:
		return fmt.Sprintf("failed the %s check, got %v", fe.Tag(), got)
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}
