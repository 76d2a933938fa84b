package shop

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

var (
	ErrUnknownItem      = errors.New("shop: unknown item")
	ErrAlreadyOwned     = errors.New("shop: item already owned")
	ErrPurchaseDeclined = errors.New("shop: purchase declined")
)

// FieldError is a problem with one order form field
type FieldError struct {
	Field string
	Error string
}

// ValidationError lists every invalid field of an order form
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = fmt.Sprintf("%s: %s", f.Field, f.Error)
	}
	return "invalid order: " + strings.Join(parts, "; ")
}

// newValidationError flattens validator errors into field errors, translated
// to English and sorted by field name.
func newValidationError(errs validator.ValidationErrors) *ValidationError {
	ve := &ValidationError{}
	for _, fe := range errs {
		ve.Fields = append(ve.Fields, FieldError{Field: fe.Field(), Error: fe.Translate(Translator)})
	}
	sort.SliceStable(ve.Fields, func(i, j int) bool { return ve.Fields[i].Field < ve.Fields[j].Field })
	return ve
}
