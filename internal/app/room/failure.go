package room

import (
	"errors"
	"fmt"
	"strings"
)

// Category classifies a rejected room operation for the boundary layer.
type Category int

const (
	// CategoryNotFound means the referenced caller or target does not exist.
	CategoryNotFound Category = iota + 1

	// CategoryForbidden means the caller may not act on the target.
	CategoryForbidden

	// CategoryBadRequest means the request is authorized but invalid in the current state.
	CategoryBadRequest
)

func (c Category) String() string {
	switch c {
	case CategoryNotFound:
		return "not found"
	case CategoryForbidden:
		return "forbidden"
	case CategoryBadRequest:
		return "bad request"
	default:
		return "unknown"
	}
}

// FieldError ties a message to the request field that caused it.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Failure is a categorised rejection carrying one or more field errors.
type Failure struct {
	Category Category
	Errors   []FieldError

	// Defect is set when the rejection comes from inconsistent stored data
	// rather than from anything the caller did.
	Defect bool
}

func (f *Failure) Error() string {
	parts := make([]string, 0, len(f.Errors))
	for _, e := range f.Errors {
		if e.Field == "" {
			parts = append(parts, e.Message)
			continue
		}
		parts = append(parts, e.Field+": "+e.Message)
	}
	return fmt.Sprintf("%s: %s", f.Category, strings.Join(parts, "; "))
}

// HasField reports whether any field error is tagged with field.
func (f *Failure) HasField(field string) bool {
	for _, e := range f.Errors {
		if e.Field == field {
			return true
		}
	}
	return false
}

func newFailure(c Category, field, message string) *Failure {
	return &Failure{
		Category: c,
		Errors:   []FieldError{{Field: field, Message: message}},
	}
}

// NotFound builds a CategoryNotFound failure for a single field.
func NotFound(field, message string) *Failure {
	return newFailure(CategoryNotFound, field, message)
}

// Forbidden builds a CategoryForbidden failure for a single field.
func Forbidden(field, message string) *Failure {
	return newFailure(CategoryForbidden, field, message)
}

// BadRequest builds a CategoryBadRequest failure for a single field.
func BadRequest(field, message string) *Failure {
	return newFailure(CategoryBadRequest, field, message)
}

// AsFailure extracts a *Failure from err's chain.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}
