package gpucache

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	ErrMissingField   = errors.New("gpucache: request field not set")
	ErrDuplicateField = errors.New("gpucache: request field set twice")
	ErrUnknownField   = errors.New("gpucache: unknown request field")
	ErrFieldType      = errors.New("gpucache: request field type mismatch")
)

// FieldError reports a builder misuse for one field of a request type.
type FieldError struct {
	Request reflect.Type
	Field   string
	Err     error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%v: %s.%s", e.Err, e.Request, e.Field)
}

func (e *FieldError) Unwrap() error { return e.Err }
