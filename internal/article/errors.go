package article

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("article not found")
	ErrValidation = errors.New("validation failed")
)

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
