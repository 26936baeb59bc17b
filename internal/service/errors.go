package service

import (
	"errors"
	"strings"
)

var (
	ErrNotFound              = errors.New("not found")
	ErrValidation            = errors.New("validation failed")
	ErrUnauthorizedOperation = errors.New("operation not permitted for this role")
	ErrEmailExists           = errors.New("email already exists")
	ErrPageExists            = errors.New("page already registered")
)

// ValidationError lists every problem found in one request. It matches
// ErrValidation under errors.Is.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return ErrValidation.Error() + ": " + strings.Join(e.Problems, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func (e *ValidationError) add(problem string) {
	e.Problems = append(e.Problems, problem)
}

func (e *ValidationError) orNil() error {
	if len(e.Problems) == 0 {
		return nil
	}
	return e
}
