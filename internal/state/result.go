package state

import (
	"errors"

	"github.com/nimasrn/card-gateway/internal/services"
)

// Result is the outcome of one action: either a value or an error.
type Result[T any] struct {
	Value T
	Err   error
}

func Ok[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

func Err[T any](err error) Result[T] {
	return Result[T]{Err: err}
}

func (r Result[T]) IsOk() bool {
	return r.Err == nil
}

// Unwrap returns the value and error as a regular Go pair.
func (r Result[T]) Unwrap() (T, error) {
	return r.Value, r.Err
}

// errorMessage is the user-facing text for err: the API message when the
// error is shaped, otherwise fallback.
func errorMessage(err error, fallback string) string {
	var apiErr *services.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if fallback != "" {
		return fallback
	}
	return err.Error()
}
