package store

import (
	"errors"
	"fmt"
)

// ErrNotFound matches any *NotFoundError via errors.Is.
var ErrNotFound = errors.New("not found")

// NotFoundError reports a ticker with no company row.
type NotFoundError struct {
	Symbol string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no company row found for ticker %s", e.Symbol)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}
