package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration covers missing/invalid templates and unknown
	// namespaces. Never retried.
	ErrConfiguration = errors.New("configuration error")
	// ErrProvider covers embedding/index/completion transport and auth
	// failures. Aborts the current query.
	ErrProvider = errors.New("provider error")
	// ErrNoMatchingTopic is the router's sentinel for choice 0.
	ErrNoMatchingTopic = errors.New("no matching topic")

	ErrDocumentNotFound = errors.New("document not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrTemporary        = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
