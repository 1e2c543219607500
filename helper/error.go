package helper

import "fmt"

// NewError wraps err with the operation that failed, so callers logging or
// comparing errors up the stack can see both without parsing a message.
func NewError(operation string, err error) error {
	return fmt.Errorf("%s: %w", operation, err)
}
