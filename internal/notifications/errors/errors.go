package errors

import "errors"

var (
	ErrNotFound = errors.New("notification not found")

	ErrInvalidID = errors.New("invalid notification ID format")

	ErrRecipientNotFound = errors.New("user not found in notification recipients")
)
