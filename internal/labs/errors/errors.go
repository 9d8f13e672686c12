package errors

import "errors"

var (
	ErrNotFound = errors.New("lab not found")

	ErrInvalidID = errors.New("invalid lab ID format")

	ErrDuplicate = errors.New("lab with this name already exists")

	ErrVersionConflict = errors.New("lab was modified concurrently")
)
