package errors

import "errors"

var (
	ErrNotFound = errors.New("equipment not found")

	ErrInvalidID = errors.New("invalid equipment ID format")

	ErrDuplicate = errors.New("equipment with this item number already exists")

	ErrVersionConflict = errors.New("equipment was modified concurrently")
)
