package ecs

import "errors"

// Core world errors
var (
	ErrEntityNotFound = errors.New("entity not found")
	ErrNilComponent   = errors.New("nil component")
)
