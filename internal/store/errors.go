package store

import "errors"

// Predefined errors for store operations
var (
	ErrProductNotFound = errors.New("store: product not found")
)
