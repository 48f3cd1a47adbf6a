package repositories

import "errors"

// Sentinel errors returned when a referenced row does not exist. Handlers
// match on these with errors.Is to produce 404 responses.
var (
	ErrProductNotFound = errors.New("product not found")
	ErrOrderNotFound   = errors.New("order not found")
)
