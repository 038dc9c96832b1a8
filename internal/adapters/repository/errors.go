package repository

import "errors"

// Sentinel kinds for score repository errors.
var (
	ErrQuery = errors.New("score query failed")
)
