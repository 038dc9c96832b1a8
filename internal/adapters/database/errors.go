package database

import "errors"

// Sentinel kinds for connection errors.
var (
	ErrUnsupportedDriver = errors.New("unsupported database driver")
	ErrConnect           = errors.New("database connect failed")
)
