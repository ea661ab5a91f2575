package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrInvalidLimit  = errors.New("invalid query limit")
	ErrCorruptRecord = errors.New("corrupt stored record")
)
