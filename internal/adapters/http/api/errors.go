package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrBadRequest    = errors.New("bad request")
	ErrMissingHealth = errors.New("invalid or missing health data")
	ErrMissingUserID = errors.New("missing short_user_id")
)
