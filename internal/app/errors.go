package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNoRecords  = errors.New("no records found")
	ErrStoreQuery = errors.New("store query failed")
)
