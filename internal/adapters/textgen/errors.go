package textgen

import "errors"

// Sentinel kinds for text-generation errors.
var (
	ErrInvokeFailed  = errors.New("model invoke failed")
	ErrEmptyResponse = errors.New("empty model response")
)
