package alert

import "errors"

// Sentinel kinds for alert errors.
var (
	ErrPublishFailed = errors.New("alert publish failed")
)
