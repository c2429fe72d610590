package report

import "errors"

var (
	// ErrUnknownFormat is returned for an unsupported output format
	ErrUnknownFormat = errors.New("unknown report format")

	// ErrUnknownThreshold is returned for an unsupported fail-on threshold
	ErrUnknownThreshold = errors.New("unknown fail-on threshold")

	// ErrPublishFailed is returned when a report cannot be written to its
	// destination
	ErrPublishFailed = errors.New("publish failed")
)
