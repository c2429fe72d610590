package analyzer

import (
	"errors"
	"fmt"
)

var (
	// ErrArtifactParse is returned when an artifact file is not valid JSON
	ErrArtifactParse = errors.New("invalid artifact")

	// ErrAlreadyLoaded is returned when Load is called twice on one analyzer
	ErrAlreadyLoaded = errors.New("analyzer already loaded")

	// ErrNotLoaded is returned when a pass runs before Load
	ErrNotLoaded = errors.New("analyzer not loaded")

	// ErrUnknownGroup is returned by queries naming a group that was not loaded
	ErrUnknownGroup = errors.New("unknown group")
)

// ArtifactError describes an artifact that could not be decoded
type ArtifactError struct {
	Group string
	Kind  ArtifactKind
	Path  string
	Err   error
}

func (e *ArtifactError) Error() string {
	return fmt.Sprintf("%v: group %s: %s (%s): %v", ErrArtifactParse, e.Group, e.Kind, e.Path, e.Err)
}

// Unwrap exposes both ErrArtifactParse and the decoder error
func (e *ArtifactError) Unwrap() []error {
	return []error{ErrArtifactParse, e.Err}
}
