package fsprobe

import "errors"

var (
	// ErrEmptyRoot is returned when no root directory is given
	ErrEmptyRoot = errors.New("fsprobe: empty root")

	// ErrNotDirectory is returned when the root is not a directory
	ErrNotDirectory = errors.New("fsprobe: root is not a directory")

	// ErrOutsideRoot is returned for paths that escape the root
	ErrOutsideRoot = errors.New("fsprobe: path outside root")

	// ErrEmptyPath is returned for an empty relative path
	ErrEmptyPath = errors.New("fsprobe: empty path")
)
