package format

import "errors"

// Conversion failures. Every one of them aborts the build; callers match
// them with errors.Is.
var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrDirectoryTooLarge = errors.New("directory too large")
	ErrNotAFile          = errors.New("not a regular file")
	ErrFileTooLarge      = errors.New("file too large")
	ErrNameTooLong       = errors.New("name too long")
	ErrInvalidName       = errors.New("invalid name")

	// internal invariant violations
	ErrEncodingSizeMismatch = errors.New("encoded block size mismatch")
	ErrUnresolvedPath       = errors.New("unresolved subdirectory path")

	// ErrCorruptBlock is returned by Decode.
	ErrCorruptBlock = errors.New("corrupt block")
)
