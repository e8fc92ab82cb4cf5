package receipt

import "errors"

var (
	// ErrUnsupportedType is returned for file extensions other than
	// pdf, jpg, jpeg and png.
	ErrUnsupportedType = errors.New("unsupported receipt file type")

	// ErrUnreadable is returned when a file of an accepted type cannot
	// be parsed.
	ErrUnreadable = errors.New("receipt file is unreadable")
)
