package extract

import "errors"

var (
	// ErrUnsupportedFormat is returned when a file does not match the layout of
	// the extractor it was handed to.
	ErrUnsupportedFormat = errors.New("unsupported session format")
	// ErrMissingRow is returned when a valid store has an empty sessions table.
	ErrMissingRow = errors.New("session store has no sessions row")
	// ErrIncompleteRow is returned when the sessions row lacks a field the
	// canonical record needs.
	ErrIncompleteRow = errors.New("sessions row is incomplete")
)
