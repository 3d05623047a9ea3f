// Package domain holds sentinel errors and shared constants for the job
// filter engine.
package domain

import "errors"

var (
	// ErrBadQuery signals a filter query that failed to compile.
	ErrBadQuery = errors.New("invalid filter query")
	// ErrBadCursor signals a malformed or negative cursor.
	ErrBadCursor = errors.New("invalid cursor")
	// ErrUnknownState signals an unrecognized queue state.
	ErrUnknownState = errors.New("unknown queue state")
)
