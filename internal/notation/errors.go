package notation

import (
	"errors"
	"fmt"
)

var (
	// ErrParse is the sentinel behind every ParseError.
	ErrParse = errors.New("parse error")
	// ErrSpatial is the sentinel behind every SpatialError.
	ErrSpatial = errors.New("spatial error")
	// ErrRhythm is the sentinel behind every RhythmError.
	ErrRhythm = errors.New("rhythm error")
)

// ParseError reports malformed input. Line and Column are 1-based.
type ParseError struct {
	Line    int
	Column  int
	Message string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d, column %d: %s", e.Line, e.Column, e.Message)
	}
	return e.Message
}

func (e *ParseError) Unwrap() error { return ErrParse }

// ParseErrorAt builds a ParseError from a 0-based column position.
func ParseErrorAt(pos Position, format string, args ...any) *ParseError {
	return &ParseError{Line: pos.Line, Column: pos.Column + 1, Message: fmt.Sprintf(format, args...)}
}

// SpatialError reports a document or option the spatial stage cannot work
// with.
type SpatialError struct {
	Message string
}

func (e *SpatialError) Error() string { return e.Message }

func (e *SpatialError) Unwrap() error { return ErrSpatial }

type RhythmError struct {
	Message string
}

func (e *RhythmError) Error() string { return e.Message }

func (e *RhythmError) Unwrap() error { return ErrRhythm }
