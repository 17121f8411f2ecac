package document

import (
	"errors"
	"fmt"
)

// ErrBadConfig is returned when a Config does not describe a usable canvas.
var ErrBadConfig = errors.New("document: invalid canvas size")

// FormatError is returned when an envelope fails validation. Nothing has been
// decoded when it is returned.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return "document: " + e.Reason
}

func formatErrorf(format string, a ...interface{}) error {
	return &FormatError{Reason: fmt.Sprintf(format, a...)}
}

// DecodeError is returned when an envelope is valid but its pixels cannot be
// decoded. Err is the underlying codec error, if any.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err == nil {
		return "document: " + e.Reason
	}
	return "document: " + e.Reason + ": " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func decodeError(reason string, err error) error {
	return &DecodeError{Reason: reason, Err: err}
}

// DimensionMismatchError is returned when an envelope declares a canvas size
// different from the session's.
type DimensionMismatchError struct {
	Width      int
	Height     int
	WantWidth  int
	WantHeight int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("document: canvas is %dx%d, expected %dx%d", e.Width, e.Height, e.WantWidth, e.WantHeight)
}
