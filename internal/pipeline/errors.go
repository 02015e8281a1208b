package pipeline

import (
	"errors"
	"fmt"
)

// Failure categories for a render. The API layer maps ErrInvalidInput to a
// client error; everything else is a system fault. Wrapped with %w so
// callers can test with errors.Is.
var (
	ErrInvalidInput = errors.New("invalid render input")
	ErrComposition  = errors.New("composition failed")
	ErrMix          = errors.New("audio mix failed")
	ErrExport       = errors.New("export failed")
)

func invalidInput(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func compositionErr(err error) error {
	return fmt.Errorf("%w: %v", ErrComposition, err)
}

func mixErr(err error) error {
	return fmt.Errorf("%w: %v", ErrMix, err)
}

func exportErr(err error) error {
	return fmt.Errorf("%w: %v", ErrExport, err)
}
