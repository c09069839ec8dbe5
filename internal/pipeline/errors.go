package pipeline

import (
	"errors"
	"fmt"
)

// ErrHalted is returned by Tick after a stage has failed.
var ErrHalted = errors.New("pipeline halted after stage failure")

// StageError reports a failed stage update.
type StageError struct {
	Stage string
	Group Group
	Tick  int64
	Err   error
}

// Error implements the error interface.
func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s (%s) failed at tick %d: %v", e.Stage, e.Group, e.Tick, e.Err)
}

// Unwrap returns the stage's error.
func (e *StageError) Unwrap() error {
	return e.Err
}

// IsStageError reports whether err wraps a StageError.
func IsStageError(err error) bool {
	var se *StageError
	return errors.As(err, &se)
}
