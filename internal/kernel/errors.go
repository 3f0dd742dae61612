package kernel

import "errors"

var (
	// ErrNoCrew indicates an operation that requires a loaded crew.
	ErrNoCrew = errors.New("no crew loaded")
	// ErrTaskNotFound indicates an unknown task ID.
	ErrTaskNotFound = errors.New("task not found")
)
