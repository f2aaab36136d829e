package task

import "errors"

var (
	ErrCapacity = errors.New("task store at capacity")
	ErrNotFound = errors.New("task not found")
)
