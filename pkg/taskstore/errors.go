package taskstore

import "errors"

// ErrTaskNotFound is returned when a task id is not present in the store.
var ErrTaskNotFound = errors.New("task not found")
