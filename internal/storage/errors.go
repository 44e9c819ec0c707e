package storage

import "errors"

// ErrRunNotFound is returned when a run id has no record.
var ErrRunNotFound = errors.New("run not found")
