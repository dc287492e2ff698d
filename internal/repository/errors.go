package repository

import "errors"

// ErrNotFound is returned when a requested key does not exist in the store.
var ErrNotFound = errors.New("not found")

// ErrStorageUnavailable wraps backend failures (connection, timeout, query errors).
var ErrStorageUnavailable = errors.New("storage unavailable")
