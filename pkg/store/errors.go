package store

import "errors"

// ErrNotFound indicates the targeted record does not exist.
var ErrNotFound = errors.New("record not found")
