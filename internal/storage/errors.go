package storage

import (
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("not found")

// StorageError wraps a record store read/write failure. It is logged where
// it occurs and propagated to the invoking workflow without retry.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
