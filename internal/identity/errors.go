package identity

import (
	"errors"
	"fmt"
)

var (
	ErrPoolNotFound  = errors.New("identity pool not found")
	ErrUsernameTaken = errors.New("username already taken")
)

// ProvisioningError wraps a pool creation failure (name collision, backend
// failure). The workflow surfaces it without retry or rollback.
type ProvisioningError struct {
	PoolName string
	Err      error
}

func (e *ProvisioningError) Error() string {
	return fmt.Sprintf("provisioning pool %q: %v", e.PoolName, e.Err)
}

func (e *ProvisioningError) Unwrap() error { return e.Err }

// AdmissionError wraps a failure to add a user to a pool.
type AdmissionError struct {
	PoolID   string
	Username string
	Err      error
}

func (e *AdmissionError) Error() string {
	return fmt.Sprintf("admitting %q into pool %s: %v", e.Username, e.PoolID, e.Err)
}

func (e *AdmissionError) Unwrap() error { return e.Err }
