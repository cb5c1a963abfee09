package directory

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("directory: not found")
	ErrAlreadyExists = errors.New("directory: already exists")
	ErrInvalidInput  = errors.New("directory: invalid input")

	// ErrProvisioning marks tenant/membership creation failures. Callers
	// must never absorb it into a fabricated tenant id.
	ErrProvisioning = errors.New("directory: tenant provisioning failed")
)

// ProvisioningError wraps the cause of a failed bootstrap step.
type ProvisioningError struct {
	Step string // "lookup", "create_tenant", "create_membership"
	Err  error
}

func (e *ProvisioningError) Error() string {
	return fmt.Sprintf("provisioning %s: %v", e.Step, e.Err)
}

func (e *ProvisioningError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrProvisioning) match any provisioning failure.
func (e *ProvisioningError) Is(target error) bool { return target == ErrProvisioning }
