package instances

import "errors"

var (
	// ErrNotFound is returned when an instance does not exist.
	ErrNotFound = errors.New("instance not found")

	// ErrInvalidName is returned for names the hypervisor would reject.
	ErrInvalidName = errors.New("invalid instance name")

	// ErrInvalidRequest is returned when a provisioning request fails validation.
	ErrInvalidRequest = errors.New("invalid request")
)
