package instances

import (
	"time"

	"github.com/kc2/kc2/lib/hypervisor"
)

// ProvisioningStatus is derived from the hypervisor run state and the
// in-guest cloud-init status. It is never stored.
type ProvisioningStatus string

const (
	StatusPending ProvisioningStatus = "pending" // Running, cloud-init still executing
	StatusRunning ProvisioningStatus = "running"
	StatusStopped ProvisioningStatus = "stopped"
	StatusUnknown ProvisioningStatus = "unknown" // Run state could not be read
)

// CloudInitStatus is the result of probing cloud-init inside a guest.
type CloudInitStatus string

const (
	CloudInitRunning       CloudInitStatus = "running"
	CloudInitDone          CloudInitStatus = "done"
	CloudInitIndeterminate CloudInitStatus = "indeterminate"
)

// Address is an IPv4 address assigned to a non-loopback interface.
type Address struct {
	Address string `json:"address"`
	Netmask string `json:"netmask"`
}

// InstanceInfo is a read-only view of an instance.
type InstanceInfo struct {
	Name               string                  `json:"name"`
	Status             string                  `json:"status"`
	Type               hypervisor.InstanceType `json:"type"`
	Addresses          []Address               `json:"addresses"`
	ProvisioningStatus ProvisioningStatus      `json:"provisioning_status"`
	Location           string                  `json:"location,omitempty"`
	CreatedAt          *time.Time              `json:"created_at,omitempty"`
}

// ProvisionRequest is a request to create an instance from a catalog image.
type ProvisionRequest struct {
	Name string
	// Image is a "{remote}:{alias}" selector.
	Image    string
	Type     hypervisor.InstanceType
	VCPU     *int
	MemoryMB *int
	Username string
	Password string
}
