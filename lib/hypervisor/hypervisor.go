// Package hypervisor defines the boundary between kc2 and the system that
// actually runs instances.
package hypervisor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kc2/kc2/lib/ordered"
)

var (
	// ErrNotFound is returned when the hypervisor has no instance by that name.
	ErrNotFound = errors.New("instance not found")

	// ErrUnknownInstanceType is returned for an instance type token that is
	// neither container nor virtual-machine.
	ErrUnknownInstanceType = errors.New("unknown instance type")
)

// InstanceType is the kind of instance the hypervisor runs.
type InstanceType string

const (
	TypeContainer      InstanceType = "container"
	TypeVirtualMachine InstanceType = "virtual-machine"
)

func ParseInstanceType(s string) (InstanceType, error) {
	switch InstanceType(s) {
	case TypeContainer, TypeVirtualMachine:
		return InstanceType(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownInstanceType, s)
	}
}

// Run states as reported by the hypervisor.
const (
	StatusRunning = "Running"
	StatusStopped = "Stopped"
)

// Instance is the hypervisor's view of an instance.
type Instance struct {
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Status      string            `json:"status"`
	StatusCode  int               `json:"status_code,omitempty"`
	Type        InstanceType      `json:"type"`
	Location    string            `json:"location,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	Config      map[string]string `json:"config,omitempty"`
}

// InstanceState is the live state of an instance.
type InstanceState struct {
	Status     string `json:"status"`
	StatusCode int    `json:"status_code,omitempty"`
	// Network is keyed by interface name, in the order the hypervisor reported.
	Network ordered.Map[NetworkState] `json:"network,omitempty"`
}

type NetworkState struct {
	Type      string           `json:"type"`
	State     string           `json:"state,omitempty"`
	HWAddr    string           `json:"hwaddr,omitempty"`
	Addresses []NetworkAddress `json:"addresses"`
}

type NetworkAddress struct {
	Family  string `json:"family"`
	Address string `json:"address"`
	Netmask string `json:"netmask"`
	Scope   string `json:"scope,omitempty"`
}

// ImageSource tells the hypervisor where to pull an instance's image from.
type ImageSource struct {
	Type     string `json:"type"`
	Mode     string `json:"mode,omitempty"`
	Server   string `json:"server,omitempty"`
	Protocol string `json:"protocol,omitempty"`
	Alias    string `json:"alias,omitempty"`
}

// SimplestreamsSource returns a pull source for an alias on a simplestreams server.
func SimplestreamsSource(server, alias string) ImageSource {
	return ImageSource{
		Type:     "image",
		Mode:     "pull",
		Server:   server,
		Protocol: "simplestreams",
		Alias:    alias,
	}
}

type CreateRequest struct {
	Name   string            `json:"name"`
	Type   InstanceType      `json:"type"`
	Source ImageSource       `json:"source"`
	Config map[string]string `json:"config,omitempty"`
}

// StateAction is a run-state change.
type StateAction string

const (
	ActionStart   StateAction = "start"
	ActionStop    StateAction = "stop"
	ActionRestart StateAction = "restart"
)

// ExecResult is the outcome of a command run inside an instance.
type ExecResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Client is the hypervisor API kc2 depends on. Mutating calls return once
// the hypervisor has finished the operation.
type Client interface {
	ListInstances(ctx context.Context) ([]Instance, error)
	GetInstance(ctx context.Context, name string) (*Instance, error)
	GetInstanceState(ctx context.Context, name string) (*InstanceState, error)
	CreateInstance(ctx context.Context, req CreateRequest) error
	UpdateInstanceState(ctx context.Context, name string, action StateAction) error
	DeleteInstance(ctx context.Context, name string) error
	Exec(ctx context.Context, name string, argv []string) (*ExecResult, error)
}
