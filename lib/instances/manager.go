package instances

import (
	"context"
	"fmt"
	"time"

	"github.com/kc2/kc2/lib/cloudinit"
	"github.com/kc2/kc2/lib/hypervisor"
	"github.com/kc2/kc2/lib/images"
	"github.com/kc2/kc2/lib/passwd"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Manager observes instances and drives their lifecycle through the hypervisor.
type Manager interface {
	ListInstances(ctx context.Context) ([]InstanceInfo, error)
	Observe(ctx context.Context, name string) (*InstanceInfo, error)
	QueryCloudInit(ctx context.Context, name string) CloudInitStatus

	// Provision creates an instance and returns once the hypervisor has
	// created it. First boot continues in the guest afterwards.
	Provision(ctx context.Context, req ProvisionRequest) (*InstanceInfo, error)
	// Preview validates req and returns the boot document Provision would
	// use, without touching the hypervisor.
	Preview(ctx context.Context, req ProvisionRequest) (*cloudinit.Document, cloudinit.Limits, error)

	Start(ctx context.Context, name string) error
	Stop(ctx context.Context, name string) error
	Restart(ctx context.Context, name string) error
	Delete(ctx context.Context, name string) error
}

// Config holds instance manager settings.
type Config struct {
	CloudInitTimeout time.Duration
	// CreateTimeout bounds the hypervisor create, image download included.
	CreateTimeout time.Duration
	// MaxVCPU and MaxMemoryMB bound virtual machine limits. Zero means unbounded.
	MaxVCPU     int
	MaxMemoryMB int
}

type manager struct {
	hv          hypervisor.Client
	images      images.Manager
	synthesizer *cloudinit.Synthesizer
	hasher      passwd.Hasher

	cloudInitTimeout time.Duration
	createTimeout    time.Duration
	maxVCPU          int
	maxMemoryMB      int

	metrics *Metrics
}

// NewManager creates an instance manager. meter and tracer may be nil.
func NewManager(hv hypervisor.Client, imageManager images.Manager, synthesizer *cloudinit.Synthesizer, hasher passwd.Hasher, cfg Config, meter metric.Meter, tracer trace.Tracer) (Manager, error) {
	if cfg.CloudInitTimeout <= 0 {
		cfg.CloudInitTimeout = DefaultCloudInitTimeout
	}
	if cfg.CreateTimeout <= 0 {
		cfg.CreateTimeout = DefaultCreateTimeout
	}
	m := &manager{
		hv:               hv,
		images:           imageManager,
		synthesizer:      synthesizer,
		hasher:           hasher,
		cloudInitTimeout: cfg.CloudInitTimeout,
		createTimeout:    cfg.CreateTimeout,
		maxVCPU:          cfg.MaxVCPU,
		maxMemoryMB:      cfg.MaxMemoryMB,
	}

	if meter != nil {
		metrics, err := newInstanceMetrics(meter, tracer, m)
		if err != nil {
			return nil, fmt.Errorf("create instance metrics: %w", err)
		}
		m.metrics = metrics
	}
	return m, nil
}
