package instances

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/kc2/kc2/lib/cloudinit"
	"github.com/kc2/kc2/lib/hypervisor"
	"github.com/kc2/kc2/lib/images"
	"github.com/kc2/kc2/lib/logger"
	"github.com/kc2/kc2/lib/passwd"
	"go.opentelemetry.io/otel/attribute"
)

// UserDataKey is the instance config key cloud-init reads user-data from.
const UserDataKey = "user.user-data"

// DefaultCreateTimeout bounds an instance create. The first create from an
// image waits for the hypervisor to download it.
const DefaultCreateTimeout = 10 * time.Minute

// Instance names must be valid hostnames: letters, digits and hyphens, at
// most 63 characters, starting with a letter and not ending with a hyphen.
var namePattern = regexp.MustCompile(`^[a-zA-Z]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?$`)

// Default user names follow useradd's conservative rules.
var usernamePattern = regexp.MustCompile(`^[a-z_][a-z0-9_-]{0,31}$`)

// ValidateName checks that name is usable as an instance name.
func ValidateName(name string) error {
	if !namePattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// prepared is a validated provisioning request with its boot document.
type prepared struct {
	selector images.Selector
	server   string
	itype    hypervisor.InstanceType
	doc      *cloudinit.Document
	limits   cloudinit.Limits
	userData string
}

// prepare validates req and synthesizes its boot document. The image selector
// is checked first so an unknown remote is rejected before anything else.
func (m *manager) prepare(ctx context.Context, req ProvisionRequest) (*prepared, error) {
	sel, err := images.ParseSelector(req.Image)
	if err != nil {
		return nil, err
	}
	server, err := m.images.RemoteURL(sel.Remote)
	if err != nil {
		return nil, err
	}

	if err := ValidateName(req.Name); err != nil {
		return nil, err
	}
	itype := req.Type
	if itype == "" {
		itype = hypervisor.TypeContainer
	}
	if _, err := hypervisor.ParseInstanceType(string(itype)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if err := m.validateResources(req); err != nil {
		return nil, err
	}
	if !usernamePattern.MatchString(req.Username) {
		return nil, fmt.Errorf("%w: invalid username %q", ErrInvalidRequest, req.Username)
	}
	if req.Password == "" {
		return nil, fmt.Errorf("%w: password is required", ErrInvalidRequest)
	}
	if len(req.Password) > passwd.MaxLength {
		return nil, fmt.Errorf("%w: password is %d bytes, at most %d are allowed", ErrInvalidRequest, len(req.Password), passwd.MaxLength)
	}

	hash, err := m.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	doc, limits := m.synthesizer.Synthesize(cloudinit.Request{
		Identity:     cloudinit.Identity{Username: req.Username, PasswordHash: hash},
		Remote:       sel.Remote,
		Alias:        sel.Alias,
		InstanceType: itype,
		VCPU:         req.VCPU,
		MemoryMB:     req.MemoryMB,
	})
	userData, err := doc.Render()
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).DebugContext(ctx, "synthesized boot document",
		"name", req.Name,
		"branch", cloudinit.ResolveBranch(sel.Remote, sel.Alias).String(),
		"limits", len(limits))

	return &prepared{
		selector: sel,
		server:   server,
		itype:    itype,
		doc:      doc,
		limits:   limits,
		userData: userData,
	}, nil
}

func (m *manager) validateResources(req ProvisionRequest) error {
	if req.VCPU != nil {
		if *req.VCPU < 1 {
			return fmt.Errorf("%w: vcpu must be positive", ErrInvalidRequest)
		}
		if m.maxVCPU > 0 && *req.VCPU > m.maxVCPU {
			return fmt.Errorf("%w: vcpu %d exceeds maximum %d", ErrInvalidRequest, *req.VCPU, m.maxVCPU)
		}
	}
	if req.MemoryMB != nil {
		if *req.MemoryMB < 1 {
			return fmt.Errorf("%w: memory must be positive", ErrInvalidRequest)
		}
		if m.maxMemoryMB > 0 && *req.MemoryMB > m.maxMemoryMB {
			return fmt.Errorf("%w: memory %dMB exceeds maximum %dMB", ErrInvalidRequest, *req.MemoryMB, m.maxMemoryMB)
		}
	}
	return nil
}

func (m *manager) Preview(ctx context.Context, req ProvisionRequest) (*cloudinit.Document, cloudinit.Limits, error) {
	p, err := m.prepare(ctx, req)
	if err != nil {
		return nil, nil, err
	}
	return p.doc, p.limits, nil
}

func (m *manager) Provision(ctx context.Context, req ProvisionRequest) (*InstanceInfo, error) {
	start := time.Now()
	log := logger.FromContext(ctx)

	ctx, span := m.metrics.startSpan(ctx, "Provision")
	defer span.End()

	p, err := m.prepare(ctx, req)
	if err != nil {
		log.InfoContext(ctx, "rejected provisioning request", "name", req.Name, "image", req.Image, "error", err)
		return nil, err
	}
	span.SetAttributes(
		attribute.String("remote", string(p.selector.Remote)),
		attribute.String("alias", p.selector.Alias),
		attribute.String("type", string(p.itype)),
	)

	config := map[string]string{UserDataKey: p.userData}
	for k, v := range p.limits {
		config[k] = v
	}

	log.InfoContext(ctx, "creating instance", "name", req.Name, "image", p.selector.String(), "type", p.itype)
	createCtx, cancel := context.WithTimeout(ctx, m.createTimeout)
	err = m.hv.CreateInstance(createCtx, hypervisor.CreateRequest{
		Name:   req.Name,
		Type:   p.itype,
		Source: hypervisor.SimplestreamsSource(p.server, p.selector.Alias),
		Config: config,
	})
	cancel()
	if err != nil {
		log.ErrorContext(ctx, "failed to create instance", "name", req.Name, "error", err)
		m.recordDuration(ctx, "provision", start, "error")
		return nil, fmt.Errorf("provision %s: %w", req.Name, err)
	}
	m.recordDuration(ctx, "provision", start, "success")
	log.InfoContext(ctx, "instance created", "name", req.Name, "duration_ms", time.Since(start).Milliseconds())

	return m.Observe(ctx, req.Name)
}

// Start is a no-op for a running instance.
func (m *manager) Start(ctx context.Context, name string) error {
	return m.transition(ctx, name, hypervisor.ActionStart, hypervisor.StatusRunning)
}

// Stop is a no-op for a stopped instance.
func (m *manager) Stop(ctx context.Context, name string) error {
	return m.transition(ctx, name, hypervisor.ActionStop, hypervisor.StatusStopped)
}

// Restart is a no-op for a stopped instance.
func (m *manager) Restart(ctx context.Context, name string) error {
	return m.transition(ctx, name, hypervisor.ActionRestart, hypervisor.StatusStopped)
}

// Delete refuses to remove a running instance; the call is then a logged no-op.
func (m *manager) Delete(ctx context.Context, name string) error {
	start := time.Now()
	log := logger.FromContext(ctx)

	ctx, span := m.metrics.startSpan(ctx, "Delete")
	defer span.End()

	inst, err := m.lookup(ctx, name)
	if err != nil {
		return err
	}
	if inst.Status == hypervisor.StatusRunning {
		log.InfoContext(ctx, "skipping delete of running instance", "name", name)
		m.recordDuration(ctx, "delete", start, "skipped")
		return nil
	}

	if err := m.hv.DeleteInstance(ctx, name); err != nil {
		log.ErrorContext(ctx, "failed to delete instance", "name", name, "error", err)
		m.recordDuration(ctx, "delete", start, "error")
		return fmt.Errorf("delete %s: %w", name, err)
	}
	m.recordDuration(ctx, "delete", start, "success")
	m.recordStateTransition(ctx, inst.Status, "Deleted")
	log.InfoContext(ctx, "instance deleted", "name", name)
	return nil
}

// transition applies action unless the instance is already in skipState.
func (m *manager) transition(ctx context.Context, name string, action hypervisor.StateAction, skipState string) error {
	start := time.Now()
	log := logger.FromContext(ctx)

	ctx, span := m.metrics.startSpan(ctx, string(action))
	defer span.End()

	inst, err := m.lookup(ctx, name)
	if err != nil {
		return err
	}
	if inst.Status == skipState {
		log.InfoContext(ctx, "skipping instance state change", "name", name, "action", action, "status", inst.Status)
		m.recordDuration(ctx, string(action), start, "skipped")
		return nil
	}

	log.InfoContext(ctx, "changing instance state", "name", name, "action", action, "from", inst.Status)
	if err := m.hv.UpdateInstanceState(ctx, name, action); err != nil {
		log.ErrorContext(ctx, "failed to change instance state", "name", name, "action", action, "error", err)
		m.recordDuration(ctx, string(action), start, "error")
		return fmt.Errorf("%s %s: %w", action, name, err)
	}
	m.recordDuration(ctx, string(action), start, "success")
	m.recordStateTransition(ctx, inst.Status, targetState(action))
	return nil
}

func (m *manager) lookup(ctx context.Context, name string) (*hypervisor.Instance, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	inst, err := m.hv.GetInstance(ctx, name)
	if err != nil {
		return nil, translateError(name, err)
	}
	return inst, nil
}

func targetState(action hypervisor.StateAction) string {
	if action == hypervisor.ActionStop {
		return hypervisor.StatusStopped
	}
	return hypervisor.StatusRunning
}
