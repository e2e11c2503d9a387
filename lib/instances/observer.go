package instances

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/kc2/kc2/lib/hypervisor"
	"github.com/kc2/kc2/lib/logger"
	"github.com/kc2/kc2/lib/ordered"
	"golang.org/x/sync/errgroup"
)

// DefaultCloudInitTimeout bounds one in-guest cloud-init status query.
const DefaultCloudInitTimeout = 5 * time.Second

// observeConcurrency caps parallel observations while listing.
const observeConcurrency = 8

var cloudInitStatusCommand = []string{"cloud-init", "status"}

var cloudInitStatusPattern = regexp.MustCompile(`(?m)^status: (\w+)$`)

// ExtractAddresses flattens the IPv4 addresses of every non-loopback
// interface, in the order the hypervisor reported the interfaces.
func ExtractAddresses(network ordered.Map[hypervisor.NetworkState]) []Address {
	addrs := []Address{}
	for _, member := range network {
		iface := member.Value
		if iface.Type == "loopback" {
			continue
		}
		for _, a := range iface.Addresses {
			if a.Family != "inet" {
				continue
			}
			addrs = append(addrs, Address{Address: a.Address, Netmask: a.Netmask})
		}
	}
	return addrs
}

// ParseCloudInitStatus reads the output of `cloud-init status`.
func ParseCloudInitStatus(stdout string) CloudInitStatus {
	m := cloudInitStatusPattern.FindStringSubmatch(stdout)
	if m == nil {
		return CloudInitIndeterminate
	}
	switch m[1] {
	case "running":
		return CloudInitRunning
	case "done":
		return CloudInitDone
	default:
		return CloudInitIndeterminate
	}
}

// DeriveStatus combines the hypervisor run state with the in-guest cloud-init
// status. cloudInit is only called for running instances.
func DeriveStatus(hvStatus string, cloudInit func() CloudInitStatus) ProvisioningStatus {
	if hvStatus != hypervisor.StatusRunning {
		return StatusStopped
	}
	if cloudInit() == CloudInitRunning {
		return StatusPending
	}
	// A guest that cannot answer is assumed to be configured already.
	return StatusRunning
}

// QueryCloudInit asks the guest for its cloud-init status. It never returns
// an error: exec failures, timeouts and unparseable output are all
// indeterminate, since unreachable guests are routine during early boot.
func (m *manager) QueryCloudInit(ctx context.Context, name string) CloudInitStatus {
	start := time.Now()
	log := logger.FromContext(ctx)

	ctx, cancel := context.WithTimeout(ctx, m.cloudInitTimeout)
	defer cancel()

	type result struct {
		res *hypervisor.ExecResult
		err error
	}
	done := make(chan result, 1)
	go func() {
		res, err := m.hv.Exec(ctx, name, cloudInitStatusCommand)
		done <- result{res, err}
	}()

	status := CloudInitIndeterminate
	select {
	case <-ctx.Done():
		log.DebugContext(ctx, "cloud-init query timed out", "name", name, "timeout", m.cloudInitTimeout)
	case r := <-done:
		if r.err != nil {
			log.DebugContext(ctx, "cloud-init query failed", "name", name, "error", r.err)
		} else {
			status = ParseCloudInitStatus(r.res.Stdout)
		}
	}

	m.metrics.recordCloudInitQuery(ctx, status, start)
	return status
}

func (m *manager) Observe(ctx context.Context, name string) (*InstanceInfo, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	inst, err := m.hv.GetInstance(ctx, name)
	if err != nil {
		return nil, translateError(name, err)
	}
	info, err := m.observe(ctx, *inst)
	if err != nil {
		return nil, translateError(name, err)
	}
	return info, nil
}

func (m *manager) ListInstances(ctx context.Context) ([]InstanceInfo, error) {
	log := logger.FromContext(ctx)

	list, err := m.hv.ListInstances(ctx)
	if err != nil {
		return nil, fmt.Errorf("list instances: %w", err)
	}

	infos := make([]InstanceInfo, len(list))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(observeConcurrency)
	for i, inst := range list {
		g.Go(func() error {
			info, err := m.observe(gctx, inst)
			if err != nil {
				log.WarnContext(gctx, "failed to observe instance", "name", inst.Name, "error", err)
				info = baseInfo(inst)
				info.ProvisioningStatus = StatusUnknown
			}
			infos[i] = *info
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return infos, nil
}

// observe reads the live state of inst and derives its provisioning status.
func (m *manager) observe(ctx context.Context, inst hypervisor.Instance) (*InstanceInfo, error) {
	state, err := m.hv.GetInstanceState(ctx, inst.Name)
	if err != nil {
		return nil, err
	}

	info := baseInfo(inst)
	info.Status = state.Status
	info.Addresses = ExtractAddresses(state.Network)
	info.ProvisioningStatus = DeriveStatus(state.Status, func() CloudInitStatus {
		return m.QueryCloudInit(ctx, inst.Name)
	})
	return info, nil
}

func baseInfo(inst hypervisor.Instance) *InstanceInfo {
	info := &InstanceInfo{
		Name:      inst.Name,
		Status:    inst.Status,
		Type:      inst.Type,
		Addresses: []Address{},
		Location:  inst.Location,
	}
	if !inst.CreatedAt.IsZero() {
		created := inst.CreatedAt
		info.CreatedAt = &created
	}
	return info
}

func translateError(name string, err error) error {
	if errors.Is(err, hypervisor.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return err
}
