// Package lxd implements hypervisor.Client on top of the LXD Go client.
package lxd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"

	lxdclient "github.com/canonical/lxd/client"
	"github.com/canonical/lxd/shared/api"
	"github.com/kc2/kc2/lib/hypervisor"
	"github.com/kc2/kc2/lib/logger"
)

const (
	// DefaultSocketPath is where the snap-packaged LXD daemon listens.
	DefaultSocketPath = "/var/snap/lxd/common/lxd/unix.socket"

	// stateChangeTimeout is passed to LXD for start/stop/restart, in seconds.
	stateChangeTimeout = 30

	// maxLogSize caps how much exec output is read back.
	maxLogSize = 1 << 20

	userAgent = "kc2"
)

// InstanceServer is the part of lxdclient.InstanceServer kc2 calls.
type InstanceServer interface {
	GetInstances(instanceType api.InstanceType) ([]api.Instance, error)
	GetInstance(name string) (*api.Instance, string, error)
	CreateInstance(instance api.InstancesPost) (lxdclient.Operation, error)
	UpdateInstanceState(name string, state api.InstanceStatePut, ETag string) (lxdclient.Operation, error)
	DeleteInstance(name string) (lxdclient.Operation, error)
	ExecInstance(instanceName string, exec api.InstanceExecPost, args *lxdclient.InstanceExecArgs) (lxdclient.Operation, error)
	GetInstanceLogfile(name string, filename string) (io.ReadCloser, error)
	DeleteInstanceLogfile(name string, filename string) error
	RawQuery(method string, path string, data any, queryETag string) (*api.Response, string, error)
}

// Client adapts an LXD instance server to hypervisor.Client. It is safe for
// concurrent use.
type Client struct {
	server InstanceServer
}

var _ hypervisor.Client = (*Client)(nil)

// Connect returns a client for the daemon listening on socketPath. The
// daemon is not contacted until the first call.
func Connect(socketPath string) (*Client, error) {
	if socketPath == "" {
		socketPath = DefaultSocketPath
	}
	server, err := lxdclient.ConnectLXDUnix(socketPath, &lxdclient.ConnectionArgs{
		UserAgent:     userAgent,
		SkipGetServer: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to lxd at %s: %w", socketPath, err)
	}
	return New(server), nil
}

// New wraps an already connected instance server.
func New(server InstanceServer) *Client {
	return &Client{server: server}
}

func (c *Client) ListInstances(ctx context.Context) ([]hypervisor.Instance, error) {
	list, err := c.server.GetInstances(api.InstanceTypeAny)
	if err != nil {
		return nil, fmt.Errorf("list instances: %w", translate(err))
	}
	out := make([]hypervisor.Instance, len(list))
	for i := range list {
		out[i] = fromAPI(list[i])
	}
	return out, nil
}

func (c *Client) GetInstance(ctx context.Context, name string) (*hypervisor.Instance, error) {
	inst, _, err := c.server.GetInstance(name)
	if err != nil {
		return nil, fmt.Errorf("get instance %s: %w", name, translate(err))
	}
	out := fromAPI(*inst)
	return &out, nil
}

// GetInstanceState decodes the raw state document instead of the library's
// api.InstanceState, whose network map would lose the order LXD sent the
// interfaces in.
func (c *Client) GetInstanceState(ctx context.Context, name string) (*hypervisor.InstanceState, error) {
	resp, _, err := c.server.RawQuery(http.MethodGet, "/1.0/instances/"+url.PathEscape(name)+"/state", nil, "")
	if err != nil {
		return nil, fmt.Errorf("get instance state %s: %w", name, translate(err))
	}
	var state hypervisor.InstanceState
	if err := json.Unmarshal(resp.Metadata, &state); err != nil {
		return nil, fmt.Errorf("decode instance state %s: %w", name, err)
	}
	return &state, nil
}

func (c *Client) CreateInstance(ctx context.Context, req hypervisor.CreateRequest) error {
	op, err := c.server.CreateInstance(api.InstancesPost{
		Name: req.Name,
		Type: api.InstanceType(req.Type),
		Source: api.InstanceSource{
			Type:     req.Source.Type,
			Mode:     req.Source.Mode,
			Server:   req.Source.Server,
			Protocol: req.Source.Protocol,
			Alias:    req.Source.Alias,
		},
		InstancePut: api.InstancePut{
			Config: req.Config,
		},
	})
	if err != nil {
		return fmt.Errorf("create instance %s: %w", req.Name, translate(err))
	}
	if err := wait(ctx, op, "create"); err != nil {
		return fmt.Errorf("create instance %s: %w", req.Name, err)
	}
	return nil
}

func (c *Client) UpdateInstanceState(ctx context.Context, name string, action hypervisor.StateAction) error {
	op, err := c.server.UpdateInstanceState(name, api.InstanceStatePut{
		Action:  string(action),
		Timeout: stateChangeTimeout,
	}, "")
	if err != nil {
		return fmt.Errorf("%s instance %s: %w", action, name, translate(err))
	}
	if err := wait(ctx, op, string(action)); err != nil {
		return fmt.Errorf("%s instance %s: %w", action, name, err)
	}
	return nil
}

func (c *Client) DeleteInstance(ctx context.Context, name string) error {
	op, err := c.server.DeleteInstance(name)
	if err != nil {
		return fmt.Errorf("delete instance %s: %w", name, translate(err))
	}
	if err := wait(ctx, op, "delete"); err != nil {
		return fmt.Errorf("delete instance %s: %w", name, err)
	}
	return nil
}

// Exec runs argv in the instance without a websocket. LXD records stdout and
// stderr to log files, which are read back and then deleted once the command
// exits.
func (c *Client) Exec(ctx context.Context, name string, argv []string) (*hypervisor.ExecResult, error) {
	op, err := c.server.ExecInstance(name, api.InstanceExecPost{
		Command:      argv,
		Environment:  map[string]string{},
		WaitForWS:    false,
		Interactive:  false,
		RecordOutput: true,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("exec in %s: %w", name, translate(err))
	}
	if err := wait(ctx, op, "exec"); err != nil {
		return nil, fmt.Errorf("exec in %s: %w", name, err)
	}

	metadata := op.Get().Metadata
	result := &hypervisor.ExecResult{}
	if rc, ok := metadata["return"].(float64); ok {
		result.ExitCode = int(rc)
	}

	outputs, _ := metadata["output"].(map[string]any)
	stdout, _ := outputs["1"].(string)
	stderr, _ := outputs["2"].(string)
	defer c.deleteLogs(ctx, name, stdout, stderr)

	if stdout != "" {
		if result.Stdout, err = c.readLog(name, stdout); err != nil {
			return nil, fmt.Errorf("exec in %s: read stdout: %w", name, err)
		}
	}
	if stderr != "" {
		if result.Stderr, err = c.readLog(name, stderr); err != nil {
			return nil, fmt.Errorf("exec in %s: read stderr: %w", name, err)
		}
	}
	return result, nil
}

// readLog fetches an exec output log by the path LXD reported for it.
func (c *Client) readLog(name, logPath string) (string, error) {
	rc, err := c.server.GetInstanceLogfile(name, path.Base(logPath))
	if err != nil {
		return "", translate(err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxLogSize))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// deleteLogs removes recorded exec output. Failures are logged, not returned:
// the command already ran and its result is still valid.
func (c *Client) deleteLogs(ctx context.Context, name string, logPaths ...string) {
	log := logger.FromContext(ctx)
	for _, p := range logPaths {
		if p == "" {
			continue
		}
		filename := path.Base(p)
		if err := c.server.DeleteInstanceLogfile(name, filename); err != nil {
			log.WarnContext(ctx, "failed to delete exec output", "name", name, "file", filename, "error", err)
		}
	}
}

// wait blocks until op finishes or ctx is done.
func wait(ctx context.Context, op lxdclient.Operation, kind string) error {
	log := logger.FromContext(ctx)
	start := time.Now()

	if err := op.WaitContext(ctx); err != nil {
		return fmt.Errorf("wait for %s operation: %w", kind, err)
	}
	log.DebugContext(ctx, "lxd operation finished", "operation", op.Get().ID, "kind", kind, "duration_ms", time.Since(start).Milliseconds())
	return nil
}

// translate maps LXD's not-found status onto hypervisor.ErrNotFound.
func translate(err error) error {
	if api.StatusErrorCheck(err, http.StatusNotFound) {
		return fmt.Errorf("%w: %v", hypervisor.ErrNotFound, err)
	}
	return err
}

func fromAPI(inst api.Instance) hypervisor.Instance {
	return hypervisor.Instance{
		Name:        inst.Name,
		Description: inst.Description,
		Status:      inst.Status,
		StatusCode:  int(inst.StatusCode),
		Type:        hypervisor.InstanceType(inst.Type),
		Location:    inst.Location,
		CreatedAt:   inst.CreatedAt,
		Config:      inst.Config,
	}
}
