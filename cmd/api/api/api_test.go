package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/kc2/kc2/cmd/api/config"
	"github.com/kc2/kc2/lib/cloudinit"
	"github.com/kc2/kc2/lib/hypervisor"
	"github.com/kc2/kc2/lib/images"
	"github.com/kc2/kc2/lib/instances"
	"github.com/kc2/kc2/lib/oapi"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeImages struct {
	listing *images.Listing
	err     error
	asked   []images.RemoteKind
}

func (f *fakeImages) ListImages(ctx context.Context, remotes ...images.RemoteKind) (*images.Listing, error) {
	f.asked = remotes
	return f.listing, f.err
}

func (f *fakeImages) RemoteURL(remote images.RemoteKind) (string, error) {
	return images.DefaultRemotes().URL(remote)
}

type fakeInstances struct {
	infos       map[string]instances.InstanceInfo
	provisioned []instances.ProvisionRequest
	actions     []string
	err         error
}

func (f *fakeInstances) ListInstances(ctx context.Context) ([]instances.InstanceInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []instances.InstanceInfo
	for _, info := range f.infos {
		out = append(out, info)
	}
	return out, nil
}

func (f *fakeInstances) Observe(ctx context.Context, name string) (*instances.InstanceInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	info, ok := f.infos[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", instances.ErrNotFound, name)
	}
	return &info, nil
}

func (f *fakeInstances) QueryCloudInit(ctx context.Context, name string) instances.CloudInitStatus {
	return instances.CloudInitDone
}

func (f *fakeInstances) Provision(ctx context.Context, req instances.ProvisionRequest) (*instances.InstanceInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.provisioned = append(f.provisioned, req)
	return &instances.InstanceInfo{
		Name:               req.Name,
		Status:             hypervisor.StatusStopped,
		Type:               req.Type,
		Addresses:          []instances.Address{},
		ProvisioningStatus: instances.StatusStopped,
	}, nil
}

func (f *fakeInstances) Preview(ctx context.Context, req instances.ProvisionRequest) (*cloudinit.Document, cloudinit.Limits, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	return &cloudinit.Document{
		SystemInfo:      cloudinit.SystemInfo{DefaultUser: cloudinit.DefaultUser{Name: req.Username, Passwd: "hash"}},
		SSHPasswordAuth: true,
	}, cloudinit.Limits{}, nil
}

func (f *fakeInstances) action(op, name string) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.infos[name]; !ok {
		return fmt.Errorf("%w: %s", instances.ErrNotFound, name)
	}
	f.actions = append(f.actions, op+" "+name)
	return nil
}

func (f *fakeInstances) Start(ctx context.Context, name string) error {
	return f.action("start", name)
}

func (f *fakeInstances) Stop(ctx context.Context, name string) error {
	return f.action("stop", name)
}

func (f *fakeInstances) Restart(ctx context.Context, name string) error {
	return f.action("restart", name)
}

func (f *fakeInstances) Delete(ctx context.Context, name string) error {
	return f.action("delete", name)
}

func newTestService(img *fakeImages, inst *fakeInstances) *ApiService {
	return New(&config.Config{}, nil, img, inst)
}

func ctx() context.Context {
	return context.Background()
}

func createBody(name, image string) *oapi.CreateInstanceRequest {
	return &oapi.CreateInstanceRequest{
		Name:     name,
		Image:    image,
		Username: "alice",
		Password: "secret",
	}
}

func TestListImages(t *testing.T) {
	img := &fakeImages{listing: &images.Listing{
		Images: []images.RemoteImage{{
			Aliases:         []string{"24.04", "noble"},
			Architecture:    "amd64",
			OperatingSystem: "Ubuntu",
			Release:         "noble",
			ReleaseTitle:    "24.04 LTS",
			Remote:          images.RemoteUbuntu,
		}},
		Failures: map[images.RemoteKind]string{images.RemoteLinuxContainers: "status 502"},
	}}
	svc := newTestService(img, &fakeInstances{})

	resp, err := svc.ListImages(ctx(), oapi.ListImagesRequestObject{
		Params: oapi.ListImagesParams{Remote: &[]string{"ubuntu", "linuxcontainers", "ubuntu"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []images.RemoteKind{images.RemoteUbuntu, images.RemoteLinuxContainers}, img.asked)

	listing, ok := resp.(oapi.ListImages200JSONResponse)
	require.True(t, ok, "expected 200 response, got %T", resp)
	require.Len(t, listing.Images, 1)
	assert.Equal(t, "ubuntu:24.04", listing.Images[0].Selector)
	assert.Equal(t, "noble", listing.Images[0].Release)
	assert.Equal(t, oapi.RemoteKindUbuntu, listing.Images[0].Remote)
	require.NotNil(t, listing.Failures)
	assert.Equal(t, map[string]string{"linuxcontainers": "status 502"}, *listing.Failures)
}

func TestListImagesAllRemotes(t *testing.T) {
	img := &fakeImages{listing: &images.Listing{}}
	svc := newTestService(img, &fakeInstances{})

	resp, err := svc.ListImages(ctx(), oapi.ListImagesRequestObject{})
	require.NoError(t, err)
	assert.Empty(t, img.asked)

	listing, ok := resp.(oapi.ListImages200JSONResponse)
	require.True(t, ok, "expected 200 response")
	assert.NotNil(t, listing.Images)
	assert.Nil(t, listing.Failures)
}

func TestListImagesUnknownRemote(t *testing.T) {
	svc := newTestService(&fakeImages{}, &fakeInstances{})

	resp, err := svc.ListImages(ctx(), oapi.ListImagesRequestObject{
		Params: oapi.ListImagesParams{Remote: &[]string{"dockerhub"}},
	})
	require.NoError(t, err)

	badRequest, ok := resp.(oapi.ListImages400JSONResponse)
	require.True(t, ok, "expected 400 response")
	assert.Equal(t, "unknown_remote", badRequest.Code)
}

func TestListImagesCatalogUnavailable(t *testing.T) {
	img := &fakeImages{err: fmt.Errorf("%w: all 2 remotes failed", images.ErrCatalogUnavailable)}
	svc := newTestService(img, &fakeInstances{})

	resp, err := svc.ListImages(ctx(), oapi.ListImagesRequestObject{})
	require.NoError(t, err)

	unavailable, ok := resp.(oapi.ListImages503JSONResponse)
	require.True(t, ok, "expected 503 response")
	assert.Equal(t, "catalog_unavailable", unavailable.Code)
}

func TestGetInstance(t *testing.T) {
	inst := &fakeInstances{infos: map[string]instances.InstanceInfo{
		"web": {
			Name:               "web",
			Status:             hypervisor.StatusRunning,
			Type:               hypervisor.TypeContainer,
			Addresses:          []instances.Address{{Address: "10.0.0.5", Netmask: "24"}},
			ProvisioningStatus: instances.StatusRunning,
			Location:           "node1",
		},
	}}
	svc := newTestService(&fakeImages{}, inst)

	resp, err := svc.GetInstance(ctx(), oapi.GetInstanceRequestObject{Name: "web"})
	require.NoError(t, err)

	got, ok := resp.(oapi.GetInstance200JSONResponse)
	require.True(t, ok, "expected 200 response")
	assert.Equal(t, oapi.InstanceProvisioningStatusRunning, got.ProvisioningStatus)
	assert.Equal(t, oapi.InstanceTypeContainer, got.Type)
	assert.Equal(t, []oapi.Address{{Address: "10.0.0.5", Netmask: "24"}}, got.Addresses)
	assert.Equal(t, lo.ToPtr("node1"), got.Location)
	assert.Nil(t, got.CreatedAt)
}

func TestGetInstance_NotFound(t *testing.T) {
	svc := newTestService(&fakeImages{}, &fakeInstances{})

	resp, err := svc.GetInstance(ctx(), oapi.GetInstanceRequestObject{Name: "missing"})
	require.NoError(t, err)

	notFound, ok := resp.(oapi.GetInstance404JSONResponse)
	require.True(t, ok, "expected 404 response")
	assert.Equal(t, "not_found", notFound.Code)
}

func TestGetInstance_HypervisorFailure(t *testing.T) {
	svc := newTestService(&fakeImages{}, &fakeInstances{err: fmt.Errorf("get instance web: connection refused")})

	resp, err := svc.GetInstance(ctx(), oapi.GetInstanceRequestObject{Name: "web"})
	require.NoError(t, err)

	failed, ok := resp.(oapi.GetInstance500JSONResponse)
	require.True(t, ok, "expected 500 response")
	assert.Equal(t, "internal_error", failed.Code)
}

func TestListInstances_Empty(t *testing.T) {
	svc := newTestService(&fakeImages{}, &fakeInstances{})

	resp, err := svc.ListInstances(ctx(), oapi.ListInstancesRequestObject{})
	require.NoError(t, err)

	list, ok := resp.(oapi.ListInstances200JSONResponse)
	require.True(t, ok, "expected 200 response")
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestCreateInstance(t *testing.T) {
	inst := &fakeInstances{}
	svc := newTestService(&fakeImages{}, inst)

	body := createBody("vm1", "ubuntu:24.04")
	body.Type = lo.ToPtr(oapi.CreateInstanceRequestTypeVirtualMachine)
	body.Vcpu = lo.ToPtr(2)
	body.MemoryMb = lo.ToPtr(2048)

	resp, err := svc.CreateInstance(ctx(), oapi.CreateInstanceRequestObject{Body: body})
	require.NoError(t, err)

	created, ok := resp.(oapi.CreateInstance201JSONResponse)
	require.True(t, ok, "expected 201 response, got %T", resp)
	assert.Equal(t, "vm1", created.Name)
	assert.NotNil(t, created.Addresses)

	require.Len(t, inst.provisioned, 1)
	req := inst.provisioned[0]
	assert.Equal(t, hypervisor.TypeVirtualMachine, req.Type)
	assert.Equal(t, lo.ToPtr(2), req.VCPU)
	assert.Equal(t, lo.ToPtr(2048), req.MemoryMB)

	// Type defaults to container.
	_, err = svc.CreateInstance(ctx(), oapi.CreateInstanceRequestObject{Body: createBody("c1", "linuxcontainers:debian/12/cloud")})
	require.NoError(t, err)
	require.Len(t, inst.provisioned, 2)
	assert.Equal(t, hypervisor.TypeContainer, inst.provisioned[1].Type)
}

func TestCreateInstance_Rejected(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
	}{
		{
			name: "unknown remote",
			err:  fmt.Errorf("%w: %q", images.ErrUnknownRemoteKind, "dockerhub"),
			code: "unknown_remote",
		},
		{
			name: "limit over maximum",
			err:  fmt.Errorf("%w: vcpu 64 exceeds maximum 8", instances.ErrInvalidRequest),
			code: "invalid_request",
		},
		{
			name: "password too long",
			err:  fmt.Errorf("%w: password is 80 bytes, at most 72 are allowed", instances.ErrInvalidRequest),
			code: "invalid_request",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(&fakeImages{}, &fakeInstances{err: tt.err})

			resp, err := svc.CreateInstance(ctx(), oapi.CreateInstanceRequestObject{Body: createBody("c1", "ubuntu:24.04")})
			require.NoError(t, err)

			badRequest, ok := resp.(oapi.CreateInstance400JSONResponse)
			require.True(t, ok, "expected 400 response, got %T", resp)
			assert.Equal(t, tt.code, badRequest.Code)
		})
	}
}

func TestCreateInstance_HypervisorFailure(t *testing.T) {
	svc := newTestService(&fakeImages{}, &fakeInstances{err: fmt.Errorf("provision c1: wait for create operation: image not found on server")})

	resp, err := svc.CreateInstance(ctx(), oapi.CreateInstanceRequestObject{Body: createBody("c1", "ubuntu:24.04")})
	require.NoError(t, err)

	failed, ok := resp.(oapi.CreateInstance500JSONResponse)
	require.True(t, ok, "expected 500 response")
	assert.Equal(t, "internal_error", failed.Code)
	assert.Contains(t, failed.Message, "image not found")
}

func TestInstanceActions(t *testing.T) {
	inst := &fakeInstances{infos: map[string]instances.InstanceInfo{"web": {Name: "web"}}}
	svc := newTestService(&fakeImages{}, inst)

	start, err := svc.StartInstance(ctx(), oapi.StartInstanceRequestObject{Name: "web"})
	require.NoError(t, err)
	assert.IsType(t, oapi.StartInstance204Response{}, start)

	stop, err := svc.StopInstance(ctx(), oapi.StopInstanceRequestObject{Name: "web"})
	require.NoError(t, err)
	assert.IsType(t, oapi.StopInstance204Response{}, stop)

	restart, err := svc.RestartInstance(ctx(), oapi.RestartInstanceRequestObject{Name: "web"})
	require.NoError(t, err)
	assert.IsType(t, oapi.RestartInstance204Response{}, restart)

	del, err := svc.DeleteInstance(ctx(), oapi.DeleteInstanceRequestObject{Name: "web"})
	require.NoError(t, err)
	assert.IsType(t, oapi.DeleteInstance204Response{}, del)

	assert.Equal(t, []string{"start web", "stop web", "restart web", "delete web"}, inst.actions)

	ghost, err := svc.StartInstance(ctx(), oapi.StartInstanceRequestObject{Name: "ghost"})
	require.NoError(t, err)
	notFound, ok := ghost.(oapi.StartInstance404JSONResponse)
	require.True(t, ok, "expected 404 response")
	assert.Equal(t, "not_found", notFound.Code)
}

func TestPreviewCloudConfig(t *testing.T) {
	svc := newTestService(&fakeImages{}, &fakeInstances{})

	resp, err := svc.PreviewCloudConfig(ctx(), oapi.PreviewCloudConfigRequestObject{Body: createBody("c1", "ubuntu:24.04")})
	require.NoError(t, err)

	yamlResp, ok := resp.(oapi.PreviewCloudConfig200TextyamlResponse)
	require.True(t, ok, "expected 200 response, got %T", resp)
	data, err := io.ReadAll(yamlResp.Body)
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), yamlResp.ContentLength)
	assert.True(t, strings.HasPrefix(string(data), cloudinit.Header))

	doc, err := cloudinit.Parse(data)
	require.NoError(t, err)
	assert.Equal(t, "alice", doc.SystemInfo.DefaultUser.Name)
}

func TestPreviewCloudConfig_Rejected(t *testing.T) {
	svc := newTestService(&fakeImages{}, &fakeInstances{})

	body := createBody("c1", "ubuntu:24.04")
	body.Type = lo.ToPtr(oapi.CreateInstanceRequestType("pod"))

	resp, err := svc.PreviewCloudConfig(ctx(), oapi.PreviewCloudConfigRequestObject{Body: body})
	require.NoError(t, err)

	badRequest, ok := resp.(oapi.PreviewCloudConfig400JSONResponse)
	require.True(t, ok, "expected 400 response")
	assert.Equal(t, "invalid_request", badRequest.Code)
}

// The remaining tests go through the router, where the OpenAPI document is
// enforced before any handler runs.

func newTestRouter(t *testing.T, img *fakeImages, inst *fakeInstances) http.Handler {
	t.Helper()
	spec, err := LoadSpec(ctx())
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(NewRequestValidator(spec))
	newTestService(img, inst).Mount(r)
	return r
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) oapi.Error {
	t.Helper()
	var e oapi.Error
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))
	return e
}

func TestRouterServesOperations(t *testing.T) {
	inst := &fakeInstances{infos: map[string]instances.InstanceInfo{
		"web": {Name: "web", Status: hypervisor.StatusRunning, Type: hypervisor.TypeContainer, ProvisioningStatus: instances.StatusPending},
	}}
	h := newTestRouter(t, &fakeImages{listing: &images.Listing{}}, inst)

	rec := do(t, h, http.MethodGet, "/images?remote=ubuntu", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"images": []}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/instances/web", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"name":"web","status":"Running","type":"container","addresses":[],"provisioning_status":"pending"}`, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/instances/web/stop", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodPost, "/instances",
		`{"name":"c1","image":"ubuntu:24.04","type":"virtual-machine","vcpu":2,"username":"alice","password":"secret"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Len(t, inst.provisioned, 1)
	assert.Equal(t, hypervisor.TypeVirtualMachine, inst.provisioned[0].Type)

	rec = do(t, h, http.MethodPost, "/cloud-config/preview",
		`{"name":"c1","image":"ubuntu:24.04","username":"alice","password":"secret"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "text/yaml", rec.Header().Get("Content-Type"))
}

func TestRouterRejectsInvalidRequests(t *testing.T) {
	tests := []struct {
		name   string
		method string
		target string
		body   string
		status int
		code   string
	}{
		{
			name:   "missing password",
			method: http.MethodPost,
			target: "/instances",
			body:   `{"name":"c1","image":"ubuntu:24.04","username":"alice"}`,
			status: http.StatusBadRequest,
			code:   "invalid_request",
		},
		{
			name:   "password over 72 bytes",
			method: http.MethodPost,
			target: "/instances",
			body:   `{"name":"c1","image":"ubuntu:24.04","username":"alice","password":"` + strings.Repeat("p", 80) + `"}`,
			status: http.StatusBadRequest,
			code:   "invalid_request",
		},
		{
			name:   "bad instance type",
			method: http.MethodPost,
			target: "/instances",
			body:   `{"name":"c1","image":"ubuntu:24.04","type":"pod","username":"alice","password":"x"}`,
			status: http.StatusBadRequest,
			code:   "invalid_request",
		},
		{
			name:   "unknown field",
			method: http.MethodPost,
			target: "/instances",
			body:   `{"name":"c1","image":"ubuntu:24.04","username":"alice","password":"x","disk":"10GB"}`,
			status: http.StatusBadRequest,
			code:   "invalid_request",
		},
		{
			name:   "invalid instance name",
			method: http.MethodGet,
			target: "/instances/-bad-",
			status: http.StatusBadRequest,
			code:   "invalid_request",
		},
		{
			name:   "unknown route",
			method: http.MethodGet,
			target: "/volumes",
			status: http.StatusNotFound,
			code:   "not_found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inst := &fakeInstances{}
			h := newTestRouter(t, &fakeImages{}, inst)

			rec := do(t, h, tt.method, tt.target, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, tt.code, decodeError(t, rec).Code)
			assert.Empty(t, inst.provisioned)
		})
	}
}
