package api

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kc2/kc2/lib/hypervisor"
	"github.com/kc2/kc2/lib/instances"
	"github.com/kc2/kc2/lib/oapi"
	"github.com/samber/lo"
)

func provisionRequest(body *oapi.CreateInstanceRequest) (instances.ProvisionRequest, error) {
	if body == nil {
		return instances.ProvisionRequest{}, fmt.Errorf("%w: missing body", instances.ErrInvalidRequest)
	}

	itype := hypervisor.TypeContainer
	if body.Type != nil {
		t, err := hypervisor.ParseInstanceType(string(*body.Type))
		if err != nil {
			return instances.ProvisionRequest{}, err
		}
		itype = t
	}

	return instances.ProvisionRequest{
		Name:     body.Name,
		Image:    body.Image,
		Type:     itype,
		VCPU:     body.Vcpu,
		MemoryMB: body.MemoryMb,
		Username: body.Username,
		Password: body.Password,
	}, nil
}

func toInstance(info instances.InstanceInfo) oapi.Instance {
	return oapi.Instance{
		Name:   info.Name,
		Status: info.Status,
		Type:   oapi.InstanceType(info.Type),
		Addresses: lo.Map(info.Addresses, func(a instances.Address, _ int) oapi.Address {
			return oapi.Address{Address: a.Address, Netmask: a.Netmask}
		}),
		ProvisioningStatus: oapi.InstanceProvisioningStatus(info.ProvisioningStatus),
		Location:           lo.EmptyableToPtr(info.Location),
		CreatedAt:          info.CreatedAt,
	}
}

// ListInstances lists all instances with their provisioning status
func (s *ApiService) ListInstances(ctx context.Context, request oapi.ListInstancesRequestObject) (oapi.ListInstancesResponseObject, error) {
	infos, err := s.InstanceManager.ListInstances(ctx)
	if err != nil {
		return oapi.ListInstances500JSONResponse(internalError(ctx, err)), nil
	}
	return oapi.ListInstances200JSONResponse(lo.Map(infos, func(info instances.InstanceInfo, _ int) oapi.Instance {
		return toInstance(info)
	})), nil
}

// GetInstance gets instance details
func (s *ApiService) GetInstance(ctx context.Context, request oapi.GetInstanceRequestObject) (oapi.GetInstanceResponseObject, error) {
	info, err := s.InstanceManager.Observe(ctx, request.Name)
	if errors.Is(err, instances.ErrNotFound) {
		return oapi.GetInstance404JSONResponse(notFound(err)), nil
	}
	if err != nil {
		return oapi.GetInstance500JSONResponse(internalError(ctx, err)), nil
	}
	return oapi.GetInstance200JSONResponse(toInstance(*info)), nil
}

// CreateInstance creates an instance from a catalog image
func (s *ApiService) CreateInstance(ctx context.Context, request oapi.CreateInstanceRequestObject) (oapi.CreateInstanceResponseObject, error) {
	req, err := provisionRequest(request.Body)
	if err != nil {
		return oapi.CreateInstance400JSONResponse(badRequest(err)), nil
	}
	info, err := s.InstanceManager.Provision(ctx, req)
	switch {
	case err == nil:
		return oapi.CreateInstance201JSONResponse(toInstance(*info)), nil
	case isBadRequest(err):
		return oapi.CreateInstance400JSONResponse(badRequest(err)), nil
	default:
		return oapi.CreateInstance500JSONResponse(internalError(ctx, err)), nil
	}
}

// DeleteInstance deletes a stopped instance
func (s *ApiService) DeleteInstance(ctx context.Context, request oapi.DeleteInstanceRequestObject) (oapi.DeleteInstanceResponseObject, error) {
	err := s.InstanceManager.Delete(ctx, request.Name)
	if errors.Is(err, instances.ErrNotFound) {
		return oapi.DeleteInstance404JSONResponse(notFound(err)), nil
	}
	if err != nil {
		return oapi.DeleteInstance500JSONResponse(internalError(ctx, err)), nil
	}
	return oapi.DeleteInstance204Response{}, nil
}

// StartInstance starts an instance
func (s *ApiService) StartInstance(ctx context.Context, request oapi.StartInstanceRequestObject) (oapi.StartInstanceResponseObject, error) {
	err := s.InstanceManager.Start(ctx, request.Name)
	if errors.Is(err, instances.ErrNotFound) {
		return oapi.StartInstance404JSONResponse(notFound(err)), nil
	}
	if err != nil {
		return oapi.StartInstance500JSONResponse(internalError(ctx, err)), nil
	}
	return oapi.StartInstance204Response{}, nil
}

// StopInstance stops an instance
func (s *ApiService) StopInstance(ctx context.Context, request oapi.StopInstanceRequestObject) (oapi.StopInstanceResponseObject, error) {
	err := s.InstanceManager.Stop(ctx, request.Name)
	if errors.Is(err, instances.ErrNotFound) {
		return oapi.StopInstance404JSONResponse(notFound(err)), nil
	}
	if err != nil {
		return oapi.StopInstance500JSONResponse(internalError(ctx, err)), nil
	}
	return oapi.StopInstance204Response{}, nil
}

// RestartInstance restarts an instance
func (s *ApiService) RestartInstance(ctx context.Context, request oapi.RestartInstanceRequestObject) (oapi.RestartInstanceResponseObject, error) {
	err := s.InstanceManager.Restart(ctx, request.Name)
	if errors.Is(err, instances.ErrNotFound) {
		return oapi.RestartInstance404JSONResponse(notFound(err)), nil
	}
	if err != nil {
		return oapi.RestartInstance500JSONResponse(internalError(ctx, err)), nil
	}
	return oapi.RestartInstance204Response{}, nil
}

// PreviewCloudConfig renders the cloud-config CreateInstance would boot with
func (s *ApiService) PreviewCloudConfig(ctx context.Context, request oapi.PreviewCloudConfigRequestObject) (oapi.PreviewCloudConfigResponseObject, error) {
	req, err := provisionRequest(request.Body)
	if err != nil {
		return oapi.PreviewCloudConfig400JSONResponse(badRequest(err)), nil
	}
	doc, _, err := s.InstanceManager.Preview(ctx, req)
	if err != nil {
		if isBadRequest(err) {
			return oapi.PreviewCloudConfig400JSONResponse(badRequest(err)), nil
		}
		return nil, err
	}
	out, err := doc.Render()
	if err != nil {
		return nil, err
	}
	return oapi.PreviewCloudConfig200TextyamlResponse{
		Body:          strings.NewReader(out),
		ContentLength: int64(len(out)),
	}, nil
}
