package api

import (
	"context"
	"errors"

	"github.com/kc2/kc2/lib/images"
	"github.com/kc2/kc2/lib/oapi"
	"github.com/samber/lo"
)

// ListImages lists images from the requested remotes, or all of them
func (s *ApiService) ListImages(ctx context.Context, request oapi.ListImagesRequestObject) (oapi.ListImagesResponseObject, error) {
	var remotes []images.RemoteKind
	for _, token := range lo.FromPtr(request.Params.Remote) {
		remote, err := images.ParseRemoteKind(token)
		if err != nil {
			return oapi.ListImages400JSONResponse(badRequest(err)), nil
		}
		remotes = append(remotes, remote)
	}

	listing, err := s.ImageManager.ListImages(ctx, lo.Uniq(remotes)...)
	switch {
	case err == nil:
	case isBadRequest(err):
		return oapi.ListImages400JSONResponse(badRequest(err)), nil
	case errors.Is(err, images.ErrCatalogUnavailable):
		return oapi.ListImages503JSONResponse{
			Code:    "catalog_unavailable",
			Message: err.Error(),
		}, nil
	default:
		return nil, err
	}

	out := oapi.ListImages200JSONResponse{
		Images: lo.Map(listing.Images, func(img images.RemoteImage, _ int) oapi.Image {
			return toImage(img)
		}),
	}
	if len(listing.Failures) > 0 {
		failures := lo.MapKeys(listing.Failures, func(_ string, remote images.RemoteKind) string {
			return string(remote)
		})
		out.Failures = &failures
	}
	return out, nil
}

func toImage(img images.RemoteImage) oapi.Image {
	return oapi.Image{
		Aliases:         img.Aliases,
		Architecture:    img.Architecture,
		Os:              img.OperatingSystem,
		Release:         img.Release,
		ReleaseCodename: img.ReleaseCodename,
		ReleaseTitle:    img.ReleaseTitle,
		Remote:          oapi.RemoteKind(img.Remote),
		Selector:        img.Selector(),
		Variant:         img.Variant,
	}
}
