package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	kc2 "github.com/kc2/kc2"
	nethttpmiddleware "github.com/oapi-codegen/nethttp-middleware"
)

// LoadSpec parses and validates the embedded OpenAPI document.
func LoadSpec(ctx context.Context) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx
	spec, err := loader.LoadFromData(kc2.OpenAPIYAML)
	if err != nil {
		return nil, fmt.Errorf("load openapi document: %w", err)
	}
	if err := spec.Validate(ctx); err != nil {
		return nil, fmt.Errorf("validate openapi document: %w", err)
	}
	return spec, nil
}

// NewRequestValidator returns middleware rejecting requests that do not match
// spec. Rejections use the same Error body as the handlers.
func NewRequestValidator(spec *openapi3.T) func(http.Handler) http.Handler {
	// Match on path only; the server URL depends on where kc2 is deployed.
	spec.Servers = nil

	return nethttpmiddleware.OapiRequestValidatorWithOptions(spec, &nethttpmiddleware.Options{
		SilenceServersWarning: true,
		Options: openapi3filter.Options{
			ExcludeResponseBody: true,
		},
		ErrorHandler: func(w http.ResponseWriter, message string, statusCode int) {
			code := "invalid_request"
			switch statusCode {
			case http.StatusNotFound:
				code = "not_found"
			case http.StatusMethodNotAllowed:
				code = "method_not_allowed"
			}
			WriteError(w, statusCode, code, message)
		},
	})
}
