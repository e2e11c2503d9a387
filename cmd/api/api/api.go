package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kc2/kc2/cmd/api/config"
	"github.com/kc2/kc2/lib/hypervisor"
	"github.com/kc2/kc2/lib/images"
	"github.com/kc2/kc2/lib/instances"
	"github.com/kc2/kc2/lib/logger"
	"github.com/kc2/kc2/lib/middleware"
	"github.com/kc2/kc2/lib/oapi"
)

// ApiService implements the oapi.StrictServerInterface
type ApiService struct {
	Config          *config.Config
	Loggers         *logger.Set
	ImageManager    images.Manager
	InstanceManager instances.Manager
}

var _ oapi.StrictServerInterface = (*ApiService)(nil)

// New creates a new ApiService
func New(
	config *config.Config,
	loggers *logger.Set,
	imageManager images.Manager,
	instanceManager instances.Manager,
) *ApiService {
	return &ApiService{
		Config:          config,
		Loggers:         loggers,
		ImageManager:    imageManager,
		InstanceManager: instanceManager,
	}
}

// Mount registers the generated routes on r. Undecodable requests and
// handler failures are reported with the same Error body as the handlers.
func (s *ApiService) Mount(r chi.Router) {
	strictHandler := oapi.NewStrictHandlerWithOptions(s,
		[]oapi.StrictMiddlewareFunc{s.subsystemLogger},
		oapi.StrictHTTPServerOptions{
			RequestErrorHandlerFunc: func(w http.ResponseWriter, r *http.Request, err error) {
				WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
			},
			ResponseErrorHandlerFunc: func(w http.ResponseWriter, r *http.Request, err error) {
				body := internalError(r.Context(), err)
				WriteError(w, http.StatusInternalServerError, body.Code, body.Message)
			},
		})

	oapi.HandlerWithOptions(strictHandler, oapi.ChiServerOptions{
		BaseRouter: r,
		ErrorHandlerFunc: func(w http.ResponseWriter, r *http.Request, err error) {
			WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		},
	})
}

// subsystemLogger puts the logger of the subsystem serving operationID into
// the handler context.
func (s *ApiService) subsystemLogger(f oapi.StrictHandlerFunc, operationID string) oapi.StrictHandlerFunc {
	subsystem := logger.SubsystemInstances
	if operationID == "ListImages" {
		subsystem = logger.SubsystemImages
	}
	log := s.Loggers.For(subsystem)

	return func(ctx context.Context, w http.ResponseWriter, r *http.Request, request interface{}) (interface{}, error) {
		l := log
		if id := middleware.GetRequestID(ctx); id != "" {
			l = l.With("request_id", id)
		}
		return f(logger.AddToContext(ctx, l), w, r, request)
	}
}

// WriteError writes an Error body with the given status.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(oapi.Error{Code: code, Message: message})
}

// isBadRequest reports whether err was caused by the request itself.
func isBadRequest(err error) bool {
	return errors.Is(err, images.ErrUnknownRemoteKind) ||
		errors.Is(err, images.ErrInvalidSelector) ||
		errors.Is(err, instances.ErrInvalidName) ||
		errors.Is(err, instances.ErrInvalidRequest) ||
		errors.Is(err, hypervisor.ErrUnknownInstanceType)
}

func badRequest(err error) oapi.Error {
	code := "invalid_request"
	if errors.Is(err, images.ErrUnknownRemoteKind) {
		code = "unknown_remote"
	}
	return oapi.Error{Code: code, Message: err.Error()}
}

func notFound(err error) oapi.Error {
	return oapi.Error{Code: "not_found", Message: err.Error()}
}

func internalError(ctx context.Context, err error) oapi.Error {
	logger.FromContext(ctx).ErrorContext(ctx, "request failed", "error", err)
	return oapi.Error{Code: "internal_error", Message: err.Error()}
}
