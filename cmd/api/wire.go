//go:build wireinject

package main

import (
	"context"
	"log/slog"

	"github.com/google/wire"
	"github.com/kc2/kc2/cmd/api/api"
	"github.com/kc2/kc2/cmd/api/config"
	"github.com/kc2/kc2/lib/images"
	"github.com/kc2/kc2/lib/instances"
	"github.com/kc2/kc2/lib/logger"
	"github.com/kc2/kc2/lib/otel"
	"github.com/kc2/kc2/lib/providers"
)

// application struct to hold initialized components
type application struct {
	Ctx             context.Context
	Logger          *slog.Logger
	Loggers         *logger.Set
	Config          *config.Config
	Otel            *otel.Provider
	ImageManager    images.Manager
	InstanceManager instances.Manager
	ApiService      *api.ApiService
}

// initializeApp is the injector function
func initializeApp() (*application, func(), error) {
	panic(wire.Build(
		providers.ProvideConfig,
		providers.ProvideOtel,
		providers.ProvideLoggers,
		providers.ProvideLogger,
		providers.ProvideContext,
		providers.ProvideHypervisor,
		providers.ProvideImageManager,
		providers.ProvideSynthesizer,
		providers.ProvideHasher,
		providers.ProvideInstanceManager,
		api.New,
		wire.Struct(new(application), "*"),
	))
}
