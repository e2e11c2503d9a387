package providers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/kc2/kc2/cmd/api/config"
	"github.com/kc2/kc2/lib/cloudinit"
	"github.com/kc2/kc2/lib/hypervisor"
	"github.com/kc2/kc2/lib/hypervisor/lxd"
	"github.com/kc2/kc2/lib/images"
	"github.com/kc2/kc2/lib/instances"
	"github.com/kc2/kc2/lib/logger"
	"github.com/kc2/kc2/lib/otel"
	"github.com/kc2/kc2/lib/passwd"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// ProvideConfig provides the application configuration
func ProvideConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// ProvideOtel sets up telemetry export. The cleanup flushes pending telemetry.
func ProvideOtel(cfg *config.Config) (*otel.Provider, func(), error) {
	p, err := otel.Init(context.Background(), otel.Config{
		Enabled:        cfg.OtelEnabled,
		Endpoint:       cfg.OtelEndpoint,
		Insecure:       cfg.OtelInsecure,
		ServiceName:    cfg.OtelServiceName,
		ServiceVersion: cfg.Version,
		Environment:    cfg.Env,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("init otel: %w", err)
	}
	return p, func() { _ = p.Shutdown(context.Background()) }, nil
}

// ProvideLoggers provides the per-subsystem loggers, fanned out to OTel when enabled
func ProvideLoggers(p *otel.Provider) *logger.Set {
	return logger.NewSet(logger.NewConfig(), p.LogHandler)
}

// ProvideLogger provides the process logger
func ProvideLogger(loggers *logger.Set) *slog.Logger {
	log := loggers.For(logger.SubsystemAPI)
	slog.SetDefault(log)
	return log
}

// ProvideContext provides a base context carrying the process logger
func ProvideContext(log *slog.Logger) context.Context {
	return logger.AddToContext(context.Background(), log)
}

// ProvideHypervisor provides the LXD client
func ProvideHypervisor(cfg *config.Config) (hypervisor.Client, error) {
	return lxd.Connect(cfg.LXDSocket)
}

// ProvideImageManager provides the image manager
func ProvideImageManager(cfg *config.Config, p *otel.Provider) (images.Manager, error) {
	remotes := images.Remotes{
		images.RemoteUbuntu:          cfg.UbuntuRemote,
		images.RemoteLinuxContainers: cfg.LXCRemote,
	}
	client := &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	resolver, err := images.NewResolver(client, remotes, cfg.CatalogTimeout, p.Meter)
	if err != nil {
		return nil, err
	}
	classifier := images.NewClassifier(cfg.DefaultArch, images.DefaultAllowedPrefixes())
	return images.NewManager(resolver, classifier, remotes), nil
}

// ProvideSynthesizer provides the boot document synthesizer
func ProvideSynthesizer(cfg *config.Config) *cloudinit.Synthesizer {
	return cloudinit.NewSynthesizer(cloudinit.Config{
		ProxyURL:     cfg.ProxyURL,
		ListenPort:   cfg.ProxyListenPort,
		BypassCIDRs:  cfg.ProxyBypassCIDRs,
		TransocksURL: cfg.TransocksURL,
	})
}

// ProvideHasher provides the password hasher for default users
func ProvideHasher(cfg *config.Config) (passwd.Hasher, error) {
	return passwd.NewBcryptHasher(cfg.BcryptCost)
}

// ProvideInstanceManager provides the instance manager
func ProvideInstanceManager(cfg *config.Config, hv hypervisor.Client, imageManager images.Manager, synthesizer *cloudinit.Synthesizer, hasher passwd.Hasher, p *otel.Provider) (instances.Manager, error) {
	maxMemoryMB, err := cfg.MaxMemoryMB()
	if err != nil {
		return nil, err
	}
	return instances.NewManager(hv, imageManager, synthesizer, hasher, instances.Config{
		CloudInitTimeout: cfg.CloudInitTimeout,
		CreateTimeout:    cfg.CreateTimeout,
		MaxVCPU:          cfg.MaxVCPU,
		MaxMemoryMB:      maxMemoryMB,
	}, p.Meter, p.Tracer)
}
