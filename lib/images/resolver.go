package images

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kc2/kc2/lib/logger"
	"go.opentelemetry.io/otel/metric"
)

// DefaultCatalogTimeout bounds a whole resolve of one remote.
const DefaultCatalogTimeout = 15 * time.Second

// maxDocumentSize caps a single catalog document. The Ubuntu release stream is
// a few megabytes; anything far beyond that is not a catalog.
const maxDocumentSize = 64 << 20

// Resolver fetches a remote's simplestreams catalog and flattens it into
// RemoteImages. It keeps no cache: every call performs live fetches.
type Resolver struct {
	client  *http.Client
	remotes Remotes
	timeout time.Duration
	metrics *Metrics
}

// NewResolver creates a resolver. A nil client uses http.DefaultClient; a nil
// meter disables metrics.
func NewResolver(client *http.Client, remotes Remotes, timeout time.Duration, meter metric.Meter) (*Resolver, error) {
	if client == nil {
		client = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = DefaultCatalogTimeout
	}
	r := &Resolver{
		client:  client,
		remotes: remotes,
		timeout: timeout,
	}
	if meter != nil {
		m, err := newMetrics(meter)
		if err != nil {
			return nil, fmt.Errorf("create image metrics: %w", err)
		}
		r.metrics = m
	}
	return r, nil
}

// Resolve returns every image the remote publishes, in catalog order. Any
// fetch failure or malformed record fails the whole call.
func (r *Resolver) Resolve(ctx context.Context, remote RemoteKind) ([]RemoteImage, error) {
	start := time.Now()
	log := logger.FromContext(ctx)

	baseURL, err := r.remotes.URL(remote)
	if err != nil {
		return nil, err
	}

	images, err := r.resolve(ctx, remote, baseURL)
	if err != nil {
		log.WarnContext(ctx, "catalog resolve failed", "remote", remote, "url", baseURL, "error", err)
		r.metrics.recordResolve(ctx, remote, "error", start, 0)
		return nil, err
	}

	log.DebugContext(ctx, "catalog resolved", "remote", remote, "images", len(images), "duration_ms", time.Since(start).Milliseconds())
	r.metrics.recordResolve(ctx, remote, "success", start, len(images))
	return images, nil
}

func (r *Resolver) resolve(ctx context.Context, remote RemoteKind, baseURL string) ([]RemoteImage, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	records, err := r.fetchRecords(ctx, baseURL)
	if err != nil {
		return nil, fmt.Errorf("remote %s: %w", remote, err)
	}

	images := make([]RemoteImage, 0, len(records))
	for _, rec := range records {
		img, err := toRemoteImage(rec, remote)
		if err != nil {
			return nil, fmt.Errorf("remote %s: %w", remote, err)
		}
		images = append(images, img)
	}
	return images, nil
}

// fetchRecords performs the two-stage catalog fetch against baseURL and
// returns the raw product records of every image-downloads entry, in the
// order the documents list them.
func (r *Resolver) fetchRecords(ctx context.Context, baseURL string) ([]record, error) {
	var stream Stream
	if err := r.getJSON(ctx, joinURL(baseURL, streamIndexPath), &stream); err != nil {
		return nil, err
	}

	var all []record
	for _, entry := range stream.expandedEntries() {
		var products Products
		if err := r.getJSON(ctx, joinURL(baseURL, entry.Path), &products); err != nil {
			return nil, err
		}
		all = append(all, products.Products...)
	}
	return all, nil
}

func (r *Resolver) getJSON(ctx context.Context, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: build request for %s: %v", ErrCatalogUnavailable, url, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: get %s: %v", ErrCatalogUnavailable, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: get %s: status %d", ErrCatalogUnavailable, url, resp.StatusCode)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxDocumentSize)).Decode(v); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrCatalogUnavailable, url, err)
	}
	return nil
}
