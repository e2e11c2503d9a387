package images

import (
	"context"
	"fmt"
	"sync"

	"github.com/kc2/kc2/lib/logger"
	"golang.org/x/sync/errgroup"
)

type Manager interface {
	// ListImages resolves the given remotes concurrently and returns the
	// images offered for provisioning. With no remotes, every known remote is
	// listed. A remote that fails is reported in Listing.Failures; the call
	// fails only when no remote could be resolved.
	ListImages(ctx context.Context, remotes ...RemoteKind) (*Listing, error)

	// RemoteURL returns the catalog base URL of a remote.
	RemoteURL(remote RemoteKind) (string, error)
}

type manager struct {
	resolver   *Resolver
	classifier *Classifier
	remotes    Remotes
}

// NewManager creates a new image manager.
func NewManager(resolver *Resolver, classifier *Classifier, remotes Remotes) Manager {
	return &manager{
		resolver:   resolver,
		classifier: classifier,
		remotes:    remotes,
	}
}

func (m *manager) ListImages(ctx context.Context, remotes ...RemoteKind) (*Listing, error) {
	log := logger.FromContext(ctx)

	if len(remotes) == 0 {
		remotes = AllRemotes
	}
	for _, r := range remotes {
		if _, err := m.remotes.URL(r); err != nil {
			return nil, err
		}
	}

	results := make([][]RemoteImage, len(remotes))
	var (
		mu       sync.Mutex
		failures = make(map[RemoteKind]string)
	)

	// Failures are collected rather than returned so one slow or broken
	// remote does not cancel the others.
	var g errgroup.Group
	for i, remote := range remotes {
		g.Go(func() error {
			imgs, err := m.resolver.Resolve(ctx, remote)
			if err != nil {
				mu.Lock()
				failures[remote] = err.Error()
				mu.Unlock()
				return nil
			}
			results[i] = m.classifier.Select(imgs, remote)
			return nil
		})
	}
	_ = g.Wait()

	if len(failures) == len(remotes) {
		return nil, fmt.Errorf("%w: all %d remotes failed", ErrCatalogUnavailable, len(remotes))
	}

	listing := &Listing{Images: []RemoteImage{}}
	for _, imgs := range results {
		listing.Images = append(listing.Images, imgs...)
	}
	if len(failures) > 0 {
		listing.Failures = failures
		log.WarnContext(ctx, "image listing is partial", "failed_remotes", len(failures))
	}
	return listing, nil
}

func (m *manager) RemoteURL(remote RemoteKind) (string, error) {
	return m.remotes.URL(remote)
}
