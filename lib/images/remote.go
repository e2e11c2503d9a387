package images

import (
	"fmt"
	"strings"
)

// RemoteKind identifies a catalog server.
type RemoteKind string

const (
	// RemoteUbuntu is the primary cloud-image remote. Every image it serves
	// ships with cloud-init and an SSH server.
	RemoteUbuntu RemoteKind = "ubuntu"

	// RemoteLinuxContainers is the community image server. Some of its images
	// lack an SSH server, so only allow-listed aliases are offered.
	RemoteLinuxContainers RemoteKind = "linuxcontainers"
)

const (
	UbuntuImageServer         = "https://cloud-images.ubuntu.com/releases"
	LinuxContainerImageServer = "https://images.linuxcontainers.org"
)

// AllRemotes lists every known remote in display order.
var AllRemotes = []RemoteKind{RemoteUbuntu, RemoteLinuxContainers}

// ParseRemoteKind converts a token into a RemoteKind.
func ParseRemoteKind(s string) (RemoteKind, error) {
	switch RemoteKind(s) {
	case RemoteUbuntu, RemoteLinuxContainers:
		return RemoteKind(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRemoteKind, s)
	}
}

// Restricted reports whether images from this remote must match an alias
// allow-list before they are offered.
func (k RemoteKind) Restricted() bool {
	return k == RemoteLinuxContainers
}

// Remotes maps each remote to the base URL of its catalog.
type Remotes map[RemoteKind]string

// DefaultRemotes returns the public catalog servers.
func DefaultRemotes() Remotes {
	return Remotes{
		RemoteUbuntu:          UbuntuImageServer,
		RemoteLinuxContainers: LinuxContainerImageServer,
	}
}

// URL returns the base URL of a remote.
func (r Remotes) URL(kind RemoteKind) (string, error) {
	u, ok := r[kind]
	if !ok || u == "" {
		return "", fmt.Errorf("%w: %q", ErrUnknownRemoteKind, kind)
	}
	return u, nil
}

// Selector is a parsed "{remote}:{alias}" image token.
type Selector struct {
	Remote RemoteKind
	Alias  string
}

// ParseSelector splits an image selector on its first colon. The remote must
// be known and the alias must not be empty.
func ParseSelector(s string) (Selector, error) {
	remote, alias, ok := strings.Cut(s, ":")
	if !ok {
		return Selector{}, fmt.Errorf("%w: %q", ErrInvalidSelector, s)
	}
	kind, err := ParseRemoteKind(remote)
	if err != nil {
		return Selector{}, err
	}
	alias = strings.TrimSpace(alias)
	if alias == "" {
		return Selector{}, fmt.Errorf("%w: empty alias in %q", ErrInvalidSelector, s)
	}
	return Selector{Remote: kind, Alias: alias}, nil
}

func (s Selector) String() string {
	return string(s.Remote) + ":" + s.Alias
}
