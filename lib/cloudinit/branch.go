package cloudinit

import (
	"strings"

	"github.com/kc2/kc2/lib/images"
)

// Branch is the distribution-specific part of a boot document.
type Branch int

const (
	// BranchCloudDefault covers images from the primary cloud remote, which
	// ship ufw and apt.
	BranchCloudDefault Branch = iota
	// BranchDebianFamily uses nftables and apt.
	BranchDebianFamily
	// BranchArchFamily uses the iptables service and pacman.
	BranchArchFamily
	// BranchUnrecognized gets the base document only.
	BranchUnrecognized
)

const (
	debianAliasPrefix = "debian/"
	archAliasPrefix   = "archlinux"
)

func (b Branch) String() string {
	switch b {
	case BranchCloudDefault:
		return "cloud-default"
	case BranchDebianFamily:
		return "debian-family"
	case BranchArchFamily:
		return "arch-family"
	case BranchUnrecognized:
		return "unrecognized"
	default:
		return "invalid"
	}
}

// ResolveBranch picks the branch for an image. The remote is checked before
// the alias, so a primary-remote image never falls into an alias branch.
func ResolveBranch(remote images.RemoteKind, alias string) Branch {
	switch {
	case remote == images.RemoteUbuntu:
		return BranchCloudDefault
	case strings.HasPrefix(alias, debianAliasPrefix):
		return BranchDebianFamily
	case strings.HasPrefix(alias, archAliasPrefix):
		return BranchArchFamily
	default:
		return BranchUnrecognized
	}
}
