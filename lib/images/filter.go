package images

import "github.com/samber/lo"

// DefaultArch is the architecture offered when none is configured.
const DefaultArch = "amd64"

// cloudVariant is the variant tag of images that carry cloud-init.
const cloudVariant = "cloud"

// DefaultAllowedPrefixes lists, per restricted remote, the alias prefixes known
// to ship an SSH server in their cloud variant.
func DefaultAllowedPrefixes() map[RemoteKind][]string {
	return map[RemoteKind][]string{
		RemoteLinuxContainers: {"debian/12", "archlinux"},
	}
}

// Classifier decides which resolved images can be offered for provisioning.
type Classifier struct {
	DefaultArch     string
	AllowedPrefixes map[RemoteKind][]string
}

// NewClassifier returns a Classifier, falling back to the defaults for empty arguments.
func NewClassifier(defaultArch string, allowed map[RemoteKind][]string) *Classifier {
	if defaultArch == "" {
		defaultArch = DefaultArch
	}
	if allowed == nil {
		allowed = DefaultAllowedPrefixes()
	}
	return &Classifier{DefaultArch: defaultArch, AllowedPrefixes: allowed}
}

func (c *Classifier) IsDefaultArchitecture(img RemoteImage) bool {
	return img.Architecture == c.DefaultArch
}

// IsCloudVariant treats an image without a variant tag as cloud-suitable.
func (c *Classifier) IsCloudVariant(img RemoteImage) bool {
	return img.Variant == nil || *img.Variant == cloudVariant
}

func (c *Classifier) IsAvailable(img RemoteImage) bool {
	return c.IsDefaultArchitecture(img) && c.IsCloudVariant(img)
}

// IsSupportedForRemote restricts images from restricted remotes to the
// allow-listed alias prefixes. Images from other remotes are always supported.
func (c *Classifier) IsSupportedForRemote(img RemoteImage, remote RemoteKind) bool {
	if !remote.Restricted() {
		return true
	}
	return lo.SomeBy(c.AllowedPrefixes[remote], img.HasAliasPrefix)
}

// Select keeps the images that are available and supported, in input order.
func (c *Classifier) Select(imgs []RemoteImage, remote RemoteKind) []RemoteImage {
	return lo.Filter(imgs, func(img RemoteImage, _ int) bool {
		return c.IsAvailable(img) && c.IsSupportedForRemote(img, remote)
	})
}
