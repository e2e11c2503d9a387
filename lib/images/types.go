package images

import "strings"

// RemoteImage is a catalog product flattened into the fields kc2 needs to
// pick and launch an image. Values are produced fresh on every resolve.
type RemoteImage struct {
	Aliases         []string   `json:"aliases"`
	Architecture    string     `json:"architecture"`
	OperatingSystem string     `json:"os"`
	Release         string     `json:"release"`
	ReleaseCodename *string    `json:"release_codename,omitempty"`
	ReleaseTitle    string     `json:"release_title"`
	Variant         *string    `json:"variant,omitempty"`
	Remote          RemoteKind `json:"remote"`
}

// HasAliasPrefix reports whether any alias starts with prefix.
func (img RemoteImage) HasAliasPrefix(prefix string) bool {
	for _, a := range img.Aliases {
		if strings.HasPrefix(a, prefix) {
			return true
		}
	}
	return false
}

// Selector returns the "{remote}:{alias}" token that identifies this image in
// a provisioning request, using the first alias.
func (img RemoteImage) Selector() string {
	if len(img.Aliases) == 0 {
		return ""
	}
	return Selector{Remote: img.Remote, Alias: img.Aliases[0]}.String()
}

// Listing is the combined result of resolving several remotes.
type Listing struct {
	Images []RemoteImage `json:"images"`
	// Failures maps each remote that could not be resolved to the reason.
	Failures map[RemoteKind]string `json:"failures,omitempty"`
}
