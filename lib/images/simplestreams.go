package images

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/canonical/lxd/shared/simplestreams"
	"github.com/kc2/kc2/lib/ordered"
	"github.com/samber/lo"
)

// Well-known location of the stream index under a remote's base URL.
const streamIndexPath = "streams/v1/index.json"

// Only index entries of this datatype describe downloadable images.
const imageDownloadsDataType = "image-downloads"

// Stream is the top-level simplestreams index document. Index entries keep
// the order the remote published them in.
type Stream struct {
	Index   ordered.Map[simplestreams.StreamIndex] `json:"index"`
	Updated string                                 `json:"updated,omitempty"`
	Format  string                                 `json:"format"`
}

// expandedEntries returns the index entries to follow, in document order.
func (s Stream) expandedEntries() []simplestreams.StreamIndex {
	var out []simplestreams.StreamIndex
	for _, entry := range s.Index {
		if entry.Value.DataType == imageDownloadsDataType && len(entry.Value.Products) > 0 {
			out = append(out, entry.Value)
		}
	}
	return out
}

// Products is the document an index entry's path points at. Records stay raw
// until toRemoteImage checks them one field at a time, so a record with a
// badly typed field is reported as malformed rather than as an unreadable
// document.
type Products struct {
	ContentID string                       `json:"content_id"`
	DataType  string                       `json:"datatype"`
	Format    string                       `json:"format"`
	License   string                       `json:"license,omitempty"`
	Products  ordered.Map[json.RawMessage] `json:"products"`
	Updated   string                       `json:"updated,omitempty"`
}

// record is one raw product keyed by its ID in the products document.
type record = ordered.Member[json.RawMessage]

// splitAliases turns the comma-joined alias field into a set, keeping the
// order of first appearance. Entries are taken verbatim.
func splitAliases(s string) []string {
	return lo.Uniq(strings.Split(s, ","))
}

// toRemoteImage checks a raw record and maps it to a RemoteImage stamped
// with its remote.
func toRemoteImage(rec record, remote RemoteKind) (RemoteImage, error) {
	malformed := func(format string, args ...any) error {
		return fmt.Errorf("%w: product %q %s", ErrMalformedCatalogRecord, rec.Key, fmt.Sprintf(format, args...))
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(rec.Value, &fields); err != nil || fields == nil {
		return RemoteImage{}, malformed("is not an object")
	}

	var p simplestreams.Product
	required := []struct {
		name string
		dst  *string
	}{
		{"aliases", &p.Aliases},
		{"arch", &p.Architecture},
		{"os", &p.OperatingSystem},
		{"release", &p.Release},
		{"release_title", &p.ReleaseTitle},
	}
	for _, f := range required {
		present, err := stringField(fields, f.name, f.dst)
		if err != nil {
			return RemoteImage{}, malformed("%v", err)
		}
		if !present {
			return RemoteImage{}, malformed("has no %s", f.name)
		}
	}
	hasCodename, err := stringField(fields, "release_codename", &p.ReleaseCodename)
	if err != nil {
		return RemoteImage{}, malformed("%v", err)
	}
	hasVariant, err := stringField(fields, "variant", &p.Variant)
	if err != nil {
		return RemoteImage{}, malformed("%v", err)
	}

	if p.Aliases == "" {
		return RemoteImage{}, malformed("has no aliases")
	}

	img := RemoteImage{
		Aliases:         splitAliases(p.Aliases),
		Architecture:    p.Architecture,
		OperatingSystem: p.OperatingSystem,
		Release:         p.Release,
		ReleaseTitle:    p.ReleaseTitle,
		Remote:          remote,
	}
	if hasCodename {
		img.ReleaseCodename = lo.ToPtr(p.ReleaseCodename)
	}
	if hasVariant {
		img.Variant = lo.ToPtr(p.Variant)
	}
	return img, nil
}

// stringField decodes fields[name] into dst. It reports false for an absent
// or null field and fails for any value that is not a string.
func stringField(fields map[string]json.RawMessage, name string, dst *string) (bool, error) {
	raw, ok := fields[name]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("field %s is not a string", name)
	}
	return true, nil
}

// joinURL appends a catalog-relative path to a base URL.
func joinURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
