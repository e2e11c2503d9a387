package images

import "errors"

var (
	// ErrCatalogUnavailable is returned when a catalog remote cannot be reached,
	// answers with a non-success status, times out, or serves malformed JSON.
	ErrCatalogUnavailable = errors.New("image catalog unavailable")

	// ErrMalformedCatalogRecord is returned when a product record lacks a required field.
	ErrMalformedCatalogRecord = errors.New("malformed catalog record")

	// ErrUnknownRemoteKind is returned for a remote token kc2 does not know.
	ErrUnknownRemoteKind = errors.New("unknown remote kind")

	// ErrInvalidSelector is returned for an image selector that is not "{remote}:{alias}".
	ErrInvalidSelector = errors.New("invalid image selector")
)
