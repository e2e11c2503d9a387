// Package kc2 embeds the API description served by cmd/api.
package kc2

import _ "embed"

//go:embed openapi.yaml
var OpenAPIYAML []byte
