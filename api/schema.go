// Package api carries the OpenAPI description of the JSON surface.
package api

import _ "embed"

// OpenAPI is the bundled schema, used when no schema file is configured on disk
//
//go:embed openapi.yaml
var OpenAPI []byte
