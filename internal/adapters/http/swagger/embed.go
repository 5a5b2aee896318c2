package swagger

import _ "embed"

// OpenAPI holds the embedded OpenAPI specification.
//
//go:embed openapi.yaml
var OpenAPI []byte
