// Package openapi describes a function registry as an OpenAPI 3 document:
// one POST operation per function, request bodies shaped like the payloads
// pkg/extract produces, and lookup types published as component schemas.
package openapi
