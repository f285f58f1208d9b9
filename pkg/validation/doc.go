// Package validation derives JSON Schema documents from function
// descriptors and checks extracted payloads against them before they are
// submitted.
package validation
