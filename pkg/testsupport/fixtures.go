package testsupport

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-funcform/pkg/schema"
)

// SampleRegistryJSON exercises every node kind: primitives of each special
// type, records, a dropdown with an empty option, lists of records and of
// primitives, and a named reference shared through the lookup table.
const SampleRegistryJSON = `[
  ["greet", [
    {"type": "text", "name": "name"},
    {"type": "number", "name": "age", "nullable": true},
    {"type": "checkbox", "name": "polite"}
  ], {}],
  ["createOrder", [
    {"type": "namedref", "name": "customer", "ref": "Person"},
    {"type": "list", "name": "items", "element":
      {"type": "fieldset", "name": "item", "elements": [
        {"type": "text", "name": "sku"},
        {"type": "number", "name": "qty"}
      ]}
    },
    {"type": "dropdown", "name": "shipping", "options": [
      {"name": "Pickup", "value": {"elements": []}},
      {"name": "Courier", "value": {"elements": [
        {"type": "text", "name": "address"},
        {"type": "char", "name": "priority"}
      ]}}
    ]},
    {"type": "float", "name": "discount", "nullable": true},
    {"type": "hidden", "name": "token", "value": "abc"}
  ], {
    "Person": {"type": "fieldset", "name": "Person", "elements": [
      {"type": "text", "name": "name"},
      {"type": "text", "name": "email", "nullable": true}
    ]}
  }],
  ["sum", [
    {"type": "list", "name": "numbers", "element": {"type": "float", "name": "n"}}
  ]]
]`

// SampleRegistry decodes SampleRegistryJSON.
func SampleRegistry(t *testing.T) *schema.Registry {
	t.Helper()

	registry, err := schema.ParseRegistry([]byte(SampleRegistryJSON), schema.FormatJSON)
	if err != nil {
		t.Fatalf("parse sample registry: %v", err)
	}
	return registry
}

// SampleFunction returns a function from the sample registry.
func SampleFunction(t *testing.T, name string) schema.Function {
	t.Helper()

	fn, err := SampleRegistry(t).Function(name)
	if err != nil {
		t.Fatalf("sample function: %v", err)
	}
	return fn
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// MustJSON round-trips value through encoding/json so map/slice comparisons
// see the same concrete types a decoded payload would.
func MustJSON(t *testing.T, value any) any {
	t.Helper()

	raw, err := json.Marshal(value)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out any
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return out
}
