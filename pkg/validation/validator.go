package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/goliatone/go-funcform/pkg/schema"
)

// ErrInvalidPayload wraps payloads that do not match their function schema.
var ErrInvalidPayload = errors.New("validation: payload does not match schema")

// Issue is a single schema violation. Field uses the same dotted paths as
// form fields ("items.0.qty").
type Issue struct {
	Path    string `json:"path,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// Result captures a validation outcome.
type Result struct {
	Valid  bool    `json:"valid"`
	Issues []Issue `json:"issues,omitempty"`
}

// Err returns nil for valid results and an ErrInvalidPayload wrapper
// otherwise.
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	parts := make([]string, 0, len(r.Issues))
	for _, issue := range r.Issues {
		if issue.Field == "" {
			parts = append(parts, issue.Message)
			continue
		}
		parts = append(parts, issue.Field+": "+issue.Message)
	}
	return fmt.Errorf("%w: %s", ErrInvalidPayload, strings.Join(parts, "; "))
}

// Validator checks extracted payloads against one function's schema.
type Validator struct {
	function string
	document []byte
	compiled *jsonschema.Schema
}

// Compile generates and compiles the schema for fn.
func Compile(fn schema.Function) (*Validator, error) {
	doc, err := Generate(fn)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("validation: encode %s schema: %w", fn.Name, err)
	}

	resource := url.PathEscape(fn.Name) + ".schema.json"
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(resource, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("validation: load %s schema: %w", fn.Name, err)
	}
	compiled, err := compiler.Compile(resource)
	if err != nil {
		return nil, fmt.Errorf("validation: compile %s schema: %w", fn.Name, err)
	}
	return &Validator{function: fn.Name, document: raw, compiled: compiled}, nil
}

// CompileRegistry compiles a validator per function.
func CompileRegistry(reg *schema.Registry) (map[string]*Validator, error) {
	out := make(map[string]*Validator, reg.Len())
	for _, fn := range reg.Functions() {
		v, err := Compile(fn)
		if err != nil {
			return nil, err
		}
		out[fn.Name] = v
	}
	return out, nil
}

// Function names the function the validator was compiled for.
func (v *Validator) Function() string {
	return v.function
}

// Document returns the generated JSON Schema.
func (v *Validator) Document() []byte {
	return append([]byte(nil), v.document...)
}

// Validate checks payload. Payloads are normalised through encoding/json so
// any Go value with a JSON form is accepted.
func (v *Validator) Validate(payload any) Result {
	doc, err := normalize(payload)
	if err != nil {
		return Result{Issues: []Issue{{Message: err.Error()}}}
	}

	err = v.compiled.Validate(doc)
	if err == nil {
		return Result{Valid: true}
	}

	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return Result{Issues: []Issue{{Message: err.Error()}}}
	}
	issues := flatten(verr, nil)
	sort.SliceStable(issues, func(i, j int) bool {
		if issues[i].Path != issues[j].Path {
			return issues[i].Path < issues[j].Path
		}
		return issues[i].Message < issues[j].Message
	})
	return Result{Issues: issues}
}

func normalize(payload any) (any, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("validation: encode payload: %w", err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("validation: decode payload: %w", err)
	}
	return doc, nil
}

// flatten keeps the leaf causes; intermediate nodes only restate them.
func flatten(verr *jsonschema.ValidationError, out []Issue) []Issue {
	if len(verr.Causes) == 0 {
		return append(out, Issue{
			Path:    verr.InstanceLocation,
			Field:   fieldPathFromPointer(verr.InstanceLocation),
			Message: strings.TrimSpace(verr.Message),
		})
	}
	for _, cause := range verr.Causes {
		out = flatten(cause, out)
	}
	return out
}

// fieldPathFromPointer turns an instance pointer such as /items/0/qty into
// the dotted form path items.0.qty.
func fieldPathFromPointer(pointer string) string {
	trimmed := strings.TrimPrefix(strings.TrimSpace(pointer), "#")
	trimmed = strings.TrimPrefix(trimmed, "/")
	if trimmed == "" {
		return ""
	}
	parts := strings.Split(trimmed, "/")
	for i, part := range parts {
		part = strings.ReplaceAll(part, "~1", "/")
		parts[i] = strings.ReplaceAll(part, "~0", "~")
	}
	return strings.Join(parts, ".")
}

func escapePointer(segment string) string {
	segment = strings.ReplaceAll(segment, "~", "~0")
	return strings.ReplaceAll(segment, "/", "~1")
}
