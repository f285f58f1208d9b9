package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Format identifies a registry encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// wireNode mirrors the JSON emitted by function registries:
//
//	{"type": "fieldset", "name": "user", "elements": [...]}
//	{"type": "dropdown", "name": "shape", "options": [{"name": "Circle", "value": {"elements": [...]}}]}
//	{"type": "list", "name": "tags", "element": {...}}
//	{"type": "namedref", "name": "owner", "ref": "Person"}
//	{"type": "number", "name": "age", "nullable": true}
type wireNode struct {
	Type     string       `json:"type" yaml:"type"`
	Name     string       `json:"name" yaml:"name"`
	Nullable bool         `json:"nullable,omitempty" yaml:"nullable,omitempty"`
	Value    any          `json:"value,omitempty" yaml:"value,omitempty"`
	Elements []wireNode   `json:"elements,omitempty" yaml:"elements,omitempty"`
	Options  []wireOption `json:"options,omitempty" yaml:"options,omitempty"`
	Element  *wireNode    `json:"element,omitempty" yaml:"element,omitempty"`
	Ref      string       `json:"ref,omitempty" yaml:"ref,omitempty"`
}

type wireOption struct {
	Name  string          `json:"name" yaml:"name"`
	Value wireOptionValue `json:"value" yaml:"value"`
}

type wireOptionValue struct {
	Elements []wireNode `json:"elements" yaml:"elements"`
}

type wireFunctionObject struct {
	Name   string              `json:"name" yaml:"name"`
	Params []wireNode          `json:"params" yaml:"params"`
	Lookup map[string]wireNode `json:"lookup,omitempty" yaml:"lookup,omitempty"`
}

// UnmarshalNode decodes a single JSON schema node.
func UnmarshalNode(data []byte) (Node, error) {
	var wire wireNode
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("schema: decode node: %w", err)
	}
	return fromWire(wire)
}

// MarshalNode encodes a schema node using the registry wire format.
func MarshalNode(node Node) ([]byte, error) {
	wire, err := toWire(node)
	if err != nil {
		return nil, err
	}
	return json.Marshal(wire)
}

// MarshalJSON encodes the function as the [name, params, lookup] tuple.
func (f Function) MarshalJSON() ([]byte, error) {
	params := make([]wireNode, 0, len(f.Params))
	for _, param := range f.Params {
		wire, err := toWire(param)
		if err != nil {
			return nil, fmt.Errorf("schema: encode %s: %w", f.Name, err)
		}
		params = append(params, wire)
	}
	lookup := make(map[string]wireNode, f.Lookup.Len())
	for _, name := range f.Lookup.Names() {
		node, _ := f.Lookup.Get(name)
		wire, err := toWire(node)
		if err != nil {
			return nil, fmt.Errorf("schema: encode %s#%s: %w", f.Name, name, err)
		}
		lookup[name] = wire
	}
	return json.Marshal([]any{f.Name, params, lookup})
}

// UnmarshalJSON accepts both the tuple form and {"name","params","lookup"}.
func (f *Function) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var tuple []json.RawMessage
		if err := json.Unmarshal(trimmed, &tuple); err != nil {
			return fmt.Errorf("schema: decode function tuple: %w", err)
		}
		if len(tuple) < 2 || len(tuple) > 3 {
			return fmt.Errorf("schema: function tuple must have 2 or 3 entries, got %d", len(tuple))
		}
		var obj wireFunctionObject
		if err := json.Unmarshal(tuple[0], &obj.Name); err != nil {
			return fmt.Errorf("schema: decode function name: %w", err)
		}
		if err := json.Unmarshal(tuple[1], &obj.Params); err != nil {
			return fmt.Errorf("schema: decode %s params: %w", obj.Name, err)
		}
		if len(tuple) == 3 && !isJSONNull(tuple[2]) {
			if err := json.Unmarshal(tuple[2], &obj.Lookup); err != nil {
				return fmt.Errorf("schema: decode %s lookup: %w", obj.Name, err)
			}
		}
		return f.fromWire(obj)
	}

	var obj wireFunctionObject
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return fmt.Errorf("schema: decode function: %w", err)
	}
	return f.fromWire(obj)
}

// UnmarshalYAML mirrors UnmarshalJSON for YAML registries.
func (f *Function) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.SequenceNode {
		if len(value.Content) < 2 || len(value.Content) > 3 {
			return fmt.Errorf("schema: function tuple must have 2 or 3 entries, got %d", len(value.Content))
		}
		var obj wireFunctionObject
		if err := value.Content[0].Decode(&obj.Name); err != nil {
			return fmt.Errorf("schema: decode function name: %w", err)
		}
		if err := value.Content[1].Decode(&obj.Params); err != nil {
			return fmt.Errorf("schema: decode %s params: %w", obj.Name, err)
		}
		if len(value.Content) == 3 {
			if err := value.Content[2].Decode(&obj.Lookup); err != nil {
				return fmt.Errorf("schema: decode %s lookup: %w", obj.Name, err)
			}
		}
		return f.fromWire(obj)
	}

	var obj wireFunctionObject
	if err := value.Decode(&obj); err != nil {
		return fmt.Errorf("schema: decode function: %w", err)
	}
	return f.fromWire(obj)
}

func (f *Function) fromWire(obj wireFunctionObject) error {
	if obj.Name == "" {
		return errors.New("schema: function name is required")
	}
	params := make([]Node, 0, len(obj.Params))
	for _, wire := range obj.Params {
		node, err := fromWire(wire)
		if err != nil {
			return fmt.Errorf("schema: %s: %w", obj.Name, err)
		}
		params = append(params, node)
	}
	entries := make(map[string]Node, len(obj.Lookup))
	for name, wire := range obj.Lookup {
		node, err := fromWire(wire)
		if err != nil {
			return fmt.Errorf("schema: %s#%s: %w", obj.Name, name, err)
		}
		entries[name] = node
	}
	*f = Function{
		Name:   obj.Name,
		Params: params,
		Lookup: NewLookup(entries),
	}
	return nil
}

// ParseRegistry decodes a registry document. An empty format is detected
// from the payload.
func ParseRegistry(data []byte, format Format) (*Registry, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("schema: registry document is empty")
	}
	if format == "" {
		format = DetectFormat(data)
	}

	var functions []Function
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &functions); err != nil {
			return nil, fmt.Errorf("schema: decode registry: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &functions); err != nil {
			return nil, fmt.Errorf("schema: decode registry: %w", err)
		}
	default:
		return nil, fmt.Errorf("schema: unsupported registry format %q", format)
	}
	return NewRegistry(functions...), nil
}

// DetectFormat guesses JSON when the payload starts with a bracket or brace.
func DetectFormat(data []byte) Format {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && (trimmed[0] == '[' || trimmed[0] == '{') {
		return FormatJSON
	}
	return FormatYAML
}

// MarshalJSON encodes the registry as an array of function tuples.
func (r *Registry) MarshalJSON() ([]byte, error) {
	functions := r.Functions()
	if functions == nil {
		functions = []Function{}
	}
	return json.Marshal(functions)
}

func fromWire(wire wireNode) (Node, error) {
	switch Kind(wire.Type) {
	case KindRecord:
		elements, err := fromWireList(wire.Elements)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", wire.Name, err)
		}
		return Record{Name: wire.Name, Elements: elements}, nil
	case KindUnion:
		options := make([]Option, 0, len(wire.Options))
		for _, opt := range wire.Options {
			elements, err := fromWireList(opt.Value.Elements)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", wire.Name, opt.Name, err)
			}
			options = append(options, Option{Name: opt.Name, Elements: elements})
		}
		return Union{Name: wire.Name, Options: options}, nil
	case KindList:
		if wire.Element == nil {
			return List{Name: wire.Name}, nil
		}
		element, err := fromWire(*wire.Element)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", wire.Name, err)
		}
		return List{Name: wire.Name, Element: element}, nil
	case KindRef:
		return Ref{Name: wire.Name, Ref: wire.Ref}, nil
	case "", KindPrimitive:
		return nil, fmt.Errorf("%w %q for field %q", ErrUnknownKind, wire.Type, wire.Name)
	default:
		return Primitive{
			Name:     wire.Name,
			Type:     wire.Type,
			Nullable: wire.Nullable,
			Value:    stringify(wire.Value),
		}, nil
	}
}

func fromWireList(wires []wireNode) ([]Node, error) {
	nodes := make([]Node, 0, len(wires))
	for _, wire := range wires {
		node, err := fromWire(wire)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

func toWire(node Node) (wireNode, error) {
	switch n := node.(type) {
	case Primitive:
		wire := wireNode{Type: n.Type, Name: n.Name, Nullable: n.Nullable}
		if n.Value != "" {
			wire.Value = n.Value
		}
		return wire, nil
	case Record:
		elements, err := toWireList(n.Elements)
		if err != nil {
			return wireNode{}, err
		}
		return wireNode{Type: string(KindRecord), Name: n.Name, Elements: elements}, nil
	case Union:
		options := make([]wireOption, 0, len(n.Options))
		for _, opt := range n.Options {
			elements, err := toWireList(opt.Elements)
			if err != nil {
				return wireNode{}, err
			}
			if elements == nil {
				elements = []wireNode{}
			}
			options = append(options, wireOption{Name: opt.Name, Value: wireOptionValue{Elements: elements}})
		}
		return wireNode{Type: string(KindUnion), Name: n.Name, Options: options}, nil
	case List:
		wire := wireNode{Type: string(KindList), Name: n.Name}
		if n.Element != nil {
			element, err := toWire(n.Element)
			if err != nil {
				return wireNode{}, err
			}
			wire.Element = &element
		}
		return wire, nil
	case Ref:
		return wireNode{Type: string(KindRef), Name: n.Name, Ref: n.Ref}, nil
	default:
		return wireNode{}, fmt.Errorf("%w %T", ErrUnknownKind, node)
	}
}

func toWireList(nodes []Node) ([]wireNode, error) {
	if len(nodes) == 0 {
		return nil, nil
	}
	out := make([]wireNode, 0, len(nodes))
	for _, node := range nodes {
		wire, err := toWire(node)
		if err != nil {
			return nil, err
		}
		out = append(out, wire)
	}
	return out, nil
}

func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	default:
		return fmt.Sprint(v)
	}
}

func isJSONNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
