package render

import (
	"strings"

	"github.com/goliatone/go-funcform/pkg/form"
)

// ErrorMapping splits messages into field-level entries keyed by form path
// and form-level entries.
type ErrorMapping struct {
	Fields map[string][]string
	Form   []string
}

// MapErrors attaches messages to the deepest form field their path names.
// Paths may be dotted ("items.0.qty") or JSON pointers ("/items/0/qty").
// Messages whose path matches no field are kept as form-level errors.
func MapErrors(f *form.Form, payload map[string][]string) ErrorMapping {
	mapping := ErrorMapping{Fields: make(map[string][]string)}
	if len(payload) == 0 {
		mapping.Fields = nil
		return mapping
	}

	known := make(map[string]struct{})
	for _, field := range f.Fields() {
		known[field.Path] = struct{}{}
	}

	for raw, messages := range payload {
		messages = normalizeMessages(messages)
		if len(messages) == 0 {
			continue
		}
		path := longestMatchingPath(parsePathSegments(raw), known)
		if path == "" {
			mapping.Form = append(mapping.Form, messages...)
			continue
		}
		mapping.Fields[path] = append(mapping.Fields[path], messages...)
	}

	if len(mapping.Fields) == 0 {
		mapping.Fields = nil
	}
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

func normalizeMessages(messages []string) []string {
	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))
	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func parsePathSegments(path string) []string {
	clean := strings.TrimSpace(path)
	clean = strings.TrimLeft(clean, "#/.$")
	clean = strings.NewReplacer("[", ".", "]", "").Replace(clean)
	clean = strings.Trim(clean, "./")
	if clean == "" {
		return nil
	}

	parts := strings.FieldsFunc(clean, func(r rune) bool {
		return r == '.' || r == '/'
	})
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		segment := strings.ReplaceAll(strings.TrimSpace(part), "~1", "/")
		segment = strings.ReplaceAll(segment, "~0", "~")
		if segment != "" {
			out = append(out, segment)
		}
	}
	return out
}

func longestMatchingPath(segments []string, known map[string]struct{}) string {
	for end := len(segments); end > 0; end-- {
		candidate := strings.Join(segments[:end], ".")
		if _, ok := known[candidate]; ok {
			return candidate
		}
	}
	return ""
}
