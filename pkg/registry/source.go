package registry

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-funcform/pkg/schema"
)

// Source identifies where a registry document lives so the loader can read
// files, fs.FS entries, or URLs behind one call.
type Source interface {
	Kind() SourceKind
	Location() string
}

// SourceKind enumerates the loader modalities.
type SourceKind string

const (
	SourceKindFile SourceKind = "file"
	SourceKindFS   SourceKind = "fs"
	SourceKindURL  SourceKind = "url"
)

type fileSource struct {
	path string
}

func (s fileSource) Location() string { return s.path }
func (s fileSource) Kind() SourceKind { return SourceKindFile }

// SourceFromFile returns a Source pointing to a file path.
func SourceFromFile(path string) Source {
	return fileSource{path: filepath.Clean(path)}
}

type fsSource struct {
	name string
}

func (s fsSource) Location() string { return s.name }
func (s fsSource) Kind() SourceKind { return SourceKindFS }

// SourceFromFS returns a Source naming an entry inside the loader's fs.FS.
func SourceFromFS(name string) Source {
	return fsSource{name: name}
}

type urlSource struct {
	raw string
}

func (s urlSource) Location() string { return s.raw }
func (s urlSource) Kind() SourceKind { return SourceKindURL }

// SourceFromURL validates raw as an absolute http(s) URL.
func SourceFromURL(raw string) (Source, error) {
	if raw == "" {
		return nil, fmt.Errorf("registry: empty URL source")
	}
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return nil, fmt.Errorf("registry: invalid URL %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("registry: unsupported URL scheme %q", u.Scheme)
	}
	return urlSource{raw: raw}, nil
}

// ParseSource maps a CLI or config value to a Source: http(s) URLs become
// URL sources, anything else a file path.
func ParseSource(location string) (Source, error) {
	lower := strings.ToLower(location)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return SourceFromURL(location)
	}
	if strings.TrimSpace(location) == "" {
		return nil, fmt.Errorf("registry: location is required")
	}
	return SourceFromFile(location), nil
}

// FormatOf infers the registry encoding from the location's extension. An
// empty result defers to content sniffing.
func FormatOf(src Source) schema.Format {
	location := src.Location()
	if src.Kind() == SourceKindURL {
		if u, err := url.Parse(location); err == nil {
			location = u.Path
		}
	}
	switch strings.ToLower(path.Ext(location)) {
	case ".json":
		return schema.FormatJSON
	case ".yaml", ".yml":
		return schema.FormatYAML
	default:
		return ""
	}
}
