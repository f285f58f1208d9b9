package registry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/goliatone/go-funcform/pkg/schema"
)

// DefaultRequestTimeout bounds remote registry fetches.
const DefaultRequestTimeout = 10 * time.Second

// Option configures a Loader.
type Option func(*Loader)

// WithFileSystem enables SourceKindFS lookups against files.
func WithFileSystem(files fs.FS) Option {
	return func(l *Loader) {
		l.fs = files
	}
}

// WithHTTPClient overrides the client used for URL sources.
func WithHTTPClient(client *http.Client) Option {
	return func(l *Loader) {
		if client != nil {
			l.http = client
		}
	}
}

// WithRequestTimeout bounds URL fetches; zero disables the bound.
func WithRequestTimeout(timeout time.Duration) Option {
	return func(l *Loader) {
		l.timeout = timeout
	}
}

// Loader reads registry documents from files, an fs.FS, or HTTP.
type Loader struct {
	fs      fs.FS
	http    *http.Client
	timeout time.Duration
}

// NewLoader constructs a Loader.
func NewLoader(options ...Option) *Loader {
	l := &Loader{
		http:    http.DefaultClient,
		timeout: DefaultRequestTimeout,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(l)
	}
	return l
}

// Load fetches the raw document behind src.
func (l *Loader) Load(ctx context.Context, src Source) (Document, error) {
	if src == nil {
		return Document{}, errors.New("registry: source is nil")
	}

	var (
		data []byte
		err  error
	)
	switch src.Kind() {
	case SourceKindFile:
		data, err = loadFile(ctx, src.Location())
	case SourceKindFS:
		data, err = loadFromFS(ctx, l.fs, src.Location())
	case SourceKindURL:
		data, err = loadHTTP(ctx, l.http, src.Location(), l.timeout)
	default:
		err = fmt.Errorf("registry: unsupported source kind %q", src.Kind())
	}
	if err != nil {
		return Document{}, err
	}
	return NewDocument(src, data)
}

// LoadRegistry fetches, decodes and validates the registry behind src.
func (l *Loader) LoadRegistry(ctx context.Context, src Source) (*schema.Registry, error) {
	doc, err := l.Load(ctx, src)
	if err != nil {
		return nil, err
	}
	return doc.Registry()
}

func loadFile(ctx context.Context, path string) ([]byte, error) {
	if path == "" {
		return nil, errors.New("registry: file path is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("registry: read %s: %w", path, err)
	}
	return data, nil
}

func loadFromFS(ctx context.Context, files fs.FS, name string) ([]byte, error) {
	if name == "" {
		return nil, errors.New("registry: fs path is required")
	}
	if files == nil {
		return nil, errors.New("registry: fs is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := fs.ReadFile(files, name)
	if err != nil {
		return nil, fmt.Errorf("registry: read %s: %w", name, err)
	}
	return data, nil
}

func loadHTTP(ctx context.Context, client *http.Client, url string, timeout time.Duration) ([]byte, error) {
	if client == nil {
		return nil, errors.New("registry: http client is not configured")
	}

	reqCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json, application/yaml;q=0.9")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("registry: fetch %s: %w", url, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.New("registry: unexpected status " + resp.Status)
	}
	return io.ReadAll(resp.Body)
}
