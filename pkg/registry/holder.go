package registry

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/goliatone/go-funcform/pkg/schema"
)

// reloadDebounce coalesces the burst of events editors emit on save.
const reloadDebounce = 100 * time.Millisecond

// Holder keeps the current registry and swaps it when the source changes.
// Readers always see a complete registry.
type Holder struct {
	mu        sync.RWMutex
	registry  *schema.Registry
	callbacks []func(*schema.Registry)
	logger    *log.Logger
}

// NewHolder wraps an initial registry.
func NewHolder(initial *schema.Registry) *Holder {
	if initial == nil {
		initial = schema.NewRegistry()
	}
	return &Holder{
		registry: initial,
		logger:   log.New(io.Discard),
	}
}

// SetLogger routes reload diagnostics to logger.
func (h *Holder) SetLogger(logger *log.Logger) {
	if logger == nil {
		return
	}
	h.mu.Lock()
	h.logger = logger
	h.mu.Unlock()
}

// Get returns the current registry.
func (h *Holder) Get() *schema.Registry {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.registry
}

// Set replaces the registry and notifies subscribers.
func (h *Holder) Set(reg *schema.Registry) {
	h.mu.Lock()
	h.registry = reg
	callbacks := make([]func(*schema.Registry), len(h.callbacks))
	copy(callbacks, h.callbacks)
	h.mu.Unlock()

	for _, fn := range callbacks {
		fn(reg)
	}
}

// OnChange registers a callback run after every successful reload.
func (h *Holder) OnChange(fn func(*schema.Registry)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.callbacks = append(h.callbacks, fn)
}

func (h *Holder) log() *log.Logger {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.logger
}

// Watch reloads the file at path through loader whenever it changes, until
// ctx is done. A document that fails to load or validate is logged and the
// previous registry stays in place. The parent directory is watched so
// editors that replace the file on save are handled.
func (h *Holder) Watch(ctx context.Context, loader *Loader, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("registry: create watcher: %w", err)
	}
	defer func() {
		_ = watcher.Close()
	}()

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("registry: resolve %s: %w", path, err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("registry: watch %s: %w", filepath.Dir(abs), err)
	}

	var (
		timer   *time.Timer
		pending <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs || event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(reloadDebounce)
			} else {
				timer.Reset(reloadDebounce)
			}
			pending = timer.C

		case <-pending:
			pending = nil
			h.reload(ctx, loader, abs)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			h.log().Warn("registry watcher error", "err", err)
		}
	}
}

func (h *Holder) reload(ctx context.Context, loader *Loader, path string) {
	reg, err := loader.LoadRegistry(ctx, SourceFromFile(path))
	if err != nil {
		h.log().Error("registry reload failed, keeping previous version", "path", path, "err", err)
		return
	}
	h.log().Info("registry reloaded", "path", path, "functions", reg.Len())
	h.Set(reg)
}
