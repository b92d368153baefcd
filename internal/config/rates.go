package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/assurlink/courtage/internal/calculation"
	"github.com/assurlink/courtage/internal/domain"
	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// LoadRates overlays a rates YAML file on the compiled-in tariff and
// validates the result. Keys absent from the file keep their default;
// lists and map entries present in the file replace the default entirely.
func LoadRates(path string) (*domain.RateTables, error) {
	tables := calculation.DefaultRateTables()
	if path == "" {
		return tables, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rates file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, tables); err != nil {
		return nil, fmt.Errorf("failed to parse rates YAML: %w", err)
	}
	if err := calculation.ValidateTables(tables); err != nil {
		return nil, fmt.Errorf("rates validation failed: %w", err)
	}
	return tables, nil
}

// RatesWatcher serves rate tables loaded from a file and reloads them when
// the file changes. A reload that fails validation keeps the previous tables.
// It implements calculation.RatesProvider.
type RatesWatcher struct {
	path    string
	current atomic.Pointer[domain.RateTables]
	logger  calculation.Logger

	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	debounce time.Duration
	done     chan struct{}
	onReload func(*domain.RateTables)
}

// NewRatesWatcher loads path once and returns a watcher serving it
func NewRatesWatcher(path string, logger calculation.Logger) (*RatesWatcher, error) {
	if logger == nil {
		logger = calculation.NopLogger{}
	}
	rw := &RatesWatcher{path: path, logger: logger, debounce: 200 * time.Millisecond}
	if err := rw.Reload(); err != nil {
		return nil, err
	}
	return rw, nil
}

// Rates returns the tables currently in force
func (rw *RatesWatcher) Rates() *domain.RateTables {
	return rw.current.Load()
}

// Path returns the watched file, empty when serving defaults
func (rw *RatesWatcher) Path() string {
	return rw.path
}

// OnReload registers a callback invoked after each successful reload
func (rw *RatesWatcher) OnReload(fn func(*domain.RateTables)) {
	rw.mu.Lock()
	rw.onReload = fn
	rw.mu.Unlock()
}

// Reload reads the file again and swaps the tables if they are valid
func (rw *RatesWatcher) Reload() error {
	tables, err := LoadRates(rw.path)
	if err != nil {
		return err
	}
	rw.current.Store(tables)
	rw.logger.Infof("rates loaded: version=%s file=%s", tables.Metadata.Version, rw.path)

	rw.mu.Lock()
	fn := rw.onReload
	rw.mu.Unlock()
	if fn != nil {
		fn(tables)
	}
	return nil
}

// Start watches the rates file until ctx is cancelled or Stop is called.
// It is a no-op when serving the compiled-in defaults.
func (rw *RatesWatcher) Start(ctx context.Context) error {
	if rw.path == "" {
		return nil
	}

	rw.mu.Lock()
	if rw.watcher != nil {
		rw.mu.Unlock()
		return nil
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		rw.mu.Unlock()
		return fmt.Errorf("failed to create rates watcher: %w", err)
	}
	// Editors replace files on save, so the directory is watched.
	if err := w.Add(filepath.Dir(rw.path)); err != nil {
		w.Close()
		rw.mu.Unlock()
		return fmt.Errorf("failed to watch %s: %w", rw.path, err)
	}
	rw.watcher = w
	rw.done = make(chan struct{})
	rw.mu.Unlock()

	go rw.run(ctx, w, rw.done)
	return nil
}

// Stop ends watching and waits for the event loop to exit
func (rw *RatesWatcher) Stop() {
	rw.mu.Lock()
	w, done := rw.watcher, rw.done
	rw.watcher = nil
	rw.mu.Unlock()
	if w == nil {
		return
	}
	w.Close()
	<-done
}

func (rw *RatesWatcher) run(ctx context.Context, w *fsnotify.Watcher, done chan struct{}) {
	defer close(done)

	target := filepath.Clean(rw.path)
	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			w.Close()
			return
		case event, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			pending = time.After(rw.debounce)
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			rw.logger.Errorf("rates watcher: %v", err)
		case <-pending:
			pending = nil
			if err := rw.Reload(); err != nil {
				rw.logger.Warnf("rates reload rejected, keeping previous tables: %v", err)
			}
		}
	}
}
