package directory

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long Watch waits after the last change before
// reloading.
const DefaultDebounce = 100 * time.Millisecond

// ErrNotLoaded is returned by Watch before any file was loaded.
var ErrNotLoaded = errors.New("directory has no backing file")

// WatchConfig configures Watch.
type WatchConfig struct {
	// Debounce coalesces bursts of writes. Zero means DefaultDebounce.
	Debounce time.Duration

	// OnReload is called after every reload attempt with its error.
	OnReload func(error)
}

// Watch reloads the directory whenever its backing file changes, until
// ctx is done. The parent directory is watched so editors that replace
// the file by rename are handled. A failed reload keeps the previous
// contents.
func (d *Directory) Watch(ctx context.Context, cfg WatchConfig) error {
	path := d.Path()
	if path == "" {
		return ErrNotLoaded
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer func() { _ = w.Close() }()

	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}
	d.log.Debug("watching %s", abs)

	var (
		mu    sync.Mutex
		timer *time.Timer
		wg    sync.WaitGroup
	)
	reload := func() {
		defer wg.Done()
		err := d.Reload()
		if err != nil {
			d.log.Warn("reload failed: %v", err)
		}
		if cfg.OnReload != nil {
			cfg.OnReload(err)
		}
	}
	schedule := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil && timer.Stop() {
			wg.Done()
		}
		wg.Add(1)
		timer = time.AfterFunc(cfg.Debounce, reload)
	}
	defer func() {
		mu.Lock()
		if timer != nil && timer.Stop() {
			wg.Done()
		}
		mu.Unlock()
		wg.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				schedule()
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			d.log.Warn("watch error: %v", err)
		}
	}
}
