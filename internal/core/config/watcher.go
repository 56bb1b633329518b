package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reloadDebounce = 100 * time.Millisecond

// Watcher reloads a config file when it changes on disk and hands every
// successfully validated config to the callback.
type Watcher struct {
	path     string
	callback func(*Config)
	stop     chan struct{}
	once     sync.Once
	wg       sync.WaitGroup
}

func NewWatcher(path string, callback func(*Config)) *Watcher {
	return &Watcher{
		path:     filepath.Clean(path),
		callback: callback,
		stop:     make(chan struct{}),
	}
}

func (w *Watcher) Start(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	// The directory is watched so atomic saves (rename over the file) are seen.
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		fsw.Close()
		return err
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer fsw.Close()
		slog.Debug("watching config file", "path", w.path)

		var timer *time.Timer
		defer func() {
			if timer != nil {
				timer.Stop()
			}
		}()

		for {
			select {
			case event, ok := <-fsw.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != w.path {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(reloadDebounce, w.reload)

			case err, ok := <-fsw.Errors:
				if !ok {
					return
				}
				slog.Warn("config watcher error", "error", err)

			case <-w.stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}

func (w *Watcher) Stop() {
	w.once.Do(func() { close(w.stop) })
	w.wg.Wait()
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		slog.Warn("config reload failed; keeping previous configuration", "path", w.path, "error", err)
		return
	}
	ApplyEnvOverrides(cfg)
	if err := Validate(cfg); err != nil {
		slog.Warn("config reload rejected", "path", w.path, "error", err)
		return
	}
	slog.Info("configuration reloaded", "path", w.path)
	if w.callback != nil {
		w.callback(cfg)
	}
}
