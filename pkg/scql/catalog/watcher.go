package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Update is the result of reloading one changed catalog file.
type Update struct {
	Path    string
	Sources []Source
	Err     error
}

// Watcher reloads YAML catalogs when they change and delivers the result
// over a channel. It never touches a registry itself.
type Watcher struct {
	watcher  *fsnotify.Watcher
	files    map[string]bool // absolute paths
	updates  chan Update
	log      *slog.Logger
	debounce time.Duration
}

// NewWatcher creates a watcher for the given catalog files.
func NewWatcher(files []string, log *slog.Logger) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	w := &Watcher{
		watcher:  fsWatcher,
		files:    make(map[string]bool),
		updates:  make(chan Update, 16),
		log:      log,
		debounce: 100 * time.Millisecond,
	}
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			fsWatcher.Close()
			return nil, fmt.Errorf("resolving %s: %w", f, err)
		}
		w.files[abs] = true
	}
	return w, nil
}

// Updates returns the channel reloads are sent on. It is closed when the
// watcher stops.
func (w *Watcher) Updates() <-chan Update {
	return w.updates
}

// Start begins watching. Directories are watched rather than files so that
// editors that replace a file on save are still seen.
func (w *Watcher) Start(ctx context.Context) error {
	dirs := make(map[string]bool)
	for f := range w.files {
		dirs[filepath.Dir(f)] = true
	}
	for dir := range dirs {
		if err := w.watcher.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
		w.log.Info("watching catalogs", "dir", dir)
	}

	go w.eventLoop(ctx)
	return nil
}

// eventLoop processes file system events. Changes are collected until
// none has arrived for the debounce interval, then each changed file is
// reloaded once.
func (w *Watcher) eventLoop(ctx context.Context) {
	defer close(w.updates)

	pending := make(map[string]bool)
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			// Only handle write and create events
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			path := filepath.Clean(event.Name)
			if !w.files[path] {
				continue
			}
			pending[path] = true
			timer.Reset(w.debounce)

		case <-timer.C:
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			sort.Strings(paths)
			clear(pending)

			for _, path := range paths {
				u := w.reload(path)
				select {
				case w.updates <- u:
				case <-ctx.Done():
					return
				}
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Error("watcher error", "err", err)
		}
	}
}

func (w *Watcher) reload(path string) Update {
	sources, err := LoadFile(path)
	if err != nil {
		w.log.Warn("catalog reload failed", "path", path, "err", err)
		return Update{Path: path, Err: err}
	}
	w.log.Info("catalog reloaded", "path", path, "sources", len(sources))
	return Update{Path: path, Sources: sources}
}

// Close stops the watcher
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
