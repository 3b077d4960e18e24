package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 100 * time.Millisecond

// pathWatcher reports changes to a set of files and directory trees.
type pathWatcher struct {
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	debounce time.Duration

	files map[string]bool // watched files, by absolute path
	trees map[string]bool // watched directories, by absolute path
}

// newPathWatcher starts watching paths. Files are watched through their
// directory so editors that replace files on save are still seen.
func newPathWatcher(logger *slog.Logger, paths ...string) (*pathWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	pw := &pathWatcher{
		watcher:  w,
		logger:   logger,
		debounce: watchDebounce,
		files:    make(map[string]bool),
		trees:    make(map[string]bool),
	}
	for _, p := range paths {
		if err := pw.add(p); err != nil {
			_ = w.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", p, err)
		}
	}
	return pw, nil
}

func (pw *pathWatcher) add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		pw.files[abs] = true
		return pw.watcher.Add(filepath.Dir(abs))
	}
	return filepath.Walk(abs, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		pw.trees[p] = true
		return pw.watcher.Add(p)
	})
}

func (pw *pathWatcher) relevant(name string) bool {
	abs, err := filepath.Abs(name)
	if err != nil {
		return false
	}
	return pw.files[abs] || pw.trees[filepath.Dir(abs)]
}

// Run calls onChange after each burst of changes until ctx is done.
func (pw *pathWatcher) Run(ctx context.Context, onChange func()) error {
	defer func() { _ = pw.watcher.Close() }()

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-pw.watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if !pw.relevant(event.Name) {
				continue
			}
			if event.Op&fsnotify.Create != 0 && pw.trees[filepath.Dir(event.Name)] {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = pw.add(event.Name)
				}
			}
			pw.logger.Debug("change detected", slog.String("path", event.Name), slog.String("op", event.Op.String()))

			if timer == nil {
				timer = time.NewTimer(pw.debounce)
			} else {
				timer.Reset(pw.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			onChange()

		case err, ok := <-pw.watcher.Errors:
			if !ok {
				return nil
			}
			pw.logger.Warn("watcher error", slog.Any("error", err))
		}
	}
}
