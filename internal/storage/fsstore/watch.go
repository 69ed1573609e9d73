package fsstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/nerrad567/gray-logic-registry/internal/registry"
)

// ChangeFunc is called with the path of a parameter file that was written.
type ChangeFunc func(p registry.Path)

// Watch reports parameter files created or written under the root until ctx
// is done. fsnotify does not recurse, so every directory is watched and new
// directories are added as they appear.
//
// Watch blocks; run it in its own goroutine. It returns nil when ctx ends.
func (s *Store) Watch(ctx context.Context, fn ChangeFunc) error {
	if fn == nil {
		panic("fsstore: nil ChangeFunc")
	}
	if err := os.MkdirAll(s.root, 0750); err != nil {
		return fmt.Errorf("creating %s: %w", s.root, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := s.addTree(watcher, s.root); err != nil {
		return err
	}

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			s.handleEvent(watcher, event, fn)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("file watcher error", "root", s.root, "error", err)

		case <-ctx.Done():
			return nil
		}
	}
}

func (s *Store) handleEvent(watcher *fsnotify.Watcher, event fsnotify.Event, fn ChangeFunc) {
	// Atomic saves land as Create when the temp file is renamed into place.
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 || hidden(event.Name) {
		return
	}

	info, err := os.Stat(event.Name)
	if err != nil {
		return
	}
	if info.IsDir() {
		if err := s.addTree(watcher, event.Name); err != nil {
			s.logger.Warn("watching new directory failed", "dir", event.Name, "error", err)
		}
		return
	}

	p, err := s.pathOf(event.Name)
	if err != nil {
		s.logger.Debug("ignoring file", "file", event.Name, "error", err)
		return
	}
	fn(p)
}

// addTree watches dir and every directory below it.
func (s *Store) addTree(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := watcher.Add(name); err != nil {
			return fmt.Errorf("watch directory %s: %w", name, err)
		}
		return nil
	})
}
