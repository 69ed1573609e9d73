// Package fsstore is a filesystem storage facility. The directory tree
// mirrors textual parameter paths and each parameter is one file holding
// the value's raw bytes:
//
//	<root>/1/0/0/2    raw bytes of parameter 1/0/0/2
//
// Files carry no type, so loaded values are untyped (registry.TypeNone) and
// are written into the parameter's storage as-is.
package fsstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/nerrad567/gray-logic-registry/internal/registry"
	"github.com/nerrad567/gray-logic-registry/internal/storage"
)

// ErrInvalidEntry is returned for files under the root that do not name a
// parameter path.
var ErrInvalidEntry = errors.New("fsstore: invalid entry")

const filePerm = 0600

// Logger is the logging interface used by the store.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Store persists values as files under a root directory.
type Store struct {
	root   string
	logger Logger
}

// New returns a store rooted at dir. The directory is created on first save.
func New(dir string) *Store {
	return &Store{root: filepath.Clean(dir), logger: noopLogger{}}
}

// SetLogger sets the logger used by Watch.
func (s *Store) SetLogger(logger Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Root returns the store's root directory.
func (s *Store) Root() string {
	return s.root
}

func (s *Store) fileName(p registry.Path) string {
	if p.IsRoot() {
		return s.root
	}
	return filepath.Join(s.root, filepath.FromSlash(p.String()))
}

// pathOf converts a file name under the root back to a registry path.
func (s *Store) pathOf(name string) (registry.Path, error) {
	rel, err := filepath.Rel(s.root, name)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return registry.Path{}, fmt.Errorf("%w: %s is outside %s", ErrInvalidEntry, name, s.root)
	}
	p, err := registry.ParsePath(filepath.ToSlash(rel))
	if err != nil {
		return registry.Path{}, fmt.Errorf("%w: %s: %w", ErrInvalidEntry, rel, err)
	}
	return p, nil
}

// hidden reports temp files left by in-flight atomic writes.
func hidden(name string) bool {
	return strings.HasPrefix(filepath.Base(name), ".")
}

// Load calls fn with the raw content of every file under p, in path order.
// A missing directory holds no values. Unreadable or misnamed files are
// skipped and the first such error is returned.
func (s *Store) Load(ctx context.Context, p registry.Path, fn registry.LoadFunc) error {
	var (
		paths    []registry.Path
		firstErr error
	)
	record := func(err error) {
		if firstErr == nil {
			firstErr = err
		}
	}

	err := filepath.WalkDir(s.fileName(p), func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			record(err)
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() || hidden(name) {
			return nil
		}
		ip, err := s.pathOf(name)
		if err != nil {
			record(err)
			return nil
		}
		paths = append(paths, ip)
		return nil
	})
	if err != nil {
		return err
	}

	storage.SortPaths(paths)
	for _, ip := range paths {
		data, err := os.ReadFile(s.fileName(ip))
		if err != nil {
			record(fmt.Errorf("reading %s: %w", ip, err))
			continue
		}
		_ = fn(ip, registry.RawValue(data))
	}
	return firstErr
}

// Save writes v's bytes to the file for p, replacing it atomically.
func (s *Store) Save(_ context.Context, p registry.Path, v registry.Value) error {
	if p.Level() != registry.LevelItem {
		return fmt.Errorf("%w: %s is not a parameter path", ErrInvalidEntry, p)
	}
	return storage.WriteFileAtomic(s.fileName(p), v.Buf, filePerm)
}

// Lookup returns the raw bytes stored for p as an untyped value.
func (s *Store) Lookup(_ context.Context, p registry.Path) (registry.Value, bool, error) {
	data, err := os.ReadFile(s.fileName(p))
	if errors.Is(err, fs.ErrNotExist) {
		return registry.Value{}, false, nil
	}
	if err != nil {
		return registry.Value{}, false, err
	}
	return registry.RawValue(data), true, nil
}
