// Package yamlstore keeps registry values in a single YAML document:
//
//	version: 1
//	values:
//	  1/0/0/0: {type: u8, value: "0"}
//	  1/0/0/1: {type: u8, value: "255"}
//
// A save writes the whole document once, atomically, at its end.
package yamlstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/nerrad567/gray-logic-registry/internal/registry"
	"github.com/nerrad567/gray-logic-registry/internal/storage"
)

// FormatVersion is the document version written by this package.
const FormatVersion = 1

const filePerm = 0600

var (
	// ErrUnsupportedVersion is returned for documents from a newer format.
	ErrUnsupportedVersion = errors.New("yamlstore: unsupported document version")

	// ErrInvalidDocument is returned when the file is not a values document.
	ErrInvalidDocument = errors.New("yamlstore: invalid document")
)

type document struct {
	Version int                       `yaml:"version"`
	Values  map[string]storage.Record `yaml:"values"`
}

// Store reads and writes one YAML snapshot file.
type Store struct {
	path string

	mu      sync.Mutex
	pending map[string]storage.Record // non-nil between SaveStart and SaveEnd
}

// New returns a store for the document at path. The file is created on the
// first save.
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the document's file path.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) read() (map[string]storage.Record, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]storage.Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidDocument, s.path, err)
	}
	if doc.Version > FormatVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, doc.Version)
	}
	if doc.Values == nil {
		doc.Values = map[string]storage.Record{}
	}
	return doc.Values, nil
}

func (s *Store) write(values map[string]storage.Record) error {
	data, err := yaml.Marshal(document{Version: FormatVersion, Values: values})
	if err != nil {
		return fmt.Errorf("encoding yaml: %w", err)
	}
	return storage.WriteFileAtomic(s.path, data, filePerm)
}

// Load calls fn for every value under p in path order. Entries with a bad
// path or record are skipped and the first such error is returned.
func (s *Store) Load(ctx context.Context, p registry.Path, fn registry.LoadFunc) error {
	values, err := s.read()
	if err != nil {
		return err
	}

	var firstErr error
	paths := make([]registry.Path, 0, len(values))
	for key := range values {
		ip, err := registry.ParsePath(key)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("%w: %w", ErrInvalidDocument, err)
			}
			continue
		}
		if p.Contains(ip) {
			paths = append(paths, ip)
		}
	}
	storage.SortPaths(paths)

	for _, ip := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		v, err := storage.Decode(values[ip.String()])
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("%s: %w", ip, err)
			}
			continue
		}
		_ = fn(ip, v)
	}
	return firstErr
}

// SaveStart seeds the pending snapshot with the file's current values.
func (s *Store) SaveStart(context.Context) error {
	values, err := s.read()
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.pending = values
	s.mu.Unlock()
	return nil
}

// Save records v in the pending snapshot. Outside a SaveStart/SaveEnd
// bracket the file is updated immediately.
func (s *Store) Save(_ context.Context, p registry.Path, v registry.Value) error {
	rec, err := storage.Encode(v)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending != nil {
		s.pending[p.String()] = rec
		return nil
	}

	values, err := s.read()
	if err != nil {
		return err
	}
	values[p.String()] = rec
	return s.write(values)
}

// SaveEnd writes the pending snapshot and ends the bracket.
func (s *Store) SaveEnd(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values := s.pending
	s.pending = nil
	if values == nil {
		return nil
	}
	return s.write(values)
}

// Lookup returns the value held for p, from the pending snapshot while a
// save is in progress.
func (s *Store) Lookup(_ context.Context, p registry.Path) (registry.Value, bool, error) {
	s.mu.Lock()
	values := s.pending
	s.mu.Unlock()

	if values == nil {
		var err error
		if values, err = s.read(); err != nil {
			return registry.Value{}, false, err
		}
	}

	rec, ok := values[p.String()]
	if !ok {
		return registry.Value{}, false, nil
	}
	v, err := storage.Decode(rec)
	if err != nil {
		return registry.Value{}, false, err
	}
	return v, true, nil
}
