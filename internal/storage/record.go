package storage

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/nerrad567/gray-logic-registry/internal/registry"
)

// ErrInvalidRecord is returned when a stored record cannot be decoded.
var ErrInvalidRecord = errors.New("storage: invalid record")

// Record is the textual form of a stored value. Value holds the canonical
// string form for typed values and base64 for untyped raw bytes.
type Record struct {
	Type  string `json:"type" yaml:"type"`
	Value string `json:"value" yaml:"value"`
}

// Encode converts v to its record form.
func Encode(v registry.Value) (Record, error) {
	if v.Type == registry.TypeNone {
		return Record{Type: registry.TypeNone.String(), Value: base64.StdEncoding.EncodeToString(v.Buf)}, nil
	}
	s, err := registry.FormatString(v)
	if err != nil {
		return Record{}, err
	}
	return Record{Type: v.Type.String(), Value: s}, nil
}

// ParseType is registry.ParseType extended with "none", the type name of
// untyped raw values.
func ParseType(name string) (registry.Type, error) {
	if name == registry.TypeNone.String() {
		return registry.TypeNone, nil
	}
	return registry.ParseType(name)
}

// Decode converts a record back to a value.
func Decode(r Record) (registry.Value, error) {
	t, err := ParseType(r.Type)
	if err != nil {
		return registry.Value{}, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}
	if t == registry.TypeNone {
		b, err := base64.StdEncoding.DecodeString(r.Value)
		if err != nil {
			return registry.Value{}, fmt.Errorf("%w: raw value: %w", ErrInvalidRecord, err)
		}
		return registry.RawValue(b), nil
	}
	v, err := registry.ParseValue(t, r.Value)
	if err != nil {
		return registry.Value{}, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}
	return v, nil
}
