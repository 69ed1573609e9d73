package registry

import "errors"

// Error categories for registry operations.
//
// Every error returned by the registry wraps exactly one of these, so callers
// classify failures with errors.Is:
//
//	if errors.Is(err, registry.ErrResolution) {
//	    // unknown namespace, schema, instance or item
//	}
var (
	// ErrResolution is returned when a path does not resolve: unknown namespace,
	// schema or item, instance out of range, or a group where a parameter was required.
	ErrResolution = errors.New("registry: path not resolved")

	// ErrTypeMismatch is returned by typed reads when the requested type differs
	// from the parameter's declared type. Reads never coerce.
	ErrTypeMismatch = errors.New("registry: type mismatch")

	// ErrConversion is returned when a value cannot be parsed, is out of range for
	// the target width, or does not fit the destination buffer.
	ErrConversion = errors.New("registry: conversion failed")

	// ErrStorage is returned when no storage facility is registered for an
	// operation or a backend reports an I/O failure.
	ErrStorage = errors.New("registry: storage failure")

	// ErrCommit is returned when an addressed instance has no commit handler or a
	// commit handler fails.
	ErrCommit = errors.New("registry: commit failed")

	// ErrRegistration is returned when a schema or instance cannot be registered
	// (duplicate id, malformed item tree, unsupported type).
	ErrRegistration = errors.New("registry: invalid registration")
)

// firstError remembers the first non-nil error reported to it.
// Fan-out operations use it to continue past failures and surface only the first.
type firstError struct {
	err error
}

func (f *firstError) record(err error) {
	if f.err == nil && err != nil {
		f.err = err
	}
}
