package registry

import (
	"fmt"
	"time"
)

// Get reads the parameter at p, reporting its declared type.
//
// The returned Value aliases live instance memory. It is only valid until the
// next write to that parameter; Clone it to keep it.
func (r *Registry) Get(p Path) (v Value, err error) {
	start := time.Now()
	defer func() { r.observe("get", start, err) }()
	return r.get(p, TypeNone)
}

// GetTyped reads the parameter at p and requires it to be of type want.
// Reads never coerce: a different declared type fails with ErrTypeMismatch.
// TypeNone behaves like Get.
func (r *Registry) GetTyped(p Path, want Type) (v Value, err error) {
	start := time.Now()
	defer func() { r.observe("get", start, err) }()
	return r.get(p, want)
}

func (r *Registry) get(p Path, want Type) (Value, error) {
	t, storage, err := r.resolveParam(p)
	if err != nil {
		return Value{}, err
	}
	if want != TypeNone && want != t.item.Type {
		return Value{}, fmt.Errorf("%w: %s is %s, requested %s", ErrTypeMismatch, p, t.item.Type, want)
	}
	return decode(t.item.Type, storage)
}

// Set writes v to the parameter at p.
//
// A value of the parameter's declared type is copied as-is after length
// checks. A value of another type is converted through its canonical string
// form. A TypeNone value is taken as raw bytes already in the parameter's
// encoding. Instance memory is modified in place; on error it is left as it
// was.
func (r *Registry) Set(p Path, v Value) (err error) {
	start := time.Now()
	defer func() { r.observe("set", start, err) }()

	t, storage, err := r.resolveParam(p)
	if err != nil {
		return err
	}
	if err := encode(t.item.Type, storage, v); err != nil {
		return fmt.Errorf("set %s: %w", p, err)
	}

	if len(r.listeners) > 0 {
		cur, err := decode(t.item.Type, storage)
		if err == nil {
			cur = cur.Clone()
			for _, fn := range r.listeners {
				fn(p, cur)
			}
		}
	}
	return nil
}

// SetParsed parses s as the parameter's declared type and writes it.
func (r *Registry) SetParsed(p Path, s string) error {
	pt, err := r.ParamType(p)
	if err != nil {
		return err
	}
	v, err := ParseValue(pt, s)
	if err != nil {
		return fmt.Errorf("set %s: %w", p, err)
	}
	return r.Set(p, v)
}

// GetFormatted reads the parameter at p in its canonical string form.
func (r *Registry) GetFormatted(p Path) (string, error) {
	v, err := r.Get(p)
	if err != nil {
		return "", err
	}
	return FormatString(v)
}
