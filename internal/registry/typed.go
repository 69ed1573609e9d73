package registry

// Typed accessors. Getters fail with ErrTypeMismatch when the parameter is
// declared with another type; setters coerce like Set.

func (r *Registry) GetBool(p Path) (bool, error) {
	v, err := r.GetTyped(p, TypeBool)
	if err != nil {
		return false, err
	}
	return v.Bool()
}

func (r *Registry) SetBool(p Path, b bool) error { return r.Set(p, BoolValue(b)) }

// GetString returns a copy of a string parameter's text.
func (r *Registry) GetString(p Path) (string, error) {
	v, err := r.GetTyped(p, TypeString)
	if err != nil {
		return "", err
	}
	return v.Text()
}

func (r *Registry) SetString(p Path, s string) error { return r.Set(p, StringValue(s)) }

// GetBytes returns a copy of a bytes parameter's full storage.
func (r *Registry) GetBytes(p Path) ([]byte, error) {
	v, err := r.GetTyped(p, TypeBytes)
	if err != nil {
		return nil, err
	}
	return v.Clone().Buf, nil
}

func (r *Registry) SetBytes(p Path, b []byte) error { return r.Set(p, BytesValue(b)) }

func (r *Registry) GetUint8(p Path) (uint8, error) {
	v, err := r.GetTyped(p, TypeUint8)
	if err != nil {
		return 0, err
	}
	return v.Uint8()
}

func (r *Registry) SetUint8(p Path, n uint8) error { return r.Set(p, Uint8Value(n)) }

func (r *Registry) GetUint16(p Path) (uint16, error) {
	v, err := r.GetTyped(p, TypeUint16)
	if err != nil {
		return 0, err
	}
	return v.Uint16()
}

func (r *Registry) SetUint16(p Path, n uint16) error { return r.Set(p, Uint16Value(n)) }

func (r *Registry) GetUint32(p Path) (uint32, error) {
	v, err := r.GetTyped(p, TypeUint32)
	if err != nil {
		return 0, err
	}
	return v.Uint32()
}

func (r *Registry) SetUint32(p Path, n uint32) error { return r.Set(p, Uint32Value(n)) }

func (r *Registry) GetInt8(p Path) (int8, error) {
	v, err := r.GetTyped(p, TypeInt8)
	if err != nil {
		return 0, err
	}
	return v.Int8()
}

func (r *Registry) SetInt8(p Path, n int8) error { return r.Set(p, Int8Value(n)) }

func (r *Registry) GetInt16(p Path) (int16, error) {
	v, err := r.GetTyped(p, TypeInt16)
	if err != nil {
		return 0, err
	}
	return v.Int16()
}

func (r *Registry) SetInt16(p Path, n int16) error { return r.Set(p, Int16Value(n)) }

func (r *Registry) GetInt32(p Path) (int32, error) {
	v, err := r.GetTyped(p, TypeInt32)
	if err != nil {
		return 0, err
	}
	return v.Int32()
}

func (r *Registry) SetInt32(p Path, n int32) error { return r.Set(p, Int32Value(n)) }

// In narrow builds no parameter can be declared with the 64-bit or float
// types, so these getters fail with ErrTypeMismatch and the setters with
// ErrConversion.

func (r *Registry) GetUint64(p Path) (uint64, error) {
	v, err := r.GetTyped(p, TypeUint64)
	if err != nil {
		return 0, err
	}
	return v.Uint64()
}

func (r *Registry) SetUint64(p Path, n uint64) error { return r.Set(p, Uint64Value(n)) }

func (r *Registry) GetInt64(p Path) (int64, error) {
	v, err := r.GetTyped(p, TypeInt64)
	if err != nil {
		return 0, err
	}
	return v.Int64()
}

func (r *Registry) SetInt64(p Path, n int64) error { return r.Set(p, Int64Value(n)) }

func (r *Registry) GetFloat32(p Path) (float32, error) {
	v, err := r.GetTyped(p, TypeFloat32)
	if err != nil {
		return 0, err
	}
	return v.Float32()
}

func (r *Registry) SetFloat32(p Path, f float32) error { return r.Set(p, Float32Value(f)) }

func (r *Registry) GetFloat64(p Path) (float64, error) {
	v, err := r.GetTyped(p, TypeFloat64)
	if err != nil {
		return 0, err
	}
	return v.Float64()
}

func (r *Registry) SetFloat64(p Path, f float64) error { return r.Set(p, Float64Value(f)) }
