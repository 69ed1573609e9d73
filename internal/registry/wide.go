//go:build !registry_narrow

package registry

// WideTypes reports whether 64-bit integer and floating point parameter types
// are compiled in. Build with -tags registry_narrow to drop them.
const WideTypes = true
