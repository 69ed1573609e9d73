//go:build registry_narrow

package registry

// WideTypes reports whether 64-bit integer and floating point parameter types
// are compiled in. This build was made with -tags registry_narrow.
const WideTypes = false
