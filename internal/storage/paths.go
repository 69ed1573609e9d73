package storage

import (
	"slices"

	"github.com/nerrad567/gray-logic-registry/internal/registry"
)

// ComparePaths orders paths segment by segment numerically, so that
// "1/0/0/2" sorts before "1/0/0/10". A parent sorts before its children.
func ComparePaths(a, b registry.Path) int {
	return slices.Compare(a.Segments(), b.Segments())
}

// SortPaths sorts ps in place with ComparePaths.
func SortPaths(ps []registry.Path) {
	slices.SortFunc(ps, ComparePaths)
}
