// internal/slotid/address.go
package slotid

import (
	"slices"
	"strings"
)

// String serializes the Address without the leading root marker.
func (a *Address) String() string {
	if a == nil {
		return ""
	}
	return strings.Join(a.Path, Separator)
}

// Global serializes the Address with the leading root marker.
func (a *Address) Global() string {
	if a == nil || len(a.Path) == 0 {
		return ""
	}
	return Separator + a.String()
}

// Leaf returns the last segment.
func (a *Address) Leaf() string {
	if a == nil || len(a.Path) == 0 {
		return ""
	}
	return a.Path[len(a.Path)-1]
}

// Module returns the address without its last segment.
func (a *Address) Module() *Address {
	if a == nil || len(a.Path) < 2 {
		return &Address{}
	}
	return &Address{Path: slices.Clone(a.Path[:len(a.Path)-1])}
}

// Splits lists every (module, rest) split of the address, longest module
// first. It is used to resolve names whose slot part contains "::".
func (a *Address) Splits() [][2]string {
	if a == nil {
		return nil
	}
	var out [][2]string
	for i := len(a.Path) - 1; i >= 1; i-- {
		out = append(out, [2]string{
			strings.Join(a.Path[:i], Separator),
			strings.Join(a.Path[i:], Separator),
		})
	}
	return out
}

// Equal checks for deep equality between two Address pointers.
func (a *Address) Equal(other *Address) bool {
	if a == nil || other == nil {
		return a == other
	}
	return slices.Equal(a.Path, other.Path)
}

// Join builds the canonical full name of a slot on a module.
func Join(module, slot string) string {
	return strings.TrimPrefix(module, Separator) + Separator + slot
}
