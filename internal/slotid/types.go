// internal/slotid/types.go
package slotid

// Separator joins the segments of a full name.
const Separator = "::"

// Address is the structured representation of a full name.
type Address struct {
	Path []string
}
