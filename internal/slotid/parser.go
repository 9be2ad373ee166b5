// internal/slotid/parser.go
package slotid

import (
	"fmt"
	"regexp"
	"strings"
)

// segmentRegex matches a single segment such as `gpu` or `anim-speed`.
var segmentRegex = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

// isValidSegmentName checks for undesirable but technically valid names.
func isValidSegmentName(name string) bool {
	return name != "." && name != ".." && name != "-"
}

// Parse creates an Address from its string form. A leading "::" is allowed.
func Parse(raw string) (*Address, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(raw), Separator)
	if trimmed == "" {
		return nil, fmt.Errorf("full name cannot be empty")
	}

	addr := &Address{}
	for _, segment := range strings.Split(trimmed, Separator) {
		if segment == "" {
			return nil, fmt.Errorf("full name %q contains an empty segment", raw)
		}
		if !segmentRegex.MatchString(segment) || !isValidSegmentName(segment) {
			return nil, fmt.Errorf("invalid segment %q in full name %q", segment, raw)
		}
		addr.Path = append(addr.Path, segment)
	}
	return addr, nil
}

// SplitSlot parses "module::slot" and returns the canonical module name and
// the slot name.
func SplitSlot(raw string) (module, slot string, err error) {
	addr, err := Parse(raw)
	if err != nil {
		return "", "", err
	}
	if len(addr.Path) < 2 {
		return "", "", fmt.Errorf("full name %q must name a module and a slot", raw)
	}
	return addr.Module().String(), addr.Leaf(), nil
}

// Canonical normalizes a module name.
func Canonical(raw string) (string, error) {
	addr, err := Parse(raw)
	if err != nil {
		return "", err
	}
	return addr.String(), nil
}
