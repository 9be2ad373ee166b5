package config

import "context"

// Loader is the interface for a format-specific project loader.
type Loader interface {
	// Load reads the given files and translates them into the
	// format-agnostic model.
	Load(ctx context.Context, paths ...string) (*Project, error)
	// Extensions lists the file extensions the loader understands,
	// including the leading dot.
	Extensions() []string
}
