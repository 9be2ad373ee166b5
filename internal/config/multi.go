package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/specialistvlad/callgrid/internal/ctxlog"
	"github.com/specialistvlad/callgrid/internal/fsutil"
)

// MultiLoader discovers project files below the given paths and dispatches
// each one to the loader registered for its extension.
type MultiLoader struct {
	loaders map[string]Loader
	exts    []string
}

// NewMultiLoader creates a MultiLoader. Registering two loaders for the
// same extension is a programming error and panics.
func NewMultiLoader(loaders ...Loader) *MultiLoader {
	m := &MultiLoader{loaders: make(map[string]Loader)}
	for _, l := range loaders {
		for _, ext := range l.Extensions() {
			if _, exists := m.loaders[ext]; exists {
				panic(fmt.Sprintf("loader for extension '%s' already registered", ext))
			}
			m.loaders[ext] = l
			m.exts = append(m.exts, ext)
		}
	}
	return m
}

func (m *MultiLoader) Extensions() []string { return m.exts }

// Load walks paths, loads every matching file in discovery order and merges
// the results.
func (m *MultiLoader) Load(ctx context.Context, paths ...string) (*Project, error) {
	logger := ctxlog.FromContext(ctx)

	files, err := fsutil.Discover(paths, m.exts...)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no project files (%v) found in %v", m.exts, paths)
	}
	logger.Debug("Discovered project files.", "count", len(files), "files", files)

	project := &Project{}
	for _, file := range files {
		l := m.loaders[filepath.Ext(file)]
		p, err := l.Load(ctx, file)
		if err != nil {
			return nil, err
		}
		project.Merge(p)
	}

	logger.Debug("Project loading complete.", "views", len(project.Views), "modules", len(project.Modules), "params", len(project.Params), "calls", len(project.Calls))
	return project, nil
}
