package lisp_adapter

import (
	"context"
	"fmt"
	"os"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"
	"github.com/specialistvlad/callgrid/internal/config"
	"github.com/specialistvlad/callgrid/internal/ctxlog"
)

// Loader is the Lisp implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new Lisp project loader.
func NewLoader() *Loader {
	return &Loader{}
}

func (l *Loader) Extensions() []string { return []string{".lisp"} }

// Load evaluates every script in a fresh sandbox.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Project, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Lisp loader started.", "path_count", len(paths))

	project := &config.Project{}
	for _, file := range paths {
		src, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read project script %s: %w", file, err)
		}
		p, err := Evaluate(string(src), file)
		if err != nil {
			return nil, err
		}
		project.Merge(p)
		logger.Debug("Successfully evaluated project script.", "file", file)
	}
	return project, nil
}

// Evaluate runs one script and returns what it declared. file is only used
// for error messages and ModuleDef.Source.
func Evaluate(source, file string) (*config.Project, error) {
	project := &config.Project{}
	if strings.TrimSpace(source) == "" {
		return project, nil
	}

	// Sandbox mode prevents scripts from accessing the filesystem or syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()
	registerBuiltins(env, project, file)

	if err := env.LoadString(source); err != nil {
		return nil, fmt.Errorf("failed to parse project script %s: %w", file, err)
	}
	if _, err := env.Run(); err != nil {
		return nil, fmt.Errorf("failed to evaluate project script %s: %w", file, err)
	}
	return project, nil
}
