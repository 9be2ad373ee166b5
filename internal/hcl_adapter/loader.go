package hcl_adapter

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/callgrid/internal/config"
	"github.com/specialistvlad/callgrid/internal/ctxlog"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL project loader.
func NewLoader() *Loader {
	return &Loader{}
}

func (l *Loader) Extensions() []string { return []string{".hcl"} }

// Load parses every given file and merges all discovered blocks into one
// project, preserving declaration order.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Project, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	project := &config.Project{}
	parser := hclparse.NewParser()

	for _, file := range paths {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		for _, v := range root.Views {
			def, params, err := l.translateModule(ctx, v, file)
			if err != nil {
				return nil, err
			}
			project.Views = append(project.Views, def)
			project.Params = append(project.Params, params...)
		}
		for _, m := range root.Modules {
			def, params, err := l.translateModule(ctx, m, file)
			if err != nil {
				return nil, err
			}
			project.Modules = append(project.Modules, def)
			project.Params = append(project.Params, params...)
		}
		for _, c := range root.Calls {
			project.Calls = append(project.Calls, &config.CallDef{Class: c.Class, From: c.From, To: c.To, Source: file})
		}
		for _, p := range root.Params {
			def, err := translateParam(p, "", file)
			if err != nil {
				return nil, err
			}
			project.Params = append(project.Params, def)
		}
		logger.Debug("Successfully loaded HCL file.", "file", file)
	}

	logger.Debug("HCL loading complete.", "views", len(project.Views), "modules", len(project.Modules), "params", len(project.Params), "calls", len(project.Calls))
	return project, nil
}
