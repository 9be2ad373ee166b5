package app

import (
	"context"
	"fmt"
	"slices"

	"github.com/specialistvlad/callgrid/internal/ctxlog"
	"github.com/specialistvlad/callgrid/internal/graph"
)

// BuildGraph instantiates the project: views and modules first, then the
// calls, then the initial parameter values. Finally every module is
// created.
func (a *App) BuildGraph(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	g := graph.New(ctx, a.registry)

	for _, def := range slices.Concat(a.project.Views, a.project.Modules) {
		if _, err := g.AddModule(ctx, def.Class, def.Name); err != nil {
			return fmt.Errorf("%s: %w", def.Source, err)
		}
	}
	for _, def := range a.project.Calls {
		if err := g.Connect(ctx, def.Class, def.From, def.To); err != nil {
			return fmt.Errorf("%s: call %s: %w", def.Source, def.Class, err)
		}
	}
	for _, def := range a.project.Params {
		if err := g.SetParamCty(def.Name, def.Value); err != nil {
			return fmt.Errorf("%s: %w", def.Source, err)
		}
	}
	if err := g.Create(ctx); err != nil {
		return err
	}

	a.graph = g
	logger.Info("Module graph built.", "modules", len(g.Instances()), "views", len(g.Views()), "calls", len(g.Connections()))
	return nil
}
