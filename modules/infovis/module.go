package infovis

import (
	"github.com/specialistvlad/callgrid/internal/module"
	"github.com/specialistvlad/callgrid/internal/registry"
)

// Module registers the infovis calls and modules.
type Module struct{}

func (m *Module) Register(r *registry.Registry) {
	r.RegisterCall(CallTableDescription)
	r.RegisterModule(&registry.ModuleDescription{
		ClassName: "TableSource",
		Doc:       "Serves a float table from CSV or synthetic data",
		New:       func() module.Module { return NewTableSource() },
	})
	r.RegisterModule(&registry.ModuleDescription{
		ClassName: "ScatterplotMatrix",
		Doc:       "Lays out a scatterplot matrix of a float table",
		New:       func() module.Module { return NewScatterplotMatrix() },
	})
}
