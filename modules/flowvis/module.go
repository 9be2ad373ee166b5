package flowvis

import (
	"github.com/specialistvlad/callgrid/internal/module"
	"github.com/specialistvlad/callgrid/internal/registry"
)

// Module registers the flowvis calls and modules.
type Module struct{}

func (m *Module) Register(r *registry.Registry) {
	r.RegisterCall(CallTriangleMeshDescription)
	r.RegisterCall(CallMeshDataDescription)
	r.RegisterCall(CallResultReaderDescription)
	r.RegisterCall(CallResultWriterDescription)
	r.RegisterModule(&registry.ModuleDescription{
		ClassName: "ImplicitTopology",
		Doc:       "Computes the implicit topology of a 2D vector field",
		New:       func() module.Module { return NewImplicitTopology() },
	})
	r.RegisterModule(&registry.ModuleDescription{
		ClassName: "ResultFile",
		Doc:       "Reads and writes implicit topology results",
		New:       func() module.Module { return NewResultFile() },
	})
	r.RegisterModule(&registry.ModuleDescription{
		ClassName: "TriangleMeshRenderer",
		Doc:       "Draws a triangle mesh colored by a data set",
		New:       func() module.Module { return NewTriangleMeshRenderer() },
	})
}
