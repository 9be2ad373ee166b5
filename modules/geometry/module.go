package geometry

import (
	"github.com/specialistvlad/callgrid/internal/module"
	"github.com/specialistvlad/callgrid/internal/registry"
)

// Module registers SDFMeshSource. CallMesh itself is registered by the
// mesh package.
type Module struct{}

func (m *Module) Register(r *registry.Registry) {
	r.RegisterModule(&registry.ModuleDescription{
		ClassName: "SDFMeshSource",
		Doc:       "Triangulates a sphere, box or cylinder",
		New:       func() module.Module { return NewSDFMeshSource() },
	})
}
