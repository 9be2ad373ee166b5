package mesh

import (
	"github.com/specialistvlad/callgrid/internal/module"
	"github.com/specialistvlad/callgrid/internal/registry"
)

// Module registers the mesh calls and modules.
type Module struct{}

func (m *Module) Register(r *registry.Registry) {
	r.RegisterCall(CallMeshDescription)
	r.RegisterCall(CallGPUMeshDescription)
	r.RegisterModule(&registry.ModuleDescription{
		ClassName: "GPUMeshes",
		Doc:       "Uploads meshes into interleaved vertex batches",
		New:       func() module.Module { return NewGPUMeshes() },
	})
	r.RegisterModule(&registry.ModuleDescription{
		ClassName: "MeshRenderer",
		Doc:       "Draws uploaded mesh batches",
		New:       func() module.Module { return NewMeshRenderer() },
	})
}
