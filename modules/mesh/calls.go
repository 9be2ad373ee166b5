package mesh

import (
	"github.com/specialistvlad/callgrid/internal/call"
	"github.com/specialistvlad/callgrid/internal/meta"
)

// CallMesh transports CPU-side meshes.
type CallMesh struct {
	call.Generic[*MeshCollection, meta.Spatial3D]
}

// CallGPUMesh transports uploaded meshes. A caller may seed the data value
// with its own collection; the callee then uploads into it.
type CallGPUMesh struct {
	call.Generic[*GPUMeshCollection, meta.Spatial3D]
}

var (
	CallMeshDescription = &call.Description{
		ClassName: "CallMesh",
		Doc:       "Call that transports mesh data",
		Functions: call.GenericFunctions,
		New:       func() call.Call { return &CallMesh{} },
	}
	CallGPUMeshDescription = &call.Description{
		ClassName: "CallGPUMesh",
		Doc:       "Call that transports uploaded mesh batches",
		Functions: call.GenericFunctions,
		New:       func() call.Call { return &CallGPUMesh{} },
	}
)

// requestFrame pushes the frame ID into c's metadata before an invoke.
func requestFrame[C interface {
	MetaData() meta.Spatial3D
	SetMetaData(meta.Spatial3D)
}](c C, frame uint32) {
	md := c.MetaData()
	md.FrameID = frame
	c.SetMetaData(md)
}
