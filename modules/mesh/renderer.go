package mesh

import (
	"github.com/specialistvlad/callgrid/internal/call"
	"github.com/specialistvlad/callgrid/internal/chain"
	"github.com/specialistvlad/callgrid/internal/module"
	"github.com/specialistvlad/callgrid/internal/view"
)

// batch is one draw command derived from an uploaded mesh.
type batch struct {
	vertices  int
	triangles int
}

// MeshRenderer draws the batches of a GPU mesh collection. Drawing means
// reporting statistics on the render call.
type MeshRenderer struct {
	module.Base

	gpuMeshes *module.CallerSlot
	rendering *module.CalleeSlot

	gate    chain.Gate
	batches []batch
}

func NewMeshRenderer() *MeshRenderer {
	m := &MeshRenderer{}
	m.gpuMeshes = m.MakeCallerSlot("gpuMeshes", "Connects the uploaded meshes", CallGPUMeshDescription.ClassName)
	m.rendering = m.MakeCalleeSlot("rendering", "Renders the meshes")
	m.rendering.SetCallback(view.CallRender3DDescription.ClassName, "Render", m.render)
	m.rendering.SetCallback(view.CallRender3DDescription.ClassName, "GetExtents", m.getExtents)
	return m
}

func (m *MeshRenderer) getExtents(c call.Call) bool {
	cr, ok := call.As[*view.CallRender3D](c)
	if !ok {
		return false
	}
	gc, ok := module.CallAs[*CallGPUMesh](m.gpuMeshes)
	if !ok {
		return false
	}
	requestFrame(gc, cr.FrameID())
	if !gc.Invoke(call.FnGetMetaData) {
		return false
	}
	cr.SetMetaData(gc.MetaData())
	return true
}

func (m *MeshRenderer) render(c call.Call) bool {
	cr, ok := call.As[*view.CallRender3D](c)
	if !ok {
		return false
	}
	gc, ok := module.CallAs[*CallGPUMesh](m.gpuMeshes)
	if !ok {
		return false
	}
	requestFrame(gc, cr.FrameID())
	if !gc.Invoke(call.FnGetData) {
		return false
	}

	hash := gc.MetaData().DataHash
	if m.gate.NeedsRebuild(hash) {
		m.gate.Begin(hash)
		m.batches = m.batches[:0]
		if coll := gc.Data(); coll != nil {
			coll.Each(func(_ int, g *GPUMesh) {
				m.batches = append(m.batches, batch{vertices: g.VertexCount(), triangles: g.TriangleCount()})
			})
		}
		m.gate.Commit()
		m.Logger().Debug("Render batches rebuilt.", "batches", len(m.batches), "hash", hash)
	}

	for _, b := range m.batches {
		cr.Draw(view.DrawStats{Batches: 1, Triangles: b.triangles, Vertices: b.vertices})
	}
	return true
}
