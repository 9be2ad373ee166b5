package flowvis

import (
	"github.com/specialistvlad/callgrid/internal/call"
	"github.com/specialistvlad/callgrid/internal/chain"
	"github.com/specialistvlad/callgrid/internal/module"
	"github.com/specialistvlad/callgrid/internal/param"
	"github.com/specialistvlad/callgrid/internal/view"
)

// TriangleMeshRenderer draws the topology mesh colored by one data set.
// Geometry is rebuilt when the mesh hash moves and colors when the data
// hash moves or data_set changes.
type TriangleMeshRenderer struct {
	module.Base

	triangles *module.CallerSlot
	meshData  *module.CallerSlot
	rendering *module.CalleeSlot

	dataSet *param.String

	geometry chain.Gate
	colors   chain.Gate
	stats    view.DrawStats

	colorRange [2]float32
	colored    bool
	warned     string
}

func NewTriangleMeshRenderer() *TriangleMeshRenderer {
	m := &TriangleMeshRenderer{}
	m.triangles = m.MakeCallerSlot("triangles", "Triangle mesh input", CallTriangleMeshDescription.ClassName)
	m.meshData = m.MakeCallerSlot("mesh_data", "Mesh data input", CallMeshDataDescription.ClassName)
	m.rendering = m.MakeCalleeSlot("rendering", "Renders the mesh")
	m.rendering.SetCallback(view.CallRender3DDescription.ClassName, "Render", m.render)
	m.rendering.SetCallback(view.CallRender3DDescription.ClassName, "GetExtents", m.getExtents)
	m.dataSet = module.AddParam(&m.Base, "data_set", param.NewString(SetLabelsForward))
	return m
}

// GeometryRebuilds counts rebuilds of the draw batch.
func (m *TriangleMeshRenderer) GeometryRebuilds() int { return m.geometry.Rebuilds() }

// ColorRebuilds counts color assignments.
func (m *TriangleMeshRenderer) ColorRebuilds() int { return m.colors.Rebuilds() }

// ColorRange returns the value range of the data set used for coloring and
// whether one was applied in the last frame.
func (m *TriangleMeshRenderer) ColorRange() ([2]float32, bool) { return m.colorRange, m.colored }

func (m *TriangleMeshRenderer) getExtents(c call.Call) bool {
	cr, ok := call.As[*view.CallRender3D](c)
	if !ok {
		return false
	}
	tc, ok := module.CallAs[*CallTriangleMesh](m.triangles)
	if !ok {
		return false
	}
	if !tc.Invoke(call.FnGetExtent) {
		return false
	}
	md := tc.MetaData()
	md.FrameCount = max(md.FrameCount, 1)
	md.FrameID = cr.FrameID()
	cr.SetMetaData(md)
	return true
}

func (m *TriangleMeshRenderer) render(c call.Call) bool {
	cr, ok := call.As[*view.CallRender3D](c)
	if !ok {
		return false
	}
	tc, ok := module.CallAs[*CallTriangleMesh](m.triangles)
	if !ok {
		return false
	}
	if !tc.Invoke(call.FnGetData) {
		return false
	}
	if hash := tc.MetaData().DataHash; m.geometry.NeedsRebuild(hash) {
		m.geometry.Begin(hash)
		m.stats = view.DrawStats{}
		if mesh := tc.Data(); mesh != nil && mesh.TriangleCount() > 0 {
			m.stats = view.DrawStats{Batches: 1, Triangles: mesh.TriangleCount(), Vertices: mesh.VertexCount()}
		}
		m.geometry.Commit()
		m.colors.Invalidate()
	}
	if m.stats.IsZero() {
		m.colored = false
		return true
	}

	if m.dataSet.IsDirty() {
		m.dataSet.ResetDirty()
		m.colors.Invalidate()
	}
	if dc, ok := module.CallAs[*CallMeshData](m.meshData); ok && dc.Invoke(call.FnGetData) {
		if hash := dc.MetaData().DataHash; m.colors.NeedsRebuild(hash) {
			m.colors.Begin(hash)
			m.applyColors(dc.Data(), m.stats.Vertices)
			m.colors.Commit()
		}
	} else {
		m.colored = false
		m.colors.Invalidate()
	}
	cr.Draw(m.stats)
	return true
}

func (m *TriangleMeshRenderer) applyColors(data *MeshData, vertices int) {
	m.colored = false
	if data == nil {
		return
	}
	name := m.dataSet.Value()
	ds := data.Get(name)
	if ds == nil {
		return
	}
	if len(ds.Data) != vertices {
		if m.warned != name {
			m.warned = name
			m.Logger().Warn("Data set does not match the mesh.", "data_set", name, "values", len(ds.Data), "vertices", vertices)
		}
		return
	}
	m.warned = ""
	m.colorRange = [2]float32{ds.Min, ds.Max}
	m.colored = true
}
