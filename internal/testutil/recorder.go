package testutil

import (
	"sync"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/specialistvlad/callgrid/internal/call"
	"github.com/specialistvlad/callgrid/internal/meta"
	"github.com/specialistvlad/callgrid/internal/module"
	"github.com/specialistvlad/callgrid/internal/param"
	"github.com/specialistvlad/callgrid/internal/registry"
	"github.com/specialistvlad/callgrid/internal/view"
)

// RecordingRenderer is a CallRender3D callee that reports a unit cube with
// a configurable frame count and records the time of every render.
type RecordingRenderer struct {
	module.Base

	rendering *module.CalleeSlot
	frames    *param.Int
	fail      *param.Bool

	mu    sync.Mutex
	times []float32
}

func NewRecordingRenderer() *RecordingRenderer {
	m := &RecordingRenderer{}
	m.rendering = m.MakeCalleeSlot("rendering", "Records render calls")
	m.rendering.SetCallback(view.CallRender3DDescription.ClassName, "Render", m.render)
	m.rendering.SetCallback(view.CallRender3DDescription.ClassName, "GetExtents", m.getExtents)
	m.frames = module.AddParam(&m.Base, "frames", param.NewIntRange(10, 1, 1000))
	m.fail = module.AddParam(&m.Base, "fail", param.NewBool(false))
	return m
}

func (m *RecordingRenderer) getExtents(c call.Call) bool {
	cr, ok := call.As[*view.CallRender3D](c)
	if !ok || m.fail.Value() {
		return false
	}
	md := cr.MetaData()
	md.FrameCount = uint32(m.frames.Value())
	md.Bounds = meta.Both(meta.NewCuboid(v3.Vec{X: -1, Y: -1, Z: -1}, v3.Vec{X: 1, Y: 1, Z: 1}))
	cr.SetMetaData(md)
	return true
}

func (m *RecordingRenderer) render(c call.Call) bool {
	cr, ok := call.As[*view.CallRender3D](c)
	if !ok {
		return false
	}
	m.mu.Lock()
	m.times = append(m.times, cr.Time())
	m.mu.Unlock()
	cr.Draw(view.DrawStats{Batches: 1, Triangles: 12, Vertices: 8})
	return true
}

// Times returns the animation times of every render so far.
func (m *RecordingRenderer) Times() []float32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]float32(nil), m.times...)
}

// Fixtures registers the test-only module classes.
type Fixtures struct{}

func (Fixtures) Register(r *registry.Registry) {
	r.RegisterModule(&registry.ModuleDescription{
		ClassName: "RecordingRenderer",
		Doc:       "Records render calls for tests",
		New:       func() module.Module { return NewRecordingRenderer() },
	})
}

// RecorderProjectHCL connects a playing view to a RecordingRenderer.
const RecorderProjectHCL = `
view "View3D" "::inst::view" {
  param "anim::play" { value = true }
}

module "RecordingRenderer" "::inst::rec" {
  frames = 4
}

call "CallRender3D" {
  from = "::inst::view::rendering"
  to   = "::inst::rec::rendering"
}
`
