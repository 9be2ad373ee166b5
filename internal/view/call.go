package view

import (
	"time"

	"github.com/specialistvlad/callgrid/internal/call"
	"github.com/specialistvlad/callgrid/internal/meta"
)

// Function indices of CallRender3D.
const (
	FnRender     = 0
	FnGetExtents = 1
)

// CallRender3DDescription is the contract between a view and a renderer.
var CallRender3DDescription = &call.Description{
	ClassName: "CallRender3D",
	Doc:       "Call for rendering a frame",
	Functions: []string{"Render", "GetExtents"},
	New:       func() call.Call { return &CallRender3D{} },
}

// DrawStats is what a renderer reports instead of drawing.
type DrawStats struct {
	Batches   int
	Triangles int
	Vertices  int
	Points    int
	Lines     int
	Labels    int
}

// Add accumulates o into s.
func (s *DrawStats) Add(o DrawStats) {
	s.Batches += o.Batches
	s.Triangles += o.Triangles
	s.Vertices += o.Vertices
	s.Points += o.Points
	s.Lines += o.Lines
	s.Labels += o.Labels
}

// IsZero reports whether nothing was drawn.
func (s DrawStats) IsZero() bool { return s == DrawStats{} }

// CallRender3D carries the frame request downstream-to-upstream (time,
// camera, background) and the extents and draw statistics back.
type CallRender3D struct {
	call.Base
	md            meta.Spatial3D
	time          float32
	camera        Camera
	background    [4]float32
	lastFrameTime time.Duration
	stats         DrawStats
}

func (c *CallRender3D) MetaData() meta.Spatial3D { return c.md }

func (c *CallRender3D) SetMetaData(md meta.Spatial3D) { c.md = md }

// TimeFramesCount is the number of animation frames the renderer offers.
func (c *CallRender3D) TimeFramesCount() uint32 { return c.md.FrameCount }

func (c *CallRender3D) BoundingBoxes() meta.BoundingBoxes { return c.md.Bounds }

// Time is the requested animation time. Its integer part is the frame.
func (c *CallRender3D) Time() float32 { return c.time }

func (c *CallRender3D) SetTime(t float32) { c.time = t }

// FrameID is the integer frame of the requested time.
func (c *CallRender3D) FrameID() uint32 {
	if c.time < 0 {
		return 0
	}
	return uint32(c.time)
}

func (c *CallRender3D) Camera() Camera { return c.camera }

func (c *CallRender3D) SetCamera(cam Camera) { c.camera = cam }

func (c *CallRender3D) Background() [4]float32 { return c.background }

func (c *CallRender3D) SetBackground(col [4]float32) { c.background = col }

func (c *CallRender3D) LastFrameTime() time.Duration { return c.lastFrameTime }

func (c *CallRender3D) SetLastFrameTime(d time.Duration) { c.lastFrameTime = d }

// Stats returns what the renderer drew during the last Render.
func (c *CallRender3D) Stats() DrawStats { return c.stats }

// Draw records drawn primitives. Renderers call it from Render.
func (c *CallRender3D) Draw(s DrawStats) { c.stats.Add(s) }

func (c *CallRender3D) resetStats() { c.stats = DrawStats{} }
