package view

import (
	"context"
	"math"
	"time"

	"github.com/specialistvlad/callgrid/internal/meta"
	"github.com/specialistvlad/callgrid/internal/module"
	"github.com/specialistvlad/callgrid/internal/param"
	"github.com/specialistvlad/callgrid/internal/tracing"
)

// Title reasons.
const (
	ReasonNotConnected = "renderer not connected"
	ReasonExtents      = "GetExtents failed"
	ReasonRender       = "Render failed"
)

// FrameResult is what a view presented in one frame.
type FrameResult struct {
	View       string
	Title      bool
	Reason     string
	Time       float32
	FrameCount uint32
	Stats      DrawStats
	Bounds     meta.BoundingBoxes
}

// Renderable is implemented by every view module the frame loop drives.
type Renderable interface {
	module.Module
	// RenderFrame renders one frame. instTime is the instance time in
	// seconds.
	RenderFrame(ctx context.Context, instTime float64) FrameResult
}

// Option customizes a View3D.
type Option func(*View3D)

// WithTitle replaces the default LogTitle.
func WithTitle(t TitleRenderer) Option {
	return func(v *View3D) { v.title = t }
}

// WithCamera replaces the default OrbitCamera.
func WithCamera(c CameraController) Option {
	return func(v *View3D) { v.camera = c }
}

// View3D drives one rendering chain per frame.
type View3D struct {
	module.Base

	rendering *module.CallerSlot

	backCol     *param.Color
	play        *param.Bool
	speed       *param.Float
	animTime    *param.Float
	offset      *param.Float
	speedUp     *param.Button
	speedDown   *param.Button
	resetView   *param.Button
	togglePlay  *param.Button
	showBBox    *param.Bool
	resetOnBBox *param.Bool

	title    TitleRenderer
	camera   CameraController
	bounds   meta.BoundingBoxes
	firstImg bool

	timeFrame    float32
	instTime     float64
	lastInstTime float64
	hasRendered  bool
}

var _ Renderable = (*View3D)(nil)

// NewView3D creates a view with the default title and camera.
func NewView3D(opts ...Option) *View3D {
	v := &View3D{
		title:    &LogTitle{},
		camera:   NewOrbitCamera(),
		firstImg: true,
	}
	for _, opt := range opts {
		opt(v)
	}

	v.rendering = v.MakeCallerSlot("rendering", "Connects the view to a renderer", CallRender3DDescription.ClassName)

	v.backCol = module.AddParam(&v.Base, "backCol", param.NewColor([4]float32{0, 0, 0.125, 1}))
	v.showBBox = module.AddParam(&v.Base, "showBBox", param.NewBool(true))
	v.resetView = module.AddParam(&v.Base, "resetView", param.NewButton())
	v.resetOnBBox = module.AddParam(&v.Base, "resetViewOnBBoxChange", param.NewBool(false))
	v.togglePlay = module.AddParam(&v.Base, "toggleAnimPlay", param.NewButton())
	v.play = module.AddParam(&v.Base, "anim::play", param.NewBool(false))
	v.speed = module.AddParam(&v.Base, "anim::speed", param.NewFloatRange(4, 0.01, 100))
	v.animTime = module.AddParam(&v.Base, "anim::time", param.NewFloatRange(0, 0, math.MaxFloat32))
	v.offset = module.AddParam(&v.Base, "anim::offset", param.NewFloat(0))
	v.speedUp = module.AddParam(&v.Base, "anim::SpeedUp", param.NewButton())
	v.speedDown = module.AddParam(&v.Base, "anim::SpeedDown", param.NewButton())

	v.play.OnUpdate(v.syncOffset)
	v.speed.OnUpdate(v.syncOffset)
	v.speedUp.OnUpdate(func() { v.speed.Set(StepSpeedUp(v.speed.Value())) })
	v.speedDown.OnUpdate(func() { v.speed.Set(StepSpeedDown(v.speed.Value())) })
	v.togglePlay.OnUpdate(func() { v.play.Set(!v.play.Value()) })
	v.resetView.OnUpdate(func() { v.camera.Reset(v.bounds) })
	return v
}

// syncOffset keeps the animation time continuous when play or speed
// change.
func (v *View3D) syncOffset() {
	if !v.play.Value() {
		return
	}
	v.offset.Set(v.timeFrame - float32(v.instTime*float64(v.speed.Value())))
}

// StepSpeedUp returns the next faster animation speed.
func StepSpeedUp(spd float32) float32 {
	if spd >= 1 && spd < 100 {
		return spd + 0.25
	}
	spd += 0.01
	if spd > 0.999999 {
		spd = 1
	}
	return spd
}

// StepSpeedDown returns the next slower animation speed.
func StepSpeedDown(spd float32) float32 {
	if spd > 1 {
		return spd - 0.25
	}
	if spd > 0.01 {
		return spd - 0.01
	}
	return spd
}

// Camera returns the current camera.
func (v *View3D) Camera() Camera { return v.camera.Camera() }

// TimeFrame returns the animation time of the last frame.
func (v *View3D) TimeFrame() float32 { return v.timeFrame }

// RenderFrame evaluates the rendering chain for one frame.
func (v *View3D) RenderFrame(ctx context.Context, instTime float64) (res FrameResult) {
	ctx, span := tracing.StartViewSpan(ctx, v.Name())
	defer span.End()
	defer func() {
		tracing.RecordViewResult(span, res.Title, res.Reason, res.Stats.Triangles, res.Time)
	}()

	v.instTime = instTime
	res = FrameResult{View: v.Name(), Time: v.timeFrame, Bounds: v.bounds}

	cr, ok := module.CallAs[*CallRender3D](v.rendering)
	if !ok {
		return v.showTitle(res, ReasonNotConnected)
	}

	cr.SetTime(v.timeFrame)
	if !cr.Invoke(FnGetExtents) {
		return v.showTitle(res, ReasonExtents)
	}

	bounds := cr.BoundingBoxes()
	if !bounds.Equal(v.bounds) {
		v.bounds = bounds
		if v.firstImg || v.resetOnBBox.Value() {
			v.camera.Reset(bounds)
			v.firstImg = false
		}
	}

	v.animate(cr.TimeFramesCount())

	if v.hasRendered {
		cr.SetLastFrameTime(time.Duration((instTime - v.lastInstTime) * float64(time.Second)))
	}
	v.lastInstTime = instTime
	v.hasRendered = true

	v.camera.Clip(bounds.ClipBox)
	cr.SetTime(v.timeFrame)
	cr.SetCamera(v.camera.Camera())
	cr.SetBackground(v.backCol.Value())
	cr.resetStats()

	res.Time = v.timeFrame
	res.FrameCount = cr.TimeFramesCount()
	res.Bounds = bounds

	if !cr.Invoke(FnRender) {
		return v.showTitle(res, ReasonRender)
	}
	v.title.Remove()

	res.Stats = cr.Stats()
	if v.showBBox.Value() && bounds.BBox.IsValid() {
		res.Stats.Add(DrawStats{Lines: 12})
	}
	return res
}

func (v *View3D) animate(frameCnt uint32) {
	frames := float32(max(frameCnt, 1))
	switch {
	case v.play.Value():
		t := float32(v.instTime*float64(v.speed.Value())) + v.offset.Value()
		t = float32(math.Mod(float64(t), float64(frames)))
		if t < 0 {
			t += frames
		}
		v.timeFrame = t
		v.animTime.SetValueQuiet(t)
	case v.animTime.IsDirty():
		v.animTime.ResetDirty()
		v.timeFrame = v.animTime.Value()
		if v.timeFrame >= frames {
			v.timeFrame = frames - 1
		}
	}
}

func (v *View3D) showTitle(res FrameResult, reason string) FrameResult {
	v.title.Render(v.Logger(), reason)
	res.Title = true
	res.Reason = reason
	return res
}
