package view

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/specialistvlad/callgrid/internal/meta"
)

// Camera is a perspective camera.
type Camera struct {
	Position v3.Vec
	LookAt   v3.Vec
	Up       v3.Vec
	// Aperture is the full vertical opening angle in degrees.
	Aperture float64
	Near     float64
	Far      float64
}

// HalfAperture returns half the opening angle in radians.
func (c Camera) HalfAperture() float64 {
	return c.Aperture * math.Pi / 360
}

// CameraController owns the camera of a view.
type CameraController interface {
	// Reset frames the world-space bounding box.
	Reset(bounds meta.BoundingBoxes)
	// Clip adapts the clipping planes to the clip box.
	Clip(clipBox meta.Cuboid)
	Camera() Camera
}

// OrbitCamera looks at the center of the scene from the +Z side.
type OrbitCamera struct {
	cam Camera
}

// NewOrbitCamera creates a camera framing the unit cube.
func NewOrbitCamera() *OrbitCamera {
	c := &OrbitCamera{}
	c.Reset(meta.BoundingBoxes{})
	return c
}

func (o *OrbitCamera) Camera() Camera { return o.cam }

// Reset places the camera so that the whole bounding box fits the
// aperture. An invalid box is replaced by the cube from -1 to 1.
func (o *OrbitCamera) Reset(bounds meta.BoundingBoxes) {
	box := bounds.BBox
	if !box.IsValid() {
		box = meta.NewCuboid(v3.Vec{X: -1, Y: -1, Z: -1}, v3.Vec{X: 1, Y: 1, Z: 1})
	}
	cam := Camera{Aperture: 30, Near: 0.1, Far: 100, Up: v3.Vec{Y: 1}}
	dist := 0.5 * box.Diagonal() / math.Tan(cam.HalfAperture())
	center := box.Center()
	cam.LookAt = center
	cam.Position = v3.Vec{X: center.X, Y: center.Y, Z: center.Z + dist}
	o.cam = cam
}

// Clip moves the clipping planes to enclose the clip box, keeping the near
// plane at least a tenth of the box size away.
func (o *OrbitCamera) Clip(clipBox meta.Cuboid) {
	if !clipBox.IsValid() {
		return
	}
	c := clipBox.Center()
	p := o.cam.Position
	dist := math.Sqrt((p.X-c.X)*(p.X-c.X) + (p.Y-c.Y)*(p.Y-c.Y) + (p.Z-c.Z)*(p.Z-c.Z))
	radius := 0.5 * clipBox.Diagonal()
	minNear := 0.1 * max(radius, 1e-3)
	o.cam.Near = max(dist-radius, minNear)
	o.cam.Far = max(dist+radius, o.cam.Near+minNear)
}
