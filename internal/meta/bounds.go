package meta

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Cuboid is an axis-aligned box that may be invalid. The zero value is the
// invalid box, which is the identity element of Union.
type Cuboid struct {
	box   sdf.Box3
	valid bool
}

// NewCuboid returns the valid box spanned by the two corners in any order.
func NewCuboid(a, b v3.Vec) Cuboid {
	return Cuboid{
		box: sdf.Box3{
			Min: v3.Vec{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y), Z: math.Min(a.Z, b.Z)},
			Max: v3.Vec{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y), Z: math.Max(a.Z, b.Z)},
		},
		valid: true,
	}
}

// FromBox3 wraps an sdfx box.
func FromBox3(b sdf.Box3) Cuboid {
	return NewCuboid(b.Min, b.Max)
}

// NewRect returns a flat box in the z=0 plane, used by 2D producers.
func NewRect(xMin, yMin, xMax, yMax float64) Cuboid {
	return NewCuboid(v3.Vec{X: xMin, Y: yMin}, v3.Vec{X: xMax, Y: yMax})
}

func (c Cuboid) IsValid() bool { return c.valid }

// Box returns the underlying box. It is meaningless for an invalid cuboid.
func (c Cuboid) Box() sdf.Box3 { return c.box }

// Union returns the smallest box containing both. An invalid operand leaves
// the other unchanged.
func (c Cuboid) Union(o Cuboid) Cuboid {
	switch {
	case !c.valid:
		return o
	case !o.valid:
		return c
	}
	return NewCuboid(
		v3.Vec{X: math.Min(c.box.Min.X, o.box.Min.X), Y: math.Min(c.box.Min.Y, o.box.Min.Y), Z: math.Min(c.box.Min.Z, o.box.Min.Z)},
		v3.Vec{X: math.Max(c.box.Max.X, o.box.Max.X), Y: math.Max(c.box.Max.Y, o.box.Max.Y), Z: math.Max(c.box.Max.Z, o.box.Max.Z)},
	)
}

func (c Cuboid) Size() v3.Vec {
	return v3.Vec{X: c.box.Max.X - c.box.Min.X, Y: c.box.Max.Y - c.box.Min.Y, Z: c.box.Max.Z - c.box.Min.Z}
}

func (c Cuboid) Center() v3.Vec {
	return v3.Vec{
		X: (c.box.Min.X + c.box.Max.X) / 2,
		Y: (c.box.Min.Y + c.box.Max.Y) / 2,
		Z: (c.box.Min.Z + c.box.Max.Z) / 2,
	}
}

// Diagonal is the length of the box's space diagonal.
func (c Cuboid) Diagonal() float64 {
	s := c.Size()
	return math.Sqrt(s.X*s.X + s.Y*s.Y + s.Z*s.Z)
}

// Equal reports whether both boxes are invalid or both span the same volume.
func (c Cuboid) Equal(o Cuboid) bool {
	if !c.valid || !o.valid {
		return c.valid == o.valid
	}
	return c.box.Min == o.box.Min && c.box.Max == o.box.Max
}

// BoundingBoxes pairs the render bounding box with the clip box.
type BoundingBoxes struct {
	BBox    Cuboid
	ClipBox Cuboid
}

// Both returns bounding boxes whose render and clip box coincide.
func Both(c Cuboid) BoundingBoxes {
	return BoundingBoxes{BBox: c, ClipBox: c}
}

// Union combines both boxes component-wise.
func (b BoundingBoxes) Union(o BoundingBoxes) BoundingBoxes {
	return BoundingBoxes{BBox: b.BBox.Union(o.BBox), ClipBox: b.ClipBox.Union(o.ClipBox)}
}

func (b BoundingBoxes) Equal(o BoundingBoxes) bool {
	return b.BBox.Equal(o.BBox) && b.ClipBox.Equal(o.ClipBox)
}
