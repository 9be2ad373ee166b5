// Package geometry provides mesh producers built from signed distance
// functions.
package geometry

import (
	"context"
	"fmt"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/specialistvlad/callgrid/internal/call"
	"github.com/specialistvlad/callgrid/internal/chain"
	"github.com/specialistvlad/callgrid/internal/meta"
	"github.com/specialistvlad/callgrid/internal/module"
	"github.com/specialistvlad/callgrid/internal/param"
	"github.com/specialistvlad/callgrid/modules/mesh"
)

// Shapes offered by SDFMeshSource.
const (
	ShapeSphere = iota
	ShapeBox
	ShapeCylinder
)

// SDFMeshSource triangulates a solid with marching cubes. Frame k shows the
// solid translated by k times the offset parameter.
type SDFMeshSource struct {
	module.Base

	out *module.CalleeSlot

	shape      *param.Enum
	size       *param.Float
	resolution *param.Int
	frames     *param.Int
	offset     *param.Vector3
	group      param.Group

	version chain.Version
	cache   map[uint32]*mesh.MeshCollection
}

func NewSDFMeshSource() *SDFMeshSource {
	m := &SDFMeshSource{}
	m.out = m.MakeCalleeSlot("mesh", "Provides the triangulated solid")
	m.out.SetCallback(mesh.CallMeshDescription.ClassName, "GetData", m.getData)
	m.out.SetCallback(mesh.CallMeshDescription.ClassName, "GetMetaData", m.getMetaData)

	m.shape = module.AddParam(&m.Base, "shape", param.NewEnum(ShapeSphere, map[int]string{
		ShapeSphere:   "sphere",
		ShapeBox:      "box",
		ShapeCylinder: "cylinder",
	}))
	m.size = module.AddParam(&m.Base, "size", param.NewFloatRange(1, 0.01, 1000))
	m.resolution = module.AddParam(&m.Base, "resolution", param.NewIntRange(32, 4, 512))
	m.frames = module.AddParam(&m.Base, "frames", param.NewIntRange(1, 1, 10000))
	m.offset = module.AddParam(&m.Base, "offset", param.NewVector3([3]float32{}))
	m.group = param.Group{m.shape, m.size, m.resolution, m.frames, m.offset}
	return m
}

func (m *SDFMeshSource) Create(ctx context.Context) error {
	m.cache = make(map[uint32]*mesh.MeshCollection)
	m.version.Bump()
	return nil
}

func (m *SDFMeshSource) Release(ctx context.Context) {
	m.cache = nil
}

// Triangulations counts the frames triangulated since creation.
func (m *SDFMeshSource) Triangulations() int { return len(m.cache) }

// checkParams drops the cache and bumps the hash when any parameter changed.
func (m *SDFMeshSource) checkParams() {
	if !m.group.AnyDirty() {
		return
	}
	m.group.ResetDirty()
	clear(m.cache)
	m.version.Bump()
}

func (m *SDFMeshSource) frame(requested uint32) uint32 {
	return min(requested, uint32(m.frames.Value()-1))
}

func (m *SDFMeshSource) getMetaData(c call.Call) bool {
	mc, ok := call.As[*mesh.CallMesh](c)
	if !ok {
		return false
	}
	m.checkParams()
	md := mc.MetaData()
	frame := m.frame(md.FrameID)
	solid, err := m.solid(frame)
	if err != nil {
		m.Logger().Error("Cannot build solid.", "error", err)
		return false
	}
	mc.SetMetaData(meta.Spatial3D{
		DataHash:   m.version.Hash(),
		FrameCount: uint32(m.frames.Value()),
		FrameID:    frame,
		Bounds:     meta.Both(meta.FromBox3(solid.BoundingBox())),
	})
	return true
}

func (m *SDFMeshSource) getData(c call.Call) bool {
	mc, ok := call.As[*mesh.CallMesh](c)
	if !ok {
		return false
	}
	m.checkParams()
	md := mc.MetaData()
	frame := m.frame(md.FrameID)

	coll, ok := m.cache[frame]
	if !ok {
		solid, err := m.solid(frame)
		if err != nil {
			m.Logger().Error("Cannot build solid.", "error", err)
			return false
		}
		coll = mesh.NewMeshCollection()
		coll.Add(triangulate(solid, m.resolution.Value()))
		m.cache[frame] = coll
		m.Logger().Debug("Solid triangulated.", "frame", frame, "triangles", coll.Meshes()[0].TriangleCount())
	}

	mc.SetData(coll)
	md.DataHash = m.version.Hash()
	md.FrameCount = uint32(m.frames.Value())
	md.FrameID = frame
	mc.SetMetaData(md)
	return true
}

func (m *SDFMeshSource) solid(frame uint32) (sdf.SDF3, error) {
	size := float64(m.size.Value())
	var (
		s   sdf.SDF3
		err error
	)
	switch m.shape.Value() {
	case ShapeBox:
		s, err = sdf.Box3D(v3.Vec{X: size, Y: size, Z: size}, 0)
	case ShapeCylinder:
		s, err = sdf.Cylinder3D(size, size/2, 0)
	default:
		s, err = sdf.Sphere3D(size / 2)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", m.shape.ValueString(), err)
	}
	off := m.offset.Value()
	k := float64(frame)
	if k == 0 || off == [3]float32{} {
		return s, nil
	}
	shift := v3.Vec{X: k * float64(off[0]), Y: k * float64(off[1]), Z: k * float64(off[2])}
	return sdf.Transform3D(s, sdf.Translate3d(shift)), nil
}

// triangulate runs marching cubes and emits one unshared vertex per
// triangle corner with the face normal.
func triangulate(s sdf.SDF3, cells int) mesh.Mesh {
	triangles := render.ToTriangles(s, render.NewMarchingCubesUniform(cells))

	positions := make([]float32, 0, len(triangles)*9)
	normals := make([]float32, 0, len(triangles)*9)
	indices := make([]uint32, 0, len(triangles)*3)
	for i, tri := range triangles {
		n := tri.Normal()
		for j := 0; j < 3; j++ {
			v := tri[j]
			positions = append(positions, float32(v.X), float32(v.Y), float32(v.Z))
			normals = append(normals, float32(n.X), float32(n.Y), float32(n.Z))
			indices = append(indices, uint32(i*3+j))
		}
	}
	return mesh.Mesh{
		Attributes: []mesh.Attribute{
			{Semantic: mesh.Position, Components: 3, Data: positions},
			{Semantic: mesh.Normal, Components: 3, Data: normals},
		},
		Indices: indices,
	}
}
