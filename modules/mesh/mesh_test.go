package mesh

import (
	"context"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/specialistvlad/callgrid/internal/call"
	"github.com/specialistvlad/callgrid/internal/meta"
	"github.com/specialistvlad/callgrid/internal/module"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func triangle(z float32) Mesh {
	return Mesh{
		Attributes: []Attribute{
			{Semantic: Position, Components: 3, Data: []float32{0, 0, z, 1, 0, z, 0, 1, z}},
			{Semantic: Normal, Components: 3, Data: []float32{0, 0, 1, 0, 0, 1, 0, 0, 1}},
		},
		Indices: []uint32{0, 1, 2},
	}
}

type fakeProducer struct {
	module.Base
	out       *module.CalleeSlot
	md        meta.Spatial3D
	coll      *MeshCollection
	dataCalls int
}

func newFakeProducer(frames uint32, box meta.Cuboid, meshes ...Mesh) *fakeProducer {
	p := &fakeProducer{
		md:   meta.Spatial3D{DataHash: 1, FrameCount: frames, Bounds: meta.Both(box)},
		coll: NewMeshCollection(),
	}
	for _, m := range meshes {
		p.coll.Add(m)
	}
	p.out = p.MakeCalleeSlot("mesh", "meshes")
	p.out.SetCallback("CallMesh", "GetData", func(c call.Call) bool {
		mc, ok := call.As[*CallMesh](c)
		if !ok {
			return false
		}
		p.dataCalls++
		md := p.md
		md.FrameID = mc.MetaData().FrameID
		mc.SetMetaData(md)
		mc.SetData(p.coll)
		return true
	})
	p.out.SetCallback("CallMesh", "GetMetaData", func(c call.Call) bool {
		mc, ok := call.As[*CallMesh](c)
		if !ok {
			return false
		}
		md := p.md
		md.FrameID = mc.MetaData().FrameID
		mc.SetMetaData(md)
		return true
	})
	return p
}

func bind(t *testing.T, arena *call.Arena, desc *call.Description, from *module.CallerSlot, to *module.CalleeSlot) {
	t.Helper()
	c := desc.New()
	table, err := to.DispatchTable(desc)
	require.NoError(t, err)
	require.NoError(t, call.Bind(c, desc, table, from.FullName(), to.FullName()))
	require.NoError(t, from.Connect(arena, arena.Insert(c)))
}

// consumer owns a caller slot standing in for a downstream module.
func consumer(t *testing.T, arena *call.Arena, m *GPUMeshes) *CallGPUMesh {
	t.Helper()
	var b module.Base
	in := b.MakeCallerSlot("in", "gpu meshes", "CallGPUMesh")
	bind(t, arena, CallGPUMeshDescription, in, m.out)
	c, ok := module.CallAs[*CallGPUMesh](in)
	require.True(t, ok)
	return c
}

func box(lo, hi float64) meta.Cuboid {
	return meta.NewCuboid(v3.Vec{X: lo, Y: lo, Z: lo}, v3.Vec{X: hi, Y: hi, Z: hi})
}

func newGPUMeshes(t *testing.T) *GPUMeshes {
	t.Helper()
	m := NewGPUMeshes()
	require.NoError(t, m.Create(context.Background()))
	t.Cleanup(func() { m.Release(context.Background()) })
	return m
}

func TestGPUMeshCollectionUpload(t *testing.T) {
	c := NewGPUMeshCollection()
	idx, err := c.Upload(triangle(2))
	require.NoError(t, err)

	g, ok := c.Mesh(idx)
	require.True(t, ok)
	assert.Equal(t, 6, g.Layout.Stride)
	assert.Equal(t, []LayoutAttribute{{Semantic: Position, Components: 3}, {Semantic: Normal, Components: 3, Offset: 3}}, g.Layout.Attributes)
	assert.Equal(t, []float32{0, 0, 2, 0, 0, 1}, g.Vertices[:6])
	assert.Equal(t, 3, g.VertexCount())
	assert.Equal(t, 1, g.TriangleCount())

	c.Delete(idx)
	assert.Zero(t, c.Len())
}

func TestMeshValidate(t *testing.T) {
	tests := []struct {
		name string
		mod  func(*Mesh)
		want string
	}{
		{"no attributes", func(m *Mesh) { m.Attributes = nil }, "no attributes"},
		{"ragged attribute", func(m *Mesh) { m.Attributes[1].Data = m.Attributes[1].Data[:4] }, "do not split"},
		{"vertex count mismatch", func(m *Mesh) { m.Attributes[1].Data = m.Attributes[1].Data[:6] }, "expected 3"},
		{"index out of range", func(m *Mesh) { m.Indices = []uint32{0, 1, 3} }, "out of range"},
		{"partial triangle", func(m *Mesh) { m.Indices = []uint32{0, 1} }, "do not form triangles"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := triangle(0)
			tt.mod(&m)
			err := m.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestGPUMeshes_UploadsOncePerHash(t *testing.T) {
	arena := call.NewArena()
	p := newFakeProducer(1, box(0, 1), triangle(0))
	m := newGPUMeshes(t)
	bind(t, arena, CallMeshDescription, m.meshes, p.out)
	lhs := consumer(t, arena, m)

	require.True(t, lhs.Invoke(call.FnGetMetaData))
	for i := 0; i < 5; i++ {
		require.True(t, lhs.Invoke(call.FnGetData))
	}
	assert.Equal(t, 1, p.dataCalls)
	assert.Equal(t, 1, m.Uploads())
	assert.Equal(t, 1, lhs.Data().Len())

	p.md.DataHash = 2
	require.True(t, lhs.Invoke(call.FnGetMetaData))
	require.True(t, lhs.Invoke(call.FnGetData))
	assert.Equal(t, 2, p.dataCalls)
	assert.Equal(t, 1, lhs.Data().Len(), "a re-upload replaces the previous meshes")

	requestFrame(lhs, 1)
	require.True(t, lhs.Invoke(call.FnGetData))
	assert.Equal(t, 3, p.dataCalls, "a new frame is uploaded")
}

func TestGPUMeshes_HashIsMonotonic(t *testing.T) {
	arena := call.NewArena()
	p := newFakeProducer(1, box(0, 1), triangle(0))
	m := newGPUMeshes(t)
	bind(t, arena, CallMeshDescription, m.meshes, p.out)
	lhs := consumer(t, arena, m)

	var last uint64
	for hash := uint64(1); hash <= 4; hash++ {
		p.md.DataHash = hash
		require.True(t, lhs.Invoke(call.FnGetMetaData))
		got := lhs.MetaData().DataHash
		assert.Greater(t, got, last)
		last = got

		require.True(t, lhs.Invoke(call.FnGetMetaData))
		assert.Equal(t, last, lhs.MetaData().DataHash, "an unchanged upstream keeps the hash")
	}
}

func TestGPUMeshes_Aggregation(t *testing.T) {
	arena := call.NewArena()
	primary := newFakeProducer(7, box(0, 1), triangle(0))
	m := newGPUMeshes(t)
	bind(t, arena, CallMeshDescription, m.meshes, primary.out)
	lhs := consumer(t, arena, m)

	t.Run("single producer passes its frame count through", func(t *testing.T) {
		require.True(t, lhs.Invoke(call.FnGetMetaData))
		assert.Equal(t, uint32(7), lhs.MetaData().FrameCount)
		assert.True(t, lhs.MetaData().Bounds.Equal(meta.Both(box(0, 1))))
	})

	secondarySrc := newFakeProducer(3, box(-2, 0), triangle(1))
	second := newGPUMeshes(t)
	bind(t, arena, CallMeshDescription, second.meshes, secondarySrc.out)
	bind(t, arena, CallGPUMeshDescription, m.chained, second.out)

	t.Run("secondary caps frames and widens bounds", func(t *testing.T) {
		require.True(t, lhs.Invoke(call.FnGetMetaData))
		md := lhs.MetaData()
		assert.Equal(t, uint32(3), md.FrameCount)
		assert.True(t, md.Bounds.Equal(meta.Both(box(-2, 1))))
	})

	t.Run("chained modules share one collection", func(t *testing.T) {
		require.True(t, lhs.Invoke(call.FnGetData))
		assert.Equal(t, 2, lhs.Data().Len())
		assert.Equal(t, uint32(3), lhs.MetaData().FrameCount)
	})

	t.Run("a failing secondary fails the pass", func(t *testing.T) {
		second.meshes.Disconnect()
		assert.False(t, lhs.Invoke(call.FnGetMetaData))
	})
}

func TestGPUMeshes_ChainedRewiring(t *testing.T) {
	arena := call.NewArena()
	primary := newFakeProducer(7, box(0, 1), triangle(0))
	m := newGPUMeshes(t)
	bind(t, arena, CallMeshDescription, m.meshes, primary.out)
	lhs := consumer(t, arena, m)

	second := newGPUMeshes(t)
	bind(t, arena, CallMeshDescription, second.meshes, newFakeProducer(3, box(-2, 0), triangle(1)).out)
	bind(t, arena, CallGPUMeshDescription, m.chained, second.out)

	require.True(t, lhs.Invoke(call.FnGetMetaData))
	require.True(t, lhs.Invoke(call.FnGetData))
	connected := lhs.MetaData()
	require.Equal(t, 2, lhs.Data().Len())
	require.Equal(t, uint32(3), connected.FrameCount)

	arena.Remove(m.chained.Disconnect())

	require.True(t, lhs.Invoke(call.FnGetMetaData))
	detached := lhs.MetaData()
	assert.Greater(t, detached.DataHash, connected.DataHash, "detaching changes the output")
	assert.Equal(t, uint32(7), detached.FrameCount)
	assert.True(t, detached.Bounds.Equal(meta.Both(box(0, 1))))

	require.True(t, lhs.Invoke(call.FnGetData))
	assert.Equal(t, 1, lhs.Data().Len(), "meshes of the detached producer are dropped")
	assert.GreaterOrEqual(t, lhs.MetaData().DataHash, detached.DataHash)

	bind(t, arena, CallGPUMeshDescription, m.chained, second.out)

	require.True(t, lhs.Invoke(call.FnGetMetaData))
	assert.Greater(t, lhs.MetaData().DataHash, detached.DataHash, "reattaching changes the output")
	require.True(t, lhs.Invoke(call.FnGetData))
	assert.Equal(t, 2, lhs.Data().Len(), "the reattached producer uploads again")
	assert.Equal(t, uint32(3), lhs.MetaData().FrameCount)
}

func TestGPUMeshes_Unconnected(t *testing.T) {
	m := newGPUMeshes(t)
	lhs := consumer(t, call.NewArena(), m)
	assert.False(t, lhs.Invoke(call.FnGetMetaData))
	assert.False(t, lhs.Invoke(call.FnGetData))
}
