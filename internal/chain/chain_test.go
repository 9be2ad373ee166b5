package chain

import (
	"testing"

	"github.com/specialistvlad/callgrid/internal/call"
	"github.com/specialistvlad/callgrid/internal/meta"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type spatialCall struct {
	call.Generic[[]int, meta.Spatial3D]
}

var spatialDescription = &call.Description{
	ClassName: "CallSpatial",
	Functions: call.GenericFunctions,
	New:       func() call.Call { return &spatialCall{} },
}

type fakeProducer struct {
	md        meta.Spatial3D
	fail      bool
	lastFrame uint32
	metaCalls int
}

func (p *fakeProducer) connect(t *testing.T) *spatialCall {
	t.Helper()
	c := spatialDescription.New().(*spatialCall)
	table := []call.Handler{
		func(call.Call) bool { return !p.fail },
		func(c call.Call) bool {
			sc, ok := call.As[*spatialCall](c)
			if !ok || p.fail {
				return false
			}
			p.metaCalls++
			p.lastFrame = sc.MetaData().FrameID
			md := p.md
			md.FrameID = p.lastFrame
			sc.SetMetaData(md)
			return true
		},
	}
	require.NoError(t, call.Bind(c, spatialDescription, table, "consumer::in", "producer::out"))
	return c
}

func request(frame uint32) *spatialCall {
	lhs := &spatialCall{}
	lhs.SetMetaData(meta.Spatial3D{FrameID: frame})
	return lhs
}

func TestAggregatorFrameCount(t *testing.T) {
	t.Run("single producer passes through", func(t *testing.T) {
		p := &fakeProducer{md: meta.Spatial3D{DataHash: 1, FrameCount: 7}}
		var agg Aggregator
		lhs := request(0)
		require.True(t, agg.GetMetaData(lhs, p.connect(t), nil))
		assert.Equal(t, uint32(7), lhs.MetaData().FrameCount)
	})

	t.Run("minimum of both producers", func(t *testing.T) {
		p := &fakeProducer{md: meta.Spatial3D{FrameCount: 5}}
		s := &fakeProducer{md: meta.Spatial3D{FrameCount: 3}}
		var agg Aggregator
		lhs := request(0)
		require.True(t, agg.GetMetaData(lhs, p.connect(t), s.connect(t)))
		assert.Equal(t, uint32(3), lhs.MetaData().FrameCount)
	})
}

func TestAggregatorFramePushAndBounds(t *testing.T) {
	a := meta.Both(meta.NewRect(0, 0, 1, 1))
	b := meta.Both(meta.NewRect(2, 2, 3, 3))
	p := &fakeProducer{md: meta.Spatial3D{FrameCount: 10, Bounds: a}}
	s := &fakeProducer{md: meta.Spatial3D{FrameCount: 10, Bounds: b}}

	var agg Aggregator
	lhs := request(4)
	require.True(t, agg.GetMetaData(lhs, p.connect(t), s.connect(t)))

	assert.Equal(t, uint32(4), p.lastFrame, "requested frame reaches the primary")
	assert.Equal(t, uint32(4), s.lastFrame, "requested frame reaches the secondary")
	assert.Equal(t, uint32(4), lhs.MetaData().FrameID)
	assert.True(t, lhs.MetaData().Bounds.BBox.Equal(meta.NewRect(0, 0, 3, 3)))
	assert.True(t, lhs.MetaData().Bounds.ClipBox.Equal(meta.NewRect(0, 0, 3, 3)))
}

func TestAggregatorHashMonotonicity(t *testing.T) {
	p := &fakeProducer{md: meta.Spatial3D{DataHash: 1, FrameCount: 1}}
	s := &fakeProducer{md: meta.Spatial3D{DataHash: 1, FrameCount: 1}}
	primary, secondary := p.connect(t), s.connect(t)
	var agg Aggregator

	pull := func() uint64 {
		lhs := request(0)
		require.True(t, agg.GetMetaData(lhs, primary, secondary))
		return lhs.MetaData().DataHash
	}

	first := pull()
	assert.Equal(t, first, pull(), "unchanged producers keep the hash")
	assert.Equal(t, first, pull())

	p.md.DataHash = 2
	second := pull()
	assert.Greater(t, second, first)
	assert.Equal(t, second, pull())

	s.md.DataHash = 5
	third := pull()
	assert.Greater(t, third, second)

	agg.Bump()
	assert.Greater(t, pull(), third, "local changes are published too")
}

func TestAggregatorSecondaryRewiring(t *testing.T) {
	p := &fakeProducer{md: meta.Spatial3D{DataHash: 1, FrameCount: 9}}
	s := &fakeProducer{md: meta.Spatial3D{DataHash: 1, FrameCount: 2}}
	primary := p.connect(t)
	var agg Aggregator

	pull := func(secondary SpatialCall) meta.Spatial3D {
		lhs := request(0)
		require.True(t, agg.GetMetaData(lhs, primary, secondary))
		return lhs.MetaData()
	}

	attached := pull(s.connect(t))
	assert.Equal(t, uint32(2), attached.FrameCount)

	detached := pull(nil)
	assert.Greater(t, detached.DataHash, attached.DataHash)
	assert.Equal(t, uint32(9), detached.FrameCount)
	assert.Equal(t, detached.DataHash, pull(nil).DataHash)

	replaced := pull(s.connect(t))
	assert.Greater(t, replaced.DataHash, detached.DataHash, "a new secondary with an equal hash is still a change")

	other := s.connect(t)
	first := pull(other)
	assert.Greater(t, first.DataHash, replaced.DataHash)
	assert.Equal(t, first.DataHash, pull(other).DataHash)
}

func TestAggregatorFailure(t *testing.T) {
	t.Run("primary failure", func(t *testing.T) {
		p := &fakeProducer{md: meta.Spatial3D{DataHash: 1}, fail: true}
		var agg Aggregator
		lhs := request(2)
		assert.False(t, agg.GetMetaData(lhs, p.connect(t), nil))
		assert.Equal(t, meta.Spatial3D{FrameID: 2}, lhs.MetaData(), "lhs untouched")
	})

	t.Run("secondary failure leaves the hash alone", func(t *testing.T) {
		p := &fakeProducer{md: meta.Spatial3D{DataHash: 3}}
		s := &fakeProducer{md: meta.Spatial3D{DataHash: 3}, fail: true}
		var agg Aggregator
		assert.False(t, agg.GetMetaData(request(0), p.connect(t), s.connect(t)))
		assert.Zero(t, agg.Hash())
	})

	t.Run("missing primary", func(t *testing.T) {
		var agg Aggregator
		assert.False(t, agg.GetMetaData(request(0), nil, nil))
	})
}

func TestAggregatorPublish(t *testing.T) {
	var agg Aggregator
	agg.Bump()
	lhs := request(3)
	src := meta.Spatial3D{DataHash: 9, FrameCount: 4, Bounds: meta.Both(meta.NewRect(0, 0, 1, 1))}
	agg.Publish(lhs, src, nil)

	got := lhs.MetaData()
	assert.Equal(t, uint64(1), got.DataHash)
	assert.Equal(t, uint32(4), got.FrameCount)
	assert.Equal(t, uint32(3), got.FrameID)
}

func TestGateAtMostOnce(t *testing.T) {
	var g Gate
	rebuild := func(upstream uint64) {
		if g.NeedsRebuild(upstream) {
			g.Begin(upstream)
			g.Commit()
		}
	}

	assert.Equal(t, Stale, g.State())
	for range 10 {
		rebuild(0)
	}
	assert.Equal(t, 1, g.Rebuilds(), "first call ever builds even with a zero hash")
	assert.Equal(t, Valid, g.State())

	for range 10 {
		rebuild(4)
	}
	assert.Equal(t, 2, g.Rebuilds())

	g.Invalidate()
	rebuild(4)
	assert.Equal(t, 3, g.Rebuilds())
}

func TestGateBuilding(t *testing.T) {
	var g Gate
	g.Begin(7)
	assert.Equal(t, Building, g.State())
	assert.False(t, g.NeedsRebuild(7), "in-flight rebuild for the same hash")
	assert.True(t, g.NeedsRebuild(8))
	assert.Equal(t, "building", g.State().String())
}

func TestVersion(t *testing.T) {
	var v Version
	assert.Zero(t, v.Hash())
	assert.Equal(t, uint64(1), v.Bump())
	assert.Equal(t, uint64(1), v.Hash())
}
