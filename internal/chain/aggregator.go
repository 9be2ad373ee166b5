package chain

import (
	"github.com/specialistvlad/callgrid/internal/call"
	"github.com/specialistvlad/callgrid/internal/meta"
)

// SpatialCall is any call whose metadata is meta.Spatial3D.
type SpatialCall interface {
	call.Call
	MetaData() meta.Spatial3D
	SetMetaData(meta.Spatial3D)
}

// Aggregator owns the published hash of a module that combines one primary
// and one optional secondary producer.
type Aggregator struct {
	hash          uint64
	seenPrimary   uint64
	seenSecondary uint64
	secondary     SpatialCall
}

// Hash returns the published change counter.
func (a *Aggregator) Hash() uint64 { return a.hash }

// Bump records a local change, such as a dirty parameter or newly generated
// content.
func (a *Aggregator) Bump() { a.hash++ }

// GetMetaData runs the metadata pass for lhs. secondary must be a nil
// interface when the optional input is disconnected. It reports false
// without touching any state when a producer fails.
func (a *Aggregator) GetMetaData(lhs, primary, secondary SpatialCall) bool {
	if lhs == nil || primary == nil {
		return false
	}
	requested := lhs.MetaData().FrameID

	src := primary.MetaData()
	src.FrameID = requested
	primary.SetMetaData(src)
	if !primary.Invoke(call.FnGetMetaData) {
		return false
	}
	src = primary.MetaData()

	rhs := meta.NeutralFor(src)
	if secondary != nil {
		rhs = secondary.MetaData()
		rhs.FrameID = requested
		secondary.SetMetaData(rhs)
		if !secondary.Invoke(call.FnGetMetaData) {
			return false
		}
		rhs = secondary.MetaData()
	}
	a.Link(secondary)
	if secondary != nil {
		a.observe(&a.seenSecondary, rhs.DataHash)
	}
	a.observe(&a.seenPrimary, src.DataHash)

	out := meta.Combine(src, rhs)
	out.DataHash = a.hash
	out.FrameID = requested
	lhs.SetMetaData(out)
	return true
}

// Publish writes the aggregated view without contacting the producers, for
// modules that already hold fresh upstream metadata (the data pass).
func (a *Aggregator) Publish(lhs SpatialCall, src meta.Spatial3D, rhs *meta.Spatial3D) {
	other := meta.NeutralFor(src)
	if rhs != nil {
		other = *rhs
	}
	requested := lhs.MetaData().FrameID
	out := meta.Combine(src, other)
	out.DataHash = a.hash
	out.FrameID = requested
	lhs.SetMetaData(out)
}

// Link records the call currently connected to the optional input, nil
// when it is disconnected. Attaching, detaching or replacing the secondary
// changes the published output, so it bumps the hash and forgets the hash
// seen from the previous secondary.
func (a *Aggregator) Link(secondary SpatialCall) {
	if secondary == a.secondary {
		return
	}
	a.secondary = secondary
	a.seenSecondary = 0
	a.hash++
}

// observe bumps the local counter when an upstream counter moved. A counter
// that moved backwards belongs to a different producer after rewiring and
// counts as a change too.
func (a *Aggregator) observe(seen *uint64, upstream uint64) {
	if upstream != *seen {
		*seen = upstream
		a.hash++
	}
}
