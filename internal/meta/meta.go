// Package meta holds the metadata exchanged alongside data on every call:
// the producer's change counter, animation frame information and the
// bounding volumes aggregated along a chain.
package meta

// Basic carries only a producer's change counter.
type Basic struct {
	DataHash uint64
}

// Spatial3D is the metadata of spatial calls. FrameID flows upstream (the
// consumer requests a frame), everything else flows downstream.
type Spatial3D struct {
	DataHash   uint64
	FrameCount uint32
	FrameID    uint32
	Bounds     BoundingBoxes
}

// NeutralFor returns the metadata assumed for a disconnected optional input.
// It repeats the primary's frame count, so min-aggregation passes the
// connected producer through unaltered and never collapses to zero, and it
// carries invalid bounds, the identity of Union.
func NeutralFor(primary Spatial3D) Spatial3D {
	return Spatial3D{FrameCount: primary.FrameCount, FrameID: primary.FrameID}
}

// Combine merges a primary and a secondary producer: the frame count is the
// minimum (the shortest source caps playback) and the boxes are unioned.
// DataHash and FrameID are taken from the primary.
func Combine(primary, secondary Spatial3D) Spatial3D {
	out := primary
	out.FrameCount = min(primary.FrameCount, secondary.FrameCount)
	out.Bounds = primary.Bounds.Union(secondary.Bounds)
	return out
}
