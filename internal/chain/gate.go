package chain

// CacheState tracks a derived resource built from upstream data.
type CacheState int

const (
	// Stale means the resource must be (re)built before use.
	Stale CacheState = iota
	// Building means a rebuild for the recorded hash is in progress.
	Building
	// Valid means the resource matches the recorded hash.
	Valid
)

func (s CacheState) String() string {
	switch s {
	case Stale:
		return "stale"
	case Building:
		return "building"
	case Valid:
		return "valid"
	}
	return "unknown"
}

// Gate decides when a derived resource has to be rebuilt.
type Gate struct {
	state    CacheState
	hash     uint64
	rebuilds int
}

func (g *Gate) State() CacheState { return g.state }

// Hash returns the upstream hash the resource was built from.
func (g *Gate) Hash() uint64 { return g.hash }

// Rebuilds counts completed rebuilds.
func (g *Gate) Rebuilds() int { return g.rebuilds }

// NeedsRebuild reports whether the resource is stale or was built from a
// different upstream hash. A rebuild in flight for the same hash does not
// need another one.
func (g *Gate) NeedsRebuild(upstream uint64) bool {
	return g.state == Stale || upstream != g.hash
}

// Begin marks a rebuild from upstream hash as started.
func (g *Gate) Begin(upstream uint64) {
	g.state = Building
	g.hash = upstream
}

// Commit marks the rebuild started by Begin as finished.
func (g *Gate) Commit() {
	g.state = Valid
	g.rebuilds++
}

// Invalidate forces the next NeedsRebuild to report true. It is also how a
// failed rebuild is abandoned.
func (g *Gate) Invalidate() { g.state = Stale }

// Version is the data hash of a module that produces data itself.
type Version struct {
	hash uint64
}

// Bump records a change of the produced content and returns the new hash.
func (v *Version) Bump() uint64 {
	v.hash++
	return v.hash
}

func (v *Version) Hash() uint64 { return v.hash }
