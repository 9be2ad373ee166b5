// Package chain contains the reusable halves of the call-chain evaluation
// protocol that every intermediate module runs.
//
// Aggregator implements the metadata half: it pushes the requested frame to
// the producers (primary before secondary), unions their bounds, takes the
// minimum frame count and republishes its own change counter, which is
// incremented whenever an upstream counter moves.
//
// Gate implements the data half: it remembers the upstream hash a derived
// resource was built from, so the expensive rebuild runs at most once per
// upstream change.
package chain
