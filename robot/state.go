package robot

import "github.com/pthm-cable/swarm/components"

// State is the immutable snapshot a robot publishes at the end of every
// cycle. It is the only view of a robot that other goroutines may read.
//
// Snapshots are eventually consistent: a peer's State may be up to one full
// cycle behind its owner, and two States read in the same frame may come from
// different cycle numbers.
type State struct {
	ID       int
	Position components.Position
	Velocity components.Velocity

	Cycle           uint64 // completed cycles
	Neighbors       int    // neighbor count seen in the last cycle
	KnownCells      int    // own-map cells no longer unknown
	DisturbancesHit int    // disturbance cells consumed so far
	Degenerate      uint64 // cycles that fell back from a degenerate centroid
}
