package components

// Track is the per-robot observer record kept by telemetry.
type Track struct {
	ID              int
	Cycles          uint64
	Travel          float64 // accumulated path length between samples
	KnownCells      int
	DisturbancesHit int
	Degenerate      uint64
	Neighbors       int
}
