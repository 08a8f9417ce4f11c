package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pthm-cable/swarm/components"
	"github.com/pthm-cable/swarm/sim"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot records the swarm at one sample for offline inspection.
type Snapshot struct {
	Version int    `json:"version"`
	RunID   string `json:"run_id"`
	Seed    int64  `json:"seed"`

	Rows int `json:"rows"`
	Cols int `json:"cols"`

	Sample int    `json:"sample"`
	Step   uint64 `json:"step"`

	Goals  []components.Point `json:"goals"`
	Robots []RobotState       `json:"robots"`

	Bookmark *Bookmark `json:"bookmark,omitempty"`
}

// RobotState holds one robot's published state plus its tracked travel.
type RobotState struct {
	ID              int     `json:"id"`
	X               float64 `json:"x"`
	Y               float64 `json:"y"`
	VelX            float64 `json:"vel_x"`
	VelY            float64 `json:"vel_y"`
	Cycle           uint64  `json:"cycle"`
	Neighbors       int     `json:"neighbors"`
	KnownCells      int     `json:"known_cells"`
	DisturbancesHit int     `json:"disturbances_hit"`
	Degenerate      uint64  `json:"degenerate"`
	Travel          float64 `json:"travel"`
}

// NewSnapshot captures the tracker as synced with f.
func NewSnapshot(runID string, seed int64, f sim.Frame, t *Tracker, stats WindowStats) *Snapshot {
	robots := t.Robots()
	s := &Snapshot{
		Version: SnapshotVersion,
		RunID:   runID,
		Seed:    seed,
		Rows:    f.Rows,
		Cols:    f.Cols,
		Sample:  stats.Sample,
		Step:    stats.Step,
		Goals:   f.Goals,
		Robots:  make([]RobotState, len(robots)),
	}
	for i, r := range robots {
		s.Robots[i] = RobotState{
			ID:              r.Track.ID,
			X:               r.Position.X,
			Y:               r.Position.Y,
			VelX:            r.Velocity.X,
			VelY:            r.Velocity.Y,
			Cycle:           r.Track.Cycles,
			Neighbors:       r.Track.Neighbors,
			KnownCells:      r.Track.KnownCells,
			DisturbancesHit: r.Track.DisturbancesHit,
			Degenerate:      r.Track.Degenerate,
			Travel:          r.Track.Travel,
		}
	}
	return s
}

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	name := fmt.Sprintf("snapshot_%d", snapshot.Sample)
	if snapshot.Bookmark != nil {
		name = fmt.Sprintf("snapshot_%d_%s", snapshot.Sample, snapshot.Bookmark.Type)
	}
	path := filepath.Join(dir, name+".json")

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if snapshot.Version != SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d, want %d", snapshot.Version, SnapshotVersion)
	}
	return &snapshot, nil
}
