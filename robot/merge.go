package robot

import (
	"errors"
	"fmt"
	"maps"

	"github.com/pthm-cable/swarm/components"
	"github.com/pthm-cable/swarm/field"
)

// ErrMapSize is returned when merging maps of different grids.
var ErrMapSize = errors.New("robot: map size mismatch")

// MapExport is an immutable copy of a robot's own map and consumed
// disturbances, as handed to a peer.
type MapExport struct {
	Cells       []field.Cell
	Disturbance map[int]components.Direction
}

// MergeResult counts what a merge added.
type MergeResult struct {
	Cells        int
	Disturbances int
}

// Export copies the own map. Owner goroutine only, or while the robot is
// not running.
func (a *Agent) Export() MapExport {
	return MapExport{
		Cells:       append([]field.Cell(nil), a.ownMap...),
		Disturbance: maps.Clone(a.ownDisturbance),
	}
}

// Merge fills every own-map cell that is still unknown from peer, and adopts
// peer disturbances not yet known. Adopted disturbances count as consumed.
// Merging the same export twice changes nothing the second time.
func (a *Agent) Merge(peer MapExport) (MergeResult, error) {
	if len(peer.Cells) != len(a.ownMap) {
		return MergeResult{}, fmt.Errorf("%w: own %d cells, peer %d", ErrMapSize, len(a.ownMap), len(peer.Cells))
	}

	var res MergeResult
	for idx, c := range peer.Cells {
		if !a.ownMap[idx].IsKnown() && c.IsKnown() {
			a.ownMap[idx] = c
			a.knownCells++
			res.Cells++
		}
	}
	for idx, dir := range peer.Disturbance {
		if _, ok := a.ownDisturbance[idx]; !ok {
			a.ownDisturbance[idx] = dir
			res.Disturbances++
		}
	}
	return res, nil
}
