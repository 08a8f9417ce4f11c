package robot

import (
	"errors"

	"github.com/pthm-cable/swarm/components"
)

// ErrNoNeighbors is returned by velocity matching with nobody to match.
var ErrNoNeighbors = errors.New("robot: no neighbors to match")

// matchVelocity returns (0.5*own + sum of neighbor velocities) / count.
func matchVelocity(own components.Velocity, neighbors []*State) (components.Velocity, error) {
	if len(neighbors) == 0 {
		return components.Velocity{}, ErrNoNeighbors
	}
	sum := components.Velocity{X: 0.5 * own.X, Y: 0.5 * own.Y}
	for _, n := range neighbors {
		sum.X += n.Velocity.X
		sum.Y += n.Velocity.Y
	}
	count := float64(len(neighbors))
	return components.Velocity{X: sum.X / count, Y: sum.Y / count}, nil
}
