package sim

import (
	"github.com/pthm-cable/swarm/components"
	"github.com/pthm-cable/swarm/robot"
)

// Frame is a point-in-time view for observers. Cells and Disturbances are
// shared between frames and must not be modified. Robot states may come from
// different cycles: each is the robot's latest published snapshot.
type Frame struct {
	Rows, Cols   int
	Cells        []float32
	Disturbances map[int]components.Direction
	Goals        []components.Point
	Starts       []components.Point
	Robots       []robot.State
}

// Frame captures the current state. It never blocks the robots.
func (d *Driver) Frame() Frame {
	return Frame{
		Rows:         d.env.Rows(),
		Cols:         d.env.Cols(),
		Cells:        d.env.Values(),
		Disturbances: d.disturbances,
		Goals:        d.env.Goals(),
		Starts:       d.env.Starts(),
		Robots:       d.swarm.States(),
	}
}

// MeanGoalDistance returns the mean over robots of the distance to the
// nearest goal. It is zero with no goals or no robots.
func (f Frame) MeanGoalDistance() float64 {
	if len(f.Goals) == 0 || len(f.Robots) == 0 {
		return 0
	}
	var sum float64
	for _, r := range f.Robots {
		sum += NearestGoal(r.Position, f.Goals)
	}
	return sum / float64(len(f.Robots))
}

// NearestGoal returns the distance from p to the closest goal, or -1 with
// no goals.
func NearestGoal(p components.Position, goals []components.Point) float64 {
	best := -1.0
	for _, g := range goals {
		d := p.Dist(components.Position{X: float64(g.X), Y: float64(g.Y)})
		if best < 0 || d < best {
			best = d
		}
	}
	return best
}
