package robot

import (
	"errors"
	"fmt"
	"math"

	"github.com/pthm-cable/swarm/components"
	"github.com/pthm-cable/swarm/field"
)

// ErrDegenerateCentroid is reported when the owned, sensed mass is not
// positive, so the weighted centroid is undefined.
var ErrDegenerateCentroid = errors.New("robot: degenerate centroid")

// Cycle runs one decision cycle and publishes the resulting state:
// neighbor discovery, sensing, centroid target, blended bounded advance.
// It must only be called from the robot's own goroutine. A degenerate
// centroid is handled with p.Fallback and never stops the cycle.
func (a *Agent) Cycle(env *field.Environment, swarm *Swarm, p Params) State {
	a.discoverNeighbors(swarm)
	a.sense(env)

	hold := false
	target, err := a.centroid(env)
	if err != nil {
		hold = p.Fallback == FallbackHold
		a.degenerate++
		target = a.fallbackTarget(env, p.Fallback)
		a.log.Debug("centroid fallback",
			"error", err,
			"cycle", a.cycle,
			"fallback", p.Fallback.String(),
		)
	}

	a.advance(env, target, p, hold)
	a.cycle++
	return a.publish()
}

// discoverNeighbors rebuilds the neighbor list from the peers' published
// states: every other robot within commRadius.
func (a *Agent) discoverNeighbors(swarm *Swarm) {
	a.neighbors = a.neighbors[:0]
	a.neighborState = a.neighborState[:0]
	for _, peer := range swarm.agents {
		if peer.id == a.id {
			continue
		}
		s := peer.published.Load()
		if a.pos.Dist(s.Position) <= a.commRadius {
			a.neighbors = append(a.neighbors, s.ID)
			a.neighborState = append(a.neighborState, s)
		}
	}
}

// forDisk calls fn for every in-grid cell whose corner (col, row) lies
// within radius r of the robot.
func (a *Agent) forDisk(env *field.Environment, r float64, fn func(idx, col, row int, distSq float64)) {
	rSq := r * r
	x0 := max(int(math.Floor(a.pos.X-r)), 0)
	x1 := min(int(math.Floor(a.pos.X+r)), env.Cols()-1)
	y0 := max(int(math.Floor(a.pos.Y-r)), 0)
	y1 := min(int(math.Floor(a.pos.Y+r)), env.Rows()-1)

	for row := y0; row <= y1; row++ {
		dy := float64(row) - a.pos.Y
		for col := x0; col <= x1; col++ {
			dx := float64(col) - a.pos.X
			distSq := dx*dx + dy*dy
			if distSq <= rSq {
				fn(row*env.Cols()+col, col, row, distSq)
			}
		}
	}
}

// sense copies environment cells inside the sensor disk into the own map.
// Cells already known are never overwritten.
func (a *Agent) sense(env *field.Environment) {
	a.forDisk(env, a.sensorRadius, func(idx, _, _ int, _ float64) {
		if !a.ownMap[idx].IsKnown() {
			a.ownMap[idx] = env.Cell(idx)
			a.knownCells++
		}
	})
}

// owns reports whether no neighbor is strictly closer to (col, row) than the
// robot itself. Ties stay with the robot.
func (a *Agent) owns(col, row int, distSq float64) bool {
	cell := components.Position{X: float64(col), Y: float64(row)}
	for _, n := range a.neighborState {
		if n.Position.DistSq(cell) < distSq {
			return false
		}
	}
	return true
}

// centroid returns the mass-weighted centre of the owned cells of the sensor
// disk, weighting each cell by its own-map value.
func (a *Agent) centroid(env *field.Environment) (components.Position, error) {
	var mass, sumX, sumY float64
	a.forDisk(env, a.sensorRadius, func(idx, col, row int, distSq float64) {
		if !a.owns(col, row, distSq) {
			return
		}
		w := a.ownMap[idx].Weight()
		mass += w
		sumX += w * float64(col)
		sumY += w * float64(row)
	})

	if mass <= 0 {
		return a.pos, fmt.Errorf("%w: mass %g at (%.2f, %.2f)", ErrDegenerateCentroid, mass, a.pos.X, a.pos.Y)
	}
	return components.Position{X: sumX / mass, Y: sumY / mass}, nil
}

func (a *Agent) fallbackTarget(env *field.Environment, f Fallback) components.Position {
	if f != FallbackDiskCenter {
		return a.pos
	}
	var n, sumX, sumY float64
	a.forDisk(env, a.sensorRadius, func(_, col, row int, _ float64) {
		n++
		sumX += float64(col)
		sumY += float64(row)
	})
	if n == 0 {
		return a.pos
	}
	return components.Position{X: sumX / n, Y: sumY / n}
}

// limitStep returns target, pulled back along the line from `from` so that
// it lies at most maxLen away.
func limitStep(from, target components.Position, maxLen float64) components.Position {
	dist := from.Dist(target)
	if dist <= maxLen {
		return target
	}
	ratio := maxLen / dist
	return components.Position{
		X: from.X + (target.X-from.X)*ratio,
		Y: from.Y + (target.Y-from.Y)*ratio,
	}
}

// advance moves toward target in p.Substeps equal micro-steps, blending the
// step with the neighbor mean velocity, and reacts to disturbances. A held
// robot gets zero velocity and no blending; only disturbances can move it.
func (a *Agent) advance(env *field.Environment, target components.Position, p Params, hold bool) {
	target = limitStep(a.pos, target, p.MaxStepLength)
	n := float64(p.Substeps)
	step := components.Velocity{X: (target.X - a.pos.X) / n, Y: (target.Y - a.pos.Y) / n}

	vel := step
	if hold {
		vel = components.Velocity{}
	} else if mean, err := matchVelocity(a.vel, a.neighborState); err == nil {
		lambda := p.SocialWeight
		vel = components.Velocity{
			X: (1-lambda)*step.X + lambda*mean.X,
			Y: (1-lambda)*step.Y + lambda*mean.Y,
		}
	}
	a.vel = vel

	for i := 0; i < p.Substeps; i++ {
		a.pos.X += vel.X
		a.pos.Y += vel.Y
		a.applyDisturbance(env, p.DisturbanceFactor)
		if p.Confine {
			a.pos.X = min(max(a.pos.X, 0), float64(env.Cols()-1))
			a.pos.Y = min(max(a.pos.Y, 0), float64(env.Rows()-1))
		}
	}
}

// applyDisturbance pushes the robot if the cell it occupies carries a
// disturbance it has not reacted to yet. Each cell affects a robot once.
func (a *Agent) applyDisturbance(env *field.Environment, factor float64) {
	col, row := a.pos.Cell()
	if !env.InBounds(col, row) {
		return
	}
	idx := row*env.Cols() + col
	if _, seen := a.ownDisturbance[idx]; seen {
		return
	}
	dir, ok := env.Disturbance(idx)
	if !ok {
		return
	}
	a.pos.X += factor * float64(dir.DX)
	a.pos.Y += factor * float64(dir.DY)
	a.ownDisturbance[idx] = dir
}
