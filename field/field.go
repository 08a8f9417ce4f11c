// Package field holds the shared scalar field the robots cover: goal
// attraction, obstacle markings and disturbance cells.
package field

import (
	"fmt"
	"math"

	"github.com/pthm-cable/swarm/components"
)

// Params shapes the values written into a ScalarField.
type Params struct {
	Baseline      float64 // initial value of every cell
	GoalAmplitude float64 // peak height of a goal bump
	GoalFalloff   float64 // bump = amp * exp(-falloff * d^2 / (rows+cols))
}

// DefaultParams returns the constants of the reference scenario.
func DefaultParams() Params {
	return Params{Baseline: 0.1, GoalAmplitude: 10, GoalFalloff: 0.02}
}

// ScalarField is a dense rows x cols grid of tagged cells plus a sparse map
// of disturbance directions keyed by cell index (row*cols + col).
type ScalarField struct {
	rows, cols  int
	params      Params
	cells       []Cell
	disturbance map[int]components.Direction
}

// NewScalarField allocates a field with every cell Known at the baseline.
// It returns ErrInvalidDimensions unless both sides are positive.
func NewScalarField(rows, cols int, params Params) (*ScalarField, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, rows, cols)
	}
	cells := make([]Cell, rows*cols)
	for i := range cells {
		cells[i] = KnownCell(params.Baseline)
	}
	return &ScalarField{
		rows:        rows,
		cols:        cols,
		params:      params,
		cells:       cells,
		disturbance: make(map[int]components.Direction),
	}, nil
}

// Rows returns the grid height.
func (f *ScalarField) Rows() int { return f.rows }

// Cols returns the grid width.
func (f *ScalarField) Cols() int { return f.cols }

// Index returns the flat index of (x, y). The point must be in bounds.
func (f *ScalarField) Index(x, y int) int {
	return y*f.cols + x
}

// InBounds reports whether (x, y) lies on the grid.
func (f *ScalarField) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < f.cols && y < f.rows
}

// Cell returns the cell at a flat index.
func (f *ScalarField) Cell(idx int) Cell {
	return f.cells[idx]
}

// Disturbance returns the direction registered at idx, if any.
func (f *ScalarField) Disturbance(idx int) (components.Direction, bool) {
	d, ok := f.disturbance[idx]
	return d, ok
}

// clamp moves (x, y) onto the nearest in-bounds cell.
func (f *ScalarField) clamp(x, y int) (int, int) {
	return min(max(x, 0), f.cols-1), min(max(y, 0), f.rows-1)
}

// AddGoal superposes a Gaussian bump centred on (x, y) over every cell.
// There is no cutoff: far cells get a tiny positive contribution. Obstacle
// cells are left as obstacles.
func (f *ScalarField) AddGoal(x, y int) {
	spread := float64(f.rows + f.cols)
	for i := 0; i < f.rows; i++ {
		dy := float64(y - i)
		for j := 0; j < f.cols; j++ {
			idx := i*f.cols + j
			if f.cells[idx].Kind == Obstacle {
				continue
			}
			dx := float64(x - j)
			distSq := dx*dx + dy*dy
			f.cells[idx].Value += f.params.GoalAmplitude * math.Exp(-distSq*f.params.GoalFalloff/spread)
		}
	}
}

// AddRectangleObstacle marks the inclusive rectangle, clipped to the grid.
func (f *ScalarField) AddRectangleObstacle(ulx, uly, lrx, lry int) {
	ulx, uly = max(ulx, 0), max(uly, 0)
	lrx, lry = min(lrx, f.cols-1), min(lry, f.rows-1)
	for i := uly; i <= lry; i++ {
		for j := ulx; j <= lrx; j++ {
			f.cells[i*f.cols+j] = ObstacleCell
		}
	}
}

// AddCircleObstacle marks every cell within radius of (cx, cy). Cells off the
// grid are skipped, not clamped.
func (f *ScalarField) AddCircleObstacle(cx, cy, radius int) {
	radiusSq := radius * radius
	for i := cy - radius; i <= cy+radius; i++ {
		for j := cx - radius; j <= cx+radius; j++ {
			if !f.InBounds(j, i) {
				continue
			}
			dx, dy := j-cx, i-cy
			if dx*dx+dy*dy <= radiusSq {
				f.cells[i*f.cols+j] = ObstacleCell
			}
		}
	}
}

// AddObstacle marks a single cell, clamping the coordinate into the grid.
func (f *ScalarField) AddObstacle(x, y int) {
	x, y = f.clamp(x, y)
	f.cells[f.Index(x, y)] = ObstacleCell
}

// AddDisturbance registers dir at a single cell, clamping the coordinate
// into the grid. A later call on the same cell replaces the direction.
func (f *ScalarField) AddDisturbance(x, y int, dir components.Direction) {
	x, y = f.clamp(x, y)
	f.disturbance[f.Index(x, y)] = dir
}
