package field

import (
	"errors"
	"maps"
	"sync/atomic"

	"github.com/pthm-cable/swarm/components"
)

// ErrInvalidDimensions is returned for a grid with a non-positive side.
var ErrInvalidDimensions = errors.New("field: grid dimensions must be positive")

// Environment is the shared world: one ScalarField plus the declared goals
// and starts, in insertion order.
//
// An Environment has two phases. During setup it is written by a single
// goroutine through the Add* methods. Seal ends setup; afterwards every
// mutator panics and the environment may be read from any number of
// goroutines without locking.
type Environment struct {
	field  *ScalarField
	goals  []components.Point
	starts []components.Point

	sealed atomic.Bool
	values []float32 // render buffer, built by Seal
}

// NewEnvironment creates an unsealed environment of the given size.
func NewEnvironment(rows, cols int, params Params) (*Environment, error) {
	f, err := NewScalarField(rows, cols, params)
	if err != nil {
		return nil, err
	}
	return &Environment{field: f}, nil
}

func (e *Environment) mustBeOpen(op string) {
	if e.sealed.Load() {
		panic("field: " + op + " called on a sealed environment")
	}
}

// AddGoal records a goal and deposits its bump into the field.
func (e *Environment) AddGoal(x, y int) {
	e.mustBeOpen("AddGoal")
	e.goals = append(e.goals, components.Point{X: x, Y: y})
	e.field.AddGoal(x, y)
}

// AddStart records a start coordinate. Starts are not clamped.
func (e *Environment) AddStart(x, y int) {
	e.mustBeOpen("AddStart")
	e.starts = append(e.starts, components.Point{X: x, Y: y})
}

// AddRectangleObstacle marks an inclusive rectangle clipped to the grid.
func (e *Environment) AddRectangleObstacle(ulx, uly, lrx, lry int) {
	e.mustBeOpen("AddRectangleObstacle")
	e.field.AddRectangleObstacle(ulx, uly, lrx, lry)
}

// AddCircleObstacle marks the in-grid part of a disk.
func (e *Environment) AddCircleObstacle(cx, cy, radius int) {
	e.mustBeOpen("AddCircleObstacle")
	e.field.AddCircleObstacle(cx, cy, radius)
}

// AddObstacle marks one cell, clamped into the grid.
func (e *Environment) AddObstacle(x, y int) {
	e.mustBeOpen("AddObstacle")
	e.field.AddObstacle(x, y)
}

// AddDisturbance registers a push at one cell, clamped into the grid.
func (e *Environment) AddDisturbance(x, y int, dir components.Direction) {
	e.mustBeOpen("AddDisturbance")
	e.field.AddDisturbance(x, y, dir)
}

// Seal ends the setup phase. It is idempotent.
func (e *Environment) Seal() {
	if e.sealed.Load() {
		return
	}
	e.values = e.buildValues()
	e.sealed.Store(true)
}

// Sealed reports whether Seal has been called.
func (e *Environment) Sealed() bool {
	return e.sealed.Load()
}

// Rows returns the grid height.
func (e *Environment) Rows() int { return e.field.rows }

// Cols returns the grid width.
func (e *Environment) Cols() int { return e.field.cols }

// InBounds reports whether (x, y) lies on the grid.
func (e *Environment) InBounds(x, y int) bool { return e.field.InBounds(x, y) }

// Cell returns the cell at a flat index.
func (e *Environment) Cell(idx int) Cell { return e.field.cells[idx] }

// Disturbance returns the direction registered at idx, if any.
func (e *Environment) Disturbance(idx int) (components.Direction, bool) {
	return e.field.Disturbance(idx)
}

// Disturbances returns a copy of the disturbance map.
func (e *Environment) Disturbances() map[int]components.Direction {
	return maps.Clone(e.field.disturbance)
}

// Goals returns the goals in insertion order.
func (e *Environment) Goals() []components.Point {
	return append([]components.Point(nil), e.goals...)
}

// Starts returns the starts in insertion order.
func (e *Environment) Starts() []components.Point {
	return append([]components.Point(nil), e.starts...)
}

// Values returns the raw cell buffer with obstacles at ObstacleValue. After
// Seal the same shared slice is returned on every call and must be treated
// as read-only.
func (e *Environment) Values() []float32 {
	if e.sealed.Load() {
		return e.values
	}
	return e.buildValues()
}

func (e *Environment) buildValues() []float32 {
	out := make([]float32, len(e.field.cells))
	for i, c := range e.field.cells {
		out[i] = float32(c.Weight())
	}
	return out
}
