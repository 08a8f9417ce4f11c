// Package components holds the small value types shared by the field, the
// robots and the observers.
package components

import "math"

// Position represents a robot's continuous position in cell units.
type Position struct {
	X, Y float64
}

// DistSq returns the squared distance to o.
func (p Position) DistSq(o Position) float64 {
	dx := o.X - p.X
	dy := o.Y - p.Y
	return dx*dx + dy*dy
}

// Dist returns the Euclidean distance to o.
func (p Position) Dist(o Position) float64 {
	return math.Sqrt(p.DistSq(o))
}

// Cell returns the grid cell containing p.
func (p Position) Cell() (col, row int) {
	return int(math.Floor(p.X)), int(math.Floor(p.Y))
}

// Velocity represents a per-micro-step displacement.
type Velocity struct {
	X, Y float64
}

// Speed returns the velocity magnitude.
func (v Velocity) Speed() float64 {
	return math.Hypot(v.X, v.Y)
}

// Point is an integer grid coordinate (x = column, y = row).
type Point struct {
	X, Y int
}

// Direction is a disturbance push in cells.
type Direction struct {
	DX, DY int
}
