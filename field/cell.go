package field

// ObstacleValue is the weight an obstacle cell contributes to a centroid. It
// is below every value a non-obstacle cell can take (baseline is positive and
// goals only add).
const ObstacleValue = -0.01

// Kind tags what a cell holds.
type Kind uint8

const (
	Unknown Kind = iota
	Known
	Obstacle
)

func (k Kind) String() string {
	switch k {
	case Unknown:
		return "unknown"
	case Known:
		return "known"
	case Obstacle:
		return "obstacle"
	}
	return "invalid"
}

// Cell is a tagged grid value. The zero Cell is Unknown.
type Cell struct {
	Kind  Kind
	Value float64 // meaningful only for Known
}

// KnownCell returns a Known cell holding v.
func KnownCell(v float64) Cell {
	return Cell{Kind: Known, Value: v}
}

// ObstacleCell is the marker written by every obstacle operation.
var ObstacleCell = Cell{Kind: Obstacle}

// IsKnown reports whether the cell carries information (Known or Obstacle).
func (c Cell) IsKnown() bool {
	return c.Kind != Unknown
}

// Weight converts the cell to the scalar used for centroid sums.
func (c Cell) Weight() float64 {
	switch c.Kind {
	case Known:
		return c.Value
	case Obstacle:
		return ObstacleValue
	}
	return 0
}
