package telemetry

import (
	"math"
	"testing"

	"github.com/pthm-cable/swarm/components"
	"github.com/pthm-cable/swarm/robot"
	"github.com/pthm-cable/swarm/sim"
)

func TestQuantiles(t *testing.T) {
	p10, p50, p90 := Quantiles(nil)
	if p10 != 0 || p50 != 0 || p90 != 0 {
		t.Error("empty slice should return all zeros")
	}

	p10, p50, p90 = Quantiles([]float64{5})
	if p10 != 5 || p50 != 5 || p90 != 5 {
		t.Errorf("single element: got %v %v %v, want 5 5 5", p10, p50, p90)
	}

	values := []float64{10, 9, 8, 7, 6, 5, 4, 3, 2, 1}
	p10, p50, p90 = Quantiles(values)
	if p50 != 5 {
		t.Errorf("p50 = %v, want 5", p50)
	}
	if p10 < 1 || p10 > 2 {
		t.Errorf("p10 = %v, want 1 or 2", p10)
	}
	if p90 < 9 || p90 > 10 {
		t.Errorf("p90 = %v, want 9 or 10", p90)
	}
	if values[0] != 10 {
		t.Error("input must not be reordered")
	}
}

func testStates() []robot.State {
	return []robot.State{
		{ID: 0, Position: components.Position{X: 0, Y: 0}, Velocity: components.Velocity{X: 3, Y: 4},
			Cycle: 3, Neighbors: 1, KnownCells: 10, DisturbancesHit: 1},
		{ID: 1, Position: components.Position{X: 6, Y: 8},
			Cycle: 5, Neighbors: 2, KnownCells: 20, Degenerate: 1},
		{ID: 2, Position: components.Position{X: 3, Y: 4},
			Cycle: 4, KnownCells: 30, DisturbancesHit: 2},
	}
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestComputeWindowStats(t *testing.T) {
	tr := NewTracker()
	f := sim.Frame{Rows: 10, Cols: 10, Goals: []components.Point{{X: 0, Y: 0}}, Robots: testStates()}
	tr.Sync(f.Robots)

	s := ComputeWindowStats(tr, f)

	checks := []struct {
		name      string
		got, want float64
	}{
		{"goal_dist_mean", s.GoalDistMean, 5},
		{"goal_dist_std", s.GoalDistStd, 5},
		{"goal_dist_min", s.GoalDistMin, 0},
		{"goal_dist_p50", s.GoalDistP50, 5},
		{"spread", s.Spread, 5},
		{"speed_mean", s.SpeedMean, 5.0 / 3},
		{"neighbors_mean", s.NeighborsMean, 1},
		{"coverage", s.Coverage, 0.2},
		{"travel", s.Travel, 0},
	}
	for _, c := range checks {
		if !approx(c.got, c.want) {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}

	if s.Robots != 3 || s.Goals != 1 {
		t.Errorf("robots=%d goals=%d, want 3 and 1", s.Robots, s.Goals)
	}
	if s.MinCycle != 3 || s.MaxCycle != 5 {
		t.Errorf("cycles [%d, %d], want [3, 5]", s.MinCycle, s.MaxCycle)
	}
	if s.DisturbancesHit != 3 || s.Degenerate != 1 {
		t.Errorf("disturbances=%d degenerate=%d, want 3 and 1", s.DisturbancesHit, s.Degenerate)
	}

	// Robot 0 moves 5 cells.
	moved := testStates()
	moved[0].Position = components.Position{X: 3, Y: 4}
	tr.Sync(moved)
	f.Robots = moved
	if s := ComputeWindowStats(tr, f); !approx(s.Travel, 5) {
		t.Errorf("travel = %v, want 5", s.Travel)
	}
}

func TestComputeWindowStatsEmpty(t *testing.T) {
	s := ComputeWindowStats(NewTracker(), sim.Frame{Rows: 4, Cols: 4})
	if s.Robots != 0 || s.MinCycle != 0 || s.Coverage != 0 {
		t.Errorf("empty tracker should give zero stats, got %+v", s)
	}
}

func TestComputeWindowStatsNoGoals(t *testing.T) {
	tr := NewTracker()
	f := sim.Frame{Rows: 10, Cols: 10, Robots: testStates()}
	tr.Sync(f.Robots)
	s := ComputeWindowStats(tr, f)
	if s.Goals != 0 || s.GoalDistMean != 0 || s.GoalDistMin != 0 {
		t.Errorf("no goals: got goals=%d mean=%v min=%v", s.Goals, s.GoalDistMean, s.GoalDistMin)
	}
}

func TestComputeWindowStatsSingleRobot(t *testing.T) {
	tr := NewTracker()
	f := sim.Frame{Rows: 10, Cols: 10, Goals: []components.Point{{X: 3, Y: 4}}, Robots: testStates()[:1]}
	tr.Sync(f.Robots)
	s := ComputeWindowStats(tr, f)
	if s.Spread != 0 || s.GoalDistStd != 0 {
		t.Errorf("one robot: spread=%v std=%v, want 0", s.Spread, s.GoalDistStd)
	}
	if !approx(s.GoalDistMean, 5) {
		t.Errorf("goal_dist_mean = %v, want 5", s.GoalDistMean)
	}
}
