package telemetry

import (
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/swarm/sim"
)

// WindowStats holds aggregated swarm statistics at one sample.
type WindowStats struct {
	RunID      string  `csv:"run_id"`
	Sample     int     `csv:"sample"`
	Step       uint64  `csv:"step"` // headless steps completed, 0 in concurrent mode
	ElapsedSec float64 `csv:"elapsed_sec"`

	Robots   int    `csv:"robots"`
	Goals    int    `csv:"goals"`
	MinCycle uint64 `csv:"min_cycle"`
	MaxCycle uint64 `csv:"max_cycle"`

	// Distance to the nearest goal
	GoalDistMean float64 `csv:"goal_dist_mean"`
	GoalDistStd  float64 `csv:"goal_dist_std"`
	GoalDistMin  float64 `csv:"goal_dist_min"`
	GoalDistP10  float64 `csv:"goal_dist_p10"`
	GoalDistP50  float64 `csv:"goal_dist_p50"`
	GoalDistP90  float64 `csv:"goal_dist_p90"`

	Spread        float64 `csv:"spread"` // hypot of the x and y standard deviations
	SpeedMean     float64 `csv:"speed_mean"`
	NeighborsMean float64 `csv:"neighbors_mean"`
	Coverage      float64 `csv:"coverage"` // mean known cells / grid cells

	DisturbancesHit int     `csv:"disturbances_hit"`
	Degenerate      uint64  `csv:"degenerate"`
	Travel          float64 `csv:"travel"`
}

// Quantiles returns the p10, p50 and p90 empirical quantiles of values.
func Quantiles(values []float64) (p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return stat.Quantile(0.1, stat.Empirical, sorted, nil),
		stat.Quantile(0.5, stat.Empirical, sorted, nil),
		stat.Quantile(0.9, stat.Empirical, sorted, nil)
}

// stdDev is the sample standard deviation, zero below two values.
func stdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	return stat.StdDev(values, nil)
}

// ComputeWindowStats summarises the tracker after a Sync with f's robots.
// Goals and grid size come from f.
func ComputeWindowStats(t *Tracker, f sim.Frame) WindowStats {
	robots := t.Robots()
	n := len(robots)
	stats := WindowStats{Robots: n, Goals: len(f.Goals)}
	if n == 0 {
		return stats
	}

	xs := make([]float64, n)
	ys := make([]float64, n)
	speeds := make([]float64, n)
	neighbors := make([]float64, n)
	known := make([]float64, n)
	travel := make([]float64, n)
	goalDist := make([]float64, 0, n)

	stats.MinCycle = math.MaxUint64
	for i, r := range robots {
		xs[i] = r.Position.X
		ys[i] = r.Position.Y
		speeds[i] = r.Velocity.Speed()
		neighbors[i] = float64(r.Track.Neighbors)
		known[i] = float64(r.Track.KnownCells)
		travel[i] = r.Track.Travel
		if len(f.Goals) > 0 {
			goalDist = append(goalDist, sim.NearestGoal(r.Position, f.Goals))
		}

		stats.MinCycle = min(stats.MinCycle, r.Track.Cycles)
		stats.MaxCycle = max(stats.MaxCycle, r.Track.Cycles)
		stats.DisturbancesHit += r.Track.DisturbancesHit
		stats.Degenerate += r.Track.Degenerate
	}

	stats.Spread = math.Hypot(stdDev(xs), stdDev(ys))
	stats.SpeedMean = stat.Mean(speeds, nil)
	stats.NeighborsMean = stat.Mean(neighbors, nil)
	if cells := f.Rows * f.Cols; cells > 0 {
		stats.Coverage = stat.Mean(known, nil) / float64(cells)
	}
	stats.Travel = floats.Sum(travel)

	if len(goalDist) > 0 {
		stats.GoalDistMean = stat.Mean(goalDist, nil)
		stats.GoalDistStd = stdDev(goalDist)
		stats.GoalDistMin = floats.Min(goalDist)
		stats.GoalDistP10, stats.GoalDistP50, stats.GoalDistP90 = Quantiles(goalDist)
	}
	return stats
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("run_id", s.RunID),
		slog.Int("sample", s.Sample),
		slog.Uint64("step", s.Step),
		slog.Float64("elapsed_sec", s.ElapsedSec),
		slog.Int("robots", s.Robots),
		slog.Uint64("min_cycle", s.MinCycle),
		slog.Uint64("max_cycle", s.MaxCycle),
		slog.Float64("goal_dist_mean", s.GoalDistMean),
		slog.Float64("goal_dist_min", s.GoalDistMin),
		slog.Float64("goal_dist_p50", s.GoalDistP50),
		slog.Float64("spread", s.Spread),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("neighbors_mean", s.NeighborsMean),
		slog.Float64("coverage", s.Coverage),
		slog.Int("disturbances_hit", s.DisturbancesHit),
		slog.Uint64("degenerate", s.Degenerate),
		slog.Float64("travel", s.Travel),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"sample", s.Sample,
		"step", s.Step,
		"max_cycle", s.MaxCycle,
		"goal_dist_mean", s.GoalDistMean,
		"goal_dist_min", s.GoalDistMin,
		"spread", s.Spread,
		"speed_mean", s.SpeedMean,
		"neighbors_mean", s.NeighborsMean,
		"coverage", s.Coverage,
		"disturbances_hit", s.DisturbancesHit,
		"degenerate", s.Degenerate,
	)
}
