package viewer

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/swarm/telemetry"
)

// HUDData holds all the data needed to render the HUD.
type HUDData struct {
	Title   string
	RunID   string
	Running bool
	Steps   uint64
	Stats   telemetry.WindowStats
	Perf    telemetry.PerfStats
}

func drawHUD(data HUDData) {
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	s := data.Stats
	rl.DrawText(
		fmt.Sprintf("Robots: %d | Goals: %d | Cycles: %d-%d", s.Robots, s.Goals, s.MinCycle, s.MaxCycle),
		10, 35, 16, rl.LightGray,
	)
	rl.DrawText(
		fmt.Sprintf("Goal dist: %.1f (p50 %.1f) | Spread: %.1f | Coverage: %.1f%%",
			s.GoalDistMean, s.GoalDistP50, s.Spread, s.Coverage*100),
		10, 55, 16, rl.LightGray,
	)
	rl.DrawText(
		fmt.Sprintf("Neighbors: %.1f | Disturbances: %d | Degenerate: %d | FPS: %.0f",
			s.NeighborsMean, s.DisturbancesHit, s.Degenerate, data.Perf.FPS),
		10, 75, 16, rl.LightGray,
	)

	status := "PAUSED"
	if data.Running {
		status = "Running"
	}
	rl.DrawText(fmt.Sprintf("%s | steps: %d | run %s", status, data.Steps, data.RunID), 10, 95, 16, rl.Yellow)
}

func drawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}
