package field

import (
	"math"

	"github.com/pthm-cable/swarm/components"
	"github.com/pthm-cable/swarm/config"
)

// NewFromConfig builds an unsealed environment from the world, field and
// scenario sections of cfg.
func NewFromConfig(cfg *config.Config) (*Environment, error) {
	env, err := NewEnvironment(cfg.World.Rows, cfg.World.Cols, Params{
		Baseline:      cfg.Field.Baseline,
		GoalAmplitude: cfg.Field.GoalAmplitude,
		GoalFalloff:   cfg.Field.GoalFalloff,
	})
	if err != nil {
		return nil, err
	}
	ApplyScenario(env, cfg.Scenario)
	return env, nil
}

// ApplyScenario writes a scripted scenario into env.
func ApplyScenario(env *Environment, sc config.ScenarioConfig) {
	for _, p := range sc.Starts {
		env.AddStart(p.X, p.Y)
	}
	for _, r := range sc.Rectangles {
		env.AddRectangleObstacle(r.ULX, r.ULY, r.LRX, r.LRY)
	}
	for _, c := range sc.Circles {
		env.AddCircleObstacle(c.X, c.Y, c.Radius)
	}
	for _, p := range sc.Obstacles {
		env.AddObstacle(p.X, p.Y)
	}
	for _, p := range sc.Goals {
		env.AddGoal(p.X, p.Y)
	}
	for _, d := range sc.Disturbances {
		env.AddDisturbance(d.X, d.Y, components.Direction{DX: d.DX, DY: d.DY})
	}
	for _, v := range sc.Vortices {
		AddVortex(env, v.X, v.Y, v.Spokes, v.Length)
	}
}

// AddVortex lays disturbances along spokes rays around (cx, cy). The cell at
// distance j on a ray pushes perpendicular to the ray with magnitude j/2, so
// the swirl strengthens outward.
func AddVortex(env *Environment, cx, cy, spokes, length int) {
	for i := 0; i < spokes; i++ {
		angle := 2 * math.Pi * float64(i) / float64(spokes)
		sin, cos := math.Sincos(angle)
		for j := 0; j < length; j++ {
			half := float64(j / 2)
			x := int(float64(cx) + float64(j)*cos)
			y := int(float64(cy) + float64(j)*sin)
			env.AddDisturbance(x, y, components.Direction{
				DX: int(-half * sin),
				DY: int(half * cos),
			})
		}
	}
}
