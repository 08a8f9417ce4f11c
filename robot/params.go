package robot

import "github.com/pthm-cable/swarm/config"

// Fallback selects the target used when a centroid is degenerate.
type Fallback uint8

const (
	// FallbackHold keeps the robot where it is for the cycle: zero velocity
	// and no neighbor blending. Disturbances still apply.
	FallbackHold Fallback = iota
	// FallbackDiskCenter heads for the unweighted centre of the in-grid
	// sensed disk.
	FallbackDiskCenter
)

func (f Fallback) String() string {
	if f == FallbackDiskCenter {
		return config.FallbackDiskCenter
	}
	return config.FallbackHold
}

// Params are the decision cycle constants.
type Params struct {
	SocialWeight      float64 // lambda: weight of the neighbor mean velocity
	MaxStepLength     float64 // cap on the per-cycle displacement toward the target
	Substeps          int     // micro-steps per cycle
	DisturbanceFactor float64 // multiplier on a disturbance direction at first contact
	Fallback          Fallback
	Confine           bool // clamp position into the grid after every micro-step
}

// DefaultParams returns the reference constants.
func DefaultParams() Params {
	return Params{
		SocialWeight:      0.6,
		MaxStepLength:     30,
		Substeps:          50,
		DisturbanceFactor: 0.5,
		Fallback:          FallbackHold,
	}
}

// ParamsFromConfig converts the motion section of a validated config.
func ParamsFromConfig(m config.MotionConfig) Params {
	p := Params{
		SocialWeight:      m.SocialWeight,
		MaxStepLength:     m.MaxStepLength,
		Substeps:          m.Substeps,
		DisturbanceFactor: m.DisturbanceFactor,
		Confine:           m.Confine,
	}
	if m.DegenerateFallback == config.FallbackDiskCenter {
		p.Fallback = FallbackDiskCenter
	}
	return p
}
