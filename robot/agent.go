// Package robot implements the per-robot coverage controller: neighbor
// discovery, sensing into a private map, weighted Voronoi centroid, blended
// bounded stepping and disturbance reaction.
package robot

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync/atomic"

	"github.com/pthm-cable/swarm/components"
	"github.com/pthm-cable/swarm/field"
)

var (
	// ErrEmptyStarts is returned when a robot is created in an environment
	// with no declared starts.
	ErrEmptyStarts = errors.New("robot: environment has no start coordinates")
	// ErrDuplicateID is returned when two robots in a swarm share an id.
	ErrDuplicateID = errors.New("robot: duplicate id")
)

// Agent is one robot. Everything except the published State belongs to the
// goroutine that calls Cycle; other goroutines must only use State.
type Agent struct {
	id           int
	sensorRadius float64
	commRadius   float64

	pos components.Position
	vel components.Velocity

	ownMap         []field.Cell
	ownDisturbance map[int]components.Direction
	knownCells     int

	// Rebuilt every cycle from peers' published states.
	neighbors     []int
	neighborState []*State

	cycle      uint64
	degenerate uint64

	published atomic.Pointer[State]
	log       *slog.Logger
}

// NewAgent places a robot on a uniformly chosen start of env, jittered by up
// to rows*cols/100000 cells per axis. The own map starts entirely unknown.
func NewAgent(env *field.Environment, id int, sensorRadius, commRadius float64, rng *rand.Rand) (*Agent, error) {
	starts := env.Starts()
	if len(starts) == 0 {
		return nil, fmt.Errorf("creating robot %d: %w", id, ErrEmptyStarts)
	}

	start := starts[rng.Intn(len(starts))]
	jitter := env.Rows() * env.Cols() / 100000
	dx, dy := 0, 0
	if jitter > 0 {
		dx = rng.Intn(2*jitter+1) - jitter
		dy = rng.Intn(2*jitter+1) - jitter
	}

	a := &Agent{
		id:             id,
		sensorRadius:   sensorRadius,
		commRadius:     commRadius,
		pos:            components.Position{X: float64(start.X + dx), Y: float64(start.Y + dy)},
		ownMap:         make([]field.Cell, env.Rows()*env.Cols()),
		ownDisturbance: make(map[int]components.Direction),
		log:            slog.Default().With("robot", id),
	}
	a.publish()
	return a, nil
}

// ID returns the robot's identity.
func (a *Agent) ID() int { return a.id }

// SensorRadius returns the sensing disk radius.
func (a *Agent) SensorRadius() float64 { return a.sensorRadius }

// CommRadius returns the communication range.
func (a *Agent) CommRadius() float64 { return a.commRadius }

// State returns the latest published snapshot. Safe from any goroutine.
func (a *Agent) State() State {
	return *a.published.Load()
}

// Neighbors returns the ids found in the last cycle. Owner goroutine only.
func (a *Agent) Neighbors() []int {
	return append([]int(nil), a.neighbors...)
}

func (a *Agent) publish() State {
	s := &State{
		ID:              a.id,
		Position:        a.pos,
		Velocity:        a.vel,
		Cycle:           a.cycle,
		Neighbors:       len(a.neighbors),
		KnownCells:      a.knownCells,
		DisturbancesHit: len(a.ownDisturbance),
		Degenerate:      a.degenerate,
	}
	a.published.Store(s)
	return *s
}

// Swarm is the fixed set of robots of one run, indexed by id.
type Swarm struct {
	agents []*Agent
	byID   map[int]*Agent
}

// NewSwarm groups agents. Ids must be unique.
func NewSwarm(agents []*Agent) (*Swarm, error) {
	byID := make(map[int]*Agent, len(agents))
	for _, a := range agents {
		if _, dup := byID[a.id]; dup {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateID, a.id)
		}
		byID[a.id] = a
	}
	return &Swarm{agents: agents, byID: byID}, nil
}

// Spawn creates n robots with ids 0..n-1 sharing the same radii.
func Spawn(env *field.Environment, n int, sensorRadius, commRadius float64, rng *rand.Rand) (*Swarm, error) {
	agents := make([]*Agent, 0, n)
	for i := 0; i < n; i++ {
		a, err := NewAgent(env, i, sensorRadius, commRadius, rng)
		if err != nil {
			return nil, err
		}
		agents = append(agents, a)
	}
	return NewSwarm(agents)
}

// Len returns the number of robots.
func (s *Swarm) Len() int { return len(s.agents) }

// Agents returns the robots in spawn order. The slice must not be modified.
func (s *Swarm) Agents() []*Agent { return s.agents }

// Lookup returns the latest published state of robot id.
func (s *Swarm) Lookup(id int) (State, bool) {
	a, ok := s.byID[id]
	if !ok {
		return State{}, false
	}
	return a.State(), true
}

// States returns the latest published state of every robot, in spawn order.
func (s *Swarm) States() []State {
	out := make([]State, len(s.agents))
	for i, a := range s.agents {
		out[i] = a.State()
	}
	return out
}
