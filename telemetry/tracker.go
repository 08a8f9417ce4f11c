package telemetry

import (
	"sort"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/swarm/components"
	"github.com/pthm-cable/swarm/robot"
)

// Tracker mirrors published robot states into an ECS world so observers can
// accumulate per-robot history (travel, last seen cycle) between samples.
// It is not safe for concurrent use; keep it on the observer goroutine.
type Tracker struct {
	world *ecs.World

	mapper *ecs.Map3[components.Position, components.Velocity, components.Track]
	filter *ecs.Filter3[components.Position, components.Velocity, components.Track]

	posMap   *ecs.Map1[components.Position]
	velMap   *ecs.Map1[components.Velocity]
	trackMap *ecs.Map1[components.Track]

	entities map[int]ecs.Entity
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	world := ecs.NewWorld()
	return &Tracker{
		world:    world,
		mapper:   ecs.NewMap3[components.Position, components.Velocity, components.Track](world),
		filter:   ecs.NewFilter3[components.Position, components.Velocity, components.Track](world),
		posMap:   ecs.NewMap1[components.Position](world),
		velMap:   ecs.NewMap1[components.Velocity](world),
		trackMap: ecs.NewMap1[components.Track](world),
		entities: make(map[int]ecs.Entity),
	}
}

// Sync folds the latest states in. Unknown ids get a new entity; known ones
// accumulate the straight-line distance since the previous Sync.
func (t *Tracker) Sync(states []robot.State) {
	for _, s := range states {
		e, ok := t.entities[s.ID]
		if !ok {
			pos := s.Position
			vel := s.Velocity
			track := trackFromState(s)
			t.entities[s.ID] = t.mapper.NewEntity(&pos, &vel, &track)
			continue
		}

		pos := t.posMap.Get(e)
		vel := t.velMap.Get(e)
		track := t.trackMap.Get(e)

		travel := track.Travel + pos.Dist(s.Position)
		*track = trackFromState(s)
		track.Travel = travel
		*pos = s.Position
		*vel = s.Velocity
	}
}

func trackFromState(s robot.State) components.Track {
	return components.Track{
		ID:              s.ID,
		Cycles:          s.Cycle,
		KnownCells:      s.KnownCells,
		DisturbancesHit: s.DisturbancesHit,
		Degenerate:      s.Degenerate,
		Neighbors:       s.Neighbors,
	}
}

// Len returns the number of tracked robots.
func (t *Tracker) Len() int { return len(t.entities) }

// TrackedRobot is one row of the mirror.
type TrackedRobot struct {
	Position components.Position
	Velocity components.Velocity
	Track    components.Track
}

// Robots returns every tracked robot ordered by id.
func (t *Tracker) Robots() []TrackedRobot {
	out := make([]TrackedRobot, 0, len(t.entities))
	query := t.filter.Query()
	for query.Next() {
		pos, vel, track := query.Get()
		out = append(out, TrackedRobot{Position: *pos, Velocity: *vel, Track: *track})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Track.ID < out[j].Track.ID })
	return out
}
