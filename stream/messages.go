package stream

import (
	"sort"

	"github.com/pthm-cable/swarm/components"
	"github.com/pthm-cable/swarm/sim"
)

// Message types.
const (
	TypeEnvironment = "environment"
	TypeFrame       = "frame"
	TypePing        = "ping"
	TypePong        = "pong"
)

// DisturbanceJSON is one disturbance cell.
type DisturbanceJSON struct {
	X  int `json:"x"`
	Y  int `json:"y"`
	DX int `json:"dx"`
	DY int `json:"dy"`
}

// EnvironmentMessage is sent once per connection with the static world.
type EnvironmentMessage struct {
	Type         string             `json:"type"`
	Rows         int                `json:"rows"`
	Cols         int                `json:"cols"`
	Goals        []components.Point `json:"goals"`
	Starts       []components.Point `json:"starts"`
	Disturbances []DisturbanceJSON  `json:"disturbances"`
}

// RobotJSON is one robot in a frame message.
type RobotJSON struct {
	ID        int     `json:"id"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	VX        float64 `json:"vx"`
	VY        float64 `json:"vy"`
	Cycle     uint64  `json:"cycle"`
	Neighbors int     `json:"neighbors"`
}

// FrameMessage carries the latest robot states.
type FrameMessage struct {
	Type   string      `json:"type"`
	Seq    uint64      `json:"seq"`
	Robots []RobotJSON `json:"robots"`
}

type clientMessage struct {
	Type string `json:"type"`
}

func environmentMessage(f sim.Frame) EnvironmentMessage {
	msg := EnvironmentMessage{
		Type:         TypeEnvironment,
		Rows:         f.Rows,
		Cols:         f.Cols,
		Goals:        f.Goals,
		Starts:       f.Starts,
		Disturbances: make([]DisturbanceJSON, 0, len(f.Disturbances)),
	}
	for idx, d := range f.Disturbances {
		msg.Disturbances = append(msg.Disturbances, DisturbanceJSON{
			X: idx % f.Cols, Y: idx / f.Cols, DX: d.DX, DY: d.DY,
		})
	}
	sort.Slice(msg.Disturbances, func(i, j int) bool {
		a, b := msg.Disturbances[i], msg.Disturbances[j]
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.X < b.X
	})
	return msg
}

func frameMessage(seq uint64, f sim.Frame) FrameMessage {
	msg := FrameMessage{Type: TypeFrame, Seq: seq, Robots: make([]RobotJSON, len(f.Robots))}
	for i, r := range f.Robots {
		msg.Robots[i] = RobotJSON{
			ID:        r.ID,
			X:         r.Position.X,
			Y:         r.Position.Y,
			VX:        r.Velocity.X,
			VY:        r.Velocity.Y,
			Cycle:     r.Cycle,
			Neighbors: r.Neighbors,
		}
	}
	return msg
}
