package robot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/swarm/components"
)

func TestMatchVelocity(t *testing.T) {
	tests := []struct {
		name      string
		own       components.Velocity
		neighbors []components.Velocity
		want      components.Velocity
	}{
		{
			name:      "single neighbor",
			own:       components.Velocity{X: 2, Y: -2},
			neighbors: []components.Velocity{{X: 1, Y: 1}},
			want:      components.Velocity{X: 2, Y: 0},
		},
		{
			name:      "three neighbors",
			own:       components.Velocity{X: 0.6, Y: 0},
			neighbors: []components.Velocity{{X: 1, Y: 0}, {X: 0, Y: 3}, {X: -0.3, Y: 0}},
			want:      components.Velocity{X: 1.0 / 3, Y: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			states := make([]*State, len(tt.neighbors))
			for i, v := range tt.neighbors {
				states[i] = &State{ID: i, Velocity: v}
			}
			got, err := matchVelocity(tt.own, states)
			require.NoError(t, err)
			assert.InDelta(t, tt.want.X, got.X, 1e-12)
			assert.InDelta(t, tt.want.Y, got.Y, 1e-12)
		})
	}
}

func TestMatchVelocityNoNeighbors(t *testing.T) {
	_, err := matchVelocity(components.Velocity{X: 1}, nil)
	assert.ErrorIs(t, err, ErrNoNeighbors)
}
