package sim

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/swarm/components"
	"github.com/pthm-cable/swarm/config"
	"github.com/pthm-cable/swarm/robot"
)

func smallConfig() *config.Config {
	cfg := config.Default()
	cfg.World = config.WorldConfig{Rows: 60, Cols: 80}
	cfg.Robots = config.RobotsConfig{Count: 8, SensorRadius: 6, CommRadius: 15}
	cfg.Driver.Pace = 0
	cfg.Scenario = config.ScenarioConfig{
		Starts:       []config.Point{{X: 5, Y: 5}, {X: 70, Y: 50}},
		Goals:        []config.Point{{X: 40, Y: 30}},
		Circles:      []config.CircleConfig{{X: 20, Y: 40, Radius: 5}},
		Disturbances: []config.DisturbanceConfig{{X: 30, Y: 20, DX: 2, DY: 1}},
	}
	return cfg
}

func newDriver(t *testing.T, seed int64) *Driver {
	t.Helper()
	d, err := NewFromConfig(smallConfig(), seed)
	require.NoError(t, err)
	return d
}

func TestNewSealsEnvironment(t *testing.T) {
	d := newDriver(t, 1)
	assert.True(t, d.Env().Sealed())
	assert.Equal(t, 8, d.Swarm().Len())
	assert.False(t, d.Running())
}

func TestNewFromConfigNoStarts(t *testing.T) {
	cfg := smallConfig()
	cfg.Scenario.Starts = nil
	_, err := NewFromConfig(cfg, 1)
	assert.ErrorIs(t, err, robot.ErrEmptyStarts)
}

func TestStepDeterministic(t *testing.T) {
	a := newDriver(t, 42)
	b := newDriver(t, 42)

	for i := 0; i < 20; i++ {
		require.NoError(t, a.Step())
		require.NoError(t, b.Step())
	}
	assert.Equal(t, uint64(20), a.Steps())
	assert.Equal(t, a.Frame().Robots, b.Frame().Robots)

	for _, s := range a.Frame().Robots {
		assert.Equal(t, uint64(20), s.Cycle)
	}
}

func TestStepApproachesGoal(t *testing.T) {
	d := newDriver(t, 3)
	before := d.Frame().MeanGoalDistance()
	for i := 0; i < 30; i++ {
		require.NoError(t, d.Step())
	}
	assert.Less(t, d.Frame().MeanGoalDistance(), before)
}

func TestStartStop(t *testing.T) {
	d := newDriver(t, 7)
	require.NoError(t, d.Start(context.Background()))
	assert.True(t, d.Running())
	assert.ErrorIs(t, d.Start(context.Background()), ErrRunning)
	assert.ErrorIs(t, d.Step(), ErrRunning)

	// Observers read frames while robots run.
	var wg sync.WaitGroup
	stop := make(chan struct{})
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				f := d.Frame()
				assert.Len(t, f.Robots, 8)
				assert.Len(t, f.Cells, 60*80)
			}
		}()
	}

	require.Eventually(t, func() bool {
		for _, s := range d.Swarm().States() {
			if s.Cycle < 5 {
				return false
			}
		}
		return true
	}, 5*time.Second, time.Millisecond)

	close(stop)
	wg.Wait()
	require.NoError(t, d.Stop())
	assert.False(t, d.Running())

	// Stopped robots stay put.
	frozen := d.Swarm().States()
	time.Sleep(5 * time.Millisecond)
	assert.Equal(t, frozen, d.Swarm().States())

	assert.ErrorIs(t, d.Stop(), ErrNotRunning)
	assert.NoError(t, d.Step(), "sequential stepping is allowed again")
}

func TestStepExcludesStart(t *testing.T) {
	d := newDriver(t, 11)

	var wg sync.WaitGroup
	done := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
			}
			if err := d.Step(); err != nil {
				assert.ErrorIs(t, err, ErrRunning)
			}
		}
	}()

	for i := 0; i < 20; i++ {
		require.NoError(t, d.Start(context.Background()))
		require.NoError(t, d.Stop())
	}
	close(done)
	wg.Wait()
	assert.False(t, d.Running())
}

func TestStartHonoursContext(t *testing.T) {
	d := newDriver(t, 9)
	d.pace = time.Millisecond
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, d.Start(ctx))

	require.Eventually(t, func() bool {
		s, _ := d.Swarm().Lookup(0)
		return s.Cycle > 0
	}, 5*time.Second, time.Millisecond)

	cancel()
	assert.NoError(t, d.Stop())
}

func TestFrame(t *testing.T) {
	d := newDriver(t, 1)
	f := d.Frame()

	assert.Equal(t, 60, f.Rows)
	assert.Equal(t, 80, f.Cols)
	assert.Equal(t, []components.Point{{X: 40, Y: 30}}, f.Goals)
	assert.Len(t, f.Starts, 2)
	assert.Equal(t, map[int]components.Direction{20*80 + 30: {DX: 2, DY: 1}}, f.Disturbances)

	// The cell buffer is shared, not rebuilt per frame.
	assert.Same(t, &f.Cells[0], &d.Frame().Cells[0])
}

func TestMeanGoalDistance(t *testing.T) {
	f := Frame{
		Goals: []components.Point{{X: 0, Y: 0}, {X: 10, Y: 0}},
		Robots: []robot.State{
			{Position: components.Position{X: 3, Y: 4}},
			{Position: components.Position{X: 10, Y: 2}},
		},
	}
	assert.InDelta(t, 3.5, f.MeanGoalDistance(), 1e-12)
	assert.Zero(t, Frame{}.MeanGoalDistance())
	assert.Equal(t, -1.0, NearestGoal(components.Position{}, nil))
}
