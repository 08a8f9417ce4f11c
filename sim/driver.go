// Package sim drives the swarm: one goroutine per robot in concurrent mode,
// or a sequential Step for headless, reproducible runs.
package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pthm-cable/swarm/components"
	"github.com/pthm-cable/swarm/config"
	"github.com/pthm-cable/swarm/field"
	"github.com/pthm-cable/swarm/robot"
)

var (
	// ErrRunning is returned by Start and Step while robot goroutines are live.
	ErrRunning = errors.New("sim: driver already running")
	// ErrNotRunning is returned by Stop when Start was never called.
	ErrNotRunning = errors.New("sim: driver not running")
)

// Driver owns a sealed environment and the swarm moving in it.
type Driver struct {
	env    *field.Environment
	swarm  *robot.Swarm
	params robot.Params
	pace   time.Duration

	disturbances map[int]components.Direction // frozen at seal

	mu      sync.Mutex
	cancel  context.CancelFunc
	group   *errgroup.Group
	running atomic.Bool

	steps atomic.Uint64
}

// New wraps env and swarm. The environment is sealed here; no setup may
// happen after a driver exists.
func New(env *field.Environment, swarm *robot.Swarm, params robot.Params, pace time.Duration) *Driver {
	env.Seal()
	return &Driver{
		env:          env,
		swarm:        swarm,
		params:       params,
		pace:         pace,
		disturbances: env.Disturbances(),
	}
}

// NewFromConfig builds the environment and swarm described by cfg. Start
// positions are drawn from a generator seeded with seed.
func NewFromConfig(cfg *config.Config, seed int64) (*Driver, error) {
	env, err := field.NewFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(seed))
	swarm, err := robot.Spawn(env, cfg.Robots.Count, cfg.Robots.SensorRadius, cfg.Robots.CommRadius, rng)
	if err != nil {
		return nil, fmt.Errorf("spawning swarm: %w", err)
	}
	return New(env, swarm, robot.ParamsFromConfig(cfg.Motion), cfg.Driver.Pace), nil
}

// Env returns the sealed environment.
func (d *Driver) Env() *field.Environment { return d.env }

// Swarm returns the robots.
func (d *Driver) Swarm() *robot.Swarm { return d.swarm }

// Params returns the decision cycle constants.
func (d *Driver) Params() robot.Params { return d.params }

// Running reports whether robot goroutines are live.
func (d *Driver) Running() bool { return d.running.Load() }

// Steps returns how many sequential Steps have completed.
func (d *Driver) Steps() uint64 { return d.steps.Load() }

// Start launches one goroutine per robot. Each runs cycles until ctx is
// cancelled or Stop is called, checking for cancellation between cycles.
func (d *Driver) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running.Load() {
		return ErrRunning
	}

	ctx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(ctx)
	for _, a := range d.swarm.Agents() {
		g.Go(func() error {
			return d.run(gctx, a)
		})
	}

	d.cancel = cancel
	d.group = g
	d.running.Store(true)
	slog.Info("driver started", "robots", d.swarm.Len(), "pace", d.pace)
	return nil
}

// run is one robot's loop.
func (d *Driver) run(ctx context.Context, a *robot.Agent) error {
	var timer *time.Timer
	if d.pace > 0 {
		timer = time.NewTimer(d.pace)
		defer timer.Stop()
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		a.Cycle(d.env, d.swarm, d.params)

		if timer == nil {
			runtime.Gosched()
			continue
		}
		timer.Reset(d.pace)
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
		}
	}
}

// Stop cancels every robot goroutine and waits for them to return.
func (d *Driver) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.running.Load() {
		return ErrNotRunning
	}

	d.cancel()
	err := d.group.Wait()
	d.running.Store(false)
	d.cancel, d.group = nil, nil

	slog.Info("driver stopped", "robots", d.swarm.Len())
	return err
}

// Step runs one cycle of every robot, sequentially in id order. Results are
// reproducible for a given seed. Step holds the driver lock, so it never
// overlaps with Start or Stop.
func (d *Driver) Step() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running.Load() {
		return ErrRunning
	}
	for _, a := range d.swarm.Agents() {
		a.Cycle(d.env, d.swarm, d.params)
	}
	d.steps.Add(1)
	return nil
}
