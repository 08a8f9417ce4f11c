package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/pthm-cable/swarm/config"
	"github.com/pthm-cable/swarm/sim"
	"github.com/pthm-cable/swarm/stream"
	"github.com/pthm-cable/swarm/telemetry"
	"github.com/pthm-cable/swarm/viewer"
)

// options collects the CLI flags shared by both run modes.
type options struct {
	seed        int64
	maxCycles   uint64
	logStats    bool
	snapshotDir string
	streamAddr  string
}

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics, stepping robots sequentially")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxCycles := flag.Uint64("max-cycles", 0, "Stop after N cycles of every robot (0 = unlimited)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	streamAddr := flag.String("stream-addr", "", "Serve the websocket feed on this address (empty = off)")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	snapshotDir := flag.String("snapshot-dir", "", "Directory for bookmark snapshot files")

	flag.Parse()

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		slog.Error("invalid log level", "level", *logLevel, "error", err)
		os.Exit(2)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	opts := options{
		seed:        *seed,
		maxCycles:   *maxCycles,
		logStats:    *logStats,
		snapshotDir: *snapshotDir,
		streamAddr:  *streamAddr,
	}
	if opts.seed == 0 {
		opts.seed = time.Now().UnixNano()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *outputDir, *headless, opts); err != nil {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, outputDir string, headless bool, opts options) error {
	runID := uuid.NewString()

	drv, err := sim.NewFromConfig(cfg, opts.seed)
	if err != nil {
		return err
	}

	out, err := telemetry.NewOutputManager(outputDir, cfg.Telemetry.Tracks)
	if err != nil {
		return err
	}
	defer func() {
		if err := out.Close(); err != nil {
			slog.Error("failed to close output", "error", err)
		}
	}()
	if err := out.WriteConfig(cfg); err != nil {
		return err
	}

	sampler := telemetry.NewSampler(drv, out, telemetry.SamplerOptions{
		RunID:       runID,
		Seed:        opts.seed,
		Tracks:      cfg.Telemetry.Tracks,
		LogStats:    opts.logStats,
		SnapshotDir: opts.snapshotDir,
		ReachRadius: cfg.Robots.SensorRadius,
		HistorySize: 10,
	})

	slog.Info("starting simulation",
		"run_id", runID,
		"seed", opts.seed,
		"headless", headless,
		"robots", drv.Swarm().Len(),
		"rows", cfg.World.Rows,
		"cols", cfg.World.Cols,
		"max_cycles", opts.maxCycles,
	)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	if opts.streamAddr != "" {
		srv := stream.NewServer(drv, cfg.Stream.Interval, cfg.Stream.Queue)
		g.Go(func() error {
			return srv.ListenAndServe(gctx, opts.streamAddr)
		})
	}

	var runErr error
	if headless {
		runErr = runHeadless(gctx, drv, sampler, out, cfg.Telemetry.SampleEvery, opts)
	} else {
		runErr = runWindowed(gctx, cfg, drv, sampler, runID, opts)
	}

	cancel()
	return errors.Join(runErr, g.Wait())
}

// runHeadless steps every robot sequentially, sampling every sampleEvery
// steps, until maxCycles or ctx is done.
func runHeadless(ctx context.Context, drv *sim.Driver, sampler *telemetry.Sampler, out *telemetry.OutputManager, sampleEvery int, opts options) error {
	perf := telemetry.NewPerfCollector(sampleEvery)

	for opts.maxCycles == 0 || drv.Steps() < opts.maxCycles {
		if ctx.Err() != nil {
			slog.Info("interrupted", "steps", drv.Steps())
			return nil
		}

		perf.StartStep()
		perf.StartPhase(telemetry.PhaseCycles)
		if err := drv.Step(); err != nil {
			return err
		}

		steps := drv.Steps()
		if steps%uint64(sampleEvery) == 0 {
			perf.StartPhase(telemetry.PhaseTelemetry)
			if _, err := sampler.Sample(steps); err != nil {
				slog.Error("failed to write telemetry", "error", err)
			}
			stats := perf.Stats()
			if opts.logStats {
				stats.LogStats()
			}
			if err := out.WritePerf(stats, sampler.Samples()-1); err != nil {
				slog.Error("failed to write perf", "error", err)
			}
		}
		perf.EndStep()
	}

	slog.Info("max cycles reached", "steps", drv.Steps())
	if drv.Steps()%uint64(sampleEvery) == 0 {
		return nil
	}
	_, err := sampler.Sample(drv.Steps())
	return err
}

// runWindowed runs robots concurrently behind a raylib window.
func runWindowed(ctx context.Context, cfg *config.Config, drv *sim.Driver, sampler *telemetry.Sampler, runID string, opts options) error {
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Swarm Coverage")
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))
	rl.SetExitKey(0)

	v := viewer.New(drv.Frame(), viewer.Options{
		SensorRadius:  cfg.Robots.SensorRadius,
		CommRadius:    cfg.Robots.CommRadius,
		MaxStepLength: cfg.Motion.MaxStepLength,
		Robots:        cfg.Robots.Count,
	})
	defer v.Unload()

	if err := drv.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if drv.Running() {
			if err := drv.Stop(); err != nil {
				slog.Error("failed to stop driver", "error", err)
			}
		}
	}()

	sampleCtx, cancelSampling := context.WithCancel(ctx)
	sampleDone := make(chan struct{})
	go func() {
		defer close(sampleDone)
		sampler.Run(sampleCtx, cfg.Telemetry.SampleInterval)
	}()
	defer func() {
		cancelSampling()
		<-sampleDone
	}()

	perf := telemetry.NewPerfCollector(cfg.Screen.TargetFPS)
	for !rl.WindowShouldClose() && ctx.Err() == nil {
		perf.RecordFrame()
		f := drv.Frame()
		v.Update(f)

		stats := sampler.Last()
		hud := viewer.HUDData{
			Title:   "Swarm Coverage",
			RunID:   runID,
			Running: drv.Running(),
			Steps:   drv.Steps(),
			Stats:   stats,
			Perf:    perf.Stats(),
		}

		switch v.Draw(f, hud) {
		case viewer.ActionToggleRun:
			if drv.Running() {
				if err := drv.Stop(); err != nil {
					return err
				}
			} else if err := drv.Start(ctx); err != nil {
				return err
			}
		case viewer.ActionStep:
			if err := drv.Step(); err != nil && !errors.Is(err, sim.ErrRunning) {
				return err
			}
		}

		if opts.maxCycles > 0 && stats.Robots > 0 && stats.MinCycle >= opts.maxCycles {
			slog.Info("max cycles reached", "min_cycle", stats.MinCycle)
			break
		}
	}
	return nil
}
