package telemetry

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pthm-cable/swarm/components"
	"github.com/pthm-cable/swarm/robot"
	"github.com/pthm-cable/swarm/sim"
)

type staticSource struct {
	frame sim.Frame
}

func (s *staticSource) Frame() sim.Frame { return s.frame }

func nearGoalFrame() sim.Frame {
	return sim.Frame{
		Rows:  10,
		Cols:  10,
		Goals: []components.Point{{X: 5, Y: 5}},
		Robots: []robot.State{
			{ID: 0, Position: components.Position{X: 5, Y: 6}, Velocity: components.Velocity{X: 1}, KnownCells: 10},
		},
	}
}

func TestSamplerSample(t *testing.T) {
	dir := t.TempDir()
	out, err := NewOutputManager(dir, true)
	if err != nil {
		t.Fatal(err)
	}
	defer out.Close()

	snapDir := filepath.Join(dir, "snapshots")
	s := NewSampler(&staticSource{frame: nearGoalFrame()}, out, SamplerOptions{
		RunID:       "abc",
		Tracks:      true,
		SnapshotDir: snapDir,
		ReachRadius: 2,
		HistorySize: 5,
	})

	stats, err := s.Sample(12)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if stats.RunID != "abc" || stats.Sample != 0 || stats.Step != 12 || stats.Robots != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}
	if !approx(stats.Coverage, 0.1) || !approx(stats.GoalDistMin, 1) {
		t.Errorf("coverage=%v goal_dist_min=%v", stats.Coverage, stats.GoalDistMin)
	}
	if s.Last().Sample != 0 || s.Samples() != 1 {
		t.Error("Last/Samples not updated")
	}

	if _, err := os.Stat(filepath.Join(snapDir, "snapshot_0_goal_reached.json")); err != nil {
		t.Errorf("expected goal_reached snapshot: %v", err)
	}

	second, err := s.Sample(13)
	if err != nil {
		t.Fatal(err)
	}
	if second.Sample != 1 {
		t.Errorf("second sample index = %d, want 1", second.Sample)
	}

	out.Close()
	// Coverage 10% crosses four milestones, plus goal_reached.
	if lines := readLines(t, filepath.Join(dir, "bookmarks.csv")); len(lines) != 6 {
		t.Errorf("bookmarks.csv has %d lines, want header + 5", len(lines))
	}
	if lines := readLines(t, filepath.Join(dir, "tracks.csv")); len(lines) != 3 {
		t.Errorf("tracks.csv has %d lines, want header + 2", len(lines))
	}
}

func TestSamplerRun(t *testing.T) {
	s := NewSampler(&staticSource{frame: nearGoalFrame()}, nil, SamplerOptions{ReachRadius: 2})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := s.Run(ctx, 5*time.Millisecond); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if s.Samples() == 0 {
		t.Error("expected at least one sample")
	}
}
