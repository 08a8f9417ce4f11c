// Package telemetry observes a running swarm: it mirrors published robot
// states, derives per-sample statistics and bookmarks, and writes them out.
package telemetry

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/pthm-cable/swarm/sim"
)

// FrameSource provides frames to sample. *sim.Driver implements it.
type FrameSource interface {
	Frame() sim.Frame
}

// SamplerOptions configure a Sampler.
type SamplerOptions struct {
	RunID       string
	Seed        int64
	Tracks      bool    // write per-robot rows
	LogStats    bool    // log every sample through slog
	SnapshotDir string  // save a snapshot per bookmark when set
	ReachRadius float64 // goal_reached distance
	HistorySize int     // bookmark rolling window
}

// Sampler turns frames into statistics, bookmarks and output rows. Sample
// and Run may be used from one goroutine at a time; Last is safe anywhere.
type Sampler struct {
	src      FrameSource
	out      *OutputManager
	opts     SamplerOptions
	tracker  *Tracker
	detector *BookmarkDetector

	start  time.Time
	sample int

	mu   sync.Mutex
	last WindowStats
}

// NewSampler creates a sampler reading from src. out may be nil.
func NewSampler(src FrameSource, out *OutputManager, opts SamplerOptions) *Sampler {
	return &Sampler{
		src:      src,
		out:      out,
		opts:     opts,
		tracker:  NewTracker(),
		detector: NewBookmarkDetector(opts.HistorySize, opts.ReachRadius),
		start:    time.Now(),
	}
}

// Sample takes one sample. step is the number of completed headless steps,
// or 0 when robots run concurrently.
func (s *Sampler) Sample(step uint64) (WindowStats, error) {
	f := s.src.Frame()
	s.tracker.Sync(f.Robots)

	stats := ComputeWindowStats(s.tracker, f)
	stats.RunID = s.opts.RunID
	stats.Sample = s.sample
	stats.Step = step
	stats.ElapsedSec = time.Since(s.start).Seconds()
	s.sample++

	s.mu.Lock()
	s.last = stats
	s.mu.Unlock()

	if s.opts.LogStats {
		stats.LogStats()
	}

	var errs []error
	errs = append(errs, s.out.WriteTelemetry(stats))
	if s.opts.Tracks {
		errs = append(errs, s.out.WriteTracks(s.trackRecords(stats)))
	}

	for _, b := range s.detector.Check(stats) {
		b.LogBookmark()
		errs = append(errs, s.out.WriteBookmark(b))
		if s.opts.SnapshotDir == "" {
			continue
		}
		snap := NewSnapshot(s.opts.RunID, s.opts.Seed, f, s.tracker, stats)
		snap.Bookmark = &b
		path, err := SaveSnapshot(snap, s.opts.SnapshotDir)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		slog.Info("snapshot saved", "path", path, "sample", stats.Sample)
	}

	return stats, errors.Join(errs...)
}

func (s *Sampler) trackRecords(stats WindowStats) []TrackRecord {
	robots := s.tracker.Robots()
	records := make([]TrackRecord, len(robots))
	for i, r := range robots {
		records[i] = TrackRecord{
			RunID:           stats.RunID,
			Sample:          stats.Sample,
			Step:            stats.Step,
			ID:              r.Track.ID,
			X:               r.Position.X,
			Y:               r.Position.Y,
			VelX:            r.Velocity.X,
			VelY:            r.Velocity.Y,
			Cycle:           r.Track.Cycles,
			Neighbors:       r.Track.Neighbors,
			KnownCells:      r.Track.KnownCells,
			DisturbancesHit: r.Track.DisturbancesHit,
			Degenerate:      r.Track.Degenerate,
			Travel:          r.Track.Travel,
		}
	}
	return records
}

// Run samples every interval until ctx is done. Write failures are logged
// and sampling continues.
func (s *Sampler) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := s.Sample(0); err != nil {
				slog.Error("failed to write telemetry", "error", err)
			}
		}
	}
}

// Last returns the most recent sample.
func (s *Sampler) Last() WindowStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Samples returns how many samples have been taken.
func (s *Sampler) Samples() int { return s.sample }
