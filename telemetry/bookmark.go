package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkCoverage        BookmarkType = "coverage_milestone"
	BookmarkGoalReached     BookmarkType = "goal_reached"
	BookmarkSettled         BookmarkType = "settled"
	BookmarkDegenerateSpike BookmarkType = "degenerate_spike"
)

// CoverageMilestones are the mean-coverage fractions that each trigger one
// bookmark the first time they are reached.
var CoverageMilestones = []float64{0.01, 0.02, 0.05, 0.1, 0.25, 0.5}

// SettleSpeed is the mean speed (cells per micro-step) below which a window
// counts as still.
const SettleSpeed = 0.01

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type" json:"type"`
	Sample      int          `csv:"sample" json:"sample"`
	Step        uint64       `csv:"step" json:"step"`
	Description string       `csv:"description" json:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"sample", b.Sample,
		"step", b.Step,
		"description", b.Description,
	)
}

// BookmarkDetector detects notable moments of a run from successive stats.
type BookmarkDetector struct {
	reachRadius float64

	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	nextMilestone int
	goalReached   bool
	stillWindows  int
	settled       bool
}

// NewBookmarkDetector creates a detector. A goal counts as reached once a
// robot is within reachRadius of it.
func NewBookmarkDetector(historySize int, reachRadius float64) *BookmarkDetector {
	if historySize < 3 {
		historySize = 3
	}
	return &BookmarkDetector{
		reachRadius: reachRadius,
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark
	mark := func(t BookmarkType, format string, args ...any) {
		bookmarks = append(bookmarks, Bookmark{
			Type:        t,
			Sample:      stats.Sample,
			Step:        stats.Step,
			Description: fmt.Sprintf(format, args...),
		})
	}

	for bd.nextMilestone < len(CoverageMilestones) && stats.Coverage >= CoverageMilestones[bd.nextMilestone] {
		mark(BookmarkCoverage, "mean coverage reached %.0f%%", CoverageMilestones[bd.nextMilestone]*100)
		bd.nextMilestone++
	}

	if !bd.goalReached && stats.Goals > 0 && stats.Robots > 0 && stats.GoalDistMin <= bd.reachRadius {
		bd.goalReached = true
		mark(BookmarkGoalReached, "a robot came within %.1f of a goal", stats.GoalDistMin)
	}

	if b := bd.checkDegenerateSpike(stats); b != nil {
		mark(b.Type, "%s", b.Description)
	}

	if stats.Robots > 0 && stats.SpeedMean < SettleSpeed {
		bd.stillWindows++
	} else {
		bd.stillWindows = 0
		bd.settled = false
	}
	if !bd.settled && bd.stillWindows >= bd.historySize {
		bd.settled = true
		mark(BookmarkSettled, "mean speed below %.2f for %d samples", SettleSpeed, bd.stillWindows)
	}

	bd.addToHistory(stats)
	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []WindowStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

// latest returns the most recently added stats.
func (bd *BookmarkDetector) latest() WindowStats {
	idx := (bd.historyIdx - 1 + bd.historySize) % bd.historySize
	return bd.history[idx]
}

// checkDegenerateSpike fires when the degenerate centroids added since the
// previous sample exceed both one per robot and twice the rolling average.
func (bd *BookmarkDetector) checkDegenerateSpike(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	// Degenerate counts are cumulative, so the history spread over its
	// length is the average per sample.
	lo, hi := history[0].Degenerate, history[0].Degenerate
	for _, h := range history {
		lo = min(lo, h.Degenerate)
		hi = max(hi, h.Degenerate)
	}
	avg := float64(hi-lo) / float64(len(history)-1)

	prev := bd.latest()
	if stats.Degenerate < prev.Degenerate {
		return nil
	}
	delta := stats.Degenerate - prev.Degenerate
	if delta < uint64(max(stats.Robots, 1)) || float64(delta) <= 2*avg {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkDegenerateSpike,
		Description: fmt.Sprintf("%d degenerate centroids since last sample (avg %.1f)", delta, avg),
	}
}
