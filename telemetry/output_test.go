package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/swarm/config"
)

func TestOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("", true)
	if err != nil || om != nil {
		t.Fatalf("empty dir should disable output, got %v, %v", om, err)
	}

	// All methods are nil-safe.
	if err := om.WriteTelemetry(WindowStats{}); err != nil {
		t.Error(err)
	}
	if err := om.WriteTracks([]TrackRecord{{}}); err != nil {
		t.Error(err)
	}
	if err := om.WriteBookmark(Bookmark{}); err != nil {
		t.Error(err)
	}
	if err := om.WriteConfig(config.Default()); err != nil {
		t.Error(err)
	}
	if om.Dir() != "" || om.Close() != nil {
		t.Error("nil manager should have no dir and close cleanly")
	}
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func TestOutputManagerWrites(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir, false)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 2; i++ {
		if err := om.WriteTelemetry(WindowStats{RunID: "r", Sample: i, Robots: 3}); err != nil {
			t.Fatal(err)
		}
	}
	if err := om.WriteBookmark(Bookmark{Type: BookmarkSettled, Sample: 1, Description: "still"}); err != nil {
		t.Fatal(err)
	}
	if err := om.WritePerf(PerfStats{PhasePct: map[string]float64{}}, 1); err != nil {
		t.Fatal(err)
	}
	if err := om.WriteTracks([]TrackRecord{{ID: 1}}); err != nil {
		t.Errorf("tracks disabled should be a no-op, got %v", err)
	}
	if err := om.WriteConfig(config.Default()); err != nil {
		t.Fatal(err)
	}
	if err := om.Close(); err != nil {
		t.Fatal(err)
	}

	lines := readLines(t, filepath.Join(dir, "telemetry.csv"))
	if len(lines) != 3 {
		t.Fatalf("telemetry.csv has %d lines, want header + 2 rows", len(lines))
	}
	if !strings.HasPrefix(lines[0], "run_id,sample,step,") {
		t.Errorf("unexpected header %q", lines[0])
	}
	if !strings.HasPrefix(lines[2], "r,1,") {
		t.Errorf("unexpected row %q", lines[2])
	}

	bm := readLines(t, filepath.Join(dir, "bookmarks.csv"))
	if len(bm) != 2 || !strings.HasPrefix(bm[1], "settled,1,") {
		t.Errorf("unexpected bookmarks.csv %q", bm)
	}

	if _, err := os.Stat(filepath.Join(dir, "tracks.csv")); !os.IsNotExist(err) {
		t.Error("tracks.csv should not exist when tracks are disabled")
	}

	cfg, err := config.Load(filepath.Join(dir, "config.yaml"))
	if err != nil {
		t.Fatalf("written config does not load: %v", err)
	}
	if cfg.Robots.Count != config.Default().Robots.Count {
		t.Error("config.yaml does not round-trip")
	}
}

func TestOutputManagerTracks(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir, true)
	if err != nil {
		t.Fatal(err)
	}
	records := []TrackRecord{{Sample: 0, ID: 0}, {Sample: 0, ID: 1}}
	if err := om.WriteTracks(records); err != nil {
		t.Fatal(err)
	}
	if err := om.WriteTracks(records); err != nil {
		t.Fatal(err)
	}
	om.Close()

	lines := readLines(t, filepath.Join(dir, "tracks.csv"))
	if len(lines) != 5 {
		t.Errorf("tracks.csv has %d lines, want header + 4 rows", len(lines))
	}
}
