package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/swarm/config"
)

// TrackRecord is one robot at one sample, as written to tracks.csv.
type TrackRecord struct {
	RunID           string  `csv:"run_id"`
	Sample          int     `csv:"sample"`
	Step            uint64  `csv:"step"`
	ID              int     `csv:"robot"`
	X               float64 `csv:"x"`
	Y               float64 `csv:"y"`
	VelX            float64 `csv:"vel_x"`
	VelY            float64 `csv:"vel_y"`
	Cycle           uint64  `csv:"cycle"`
	Neighbors       int     `csv:"neighbors"`
	KnownCells      int     `csv:"known_cells"`
	DisturbancesHit int     `csv:"disturbances_hit"`
	Degenerate      uint64  `csv:"degenerate"`
	Travel          float64 `csv:"travel"`
}

// csvFile appends records to one CSV file, writing the header once.
type csvFile struct {
	name          string
	f             *os.File
	headerWritten bool
}

func createCSV(dir, name string) (*csvFile, error) {
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", name, err)
	}
	return &csvFile{name: name, f: f}, nil
}

func writeRecords[T any](c *csvFile, records []T) error {
	if c == nil || len(records) == 0 {
		return nil
	}
	var err error
	if !c.headerWritten {
		err = gocsv.Marshal(records, c.f)
		c.headerWritten = err == nil
	} else {
		err = gocsv.MarshalWithoutHeaders(records, c.f)
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", c.name, err)
	}
	return nil
}

// OutputManager handles structured run output with CSV logging.
type OutputManager struct {
	dir       string
	telemetry *csvFile
	tracks    *csvFile
	perf      *csvFile
	bookmarks *csvFile
}

// NewOutputManager creates the output directory and its CSV files.
// tracks.csv is only created when tracks is set.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string, tracks bool) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}
	names := []struct {
		dst  **csvFile
		name string
		want bool
	}{
		{&om.telemetry, "telemetry.csv", true},
		{&om.tracks, "tracks.csv", tracks},
		{&om.perf, "perf.csv", true},
		{&om.bookmarks, "bookmarks.csv", true},
	}
	for _, n := range names {
		if !n.want {
			continue
		}
		c, err := createCSV(dir, n.name)
		if err != nil {
			om.Close()
			return nil, err
		}
		*n.dst = c
	}
	return om, nil
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteTelemetry writes a window stats record to telemetry.csv.
func (om *OutputManager) WriteTelemetry(stats WindowStats) error {
	if om == nil {
		return nil
	}
	return writeRecords(om.telemetry, []WindowStats{stats})
}

// WriteTracks writes per-robot rows to tracks.csv, if enabled.
func (om *OutputManager) WriteTracks(records []TrackRecord) error {
	if om == nil {
		return nil
	}
	return writeRecords(om.tracks, records)
}

// WritePerf writes a performance stats record to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, sample int) error {
	if om == nil {
		return nil
	}
	return writeRecords(om.perf, []PerfStatsCSV{stats.ToCSV(sample)})
}

// WriteBookmark writes a bookmark record to bookmarks.csv.
func (om *OutputManager) WriteBookmark(b Bookmark) error {
	if om == nil {
		return nil
	}
	return writeRecords(om.bookmarks, []Bookmark{b})
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	var firstErr error
	for _, c := range []*csvFile{om.telemetry, om.tracks, om.perf, om.bookmarks} {
		if c == nil {
			continue
		}
		if err := c.f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
