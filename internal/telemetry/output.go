package telemetry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"gopkg.in/yaml.v3"

	"github.com/zeusync/robofield/internal/core/world"
)

const (
	GoalsFile  = "goals.csv"
	StatsFile  = "stats.csv"
	ConfigFile = "config.yaml"
)

// StatsRecord is one row of stats.csv.
type StatsRecord struct {
	Tick       uint64 `csv:"tick"`
	ScoreLeft  int    `csv:"score_left"`
	ScoreRight int    `csv:"score_right"`
	Balls      int    `csv:"balls"`
	HeldBalls  int    `csv:"held_balls"`
	Digest     string `csv:"digest"`
}

// OutputManager writes run output as CSV files in one directory.
type OutputManager struct {
	dir       string
	goalsFile *os.File
	statsFile *os.File

	goalsHeaderWritten bool
	statsHeaderWritten bool
}

// NewOutputManager creates dir and the CSV files inside it. Returns nil
// when dir is empty; a nil manager accepts and discards every write.
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}

	f, err := os.Create(filepath.Join(dir, GoalsFile))
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", GoalsFile, err)
	}
	om.goalsFile = f

	f, err = os.Create(filepath.Join(dir, StatsFile))
	if err != nil {
		_ = om.goalsFile.Close()
		return nil, fmt.Errorf("creating %s: %w", StatsFile, err)
	}
	om.statsFile = f

	return om, nil
}

// WriteConfig saves the effective configuration next to the CSV files.
func (om *OutputManager) WriteConfig(cfg any) error {
	if om == nil {
		return nil
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(filepath.Join(om.dir, ConfigFile), data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", ConfigFile, err)
	}
	return nil
}

func (om *OutputManager) WriteGoal(ev world.GoalEvent) error {
	if om == nil {
		return nil
	}
	if err := writeRecord(om.goalsFile, []world.GoalEvent{ev}, &om.goalsHeaderWritten); err != nil {
		return fmt.Errorf("writing goal: %w", err)
	}
	return nil
}

func (om *OutputManager) WriteStats(s StatsRecord) error {
	if om == nil {
		return nil
	}
	if err := writeRecord(om.statsFile, []StatsRecord{s}, &om.statsHeaderWritten); err != nil {
		return fmt.Errorf("writing stats: %w", err)
	}
	return nil
}

// writeRecord emits the header only on the first write to a file.
func writeRecord(f *os.File, records any, headerWritten *bool) error {
	if *headerWritten {
		return gocsv.MarshalWithoutHeaders(records, f)
	}
	if err := gocsv.Marshal(records, f); err != nil {
		return err
	}
	*headerWritten = true
	return nil
}

func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close closes both files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}
	return errors.Join(om.goalsFile.Close(), om.statsFile.Close())
}
