package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/san-kum/cellbody/internal/analysis"
	"github.com/san-kum/cellbody/internal/metrics"
	"github.com/san-kum/cellbody/internal/solver"
)

const (
	metadataFile = "metadata.json"
	stepsFile    = "steps.csv"
	finalFile    = "final.json"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Timestamp   time.Time          `json:"timestamp"`
	Seed        int64              `json:"seed"`
	Width       int                `json:"width"`
	Height      int                `json:"height"`
	Wrap        bool               `json:"wrap"`
	Objects     int                `json:"objects"`
	Steps       int                `json:"steps"`
	Iterations  int                `json:"iterations"`
	Restitution float64            `json:"restitution"`
	Aborted     string             `json:"aborted,omitempty"`
	Metrics     map[string]float64 `json:"metrics"`
	Summaries   []analysis.Summary `json:"summaries,omitempty"`
}

// Run is everything persisted for one simulation run.
type Run struct {
	Meta    RunMetadata
	Samples []metrics.Sample
	Final   *solver.Snapshot
}

// Save writes run into a new directory and returns its id.
func (s *Store) Save(run *Run) (string, error) {
	meta := run.Meta
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	meta.ID = fmt.Sprintf("%s_%d", meta.Name, meta.Timestamp.UnixNano())
	runDir := filepath.Join(s.baseDir, meta.ID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}

	f, err := os.Create(filepath.Join(runDir, stepsFile))
	if err != nil {
		return "", err
	}
	defer f.Close()
	if len(run.Samples) > 0 {
		if err := gocsv.MarshalFile(&run.Samples, f); err != nil {
			return "", fmt.Errorf("write %s: %w", stepsFile, err)
		}
	}

	if run.Final != nil {
		if err := writeJSON(filepath.Join(runDir, finalFile), run.Final); err != nil {
			return "", err
		}
	}
	return meta.ID, nil
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	var meta RunMetadata
	if err := readJSON(filepath.Join(s.baseDir, runID, metadataFile), &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadSteps(runID string) ([]metrics.Sample, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, stepsFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	samples := []metrics.Sample{}
	if err := gocsv.UnmarshalFile(f, &samples); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return samples, nil
		}
		return nil, fmt.Errorf("read %s: %w", stepsFile, err)
	}
	return samples, nil
}

// LoadFinal reads the snapshot taken at the end of the run.
func (s *Store) LoadFinal(runID string) (*solver.Snapshot, error) {
	var snap solver.Snapshot
	if err := readJSON(filepath.Join(s.baseDir, runID, finalFile), &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
