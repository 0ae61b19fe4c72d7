package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/cellbody/internal/metrics"
	"github.com/san-kum/cellbody/internal/solver"
)

type ExportData struct {
	Meta    RunMetadata      `json:"meta"`
	Samples []metrics.Sample `json:"samples"`
	Final   *solver.Snapshot `json:"final,omitempty"`
}

// ExportJSON writes a run as a single JSON document.
func ExportJSON(w io.Writer, run *Run) error {
	data := ExportData{
		Meta:    run.Meta,
		Samples: run.Samples,
		Final:   run.Final,
	}
	if data.Samples == nil {
		data.Samples = []metrics.Sample{}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// LoadRun reads back everything Save wrote for runID. A missing final
// snapshot is not an error.
func (s *Store) LoadRun(runID string) (*Run, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	samples, err := s.LoadSteps(runID)
	if err != nil {
		return nil, err
	}
	final, _ := s.LoadFinal(runID)
	return &Run{Meta: *meta, Samples: samples, Final: final}, nil
}
