package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/orbitsim/internal/sim"
)

type ExportData struct {
	Run     RunMetadata  `json:"run"`
	Bodies  []Record     `json:"bodies"`
	Samples []sim.Sample `json:"samples"`
}

// Export writes a recorded run as a single JSON document.
func (s *Store) Export(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}

	bodies, err := ReadFile(s.bodiesPath(runID))
	if err != nil {
		return err
	}

	samples, err := s.LoadSamples(runID)
	if err != nil {
		return err
	}

	return ExportJSON(w, ExportData{Run: *meta, Bodies: bodies, Samples: samples})
}

func ExportJSON(w io.Writer, data ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
