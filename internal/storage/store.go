package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/sim"
)

const (
	metadataFile    = "metadata.json"
	diagnosticsFile = "diagnostics.csv"
	bodiesFile      = "bodies.json"
)

var diagnosticsHeader = []string{
	"step", "time", "kinetic", "potential", "total",
	"px", "py", "pz", "lx", "ly", "lz",
}

// Store keeps recorded runs under baseDir, one directory per run.
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
	Source      string             `json:"source"`
	Timestamp   time.Time          `json:"timestamp"`
	G           float64            `json:"g"`
	Dt          float64            `json:"dt"`
	Duration    float64            `json:"duration"`
	Bodies      int                `json:"bodies"`
	Steps       int                `json:"steps"`
	EnergyDrift float64            `json:"energy_drift"`
	Metrics     map[string]float64 `json:"metrics"`
}

// Save records a run: its metadata, the initial bodies and every recorded
// sample. It returns the generated run id.
func (s *Store) Save(meta RunMetadata, initial []Record, samples []sim.Sample) (string, error) {
	meta.ID = uuid.NewString()
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	runDir := filepath.Join(s.baseDir, meta.ID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}

	bodies, err := os.Create(filepath.Join(runDir, bodiesFile))
	if err != nil {
		return "", err
	}
	if err := Encode(bodies, FormatJSON, initial); err != nil {
		bodies.Close()
		return "", err
	}
	if err := bodies.Close(); err != nil {
		return "", err
	}

	if err := writeSamples(filepath.Join(runDir, diagnosticsFile), samples); err != nil {
		return "", err
	}

	return meta.ID, nil
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

func writeSamples(path string, samples []sim.Sample) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(diagnosticsHeader); err != nil {
		return err
	}

	for _, smp := range samples {
		row := []string{
			strconv.Itoa(smp.Step),
			formatFloat(smp.Time),
			formatFloat(smp.Kinetic),
			formatFloat(smp.Potential),
			formatFloat(smp.Total),
			formatFloat(smp.Momentum.X),
			formatFloat(smp.Momentum.Y),
			formatFloat(smp.Momentum.Z),
			formatFloat(smp.AngularMomentum.X),
			formatFloat(smp.AngularMomentum.Y),
			formatFloat(smp.AngularMomentum.Z),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
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

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}

	return &meta, nil
}

// LoadBodies restores the initial bodies of a run into sys.
func (s *Store) LoadBodies(runID string, sys *dynamo.System) error {
	return Load(sys, s.bodiesPath(runID))
}

func (s *Store) bodiesPath(runID string) string {
	return filepath.Join(s.baseDir, runID, bodiesFile)
}

func (s *Store) LoadSamples(runID string) ([]sim.Sample, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, diagnosticsFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(diagnosticsHeader)

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}

	if len(records) < 2 {
		return []sim.Sample{}, nil
	}

	samples := make([]sim.Sample, 0, len(records)-1)
	for i := 1; i < len(records); i++ {
		record := records[i]

		step, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, fmt.Errorf("run %s row %d: %w", runID, i, err)
		}

		var v [10]float64
		for k := range v {
			v[k], err = strconv.ParseFloat(record[k+1], 64)
			if err != nil {
				return nil, fmt.Errorf("run %s row %d: %w", runID, i, err)
			}
		}

		samples = append(samples, sim.Sample{
			Step:            step,
			Time:            v[0],
			Kinetic:         v[1],
			Potential:       v[2],
			Total:           v[3],
			Momentum:        dynamo.Vec(v[4], v[5], v[6]),
			AngularMomentum: dynamo.Vec(v[7], v[8], v[9]),
		})
	}

	return samples, nil
}
