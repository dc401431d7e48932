package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/cellsolver/internal/sim"
)

const (
	metadataFile = "metadata.json"
	seriesFile   = "series.csv"
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

type RunSummary struct {
	Strategy        string `json:"strategy"`
	Steps           int    `json:"steps"`
	Resets          int    `json:"resets"`
	ExternalUpdates int    `json:"external_updates"`
	Samples         int    `json:"samples"`
}

type RunMetadata struct {
	ID         string            `json:"id"`
	Title      string            `json:"title"`
	XInfo      sim.ChannelInfo   `json:"x_info"`
	Channels   []sim.ChannelInfo `json:"channel_info"`
	Solver     string            `json:"solver"`
	Parameters sim.Parameters    `json:"parameters"`
	Timestamp  time.Time         `json:"timestamp"`
	Summary    RunSummary        `json:"summary"`
}

// Save writes res under a fresh run id and returns the id.
func (s *Store) Save(solver string, params sim.Parameters, res *sim.Result) (string, error) {
	series := res.Series
	runID := fmt.Sprintf("%s_%s", series.Title, uuid.NewString())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Title:      series.Title,
		XInfo:      series.XInfo,
		Channels:   series.Channels,
		Solver:     solver,
		Parameters: params,
		Timestamp:  time.Now(),
		Summary: RunSummary{
			Strategy:        res.Summary.Strategy,
			Steps:           res.Summary.Steps,
			Resets:          res.Summary.Resets,
			ExternalUpdates: res.Summary.ExternalUpdates,
			Samples:         series.Len(),
		},
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, seriesFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := ExportCSV(csvFile, series); err != nil {
		return "", err
	}
	return runID, nil
}

// List returns the metadata of every stored run, oldest first. Run
// directories without readable metadata are skipped.
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

	sort.Slice(runs, func(i, j int) bool {
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
		return nil, err
	}
	return &meta, nil
}

// LoadSeries reconstructs the stored series of a run.
func (s *Store) LoadSeries(runID string) (*sim.Series, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filepath.Join(s.baseDir, runID, seriesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	x, y, err := readCSV(file, len(meta.Channels))
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}

	return &sim.Series{
		Title:    meta.Title,
		XInfo:    meta.XInfo,
		X:        x,
		Channels: meta.Channels,
		Y:        y,
	}, nil
}
