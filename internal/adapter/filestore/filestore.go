// Package filestore persists training datasets and jobs as JSON files.
// Every save rewrites the whole file; the data volumes involved (hand
//-curated examples, a handful of jobs) make that the simplest durable
// option.
package filestore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/heartmarshall/langtutor-backend/internal/domain"
)

// DatasetStore persists training datasets in datasets.json.
type DatasetStore struct {
	path string
	mu   sync.Mutex
}

func NewDatasetStore(dir string) (*DatasetStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("filestore: create dir: %w", err)
	}
	return &DatasetStore{path: filepath.Join(dir, "datasets.json")}, nil
}

type datasetsFile struct {
	Datasets []domain.TrainingDataset `json:"datasets"`
}

// Load reads all datasets. A missing file is an empty store, not an error.
func (s *DatasetStore) Load() ([]domain.TrainingDataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var f datasetsFile
	if err := readJSON(s.path, &f); err != nil {
		return nil, fmt.Errorf("filestore: load datasets: %w", err)
	}
	return f.Datasets, nil
}

// Save rewrites the dataset file in full.
func (s *DatasetStore) Save(datasets []domain.TrainingDataset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := writeJSON(s.path, datasetsFile{Datasets: datasets}); err != nil {
		return fmt.Errorf("filestore: save datasets: %w", err)
	}
	return nil
}

// JobStore persists training jobs in jobs.json.
type JobStore struct {
	path string
	mu   sync.Mutex
}

func NewJobStore(dir string) (*JobStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("filestore: create dir: %w", err)
	}
	return &JobStore{path: filepath.Join(dir, "jobs.json")}, nil
}

type jobsFile struct {
	Jobs []domain.TrainingJob `json:"jobs"`
}

// Load reads all jobs. A missing file is an empty store, not an error.
func (s *JobStore) Load() ([]domain.TrainingJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var f jobsFile
	if err := readJSON(s.path, &f); err != nil {
		return nil, fmt.Errorf("filestore: load jobs: %w", err)
	}
	return f.Jobs, nil
}

// Save rewrites the job file in full.
func (s *JobStore) Save(jobs []domain.TrainingJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := writeJSON(s.path, jobsFile{Jobs: jobs}); err != nil {
		return fmt.Errorf("filestore: save jobs: %w", err)
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

// writeJSON writes atomically: temp file in the same directory, then rename.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
