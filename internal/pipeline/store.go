package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// Store persists run results as JSON artifacts, one directory per run.
type Store struct {
	baseDir string // defaults to ~/.repodoctor/runs
}

// NewStore creates a Store rooted at baseDir.
func NewStore(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// DefaultStore returns a Store at ~/.repodoctor/runs, creating the
// directory if needed.
func DefaultStore() (*Store, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("get home dir: %w", err)
	}
	dir := filepath.Join(home, ".repodoctor", "runs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return &Store{baseDir: dir}, nil
}

// BaseDir returns the store's root directory.
func (s *Store) BaseDir() string {
	return s.baseDir
}

// NewRunID derives a sortable run identifier from a timestamp.
func NewRunID(t time.Time) string {
	return t.UTC().Format("20060102-150405")
}

func (s *Store) runDir(id string) string {
	return filepath.Join(s.baseDir, id)
}

// Save writes result.json for the run and, when a report was produced,
// a standalone report.json next to it.
func (s *Store) Save(id string, res RunResult) error {
	dir := s.runDir(id)
	if err := WriteJSON(filepath.Join(dir, "result.json"), res); err != nil {
		return fmt.Errorf("write result.json: %w", err)
	}
	if res.State.Report != nil {
		if err := WriteJSON(filepath.Join(dir, "report.json"), res.State.Report); err != nil {
			return fmt.Errorf("write report.json: %w", err)
		}
	}
	return nil
}

// Load reads a stored run result by id.
func (s *Store) Load(id string) (*RunResult, error) {
	var res RunResult
	if err := ReadJSON(filepath.Join(s.runDir(id), "result.json"), &res); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("run %s not found", id)
		}
		return nil, err
	}
	return &res, nil
}

// List returns all stored run ids, oldest first.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read dir %s: %w", s.baseDir, err)
	}

	var ids []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(s.runDir(e.Name()), "result.json")); err != nil {
			continue // skip incomplete run dirs
		}
		ids = append(ids, e.Name())
	}
	sort.Strings(ids)
	return ids, nil
}

// Latest returns the most recent run id, or an error when none exist.
func (s *Store) Latest() (string, error) {
	ids, err := s.List()
	if err != nil {
		return "", err
	}
	if len(ids) == 0 {
		return "", fmt.Errorf("no stored runs in %s", s.baseDir)
	}
	return ids[len(ids)-1], nil
}
