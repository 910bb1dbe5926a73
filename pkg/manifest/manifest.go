// Package manifest records the outcome of every item of a run so a dataset can be audited
// after the fact. Manifests are written as YAML, JSON or Parquet.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/parquet-go/parquet-go"
	"gopkg.in/yaml.v3"

	"github.com/VicDc/AI-Dataset-Augmenter/pkg/types"
)

// Item outcomes
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Entry is one processed (file, copy) item
type Entry struct {
	RunID      string   `json:"run_id" yaml:"run_id" parquet:"run_id"`
	Source     string   `json:"source" yaml:"source" parquet:"source"`
	Copy       int      `json:"copy" yaml:"copy" parquet:"copy"`
	Status     string   `json:"status" yaml:"status" parquet:"status"`
	Width      int      `json:"width" yaml:"width" parquet:"width"`
	Height     int      `json:"height" yaml:"height" parquet:"height"`
	Steps      []string `json:"steps,omitempty" yaml:"steps,omitempty" parquet:"steps"`
	Outputs    []string `json:"outputs,omitempty" yaml:"outputs,omitempty" parquet:"outputs"`
	Error      string   `json:"error,omitempty" yaml:"error,omitempty" parquet:"error"`
	DurationMS int64    `json:"duration_ms" yaml:"duration_ms" parquet:"duration_ms"`
}

// Recorder receives item outcomes
type Recorder interface {
	Record(Entry)
}

// Document is the YAML/JSON manifest layout
type Document struct {
	RunID   string         `json:"run_id" yaml:"run_id"`
	Created string         `json:"created" yaml:"created"`
	Stats   types.RunStats `json:"stats" yaml:"stats"`
	Entries []Entry        `json:"entries" yaml:"entries"`
}

// Collector is an in-memory Recorder safe for concurrent use
type Collector struct {
	runID   string
	created time.Time

	mu      sync.Mutex
	entries []Entry
}

// NewCollector starts a manifest with a fresh run ID
func NewCollector() *Collector {
	return &Collector{runID: uuid.NewString(), created: time.Now()}
}

// RunID identifies the run in logs and manifest rows
func (c *Collector) RunID() string {
	return c.runID
}

// Record appends e, stamping the run ID
func (c *Collector) Record(e Entry) {
	e.RunID = c.runID
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, e)
}

// Entries returns a copy of the recorded entries
func (c *Collector) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Entry(nil), c.entries...)
}

// Document snapshots the manifest with the final stats
func (c *Collector) Document(stats types.RunStats) Document {
	return Document{
		RunID:   c.runID,
		Created: c.created.UTC().Format(time.RFC3339),
		Stats:   stats,
		Entries: c.Entries(),
	}
}

// ErrUnsupportedType is returned for a manifest path with an unknown extension
var ErrUnsupportedType = errors.New("unsupported manifest type")

// CheckPath reports whether WriteFile can encode a manifest at path
func CheckPath(path string) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".parquet", ".yaml", ".yml", ".json":
		return nil
	default:
		return fmt.Errorf("%w %q", ErrUnsupportedType, ext)
	}
}

// WriteFile writes the manifest, picking the encoding from the extension (.yaml, .yml, .json, .parquet)
func (c *Collector) WriteFile(path string, stats types.RunStats) error {
	if err := CheckPath(path); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create manifest directory: %w", err)
	}

	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet":
		if err := parquet.WriteFile(path, c.Entries()); err != nil {
			return fmt.Errorf("failed to write parquet manifest: %w", err)
		}
		return nil
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c.Document(stats))
	default:
		data, err = json.MarshalIndent(c.Document(stats), "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

// ReadFile loads the entries of a manifest written by WriteFile
func ReadFile(path string) ([]Entry, error) {
	if strings.EqualFold(filepath.Ext(path), ".parquet") {
		rows, err := parquet.ReadFile[Entry](path)
		if err != nil {
			return nil, fmt.Errorf("failed to read parquet manifest: %w", err)
		}
		return rows, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	var doc Document
	// JSON is a subset of YAML
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	return doc.Entries, nil
}
