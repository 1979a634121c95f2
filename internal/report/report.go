// Package report writes a YAML record of a batch generation run.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/zepiy/stockmeta/internal/batch"
	"github.com/zepiy/stockmeta/internal/queue"
	"gopkg.in/yaml.v3"
)

// RunConfig is the configuration section of the report
type RunConfig struct {
	Provider    string  `yaml:"provider"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	Timestamp   string  `yaml:"timestamp"`
}

// AssetResult is one queue entry in the report
type AssetResult struct {
	Index       int      `yaml:"index"`
	Source      string   `yaml:"source"`
	Kind        string   `yaml:"kind"`
	Status      string   `yaml:"status"`
	Error       string   `yaml:"error,omitempty"`
	Filename    string   `yaml:"filename,omitempty"`
	Title       string   `yaml:"title,omitempty"`
	Description string   `yaml:"description,omitempty"`
	Keywords    []string `yaml:"keywords,omitempty"`
}

// Totals mirrors the batch summary counters
type Totals struct {
	Total     int `yaml:"total"`
	Succeeded int `yaml:"succeeded"`
	Failed    int `yaml:"failed"`
	Skipped   int `yaml:"skipped"`
}

// Report is the complete run record
type Report struct {
	Config  RunConfig     `yaml:"config"`
	Totals  Totals        `yaml:"totals"`
	Results []AssetResult `yaml:"results"`
}

// Statuses
const (
	StatusOK      = "ok"
	StatusFailed  = "failed"
	StatusPending = "pending"
)

// Build assembles a report from the queue state after a run
func Build(cfg RunConfig, snap queue.Snapshot, summary batch.Summary) Report {
	if cfg.Timestamp == "" {
		cfg.Timestamp = time.Now().Format(time.RFC3339)
	}

	failures := make(map[int]error, len(summary.Failures))
	for _, f := range summary.Failures {
		failures[f.Index] = f.Err
	}

	r := Report{
		Config: cfg,
		Totals: Totals{
			Total:     summary.Total,
			Succeeded: summary.Succeeded,
			Failed:    summary.Failed,
			Skipped:   summary.Skipped,
		},
		Results: make([]AssetResult, 0, len(snap.Assets)),
	}

	for _, e := range snap.Entries() {
		ar := AssetResult{
			Index:  e.Index,
			Source: e.Asset.Name,
			Kind:   string(e.Asset.Kind),
			Status: StatusPending,
		}
		switch {
		case e.Processed():
			ar.Status = StatusOK
			ar.Filename = e.Result.Filename
			ar.Title = e.Result.Title
			ar.Description = e.Result.Description
			ar.Keywords = e.Result.Keywords
		case failures[e.Index] != nil:
			ar.Status = StatusFailed
			ar.Error = failures[e.Index].Error()
		}
		r.Results = append(r.Results, ar)
	}
	return r
}

// Encode writes r as YAML
func (r Report) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&r); err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return enc.Close()
}

// Save writes r to path, creating parent directories
func (r Report) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	if err := r.Encode(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write report file: %w", err)
	}
	return nil
}
