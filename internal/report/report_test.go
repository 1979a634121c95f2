package report

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/zepiy/stockmeta/internal/batch"
	"github.com/zepiy/stockmeta/internal/models"
	"github.com/zepiy/stockmeta/internal/queue"
	"gopkg.in/yaml.v3"
)

func sampleRun() (queue.Snapshot, batch.Summary) {
	store := queue.New()
	store.Append(
		models.NewAsset("a.png", "image/png", []byte("a")),
		models.NewAsset("b.eps", "application/postscript", []byte("b")),
		models.NewAsset("c.png", "image/png", []byte("c")),
	)
	store.SetResult(0, &models.GenerationResult{Title: "A", Keywords: []string{"x"}, Filename: "A.png"})

	summary := batch.Summary{
		Total: 2, Succeeded: 1, Failed: 1,
		Failures: []batch.Failure{{Index: 1, Asset: "b.eps", Err: errors.New("invalid response")}},
	}
	return store.Snapshot(), summary
}

func TestBuild(t *testing.T) {
	snap, summary := sampleRun()
	r := Build(RunConfig{Provider: "gemini", Model: "m"}, snap, summary)

	if r.Config.Timestamp == "" {
		t.Error("Expected timestamp to be filled in")
	}
	if r.Totals.Succeeded != 1 || r.Totals.Failed != 1 {
		t.Errorf("Unexpected totals: %+v", r.Totals)
	}

	expected := []struct {
		status string
		kind   string
	}{
		{StatusOK, "image"},
		{StatusFailed, "vector"},
		{StatusPending, "image"},
	}
	if len(r.Results) != len(expected) {
		t.Fatalf("Expected %d results, got %d", len(expected), len(r.Results))
	}
	for i, want := range expected {
		if r.Results[i].Status != want.status || r.Results[i].Kind != want.kind {
			t.Errorf("result %d: expected %s/%s, got %s/%s", i, want.status, want.kind, r.Results[i].Status, r.Results[i].Kind)
		}
	}
	if r.Results[0].Filename != "A.png" || r.Results[1].Error != "invalid response" {
		t.Errorf("Unexpected results: %+v", r.Results)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	snap, summary := sampleRun()
	path := filepath.Join(t.TempDir(), "reports", "run.yaml")

	if err := Build(RunConfig{Provider: "ollama", Timestamp: "now"}, snap, summary).Save(path); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var got Report
	if err := yaml.Unmarshal(data, &got); err != nil {
		t.Fatalf("invalid YAML: %v", err)
	}
	if got.Config.Provider != "ollama" || len(got.Results) != 3 {
		t.Errorf("Unexpected report: %+v", got)
	}
	if !bytes.Contains(data, []byte("status: failed")) {
		t.Errorf("Expected failed status in YAML:\n%s", data)
	}
}
