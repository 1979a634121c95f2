package intake

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/zepiy/stockmeta/internal/models"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestIsAcceptable(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		mime     string
		expected bool
	}{
		{"png image", "a.png", "image/png", true},
		{"mp4 video", "clip.mp4", "video/mp4", true},
		{"illustrator file without mime", "logo.ai", "", true},
		{"eps upper case", "LOGO.EPS", "application/postscript", true},
		{"svg by mime", "icon.svg", "image/svg+xml", true},
		{"pdf rejected", "doc.pdf", "application/pdf", false},
		{"text rejected", "notes.txt", "text/plain", false},
		{"ai inside name only", "ai-notes.txt", "text/plain", false},
		{"mime prefix must lead", "x.bin", "application/image/png", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsAcceptable(tt.file, tt.mime); got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestPartitionPreservesOrder(t *testing.T) {
	input := []Candidate{
		{Name: "a.png", MIMEType: "image/png"},
		{Name: "b.pdf", MIMEType: "application/pdf"},
		{Name: "c.eps"},
		{Name: "d.txt", MIMEType: "text/plain"},
		{Name: "e.mov", MIMEType: "video/quicktime"},
	}

	accepted, rejected := Partition(input)

	wantAccepted := []string{"a.png", "c.eps", "e.mov"}
	wantRejected := []string{"b.pdf", "d.txt"}
	if len(accepted) != len(wantAccepted) {
		t.Fatalf("Expected %d accepted, got %d", len(wantAccepted), len(accepted))
	}
	for i, name := range wantAccepted {
		if accepted[i].Name != name {
			t.Errorf("accepted[%d]: expected %s, got %s", i, name, accepted[i].Name)
		}
		if !IsAcceptable(accepted[i].Name, accepted[i].MIMEType) {
			t.Errorf("accepted[%d] does not satisfy predicate", i)
		}
	}
	if len(rejected) != len(wantRejected) {
		t.Fatalf("Expected %d rejected, got %d", len(wantRejected), len(rejected))
	}
	for i, name := range wantRejected {
		if rejected[i].Name != name {
			t.Errorf("rejected[%d]: expected %s, got %s", i, name, rejected[i].Name)
		}
		if IsAcceptable(rejected[i].Name, rejected[i].MIMEType) {
			t.Errorf("rejected[%d] satisfies predicate", i)
		}
	}

	if got := Accept(input); len(got) != 3 {
		t.Errorf("Accept: expected 3, got %d", len(got))
	}
}

func TestAcceptEmpty(t *testing.T) {
	if got := Accept(nil); len(got) != 0 {
		t.Errorf("Expected no candidates, got %d", len(got))
	}
}

func TestToAssets(t *testing.T) {
	assets := ToAssets([]Candidate{
		{Name: "a.png", MIMEType: "image/png", Data: []byte("x")},
		{Name: "logo.ai", MIMEType: "application/postscript"},
	})
	if len(assets) != 2 {
		t.Fatalf("Expected 2 assets, got %d", len(assets))
	}
	if assets[0].Kind != models.KindImage || string(assets[0].Data) != "x" {
		t.Errorf("Unexpected first asset: %+v", assets[0])
	}
	if assets[1].Kind != models.KindVector {
		t.Errorf("Expected vector kind, got %s", assets[1].Kind)
	}
}

func TestLoadPaths(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "nested")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatal(err)
	}
	files := map[string][]byte{
		filepath.Join(dir, "b.png"):    pngHeader,
		filepath.Join(sub, "a.eps"):    []byte("%!PS-Adobe-3.0 EPSF-3.0\n"),
		filepath.Join(dir, ".hidden"):  []byte("skip"),
		filepath.Join(dir, "note.txt"): []byte("plain text"),
	}
	for p, data := range files {
		if err := os.WriteFile(p, data, 0644); err != nil {
			t.Fatal(err)
		}
	}

	candidates, err := LoadPaths([]string{dir})
	if err != nil {
		t.Fatalf("LoadPaths returned error: %v", err)
	}
	if len(candidates) != 3 {
		t.Fatalf("Expected 3 candidates, got %d", len(candidates))
	}

	accepted := Accept(candidates)
	if len(accepted) != 2 {
		t.Fatalf("Expected 2 accepted, got %d", len(accepted))
	}
	var sawPNG bool
	for _, c := range accepted {
		if c.Name == "b.png" {
			sawPNG = true
			if c.MIMEType != "image/png" {
				t.Errorf("Expected sniffed image/png, got %q", c.MIMEType)
			}
		}
	}
	if !sawPNG {
		t.Error("Expected b.png to be accepted")
	}

	if _, err := LoadPaths([]string{filepath.Join(dir, "missing.png")}); err == nil {
		t.Error("Expected error for missing path")
	}
}

func TestFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/photos/cat.png":
			w.Header().Set("Content-Type", "application/octet-stream")
			_, _ = w.Write(pngHeader)
		case "/big.png":
			_, _ = w.Write(make([]byte, 64))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := NewFetcher(32)
	c, err := f.Fetch(context.Background(), srv.URL+"/photos/cat.png")
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if c.Name != "cat.png" {
		t.Errorf("Expected name cat.png, got %s", c.Name)
	}
	if c.MIMEType != "image/png" {
		t.Errorf("Expected sniffed image/png, got %s", c.MIMEType)
	}

	if _, err := f.Fetch(context.Background(), srv.URL+"/missing.png"); err == nil {
		t.Error("Expected error for 404")
	}
	if _, err := f.Fetch(context.Background(), srv.URL+"/big.png"); err == nil {
		t.Error("Expected error for oversized asset")
	}
	if _, err := f.Fetch(context.Background(), "ftp://example.com/a.png"); err == nil {
		t.Error("Expected error for unsupported scheme")
	}
}
