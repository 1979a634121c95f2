package export

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/parquet-go/parquet-go"
	"github.com/zepiy/stockmeta/internal/models"
	"github.com/zepiy/stockmeta/internal/queue"
)

func sampleResult() *models.GenerationResult {
	return &models.GenerationResult{
		Title:                "Majestic Tiger",
		Description:          `A tiger, "striped"`,
		Keywords:             []string{"tiger", "jungle", "wildlife"},
		Filename:             "Majestic Tiger.png",
		AdobeStockCategory:   "Animals",
		ShutterstockCategory: "Nature",
		VecteezyCategory:     "Backgrounds",
		One23RFCategory:      "Wildlife",
		DreamstimeCategory:   "Travel",
	}
}

func TestEscapeField(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`He said "hi"`, `"He said ""hi"""`},
		{"", `""`},
		{"plain", `"plain"`},
		{"a,b\nc", "\"a,b\nc\""},
	}
	for _, tt := range tests {
		if got := EscapeField(tt.input); got != tt.expected {
			t.Errorf("EscapeField(%q): expected %s, got %s", tt.input, tt.expected, got)
		}
	}
}

func TestBuildManifest(t *testing.T) {
	r := sampleResult()
	r.VecteezyCategory = ""
	got := BuildManifest([]*models.GenerationResult{r})

	want := `"Title","Description","Keywords","Filename","Adobe Stock Category","Shutterstock Category","Vecteezy Category","123RF Category","Dreamstime Category"` + "\n" +
		`"Majestic Tiger","A tiger, ""striped""","tiger; jungle; wildlife","Majestic Tiger.png","Animals","Nature","","Wildlife","Travel"`
	if got != want {
		t.Errorf("Unexpected manifest:\n%s\nwant:\n%s", got, want)
	}
}

func TestSiteCSV(t *testing.T) {
	r := sampleResult()
	tests := []struct {
		site     models.Site
		filename string
		wantName string
		wantBody string
	}{
		{
			models.SiteAdobeStock, "", "Majestic Tiger_Adobe_Stock.csv",
			`"Filename","Title","Keywords","Category"` + "\n" + `"Majestic Tiger.png","Majestic Tiger","tiger,jungle,wildlife","Animals"`,
		},
		{
			models.SiteShutterstock, "renamed.final.png", "renamed.final_Shutterstock.csv",
			`"Filename","Description","Keywords","Category 1"` + "\n" + `"renamed.final.png","Majestic Tiger","tiger,jungle,wildlife","Nature"`,
		},
		{
			models.SiteVecteezy, "", "Majestic Tiger_Vecteezy.csv",
			`"Title","Description","Keywords","Category"` + "\n" + `"Majestic Tiger","A tiger, ""striped""","tiger,jungle,wildlife","Backgrounds"`,
		},
		{
			models.Site123RF, "", "Majestic Tiger_123RF.csv",
			`"Title","Description","Keywords","Category"` + "\n" + `"Majestic Tiger","A tiger, ""striped""","tiger,jungle,wildlife","Wildlife"`,
		},
		{
			models.SiteDreamstime, "noext", "noext_Dreamstime.csv",
			`"Title","Description","Keywords","Category"` + "\n" + `"Majestic Tiger","A tiger, ""striped""","tiger,jungle,wildlife","Travel"`,
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.site), func(t *testing.T) {
			name, body, err := SiteCSV(tt.site, r, tt.filename)
			if err != nil {
				t.Fatalf("SiteCSV returned error: %v", err)
			}
			if name != tt.wantName {
				t.Errorf("Expected name %q, got %q", tt.wantName, name)
			}
			if string(body) != tt.wantBody {
				t.Errorf("Unexpected body:\n%s\nwant:\n%s", body, tt.wantBody)
			}
		})
	}
}

func TestShutterstockUsesTitleInDescriptionColumn(t *testing.T) {
	r := sampleResult()
	row := SiteRow(models.SiteShutterstock, r, r.Filename)
	header := SiteHeader(models.SiteShutterstock)
	if header[1] != "Description" || row[1] != r.Title {
		t.Errorf("Expected title in Description column, got header=%v row=%v", header, row)
	}
}

func TestSiteCSVErrors(t *testing.T) {
	_, _, err := SiteCSV(models.SiteAdobeStock, nil, "")
	var exportErr *ExportError
	if !errors.As(err, &exportErr) || !errors.Is(err, ErrNotGenerated) {
		t.Errorf("Expected ExportError wrapping ErrNotGenerated, got %v", err)
	}
	if _, _, err := SiteCSV(models.Site("getty"), sampleResult(), ""); err == nil {
		t.Error("Expected error for unknown site")
	}
}

func readZip(t *testing.T, data []byte) map[string][]byte {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("failed to open zip: %v", err)
	}
	files := make(map[string][]byte)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("failed to open %s: %v", f.Name, err)
		}
		b, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("failed to read %s: %v", f.Name, err)
		}
		files[f.Name] = b
	}
	return files
}

func TestWriteArchive(t *testing.T) {
	done := sampleResult()
	entries := []queue.Entry{
		{Index: 0, Asset: models.NewAsset("tiger.png", "image/png", []byte("tiger-bytes")), Result: done},
		{Index: 1, Asset: models.NewAsset("b.png", "image/png", []byte("b-bytes"))},
	}

	var buf bytes.Buffer
	summary, err := WriteArchive(&buf, entries)
	if err != nil {
		t.Fatalf("WriteArchive returned error: %v", err)
	}
	if summary.Assets != 1 || !summary.Manifest {
		t.Errorf("Unexpected summary: %+v", summary)
	}

	files := readZip(t, buf.Bytes())
	if _, ok := files["assets/"]; !ok {
		t.Error("Expected assets folder entry")
	}
	if string(files["assets/Majestic Tiger.png"]) != "tiger-bytes" {
		t.Errorf("Unexpected asset content: %q", files["assets/Majestic Tiger.png"])
	}
	manifest := string(files[ManifestName])
	lines := strings.Split(manifest, "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected header plus one row, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[1], `"Majestic Tiger",`) {
		t.Errorf("Unexpected data row: %s", lines[1])
	}
	if len(files) != 3 {
		t.Errorf("Expected 3 entries, got %d", len(files))
	}
}

func TestWriteArchiveWithoutResultsOmitsManifest(t *testing.T) {
	entries := []queue.Entry{{Asset: models.NewAsset("a.png", "image/png", []byte("a"))}}

	var buf bytes.Buffer
	summary, err := WriteArchive(&buf, entries, WithParquetManifest())
	if err != nil {
		t.Fatal(err)
	}
	if summary.Manifest || summary.Assets != 0 {
		t.Errorf("Unexpected summary: %+v", summary)
	}
	files := readZip(t, buf.Bytes())
	if _, ok := files[ManifestName]; ok {
		t.Error("Expected manifest to be omitted")
	}
	if _, ok := files[ParquetManifest]; ok {
		t.Error("Expected parquet manifest to be omitted")
	}
}

func TestWriteArchiveKeepsAssetsInsideFolder(t *testing.T) {
	r := sampleResult()
	r.Filename = "../Escape/Title.png"
	entries := []queue.Entry{{Asset: models.NewAsset("x.png", "image/png", []byte("x")), Result: r}}

	var buf bytes.Buffer
	if _, err := WriteArchive(&buf, entries); err != nil {
		t.Fatal(err)
	}
	files := readZip(t, buf.Bytes())
	if _, ok := files["assets/.._Escape_Title.png"]; !ok {
		t.Errorf("Expected flattened entry name, got %v", files)
	}
}

func TestWriteArchiveParquetManifest(t *testing.T) {
	entries := []queue.Entry{
		{Asset: models.NewAsset("tiger.png", "image/png", []byte("t")), Result: sampleResult()},
	}

	var buf bytes.Buffer
	if _, err := WriteArchive(&buf, entries, WithParquetManifest()); err != nil {
		t.Fatal(err)
	}
	files := readZip(t, buf.Bytes())
	data, ok := files[ParquetManifest]
	if !ok {
		t.Fatal("Expected parquet manifest")
	}

	pf, err := parquet.OpenFile(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("failed to open parquet manifest: %v", err)
	}
	reader := parquet.NewGenericReader[ManifestRecord](pf)
	defer reader.Close()
	if reader.NumRows() != 1 {
		t.Errorf("Expected 1 row, got %d", reader.NumRows())
	}
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestWriteArchiveReportsExportError(t *testing.T) {
	entries := []queue.Entry{
		{Asset: models.NewAsset("tiger.png", "image/png", bytes.Repeat([]byte("x"), 1<<16)), Result: sampleResult()},
	}
	_, err := WriteArchive(failingWriter{}, entries)
	var exportErr *ExportError
	if !errors.As(err, &exportErr) {
		t.Fatalf("Expected ExportError, got %v", err)
	}
}
