// Package export packages generated metadata as a downloadable archive or
// as per-marketplace CSV files.
package export

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/klauspost/compress/zip"
	"github.com/zepiy/stockmeta/internal/models"
	"github.com/zepiy/stockmeta/internal/queue"
)

const (
	// ArchiveName is the default download name of the full export
	ArchiveName = "Zepiy_Generated_Assets.zip"

	AssetsDir       = "assets/"
	ManifestName    = "metadata.csv"
	ParquetManifest = "metadata.parquet"
)

// ErrNotGenerated is returned when an export needs a result that does not exist
var ErrNotGenerated = errors.New("no generated metadata")

// ExportError reports a failed archive or CSV assembly
type ExportError struct {
	Op  string
	Err error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export %s failed: %v", e.Op, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

// ArchiveOption customizes WriteArchive
type ArchiveOption func(*archiveOptions)

type archiveOptions struct {
	parquet bool
}

// WithParquetManifest adds metadata.parquet next to metadata.csv
func WithParquetManifest() ArchiveOption {
	return func(o *archiveOptions) {
		o.parquet = true
	}
}

// ArchiveSummary describes a written archive
type ArchiveSummary struct {
	Assets   int
	Manifest bool
	Files    []string
}

// WriteArchive writes every processed entry into a zip on w: the asset bytes
// under assets/<derived filename> and one row per asset in metadata.csv.
// The manifest is left out when nothing is processed.
func WriteArchive(w io.Writer, entries []queue.Entry, opts ...ArchiveOption) (ArchiveSummary, error) {
	var o archiveOptions
	for _, opt := range opts {
		opt(&o)
	}

	var summary ArchiveSummary
	zw := zip.NewWriter(w)

	if _, err := zw.Create(AssetsDir); err != nil {
		return summary, &ExportError{Op: "archive", Err: fmt.Errorf("failed to create assets folder: %w", err)}
	}

	results := make([]*models.GenerationResult, 0, len(entries))
	for _, e := range entries {
		if e.Result == nil {
			continue
		}
		name := AssetsDir + entryName(e.Result.Filename)
		fw, err := zw.Create(name)
		if err != nil {
			return summary, &ExportError{Op: "archive", Err: fmt.Errorf("failed to add %s: %w", name, err)}
		}
		if _, err := fw.Write(e.Asset.Data); err != nil {
			return summary, &ExportError{Op: "archive", Err: fmt.Errorf("failed to write %s: %w", name, err)}
		}
		results = append(results, e.Result)
		summary.Files = append(summary.Files, name)
		summary.Assets++
	}

	if len(results) > 0 {
		fw, err := zw.Create(ManifestName)
		if err != nil {
			return summary, &ExportError{Op: "archive", Err: fmt.Errorf("failed to add manifest: %w", err)}
		}
		if _, err := io.WriteString(fw, BuildManifest(results)); err != nil {
			return summary, &ExportError{Op: "archive", Err: fmt.Errorf("failed to write manifest: %w", err)}
		}
		summary.Manifest = true
		summary.Files = append(summary.Files, ManifestName)

		if o.parquet {
			fw, err := zw.Create(ParquetManifest)
			if err != nil {
				return summary, &ExportError{Op: "archive", Err: fmt.Errorf("failed to add parquet manifest: %w", err)}
			}
			if err := WriteParquetManifest(fw, results); err != nil {
				return summary, &ExportError{Op: "archive", Err: err}
			}
			summary.Files = append(summary.Files, ParquetManifest)
		}
	}

	if err := zw.Close(); err != nil {
		return summary, &ExportError{Op: "archive", Err: fmt.Errorf("failed to finalize archive: %w", err)}
	}

	slog.Info("Archive written", "assets", summary.Assets, "manifest", summary.Manifest)
	return summary, nil
}

// entryName keeps a derived filename inside the assets folder
func entryName(filename string) string {
	name := strings.NewReplacer("/", "_", "\\", "_").Replace(filename)
	if name == "" || name == "." || name == ".." {
		name = "_" + name
	}
	return name
}
