package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/zepiy/stockmeta/internal/batch"
	"github.com/zepiy/stockmeta/internal/export"
	"github.com/zepiy/stockmeta/internal/intake"
	"github.com/zepiy/stockmeta/internal/metadata"
	"github.com/zepiy/stockmeta/internal/queue"
	"github.com/zepiy/stockmeta/internal/report"
)

func newGenerateCmd(root *rootOptions) *cobra.Command {
	var (
		output     string
		parquet    bool
		reportPath string
	)

	cmd := &cobra.Command{
		Use:   "generate [paths...]",
		Short: "Generate metadata for files and export a ZIP archive",
		Long: `Queues every image, video and vector (.ai/.eps) file found in the given
paths, generates metadata for each one in order, and writes a ZIP archive with
the renamed assets and a metadata.csv manifest.

A failure on one file is reported and the batch moves on.`,
		Example: `  # Generate metadata for a folder of photos
  stockmeta generate ./photos

  # Use Ollama and write a parquet manifest next to the CSV
  STOCKMETA_PROVIDER=ollama stockmeta generate --parquet -o out.zip a.jpg b.eps`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			client, err := metadata.NewClientFromConfig(cfg)
			if err != nil {
				return err
			}

			candidates, err := intake.LoadPaths(args)
			if err != nil {
				return err
			}
			accepted, rejected := intake.Partition(candidates)
			for _, c := range rejected {
				slog.Warn("Skipping unsupported file", "name", c.Name, "mime", c.MIMEType)
			}
			if len(accepted) == 0 {
				return errors.New("no supported assets found")
			}

			store := queue.New()
			store.Append(intake.ToAssets(accepted)...)
			orch := batch.New(store, client)

			summary, runErr := orch.GenerateAll(cmd.Context())
			if runErr != nil {
				slog.Warn("Batch interrupted", "err", runErr)
			}

			snap := store.Snapshot()
			printEntries(cmd, snap, summary)

			if reportPath != "" {
				run := report.RunConfig{Provider: cfg.Provider, Model: cfg.Model, Temperature: cfg.Temperature}
				if err := report.Build(run, snap, summary).Save(reportPath); err != nil {
					return err
				}
				slog.Info("Run report saved", "path", reportPath)
			}

			if snap.ProcessedCount() == 0 {
				return errors.New("no assets were generated")
			}

			if output == "" {
				output = cfg.ArchiveName
			}
			var opts []export.ArchiveOption
			if parquet {
				opts = append(opts, export.WithParquetManifest())
			}
			if err := writeArchiveFile(output, snap.Entries(), opts...); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d of %d assets)\n", output, snap.ProcessedCount(), len(snap.Assets))
			return runErr
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Archive path (default from config)")
	cmd.Flags().BoolVar(&parquet, "parquet", false, "Also write metadata.parquet into the archive")
	cmd.Flags().StringVar(&reportPath, "report", "", "Write a YAML run report to this path")

	return cmd
}

func writeArchiveFile(path string, entries []queue.Entry, opts ...export.ArchiveOption) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}
	if _, err := export.WriteArchive(f, entries, opts...); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close archive: %w", err)
	}
	return nil
}

func printEntries(cmd *cobra.Command, snap queue.Snapshot, summary batch.Summary) {
	failed := make(map[int]error, len(summary.Failures))
	for _, f := range summary.Failures {
		failed[f.Index] = f.Err
	}

	rows := make([][]string, 0, len(snap.Assets))
	for _, e := range snap.Entries() {
		status, filename := "pending", ""
		switch {
		case e.Processed():
			status, filename = "ok", e.Result.Filename
		case failed[e.Index] != nil:
			status = "failed"
		}
		rows = append(rows, []string{
			strconv.Itoa(e.Index + 1),
			e.Asset.Name,
			string(e.Asset.Kind),
			humanize.Bytes(uint64(len(e.Asset.Data))),
			status,
			filename,
		})
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, renderTable(out,
		[]string{"#", "Source", "Kind", "Size", "Status", "Filename"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight},
	))
	fmt.Fprintf(out, "%d succeeded, %d failed, %d skipped\n", summary.Succeeded, summary.Failed, summary.Skipped)
}
