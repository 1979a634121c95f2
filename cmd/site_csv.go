package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/zepiy/stockmeta/internal/batch"
	"github.com/zepiy/stockmeta/internal/export"
	"github.com/zepiy/stockmeta/internal/intake"
	"github.com/zepiy/stockmeta/internal/metadata"
	"github.com/zepiy/stockmeta/internal/models"
	"github.com/zepiy/stockmeta/internal/queue"
)

func newSiteCSVCmd(root *rootOptions) *cobra.Command {
	var (
		sites    []string
		filename string
		outDir   string
	)

	cmd := &cobra.Command{
		Use:   "site-csv <file>",
		Short: "Generate metadata for one file and write per-site CSV files",
		Long: `Generates metadata for a single asset and writes one CSV per stock site in
the column layout that site expects for bulk uploads.

Sites: adobe, shutterstock, vecteezy, 123rf, dreamstime (or all).`,
		Example: `  # Adobe Stock and Shutterstock CSVs for one photo
  stockmeta site-csv tiger.jpg --site adobe --site shutterstock

  # Every site, with a custom filename column
  stockmeta site-csv tiger.jpg --filename "Tiger In Jungle.jpg" --out ./csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			targets, err := parseSites(sites)
			if err != nil {
				return err
			}

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
			accepted, _ := intake.Partition(candidates)
			if len(accepted) != 1 {
				return fmt.Errorf("expected one supported asset, found %d", len(accepted))
			}

			store := queue.New()
			store.Append(intake.ToAssets(accepted)...)
			result, err := batch.New(store, client).GenerateOne(cmd.Context(), 0)
			if err != nil {
				return err
			}

			if err := os.MkdirAll(outDir, 0755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
			for _, site := range targets {
				name, content, err := export.SiteCSV(site, result, filename)
				if err != nil {
					return err
				}
				path := filepath.Join(outDir, name)
				if err := os.WriteFile(path, content, 0644); err != nil {
					return fmt.Errorf("failed to write %s: %w", path, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", site.DisplayName(), path)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&sites, "site", "s", []string{"all"}, "Target site (repeatable, or all)")
	cmd.Flags().StringVar(&filename, "filename", "", "Filename to record in the CSV (default: generated filename)")
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "Directory for the CSV files")

	return cmd
}

func parseSites(values []string) ([]models.Site, error) {
	var sites []models.Site
	seen := make(map[models.Site]bool)
	for _, v := range values {
		if strings.EqualFold(strings.TrimSpace(v), "all") {
			return append([]models.Site(nil), models.Sites...), nil
		}
		site, err := models.ParseSite(v)
		if err != nil {
			return nil, err
		}
		if !seen[site] {
			seen[site] = true
			sites = append(sites, site)
		}
	}
	if len(sites) == 0 {
		return nil, fmt.Errorf("no site selected")
	}
	return sites, nil
}
