package cmd

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/spf13/cobra"

	"github.com/02loveslollipop/solar-potential-dashboard/services/api/loader"
	"github.com/02loveslollipop/solar-potential-dashboard/services/api/solar"
)

const manifestName = "sources.yaml"

func newFetchCmd(load configLoader) *cobra.Command {
	var (
		outputDir string
		dryRun    bool
	)

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download every configured source into local normalized CSV files",
		Long: `fetch loads each configured source (https, file, s3:// or postgres://),
writes <country>.csv with the columns Timestamp,GHI,DNI,DHI and a sources.yaml
manifest pointing at them. Point SOLAR_SOURCES_FILE at that manifest to serve
the local copies.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("output-dir") {
				outputDir = cfg.OutputDir
			}
			sources, err := cfg.Sources()
			if err != nil {
				return err
			}

			l := newLoader(cfg)
			local := make([]loader.Source, 0, len(sources))
			for _, src := range sources {
				rows, err := l.LoadSource(cmd.Context(), src)
				if err != nil {
					return err
				}
				path := filepath.Join(outputDir, src.Country.Slug()+".csv")
				if dryRun {
					log.Printf("dry-run: would write %d rows for %s to %s", len(rows), src.Country, path)
					continue
				}
				if err := os.MkdirAll(outputDir, 0o755); err != nil {
					return fmt.Errorf("mkdir %s: %w", outputDir, err)
				}
				if err := writeObservations(path, rows); err != nil {
					return err
				}
				abs, err := filepath.Abs(path)
				if err != nil {
					return err
				}
				local = append(local, loader.Source{Country: src.Country, Location: abs})
				log.Printf("wrote %d rows for %s to %s", len(rows), src.Country, path)
			}

			if dryRun {
				return nil
			}
			manifest := filepath.Join(outputDir, manifestName)
			if err := loader.WriteManifest(manifest, local); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %d sources; manifest at %s\n", len(local), manifest)
			return nil
		},
	}
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "directory for the CSV files and manifest (default from config: data)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "load the sources but write nothing")
	return cmd
}

// writeObservations saves rows as Timestamp,GHI,DNI,DHI. Values are written
// in their shortest exact form, missing values as NaN, and rows without a
// timestamp leave the cell blank.
func writeObservations(path string, rows []solar.Observation) error {
	stamps := make([]string, len(rows))
	values := map[solar.Metric][]string{}
	for _, m := range solar.Metrics() {
		values[m] = make([]string, len(rows))
	}
	for i, o := range rows {
		if !o.Timestamp.IsZero() {
			stamps[i] = o.Timestamp.Format(time.RFC3339)
		}
		for _, m := range solar.Metrics() {
			values[m][i] = strconv.FormatFloat(m.Value(o), 'g', -1, 64)
		}
	}

	cols := []series.Series{series.New(stamps, series.String, "Timestamp")}
	for _, m := range solar.Metrics() {
		cols = append(cols, series.New(values[m], series.String, m.String()))
	}
	df := dataframe.New(cols...)
	if df.Err != nil {
		return fmt.Errorf("build frame for %s: %w", path, df.Err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := df.WriteCSV(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
