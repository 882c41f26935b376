package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/02loveslollipop/solar-potential-dashboard/services/api/analysis"
	"github.com/02loveslollipop/solar-potential-dashboard/services/api/render"
	"github.com/02loveslollipop/solar-potential-dashboard/services/api/solar"
)

func newReportCmd(load configLoader) *cobra.Command {
	var (
		countries   []string
		metricName  string
		minVal      float64
		maxVal      float64
		boxplotPath string
		barsPath    string
		kruskal     bool
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the dashboard for one set of filters as Markdown",
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := reportState(cmd, countries, metricName, minVal, maxVal)
			if err != nil {
				return err
			}

			cfg, err := load()
			if err != nil {
				return err
			}
			sources, err := cfg.Sources()
			if err != nil {
				return err
			}
			table, err := newLoader(cfg).Load(cmd.Context(), sources)
			if err != nil {
				return err
			}

			view, err := render.Render(table, state)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprint(out, view.Markdown())

			subset, _, err := render.Subset(table, view.State)
			if err != nil {
				return err
			}
			if boxplotPath != "" {
				if err := writeChart(boxplotPath, func() ([]byte, error) { return render.BoxplotPNG(subset, state.Metric) }); err != nil {
					return err
				}
				fmt.Fprintf(out, "\n![%s distribution](%s)\n", state.Metric, boxplotPath)
			}
			if barsPath != "" {
				if err := writeChart(barsPath, func() ([]byte, error) { return render.BarChartPNG(view.Bars, state.Metric) }); err != nil {
					return err
				}
				fmt.Fprintf(out, "\n![Average %s](%s)\n", state.Metric, barsPath)
			}
			if kruskal {
				writeKruskal(out, subset, state.Metric)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringSliceVar(&countries, "countries", nil, "countries to include (default all; pass --countries= for none)")
	f.StringVar(&metricName, "metric", solar.GHI.String(), "metric: GHI, DNI or DHI")
	f.Float64Var(&minVal, "min", render.DefaultMin, "lower bound of the metric range (W/m²)")
	f.Float64Var(&maxVal, "max", render.DefaultMax, "upper bound of the metric range (W/m²)")
	f.StringVar(&boxplotPath, "boxplot", "", "write the boxplot PNG to this file")
	f.StringVar(&barsPath, "bars", "", "write the bar chart PNG to this file")
	f.BoolVar(&kruskal, "kruskal", false, "append a Kruskal-Wallis comparison of the selected countries")
	return cmd
}

func reportState(cmd *cobra.Command, countries []string, metricName string, minVal, maxVal float64) (render.State, error) {
	s := render.DefaultState()
	if cmd.Flags().Changed("countries") {
		s.Countries = make([]solar.Country, 0, len(countries))
		for _, name := range countries {
			if name == "" {
				continue
			}
			c, err := solar.ParseCountry(name)
			if err != nil {
				return render.State{}, err
			}
			s.Countries = append(s.Countries, c)
		}
	}
	m, err := solar.ParseMetric(metricName)
	if err != nil {
		return render.State{}, err
	}
	s.Metric = m
	s.Min, s.Max = minVal, maxVal
	return s.Validate()
}

func writeChart(path string, draw func() ([]byte, error)) error {
	img, err := draw()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, img, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func writeKruskal(out io.Writer, subset *solar.Table, metric solar.Metric) {
	fmt.Fprintf(out, "\n## Kruskal-Wallis test (%s)\n\n", metric)
	res, err := analysis.KruskalWallis(subset, metric)
	if err != nil {
		fmt.Fprintf(out, "_Not computed: %v_\n", err)
		return
	}
	fmt.Fprintf(out, "| H | df | p-value | n |\n|---:|---:|---:|---:|\n")
	fmt.Fprintf(out, "| %.4f | %d | %.4g | %d |\n", res.H, res.DF, res.PValue, res.N)
}
