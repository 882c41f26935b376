package render

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/02loveslollipop/solar-potential-dashboard/services/api/analysis"
	"github.com/02loveslollipop/solar-potential-dashboard/services/api/solar"
)

// ErrNoData is returned when a chart would have nothing to draw.
var ErrNoData = errors.New("no data to plot")

// BoxplotPNG draws one box per country present in t, in first-appearance
// order.
func BoxplotPNG(t *solar.Table, metric solar.Metric) ([]byte, error) {
	groups := analysis.Values(t, metric)
	if len(groups) == 0 {
		return nil, fmt.Errorf("%w: %s boxplot", ErrNoData, metric)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s Distribution by Country", metric)
	p.Y.Label.Text = fmt.Sprintf("%s (%s)", metric, metric.Unit())
	p.X.Label.Text = "Country"

	names := make([]string, len(groups))
	for i, g := range groups {
		box, err := plotter.NewBoxPlot(vg.Points(40), float64(i), plotter.Values(g.Values))
		if err != nil {
			return nil, fmt.Errorf("boxplot %s: %w", g.Country, err)
		}
		box.FillColor = plotutil.Color(i)
		p.Add(box)
		names[i] = string(g.Country)
	}
	p.NominalX(names...)

	return encodePNG(p, 6*vg.Inch, 3*vg.Inch)
}

// BarChartPNG draws horizontal bars annotated with their value. bars is
// drawn top to bottom in the given order; NaN means are left out.
func BarChartPNG(bars []analysis.KPI, metric solar.Metric) ([]byte, error) {
	kept := make([]analysis.KPI, 0, len(bars))
	for _, b := range bars {
		if !math.IsNaN(b.Mean) {
			kept = append(kept, b)
		}
	}
	if len(kept) == 0 {
		return nil, fmt.Errorf("%w: %s bar chart", ErrNoData, metric)
	}

	// Nominal axes start at the bottom; reverse so the first bar is on top.
	n := len(kept)
	values := make(plotter.Values, n)
	names := make([]string, n)
	labels := plotter.XYLabels{XYs: make(plotter.XYs, n), Labels: make([]string, n)}
	for i, b := range kept {
		y := n - 1 - i
		values[y] = b.Mean
		names[y] = string(b.Country)
		labels.XYs[y] = plotter.XY{X: b.Mean, Y: float64(y)}
		labels.Labels[y] = fmt.Sprintf("%.2f", b.Mean)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Average %s by Country", metric)
	p.X.Label.Text = fmt.Sprintf("%s (%s)", metric, metric.Unit())

	chart, err := plotter.NewBarChart(values, vg.Points(24))
	if err != nil {
		return nil, fmt.Errorf("bar chart: %w", err)
	}
	chart.Horizontal = true
	chart.Color = color.RGBA{R: 70, G: 130, B: 180, A: 255}
	chart.LineStyle.Width = vg.Length(0)
	p.Add(chart)

	annotations, err := plotter.NewLabels(labels)
	if err != nil {
		return nil, fmt.Errorf("bar labels: %w", err)
	}
	annotations.Offset = vg.Point{X: vg.Points(4)}
	p.Add(annotations)
	p.NominalY(names...)
	// Leave room for the value labels past the longest bar.
	if p.X.Min > 0 {
		p.X.Min = 0
	}
	if p.X.Max > 0 {
		p.X.Max *= 1.15
	}

	return encodePNG(p, 8*vg.Inch, 4*vg.Inch)
}

func encodePNG(p *plot.Plot, w, h vg.Length) ([]byte, error) {
	wt, err := p.WriterTo(w, h, "png")
	if err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
