package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/02loveslollipop/solar-potential-dashboard/services/api/solar"
)

var observationMarkers = [3]string{"🌍", "🌩️", "⚡"}

// Markdown renders the view as a standalone document.
func (v View) Markdown() string {
	var b strings.Builder
	m := v.State.Metric
	unit := m.Unit()

	b.WriteString("# Solar Potential Dashboard\n\n")
	fmt.Fprintf(&b, "**Countries:** %s  \n", joinCountries(v.State.Countries))
	fmt.Fprintf(&b, "**%s range:** %s to %s %s  \n", m, num(v.State.Min), num(v.State.Max), unit)
	fmt.Fprintf(&b, "**Rows:** %d\n\n", v.Rows)

	if v.Rows == 0 {
		b.WriteString("_No observations match the current filters._\n")
		return b.String()
	}

	fmt.Fprintf(&b, "## 📊 %s Distribution by Country\n\n", m)
	b.WriteString("| Country | N | Min | Q1 | Median | Q3 | Max | Outliers |\n")
	b.WriteString("|---|---:|---:|---:|---:|---:|---:|---:|\n")
	for _, box := range v.Boxes {
		fmt.Fprintf(&b, "| %s | %d | %s | %s | %s | %s | %s | %d |\n",
			box.Country, box.N, num(box.Min), num(box.Q1), num(box.Median), num(box.Q3), num(box.Max), box.Outliers)
	}

	fmt.Fprintf(&b, "\n## 📌 Average %s by Country\n\n", m)
	fmt.Fprintf(&b, "| Country | %s (%s) |\n|---|---:|\n", m, unit)
	for _, k := range v.KPIs {
		fmt.Fprintf(&b, "| %s | %s |\n", k.Country, num(k.Mean))
	}

	b.WriteString("\n## 📋 Summary Statistics\n\n")
	fmt.Fprintf(&b, "| Country | %[1]s_Mean | %[1]s_Median | %[1]s_Std |\n|---|---:|---:|---:|\n", m)
	for _, row := range v.Summary {
		s := row.Stats[m]
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", row.Country, num(s.Mean), num(s.Median), num(s.Std))
	}

	if v.Highlights != nil {
		b.WriteString("\n### 🔍 Key Observations\n\n")
		countries := []solar.Country{v.Highlights.HighestMean, v.Highlights.LowestMedian, v.Highlights.HighestStd}
		for i, sentence := range v.Observations {
			// Bold the leading country name.
			name := string(countries[i])
			fmt.Fprintf(&b, "%s **%s**%s\n\n", observationMarkers[i], name, strings.TrimPrefix(sentence, name))
		}
	}
	return b.String()
}

func joinCountries(cs []solar.Country) string {
	if len(cs) == 0 {
		return "none"
	}
	names := make([]string, len(cs))
	for i, c := range cs {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

func num(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", f)
}
