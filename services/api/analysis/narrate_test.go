package analysis

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/02loveslollipop/solar-potential-dashboard/services/api/solar"
)

func row(c solar.Country, mean, median, std float64) SummaryRow {
	return SummaryRow{
		Country: c,
		Metrics: []solar.Metric{solar.GHI},
		Stats:   map[solar.Metric]Stats{solar.GHI: {Mean: mean, Median: median, Std: std}},
	}
}

func TestRank(t *testing.T) {
	rows := []SummaryRow{
		row(solar.Benin, 240, 10, 330),
		row(solar.SierraLeone, 200, 0, 300),
		row(solar.Togo, 230, 5, 320),
	}
	h, err := Rank(rows, solar.GHI)
	require.NoError(t, err)
	assert.Equal(t, solar.Benin, h.HighestMean)
	assert.Equal(t, solar.SierraLeone, h.LowestMedian)
	assert.Equal(t, solar.Benin, h.HighestStd)
}

func TestRankTiesGoToFirstRow(t *testing.T) {
	rows := []SummaryRow{
		row(solar.Togo, 100, 50, 10),
		row(solar.Benin, 100, 50, 10),
	}
	h, err := Rank(rows, solar.GHI)
	require.NoError(t, err)
	assert.Equal(t, solar.Togo, h.HighestMean)
	assert.Equal(t, solar.Togo, h.LowestMedian)
	assert.Equal(t, solar.Togo, h.HighestStd)
}

func TestRankSkipsNaNStd(t *testing.T) {
	rows := []SummaryRow{
		row(solar.Benin, 100, 50, math.NaN()),
		row(solar.Togo, 90, 40, 12),
	}
	h, err := Rank(rows, solar.GHI)
	require.NoError(t, err)
	assert.Equal(t, solar.Togo, h.HighestStd)
}

func TestRankEmptyFails(t *testing.T) {
	_, err := Rank(nil, solar.GHI)
	assert.ErrorIs(t, err, solar.ErrEmptySummary)

	_, err = Narrate([]SummaryRow{}, solar.DNI)
	assert.ErrorIs(t, err, solar.ErrEmptySummary)
}

func TestRankAllStdUndefined(t *testing.T) {
	rows := []SummaryRow{row(solar.Benin, 1, 1, math.NaN())}
	_, err := Rank(rows, solar.GHI)
	assert.ErrorIs(t, err, solar.ErrUndefined)
}

func TestNarrate(t *testing.T) {
	rows := Summarize(solar.NewTable([]solar.Observation{
		{Country: solar.Benin, DHI: 10},
		{Country: solar.Benin, DHI: 30},
		{Country: solar.Togo, DHI: 5},
		{Country: solar.Togo, DHI: 6},
	}), []solar.Metric{solar.DHI})

	text, err := Narrate(rows, solar.DHI)
	require.NoError(t, err)

	parts := strings.Split(text, "\n\n")
	require.Len(t, parts, 3)
	assert.Equal(t, "Benin has the highest average DHI, indicating strong solar potential.", parts[0])
	assert.Equal(t, "Togo shows the lowest median DHI values, suggesting inconsistencies or lower availability.", parts[1])
	assert.Equal(t, "Benin has the highest variability in DHI, indicating unstable solar conditions.", parts[2])
	assert.NotContains(t, text, "20")
}
