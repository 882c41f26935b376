package cmd

import (
	"bytes"
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/02loveslollipop/solar-potential-dashboard/services/api/loader"
	"github.com/02loveslollipop/solar-potential-dashboard/services/api/solar"
)

// writeSources creates three small datasets and a manifest for them, and
// points SOLAR_SOURCES_FILE at it.
func writeSources(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[solar.Country]string{
		solar.Benin:       "Timestamp,GHI,DNI,DHI\n2021-08-09 00:01,100,50,25\n2021-08-09 00:02,150,,30\n2021-08-09 00:03,200,100,35\n",
		solar.SierraLeone: "Timestamp,GHI,DNI,DHI\n2021-08-09 00:01,60,30,10\n2021-08-09 00:02,90,45,15\n",
		solar.Togo:        "GHI,DNI,DHI\n80,40,20\n120,60,22\n",
	}
	var sources []loader.Source
	for _, c := range solar.Countries() {
		path := filepath.Join(dir, c.Slug()+"_raw.csv")
		require.NoError(t, os.WriteFile(path, []byte(files[c]), 0o644))
		sources = append(sources, loader.Source{Country: c, Location: path})
	}
	manifest := filepath.Join(dir, "raw.yaml")
	require.NoError(t, loader.WriteManifest(manifest, sources))
	t.Setenv("SOLAR_SOURCES_FILE", manifest)
	return manifest
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestFetchWritesNormalizedCopies(t *testing.T) {
	writeSources(t)
	outDir := filepath.Join(t.TempDir(), "mirror")

	out, err := run(t, "fetch", "--output-dir", outDir)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote 3 sources")

	for _, name := range []string{"benin.csv", "sierra_leone.csv", "togo.csv", "sources.yaml"} {
		assert.FileExists(t, filepath.Join(outDir, name))
	}

	sources, err := loader.ReadManifest(filepath.Join(outDir, "sources.yaml"))
	require.NoError(t, err)
	require.Len(t, sources, 3)
	assert.True(t, filepath.IsAbs(sources[0].Location))

	table, err := loader.New().Load(context.Background(), sources)
	require.NoError(t, err)
	require.Equal(t, 7, table.Len())
	first := table.At(0)
	assert.Equal(t, solar.Benin, first.Country)
	assert.Equal(t, 100.0, first.GHI)
	assert.False(t, first.Timestamp.IsZero())
	assert.True(t, math.IsNaN(table.At(1).DNI))
	assert.True(t, table.At(5).Timestamp.IsZero(), "rows without a timestamp stay without one")
}

func TestFetchKeepsFullPrecision(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "benin_raw.csv")
	require.NoError(t, os.WriteFile(path, []byte("GHI,DNI,DHI\n123.456789012345,0.1234567,1e-9\n"), 0o644))
	manifest := filepath.Join(dir, "raw.yaml")
	require.NoError(t, loader.WriteManifest(manifest, []loader.Source{{Country: solar.Benin, Location: path}}))
	t.Setenv("SOLAR_SOURCES_FILE", manifest)
	outDir := filepath.Join(dir, "mirror")

	_, err := run(t, "fetch", "--output-dir", outDir)
	require.NoError(t, err)

	raw, err := os.ReadFile(filepath.Join(outDir, "benin.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "123.456789012345,0.1234567,1e-09")

	sources, err := loader.ReadManifest(filepath.Join(outDir, "sources.yaml"))
	require.NoError(t, err)
	table, err := loader.New().Load(context.Background(), sources)
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())
	assert.Equal(t, 123.456789012345, table.At(0).GHI)
	assert.Equal(t, 0.1234567, table.At(0).DNI)
	assert.Equal(t, 1e-9, table.At(0).DHI)
}

func TestFetchDryRunWritesNothing(t *testing.T) {
	writeSources(t)
	outDir := filepath.Join(t.TempDir(), "mirror")

	_, err := run(t, "fetch", "--output-dir", outDir, "--dry-run")
	require.NoError(t, err)
	assert.NoDirExists(t, outDir)
}

func TestFetchFailsOnUnreachableSource(t *testing.T) {
	t.Setenv("SOLAR_SOURCES_FILE", "")
	t.Setenv("SOLAR_BENIN_URL", filepath.Join(t.TempDir(), "missing.csv"))

	_, err := run(t, "fetch", "--output-dir", t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.Is(err, solar.ErrDataAccess))
}

func TestReport(t *testing.T) {
	writeSources(t)
	charts := t.TempDir()
	boxplot := filepath.Join(charts, "box.png")
	bars := filepath.Join(charts, "bars.png")

	out, err := run(t, "report", "--boxplot", boxplot, "--bars", bars, "--kruskal")
	require.NoError(t, err)

	assert.Contains(t, out, "# Solar Potential Dashboard")
	assert.Contains(t, out, "**Rows:** 6")
	assert.Contains(t, out, "🌍 **Benin** has the highest average GHI")
	assert.Contains(t, out, "## Kruskal-Wallis test (GHI)")
	assert.Contains(t, out, "| H | df | p-value | n |")

	for _, path := range []string{boxplot, bars} {
		img, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(img, []byte("\x89PNG")))
	}
}

func TestReportFilters(t *testing.T) {
	writeSources(t)

	out, err := run(t, "report", "--countries", "togo,Sierra Leone", "--metric", "dni", "--min", "0", "--max", "100")
	require.NoError(t, err)
	assert.Contains(t, out, "**Countries:** Togo, Sierra Leone")
	assert.Contains(t, out, "Average DNI by Country")
	assert.NotContains(t, out, "| Benin |")

	out, err = run(t, "report", "--countries=", "--kruskal")
	require.NoError(t, err)
	assert.Contains(t, out, "No observations match")
	assert.Contains(t, out, "_Not computed:")
}

func TestReportRejectsBadFlags(t *testing.T) {
	writeSources(t)

	_, err := run(t, "report", "--metric", "UV")
	assert.True(t, errors.Is(err, solar.ErrSchema))

	_, err = run(t, "report", "--countries", "Ghana")
	assert.True(t, errors.Is(err, solar.ErrSchema))
}
