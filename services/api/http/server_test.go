package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/02loveslollipop/solar-potential-dashboard/services/api/config"
	"github.com/02loveslollipop/solar-potential-dashboard/services/api/loader"
	"github.com/02loveslollipop/solar-potential-dashboard/services/api/solar"
)

const (
	beninCSV = "Timestamp,GHI,DNI,DHI\n" +
		"2021-08-09 00:01,100,50,25\n" +
		"2021-08-09 00:02,150,75,30\n" +
		"2021-08-09 00:03,200,100,35\n" +
		"2021-08-09 00:04,300,150,40\n"
	sierraLeoneCSV = "Timestamp,GHI,DNI,DHI\n" +
		"2021-08-09 00:01,60,30,10\n" +
		"2021-08-09 00:02,90,45,15\n"
	togoCSV = "Timestamp,GHI,DNI,DHI\n" +
		"2021-08-09 00:01,80,40,20\n" +
		"2021-08-09 00:02,120,60,22\n"
)

type fixture struct {
	dir    string
	server *Server
}

func newFixture(t *testing.T, token string) *fixture {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"benin.csv":        beninCSV,
		"sierra_leone.csv": sierraLeoneCSV,
		"togo.csv":         togoCSV,
	}
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	sources := []loader.Source{
		{Country: solar.Benin, Location: filepath.Join(dir, "benin.csv")},
		{Country: solar.SierraLeone, Location: filepath.Join(dir, "sierra_leone.csv")},
		{Country: solar.Togo, Location: filepath.Join(dir, "togo.csv")},
	}
	cfg := config.Config{
		Port:           8080,
		BearerToken:    token,
		DefaultLimit:   3,
		Sources:        sources,
		RequestTimeout: 5 * time.Second,
	}
	return &fixture{dir: dir, server: New(cfg, loader.NewCache(loader.New(), sources))}
}

func (f *fixture) do(t *testing.T, method, target string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	f.server.Engine().ServeHTTP(rec, req)
	return rec
}

func (f *fixture) get(t *testing.T, target string) *httptest.ResponseRecorder {
	return f.do(t, http.MethodGet, target, nil)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func countryNames(t *testing.T, rows any) []string {
	t.Helper()
	list, ok := rows.([]any)
	require.True(t, ok)
	out := make([]string, 0, len(list))
	for _, r := range list {
		out = append(out, r.(map[string]any)["Country"].(string))
	}
	return out
}

func TestHealthz(t *testing.T) {
	f := newFixture(t, "")
	rec := f.get(t, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode(t, rec)["status"])
}

func TestRequestID(t *testing.T) {
	f := newFixture(t, "")

	rec := f.get(t, "/healthz")
	assert.Len(t, rec.Header().Get("X-Request-ID"), 36)

	rec = f.do(t, http.MethodGet, "/healthz", http.Header{"X-Request-Id": {"abc-123"}})
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestBearerAuth(t *testing.T) {
	f := newFixture(t, "secret")

	assert.Equal(t, http.StatusUnauthorized, f.get(t, "/api/v1/core/countries").Code)

	rec := f.do(t, http.MethodGet, "/api/v1/core/countries", http.Header{"Authorization": {"Bearer wrong"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/core/countries", http.Header{"Authorization": {"Bearer secret"}})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "v1", rec.Header().Get("X-API-Version"))
}

func TestCORSPreflight(t *testing.T) {
	f := newFixture(t, "secret")
	rec := f.do(t, http.MethodOptions, "/api/v1/dashboard", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCountriesAndMetrics(t *testing.T) {
	f := newFixture(t, "")

	body := decode(t, f.get(t, "/api/v1/core/countries"))
	assert.Equal(t, []any{"Benin", "Sierra Leone", "Togo"}, body["data"])

	body = decode(t, f.get(t, "/api/v1/core/metrics"))
	data := body["data"].([]any)
	require.Len(t, data, 3)
	assert.Equal(t, "GHI", data[0].(map[string]any)["name"])
	meta := body["meta"].(map[string]any)
	assert.Equal(t, "GHI", meta["default"])
	assert.Equal(t, map[string]any{"min": 75.0, "max": 250.0}, meta["range"])
	assert.Equal(t, map[string]any{"min": 50.0, "max": 300.0}, meta["bounds"])
}

func TestObservations(t *testing.T) {
	f := newFixture(t, "")

	rec := f.get(t, "/api/v1/core/observations")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	meta := body["meta"].(map[string]any)
	assert.Equal(t, 3.0, meta["count"])
	assert.Equal(t, 6.0, meta["total"])

	rec = f.get(t, "/api/v1/core/observations?countries=Benin&min=100&max=200&limit=10")
	require.Equal(t, http.StatusOK, rec.Code)
	body = decode(t, rec)
	assert.Equal(t, []string{"Benin", "Benin", "Benin"}, countryNames(t, body["data"]))
	first := body["data"].([]any)[0].(map[string]any)
	assert.Equal(t, 100.0, first["GHI"])
	assert.Equal(t, "2021-08-09T00:01:00Z", first["Timestamp"])
}

func TestObservationsBadParameters(t *testing.T) {
	f := newFixture(t, "")
	for _, target := range []string{
		"/api/v1/core/observations?limit=0",
		"/api/v1/core/observations?limit=ten",
		"/api/v1/core/observations?metric=UV",
		"/api/v1/core/observations?countries=Ghana",
		"/api/v1/core/observations?min=low",
		"/api/v1/core/observations?max=NaN",
		"/api/v1/core/observations?min=-Inf&max=Inf",
		"/api/v1/dashboard?min=-Inf",
		"/api/v1/dashboard?max=inf",
		"/api/v1/dashboard/markdown?max=Infinity",
	} {
		rec := f.get(t, target)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		assert.Contains(t, decode(t, rec), "error", target)
	}
}

func TestDashboard(t *testing.T) {
	f := newFixture(t, "")

	rec := f.get(t, "/api/v1/dashboard")
	require.Equal(t, http.StatusOK, rec.Code)
	data := decode(t, rec)["data"].(map[string]any)

	assert.Equal(t, 6.0, data["rows"])
	assert.Equal(t, []string{"Sierra Leone", "Togo", "Benin"}, countryNames(t, data["kpis"]))
	assert.Equal(t, []string{"Benin", "Togo", "Sierra Leone"}, countryNames(t, data["bars"]))

	summary := data["summary"].([]any)
	require.Len(t, summary, 3)
	sl := summary[1].(map[string]any)
	assert.Equal(t, "Sierra Leone", sl["Country"])
	assert.Nil(t, sl["GHI_Std"])

	h := data["highlights"].(map[string]any)
	assert.Equal(t, "Benin", h["highest_mean"])
	assert.Equal(t, "Sierra Leone", h["lowest_median"])
	assert.Equal(t, "Benin", h["highest_std"])
	assert.Len(t, data["observations"], 3)
}

func TestDashboardEmptySelection(t *testing.T) {
	f := newFixture(t, "")

	rec := f.get(t, "/api/v1/dashboard?countries=")
	require.Equal(t, http.StatusOK, rec.Code)
	data := decode(t, rec)["data"].(map[string]any)
	assert.Equal(t, 0.0, data["rows"])
	assert.NotContains(t, data, "highlights")

	rec = f.get(t, "/api/v1/dashboard?min=250&max=100")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0.0, decode(t, rec)["data"].(map[string]any)["rows"])
}

func TestDashboardCountriesParameterForms(t *testing.T) {
	f := newFixture(t, "")

	for _, q := range []string{"countries=Benin,Togo", "countries=Benin&countries=Togo", "countries=benin&countries=togo,Benin"} {
		rec := f.get(t, "/api/v1/dashboard/kpis?"+q)
		require.Equal(t, http.StatusOK, rec.Code, q)
		assert.Equal(t, []string{"Togo", "Benin"}, countryNames(t, decode(t, rec)["data"]), q)
	}
}

func TestDashboardMarkdown(t *testing.T) {
	f := newFixture(t, "")
	rec := f.get(t, "/api/v1/dashboard/markdown?metric=GHI")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/markdown; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "🌍 **Benin** has the highest average GHI")
}

func TestDashboardSummaryMetrics(t *testing.T) {
	f := newFixture(t, "")

	rec := f.get(t, "/api/v1/dashboard/summary?metric=GHI&metrics=GHI,DNI&metrics=DHI")
	require.Equal(t, http.StatusOK, rec.Code)
	rows := decode(t, rec)["data"].([]any)
	require.Len(t, rows, 3)
	benin := rows[0].(map[string]any)
	for _, key := range []string{"GHI_Mean", "GHI_Median", "GHI_Std", "DNI_Mean", "DHI_Std"} {
		assert.Contains(t, benin, key)
	}
	assert.InDelta(t, 150.0, benin["GHI_Mean"], 1e-9)
	assert.InDelta(t, 75.0, benin["DNI_Mean"], 1e-9)

	rec = f.get(t, "/api/v1/dashboard/summary?metrics=Temperature")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDashboardObservations(t *testing.T) {
	f := newFixture(t, "")

	rec := f.get(t, "/api/v1/dashboard/observations")
	require.Equal(t, http.StatusOK, rec.Code)
	data := decode(t, rec)["data"].(map[string]any)
	assert.Contains(t, data["text"], "Benin has the highest average GHI")

	rec = f.get(t, "/api/v1/dashboard/observations?countries=")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	// A single matching row leaves the std undefined.
	rec = f.get(t, "/api/v1/dashboard/observations?min=140&max=160")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCharts(t *testing.T) {
	f := newFixture(t, "")

	for _, path := range []string{"/api/v1/charts/boxplot.png", "/api/v1/charts/bars.png"} {
		rec := f.get(t, path+"?metric=DHI&min=0&max=100")
		require.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
		assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")), path)

		rec = f.get(t, path+"?countries=")
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, path)
	}
}

func TestKruskal(t *testing.T) {
	f := newFixture(t, "")

	rec := f.get(t, "/api/v1/stats/kruskal?min=0&max=1000")
	require.Equal(t, http.StatusOK, rec.Code)
	data := decode(t, rec)["data"].(map[string]any)
	assert.Greater(t, data["h"].(float64), 0.0)
	assert.Equal(t, 2.0, data["df"])

	rec = f.get(t, "/api/v1/stats/kruskal?countries=Benin")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestReload(t *testing.T) {
	f := newFixture(t, "")
	require.Equal(t, http.StatusOK, f.get(t, "/api/v1/dashboard").Code)

	extra := togoCSV + "2021-08-09 00:03,100,50,21\n"
	require.NoError(t, os.WriteFile(filepath.Join(f.dir, "togo.csv"), []byte(extra), 0o644))

	// Cached until reloaded.
	body := decode(t, f.get(t, "/api/v1/core/observations?min=0&max=1000"))
	assert.Equal(t, 8.0, body["meta"].(map[string]any)["total"])

	rec := f.do(t, http.MethodPost, "/api/v1/admin/reload", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 9.0, decode(t, rec)["data"].(map[string]any)["rows"])

	body = decode(t, f.get(t, "/api/v1/core/observations?min=0&max=1000"))
	assert.Equal(t, 9.0, body["meta"].(map[string]any)["total"])
}

func TestDataAccessFailureMapsToBadGateway(t *testing.T) {
	f := newFixture(t, "")
	require.NoError(t, os.Remove(filepath.Join(f.dir, "togo.csv")))

	rec := f.get(t, "/api/v1/dashboard")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, decode(t, rec)["error"], "Togo")
}
