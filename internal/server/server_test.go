package server_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shriya-methkupally/metro-2025-clusters/internal/analysis"
	"github.com/shriya-methkupally/metro-2025-clusters/internal/catalog"
	"github.com/shriya-methkupally/metro-2025-clusters/internal/metro"
	"github.com/shriya-methkupally/metro-2025-clusters/internal/observability"
	"github.com/shriya-methkupally/metro-2025-clusters/internal/server"
)

func testEngine(t *testing.T) *analysis.Engine {
	t.Helper()
	cat := catalog.Default()
	recs := []metro.Record{
		{Code: "1", Title: "Alpha", GroupCode: 1, Combination: "High talent", Values: map[string]metro.Value{
			"AI Job Postings": metro.Present(100), "AI Patents": metro.Present(10), "Firm AI Use": metro.Present(0.4),
		}},
		{Code: "2", Title: "Beta", GroupCode: 1, Values: map[string]metro.Value{
			"AI Patents": metro.Present(30),
		}},
		{Code: "3", Title: "Gamma", GroupCode: 6, Values: map[string]metro.Value{
			"AI Job Postings": metro.Present(300), "Firm AI Use": metro.Present(0.6),
		}},
	}
	for i := range recs {
		recs[i].Row = i
		recs[i].Group, _ = cat.GroupName(recs[i].GroupCode)
	}
	return analysis.New(metro.NewTable(recs, cat.All(), cat.Groups()), cat)
}

func newTestServer(t *testing.T) (*server.Server, *observability.Metrics, uuid.UUID) {
	t.Helper()
	m := observability.NewMetricsForTesting()
	id := uuid.New()
	srv := server.New(server.Config{
		Addr:       ":0",
		Engine:     testEngine(t),
		SnapshotID: id,
		Metrics:    m,
	})
	return srv, m, id
}

func get(t *testing.T, srv http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func TestHealthAndReady(t *testing.T) {
	srv, m, id := newTestServer(t)

	rec := get(t, srv, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, id.String(), rec.Header().Get("X-Snapshot-ID"))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("/healthz", "200")))

	rec = get(t, srv, "/readyz")
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	decode(t, rec, &body)
	assert.Equal(t, "ready", body["status"])
	assert.Equal(t, 3.0, body["metros"])
}

func TestReady_NoSnapshot(t *testing.T) {
	cat := catalog.Default()
	eng := analysis.New(metro.NewTable(nil, cat.All(), cat.Groups()), cat)
	srv := server.New(server.Config{Engine: eng})

	rec := get(t, srv, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGroups(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := get(t, srv, "/api/groups")
	require.Equal(t, http.StatusOK, rec.Code)
	var sizes []analysis.GroupSize
	decode(t, rec, &sizes)
	require.Len(t, sizes, catalog.NumGroups)
	assert.Equal(t, 2, sizes[1].Metros)
}

func TestGroupSummary(t *testing.T) {
	srv, m, _ := newTestServer(t)

	rec := get(t, srv, "/api/groups/AI%20Superstars/summary?pillar=talent")
	require.Equal(t, http.StatusOK, rec.Code)
	var ss []map[string]any
	decode(t, rec, &ss)
	require.Len(t, ss, 1)
	assert.Equal(t, "AI Job Postings", ss[0]["metric"])
	assert.Equal(t, 25.0, ss[0]["share"])

	rec = get(t, srv, "/api/groups/Unicorns/summary")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RejectedQueries.WithLabelValues("unknown_group")))

	rec = get(t, srv, "/api/groups/Others/summary?pillar=governance")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGroupReport(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := get(t, srv, "/api/groups/AI%20Superstars/report?pillar=innovation&n=1")
	require.Equal(t, http.StatusOK, rec.Code)
	var rep analysis.Report
	decode(t, rec, &rep)
	assert.Equal(t, 2, rep.Metros)
	require.NotEmpty(t, rep.Rankings)
	assert.Equal(t, "Beta", rep.Rankings[0].Top[0].Title)
}

func TestRank(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := get(t, srv, "/api/groups/AI%20Superstars/top?metric=AI%20Patents&n=1&order=bottom")
	require.Equal(t, http.StatusOK, rec.Code)
	var rs []analysis.Ranked
	decode(t, rec, &rs)
	require.Len(t, rs, 1)
	assert.Equal(t, "Alpha", rs[0].Title)

	rec = get(t, srv, "/api/groups/AI%20Superstars/top?metric=AI%20Patents&n=-1")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = get(t, srv, "/api/groups/AI%20Superstars/top?metric=Robots")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCombinations(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := get(t, srv, "/api/groups/AI%20Superstars/combinations")
	require.Equal(t, http.StatusOK, rec.Code)
	var cs []analysis.CategoryCount
	decode(t, rec, &cs)
	assert.ElementsMatch(t, []analysis.CategoryCount{{Value: "High talent", Count: 1}, {Value: "(none)", Count: 1}}, cs)
}

func TestSummary(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := get(t, srv, "/api/summary")
	require.Equal(t, http.StatusOK, rec.Code)
	var all []analysis.Summary
	decode(t, rec, &all)
	assert.NotEmpty(t, all)

	rec = get(t, srv, "/api/summary?group=Others&metric=Firm%20AI%20Use")
	require.Equal(t, http.StatusOK, rec.Code)
	var s map[string]any
	decode(t, rec, &s)
	assert.Equal(t, 0.6, s["mean"])
	assert.Nil(t, s["share"])

	rec = get(t, srv, "/api/summary?group=Star%20Hubs&metric=AI%20Patents")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	var e map[string]string
	decode(t, rec, &e)
	assert.Equal(t, "no data for this selection", e["error"])

	rec = get(t, srv, "/api/summary?group=Others")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTotals(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := get(t, srv, "/api/totals")
	require.Equal(t, http.StatusOK, rec.Code)
	var totals map[string]any
	decode(t, rec, &totals)
	assert.Equal(t, 400.0, totals["AI Job Postings"])
	assert.Nil(t, totals["AI Startups"])
	assert.NotContains(t, totals, "Firm AI Use")

	rec = get(t, srv, "/api/totals/AI%20Patents")
	require.Equal(t, http.StatusOK, rec.Code)
	var one map[string]any
	decode(t, rec, &one)
	assert.Equal(t, 40.0, one["total"])

	rec = get(t, srv, "/api/totals/Firm%20AI%20Use")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCompare(t *testing.T) {
	srv, m, _ := newTestServer(t)

	rec := get(t, srv, "/api/compare?group=AI%20Superstars&group=Others&metric=AI%20Job%20Postings")
	require.Equal(t, http.StatusOK, rec.Code)
	var c map[string]any
	decode(t, rec, &c)
	assert.Equal(t, analysis.MethodShareOfTotal, c["method"])
	assert.Equal(t, 100.0, c["value"])

	rec = get(t, srv, "/api/compare?group=AI%20Superstars&group=Others&metric=Firm%20AI%20Use")
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &c)
	assert.InDelta(t, 0.5, c["value"], 1e-9)

	rec = get(t, srv, "/api/compare?group=Others&pillar=adoption")
	require.Equal(t, http.StatusOK, rec.Code)
	var cs []analysis.Comparison
	decode(t, rec, &cs)
	assert.Len(t, cs, 3)

	rec = get(t, srv, "/api/compare?metric=AI%20Patents")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var e map[string]string
	decode(t, rec, &e)
	assert.Contains(t, e["error"], "no groups selected")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RejectedQueries.WithLabelValues("empty_selection")))
}

func TestMetro(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := get(t, srv, "/api/metros/gamma")
	require.Equal(t, http.StatusOK, rec.Code)
	var p analysis.Profile
	decode(t, rec, &p)
	assert.Equal(t, "3", p.Code)
	assert.Equal(t, "Others", p.Group)

	rec = get(t, srv, "/api/metros/2")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = get(t, srv, "/api/metros/Atlantis")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
