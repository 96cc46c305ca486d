package render_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shriya-methkupally/metro-2025-clusters/internal/analysis"
	"github.com/shriya-methkupally/metro-2025-clusters/internal/metro"
	"github.com/shriya-methkupally/metro-2025-clusters/internal/render"
)

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]string{
		"":         render.FormatTable,
		"TABLE":    render.FormatTable,
		"json":     render.FormatJSON,
		"csv":      render.FormatCSV,
		"markdown": render.FormatMarkdown,
	} {
		got, err := render.ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := render.ParseFormat("xml")
	assert.Error(t, err)
}

func sampleSummaries() []analysis.Summary {
	return []analysis.Summary{
		{
			Group: "Star Hubs", Metric: "AI Patents", Count: 2,
			Mean: 15, Min: 10, Max: 20, Range: 10, Best: "B", Worst: "A",
			Sum: metro.Present(30), Share: metro.Present(37.5),
		},
		{
			Group: "Star Hubs", Metric: "Firm AI Use", RateLike: true, Count: 2,
			Mean: 0.4, Min: 0.3, Max: 0.5, Range: 0.2, Best: "B", Worst: "A",
		},
	}
}

func TestWrite_Table(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, render.Write(&buf, render.Summaries("Summary statistics", sampleSummaries()), render.FormatTable))
	out := buf.String()
	assert.Contains(t, out, "Summary statistics")
	assert.Contains(t, out, "AI Patents")
	assert.Contains(t, out, "37.5%")
	assert.Contains(t, out, "15.00")
}

func TestWrite_CSVAndMarkdown(t *testing.T) {
	g := render.Summaries("Summary statistics", sampleSummaries())

	var csv bytes.Buffer
	require.NoError(t, render.Write(&csv, g, render.FormatCSV))
	lines := strings.Split(strings.TrimSpace(csv.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "Group,Metric,N"))
	assert.NotContains(t, csv.String(), "Summary statistics")

	var md bytes.Buffer
	require.NoError(t, render.Write(&md, g, render.FormatMarkdown))
	assert.True(t, strings.HasPrefix(md.String(), "### Summary statistics"))
	assert.Contains(t, md.String(), "| Star Hubs |")
}

func TestWrite_NoRows(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, render.Write(&buf, render.Ranked("Top", nil), render.FormatTable))
	assert.Equal(t, "(no data for this selection)\n", buf.String())
}

func TestComparisons_Cells(t *testing.T) {
	cs := []analysis.Comparison{
		{
			Metric: "AI Patents", Groups: []string{"A", "B"}, Method: analysis.MethodShareOfTotal,
			Value:    metro.Present(40),
			PerGroup: []analysis.GroupValue{{Group: "A", Value: metro.Present(25)}, {Group: "B", Value: metro.Present(15)}},
		},
		{
			Metric: "Firm AI Use", Groups: []string{"A", "B"}, RateLike: true, Method: analysis.MethodMeanOfMeans,
			Value:    metro.Present(0.5),
			PerGroup: []analysis.GroupValue{{Group: "A"}, {Group: "B", Value: metro.Present(0.5)}},
		},
	}
	g := render.Comparisons("cmp", cs)
	assert.Equal(t, []string{"Metric", "Method", "A", "B", "Combined"}, g.Header)
	assert.Equal(t, []string{"AI Patents", analysis.MethodShareOfTotal, "25.0%", "15.0%", "40.0%"}, g.Rows[0])
	assert.Equal(t, []string{"Firm AI Use", analysis.MethodMeanOfMeans, "—", "0.50", "0.50"}, g.Rows[1])
}

func TestTotals_SkipsRateLike(t *testing.T) {
	g := render.Totals(
		[]string{"AI Patents", "Firm AI Use", "AI Startups"},
		map[string]metro.Value{"AI Patents": metro.Present(30), "AI Startups": metro.Missing()},
	)
	require.Len(t, g.Rows, 2)
	assert.Equal(t, []string{"AI Patents", "30.00"}, g.Rows[0])
	assert.Equal(t, []string{"AI Startups", "—"}, g.Rows[1])
}

func TestWriteJSON_MissingIsNull(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, render.WriteJSON(&buf, sampleSummaries()[1]))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Nil(t, got["sum"])
	assert.Nil(t, got["share"])
	assert.Equal(t, true, got["rate_like"])
}
