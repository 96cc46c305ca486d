// Package render turns engine results into terminal tables, CSV, Markdown or
// JSON.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/shriya-methkupally/metro-2025-clusters/internal/analysis"
	"github.com/shriya-methkupally/metro-2025-clusters/internal/metro"
)

// Output formats.
const (
	FormatTable    = "table"
	FormatJSON     = "json"
	FormatCSV      = "csv"
	FormatMarkdown = "md"
)

// ParseFormat normalizes a --format value.
func ParseFormat(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "table":
		return FormatTable, nil
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unsupported format %q (use table|json|csv|md)", s)
	}
}

// Grid is a header plus string rows.
type Grid struct {
	Title  string
	Header []string
	Rows   [][]string
}

// Write renders g in a text format. JSON callers use WriteJSON with the
// underlying values instead.
func Write(w io.Writer, g Grid, format string) error {
	if len(g.Rows) == 0 {
		_, err := fmt.Fprintln(w, "(no data for this selection)")
		return err
	}
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	if g.Title != "" && format == FormatTable {
		t.SetTitle("%s", g.Title)
	}
	header := make(table.Row, len(g.Header))
	for i, h := range g.Header {
		header[i] = h
	}
	t.AppendHeader(header)
	for _, r := range g.Rows {
		row := make(table.Row, len(r))
		for i, v := range r {
			row[i] = v
		}
		t.AppendRow(row)
	}
	switch format {
	case FormatCSV:
		t.RenderCSV()
	case FormatMarkdown:
		if g.Title != "" {
			if _, err := fmt.Fprintf(w, "### %s\n\n", g.Title); err != nil {
				return err
			}
		}
		t.RenderMarkdown()
	default:
		t.Render()
	}
	return nil
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Summaries lays out summary records, one per row.
func Summaries(title string, ss []analysis.Summary) Grid {
	g := Grid{
		Title:  title,
		Header: []string{"Group", "Metric", "N", "Mean", "Min", "Max", "Range", "Best", "Worst", "Sum", "Share (%)"},
	}
	for _, s := range ss {
		g.Rows = append(g.Rows, []string{
			s.Group, s.Metric, fmt.Sprint(s.Count),
			analysis.FormatNum(s.Mean), analysis.FormatNum(s.Min), analysis.FormatNum(s.Max), analysis.FormatNum(s.Range),
			s.Best, s.Worst, sumCell(s), shareCell(s),
		})
	}
	return g
}

func sumCell(s analysis.Summary) string {
	if s.RateLike {
		return ""
	}
	return analysis.FormatValue(s.Sum)
}

func shareCell(s analysis.Summary) string {
	if s.RateLike {
		return ""
	}
	return analysis.FormatShare(s.Share)
}

// Rankings lays out top and bottom lists side by side.
func Rankings(title string, rs []analysis.MetricRanking) Grid {
	g := Grid{Title: title, Header: []string{"Metric", "Rank", "Top", "Value", "Bottom", "Value"}}
	for _, r := range rs {
		n := max(len(r.Top), len(r.Bottom))
		for i := 0; i < n; i++ {
			row := []string{r.Metric, fmt.Sprint(i + 1), "", "", "", ""}
			if i < len(r.Top) {
				row[2], row[3] = r.Top[i].Title, analysis.FormatNum(r.Top[i].Value)
			}
			if i < len(r.Bottom) {
				row[4], row[5] = r.Bottom[i].Title, analysis.FormatNum(r.Bottom[i].Value)
			}
			g.Rows = append(g.Rows, row)
		}
	}
	return g
}

// Ranked lays out one ranking.
func Ranked(title string, rs []analysis.Ranked) Grid {
	g := Grid{Title: title, Header: []string{"Rank", "Code", "Metro", "Value"}}
	for _, r := range rs {
		g.Rows = append(g.Rows, []string{fmt.Sprint(r.Rank), r.Code, r.Title, analysis.FormatNum(r.Value)})
	}
	return g
}

// Combinations lays out a combination-label distribution.
func Combinations(title string, cs []analysis.CategoryCount) Grid {
	g := Grid{Title: title, Header: []string{"Combination", "Metros"}}
	for _, c := range cs {
		g.Rows = append(g.Rows, []string{c.Value, fmt.Sprint(c.Count)})
	}
	return g
}

// Comparisons lays out one row per metric with a column per selected group
// and the combined figure last.
func Comparisons(title string, cs []analysis.Comparison) Grid {
	g := Grid{Title: title}
	if len(cs) == 0 {
		return g
	}
	g.Header = append([]string{"Metric", "Method"}, cs[0].Groups...)
	g.Header = append(g.Header, "Combined")
	for _, c := range cs {
		row := []string{c.Metric, c.Method}
		for _, pg := range c.PerGroup {
			row = append(row, comparisonCell(c, pg.Value))
		}
		row = append(row, comparisonCell(c, c.Value))
		g.Rows = append(g.Rows, row)
	}
	return g
}

func comparisonCell(c analysis.Comparison, v metro.Value) string {
	if c.RateLike {
		return analysis.FormatValue(v)
	}
	return analysis.FormatShare(v)
}

// Profile lays out a single-metro lookup.
func Profile(p analysis.Profile) Grid {
	g := Grid{
		Title:  fmt.Sprintf("%s — %s", p.Title, p.Group),
		Header: []string{"Metric", "Value", "Share (%)", "Group mean"},
	}
	for _, m := range p.Metrics {
		share := ""
		if !m.RateLike {
			share = analysis.FormatShare(m.Share)
		}
		g.Rows = append(g.Rows, []string{m.Metric, analysis.FormatValue(m.Value), share, analysis.FormatValue(m.GroupMean)})
	}
	return g
}

// Totals lays out global totals in metrics order.
func Totals(metrics []string, totals map[string]metro.Value) Grid {
	g := Grid{Title: "Global totals", Header: []string{"Metric", "Total"}}
	for _, m := range metrics {
		v, ok := totals[m]
		if !ok {
			continue
		}
		g.Rows = append(g.Rows, []string{m, analysis.FormatValue(v)})
	}
	return g
}

// GroupSizes lays out metro counts per group.
func GroupSizes(sizes []analysis.GroupSize) Grid {
	g := Grid{Title: "Groups", Header: []string{"Code", "Group", "Metros"}}
	for _, s := range sizes {
		g.Rows = append(g.Rows, []string{fmt.Sprint(s.Code), s.Group, fmt.Sprint(s.Metros)})
	}
	return g
}
