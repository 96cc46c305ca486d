package analysis

import (
	"fmt"
	"strings"

	"github.com/shriya-methkupally/metro-2025-clusters/internal/metro"
)

// MetricRanking pairs the top and bottom metros of a group for one metric.
type MetricRanking struct {
	Metric string   `json:"metric"`
	Top    []Ranked `json:"top"`
	Bottom []Ranked `json:"bottom"`
}

// Report is the per-group statistics view.
type Report struct {
	Group        string          `json:"group"`
	Pillar       string          `json:"pillar"`
	Metros       int             `json:"metros"`
	Summaries    []Summary       `json:"summaries"`
	Rankings     []MetricRanking `json:"rankings"`
	Combinations []CategoryCount `json:"combinations"`
	Notes        []string        `json:"notes,omitempty"`
}

// GroupReport builds the statistics view for one group over a pillar's
// metrics with top/bottom lists of length n.
func (e *Engine) GroupReport(group, pillar string, n int) (*Report, error) {
	if err := e.checkGroup(group); err != nil {
		return nil, err
	}
	metrics, err := e.cat.Pillar(pillar)
	if err != nil {
		return nil, err
	}
	if pillar == "" {
		pillar = "all"
	}
	rep := &Report{Group: group, Pillar: strings.ToLower(pillar), Metros: len(e.table.InGroup(group))}
	rep.Summaries, err = e.GroupSummaries(group, metrics)
	if err != nil {
		return nil, err
	}
	for _, s := range rep.Summaries {
		top, err := e.Rank(group, s.Metric, n, Top)
		if err != nil {
			return nil, err
		}
		bottom, err := e.Rank(group, s.Metric, n, Bottom)
		if err != nil {
			return nil, err
		}
		rep.Rankings = append(rep.Rankings, MetricRanking{Metric: s.Metric, Top: top, Bottom: bottom})
	}
	rep.Combinations, err = e.Combinations(group)
	if err != nil {
		return nil, err
	}

	if rep.Metros == 0 {
		rep.Notes = append(rep.Notes, "no data for this selection: the group has no metros")
	}
	have := map[string]bool{}
	for _, s := range rep.Summaries {
		have[s.Metric] = true
	}
	for _, m := range metrics {
		if !have[m] && rep.Metros > 0 {
			rep.Notes = append(rep.Notes, fmt.Sprintf("%s: no values reported in this group", m))
		}
	}
	return rep, nil
}

// Markdown renders a compact report suitable for terminals or standalone docs.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[GROUP SUMMARY]\n")
	b.WriteString(fmt.Sprintf("Group: %s\n", r.Group))
	b.WriteString(fmt.Sprintf("Pillar: %s\n", r.Pillar))
	b.WriteString(fmt.Sprintf("Metros: %d\n", r.Metros))

	if len(r.Summaries) > 0 {
		b.WriteString("\n[METRICS]\n")
		for _, s := range r.Summaries {
			b.WriteString(fmt.Sprintf("- %s (n=%d): mean %s, min %s, max %s, range %s",
				s.Metric, s.Count, FormatNum(s.Mean), FormatNum(s.Min), FormatNum(s.Max), FormatNum(s.Range)))
			if !s.RateLike {
				b.WriteString(fmt.Sprintf("; sum %s, share %s", FormatValue(s.Sum), FormatShare(s.Share)))
			}
			b.WriteString("\n")
			b.WriteString(fmt.Sprintf("  • best: %s; worst: %s\n", safeVal(s.Best), safeVal(s.Worst)))
		}
	}
	if len(r.Rankings) > 0 {
		b.WriteString("\n[TOP AND BOTTOM]\n")
		for _, rk := range r.Rankings {
			b.WriteString(fmt.Sprintf("- %s\n", rk.Metric))
			b.WriteString("  • top: " + joinRanked(rk.Top) + "\n")
			b.WriteString("  • bottom: " + joinRanked(rk.Bottom) + "\n")
		}
	}
	if len(r.Combinations) > 0 {
		b.WriteString("\n[COMBINATIONS]\n")
		for _, c := range r.Combinations {
			b.WriteString(fmt.Sprintf("- %s: %d\n", safeVal(c.Value), c.Count))
		}
	}
	if len(r.Notes) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, n := range r.Notes {
			b.WriteString("- ")
			b.WriteString(n)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func joinRanked(rs []Ranked) string {
	parts := make([]string, len(rs))
	for i, r := range rs {
		parts[i] = fmt.Sprintf("%d. %s (%s)", r.Rank, safeVal(r.Title), FormatNum(r.Value))
	}
	return strings.Join(parts, ", ")
}

// FormatNum prints a metric value with two decimals.
func FormatNum(x float64) string { return fmt.Sprintf("%.2f", x) }

// FormatValue prints v, or an em dash when it is missing.
func FormatValue(v metro.Value) string {
	if !v.Valid {
		return "—"
	}
	return FormatNum(v.Num)
}

// FormatShare prints a percentage with one decimal, or "n/a".
func FormatShare(v metro.Value) string {
	if !v.Valid {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", v.Num)
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
