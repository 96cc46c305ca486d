package analysis

import (
	"fmt"
	"sort"

	"github.com/shriya-methkupally/metro-2025-clusters/internal/metro"
)

// MetricValue is one row of a single-metro profile.
type MetricValue struct {
	Metric    string      `json:"metric"`
	RateLike  bool        `json:"rate_like"`
	Value     metro.Value `json:"value"`
	Share     metro.Value `json:"share"` // count-like only
	GroupMean metro.Value `json:"group_mean"`
}

// Profile is the single-metro lookup view.
type Profile struct {
	Code        string        `json:"code"`
	Title       string        `json:"title"`
	Group       string        `json:"group"`
	Combination string        `json:"combination"`
	Metrics     []MetricValue `json:"metrics"`
}

// Lookup finds a metro by title or area code and reports every tracked
// metric with its share of the global total where the metric is count-like.
func (e *Engine) Lookup(id string) (Profile, error) {
	r, ok := e.table.FindTitle(id)
	if !ok {
		r, ok = e.table.FindCode(id)
	}
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q", ErrMetroNotFound, id)
	}
	p := Profile{Code: r.Code, Title: r.Title, Group: r.Group, Combination: r.Combination}
	for _, m := range e.cat.All() {
		mv := MetricValue{Metric: m, RateLike: e.cat.IsRate(m), Value: r.Get(m)}
		if !mv.RateLike && mv.Value.Valid {
			mv.Share = shareOf(mv.Value.Num, e.totals[m])
		}
		if s, ok := e.Summary(r.Group, m); ok {
			mv.GroupMean = metro.Present(s.Mean)
		}
		p.Metrics = append(p.Metrics, mv)
	}
	return p, nil
}

// Order selects the direction of a ranking.
type Order int

const (
	Top Order = iota
	Bottom
)

// ParseOrder accepts "top" and "bottom".
func ParseOrder(s string) (Order, error) {
	switch s {
	case "", "top":
		return Top, nil
	case "bottom":
		return Bottom, nil
	default:
		return Top, fmt.Errorf("unknown order %q (use top|bottom)", s)
	}
}

// Ranked is one entry of a top/bottom list.
type Ranked struct {
	Rank  int     `json:"rank"`
	Code  string  `json:"code"`
	Title string  `json:"title"`
	Value float64 `json:"value"`
}

// Rank orders the group's metros with a present value for metric. Equal
// values keep source row order. n <= 0 returns every ranked metro.
func (e *Engine) Rank(group, metric string, n int, order Order) ([]Ranked, error) {
	if err := e.checkGroup(group); err != nil {
		return nil, err
	}
	if err := e.checkMetric(metric); err != nil {
		return nil, err
	}
	var out []Ranked
	for _, r := range e.table.InGroup(group) {
		if v := r.Get(metric); v.Valid {
			out = append(out, Ranked{Code: r.Code, Title: r.Title, Value: v.Num})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if order == Bottom {
			return out[i].Value < out[j].Value
		}
		return out[i].Value > out[j].Value
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	for i := range out {
		out[i].Rank = i + 1
	}
	return out, nil
}

// CategoryCount is one combination label and how many metros carry it.
type CategoryCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Combinations returns the distribution of combination labels in a group.
func (e *Engine) Combinations(group string) ([]CategoryCount, error) {
	if err := e.checkGroup(group); err != nil {
		return nil, err
	}
	counts := map[string]int{}
	for _, r := range e.table.InGroup(group) {
		label := r.Combination
		if label == "" {
			label = "(none)"
		}
		counts[label]++
	}
	tops := make([]CategoryCount, 0, len(counts))
	for k, v := range counts {
		tops = append(tops, CategoryCount{Value: k, Count: v})
	}
	sort.Slice(tops, func(i, j int) bool {
		if tops[i].Count == tops[j].Count {
			return tops[i].Value < tops[j].Value
		}
		return tops[i].Count > tops[j].Count
	})
	return tops, nil
}
