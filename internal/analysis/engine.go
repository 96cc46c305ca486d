// Package analysis is the aggregation engine: it derives global totals and
// per-(group, metric) summaries from a metro table and answers the read-only
// queries the views are built from.
package analysis

import (
	"errors"
	"fmt"

	"github.com/shriya-methkupally/metro-2025-clusters/internal/catalog"
	"github.com/shriya-methkupally/metro-2025-clusters/internal/metro"
)

var (
	ErrEmptySelection = errors.New("no groups selected")
	ErrUnknownGroup   = errors.New("unknown group")
	ErrUnknownMetric  = errors.New("unknown metric")
	ErrMetroNotFound  = errors.New("metro not found")
)

// Summary is the derived statistics row for one (group, metric) pair.
type Summary struct {
	Group    string  `json:"group"`
	Metric   string  `json:"metric"`
	RateLike bool    `json:"rate_like"`
	Count    int     `json:"count"`
	Mean     float64 `json:"mean"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Range    float64 `json:"range"`
	Best     string  `json:"best"`  // title of the metro holding Max
	Worst    string  `json:"worst"` // title of the metro holding Min
	// Sum and Share are only valid for count-like metrics; Share is also
	// invalid when the metric's global total is zero or missing.
	Sum   metro.Value `json:"sum"`
	Share metro.Value `json:"share"`
}

type pairKey struct{ group, metric string }

// Engine holds one snapshot and everything derived from it. It is never
// mutated after New returns and is safe for concurrent readers.
type Engine struct {
	table     *metro.Table
	cat       *catalog.Catalog
	totals    map[string]metro.Value
	summaries []Summary
	index     map[pairKey]int
}

// New computes global totals and the summary table for t.
func New(t *metro.Table, cat *catalog.Catalog) *Engine {
	e := &Engine{
		table:  t,
		cat:    cat,
		totals: globalTotals(t, cat),
		index:  map[pairKey]int{},
	}
	e.summaries = e.buildSummaries()
	for i, s := range e.summaries {
		e.index[pairKey{s.Group, s.Metric}] = i
	}
	return e
}

func (e *Engine) Table() *metro.Table        { return e.table }
func (e *Engine) Catalog() *catalog.Catalog { return e.cat }

// globalTotals sums present values of every count-like metric over the whole
// table. A metric with no present value anywhere has a missing total.
func globalTotals(t *metro.Table, cat *catalog.Catalog) map[string]metro.Value {
	out := map[string]metro.Value{}
	for _, m := range cat.All() {
		if cat.IsRate(m) {
			continue
		}
		var sum float64
		var n int
		for i := range t.Records {
			if v := t.Records[i].Get(m); v.Valid {
				sum += v.Num
				n++
			}
		}
		if n == 0 {
			out[m] = metro.Missing()
			continue
		}
		out[m] = metro.Present(sum)
	}
	return out
}

// Totals returns a copy of the global totals keyed by count-like metric.
func (e *Engine) Totals() map[string]metro.Value {
	out := make(map[string]metro.Value, len(e.totals))
	for k, v := range e.totals {
		out[k] = v
	}
	return out
}

// Total returns the global total of a count-like metric. ok is false for
// rate-like and unknown metrics.
func (e *Engine) Total(metric string) (metro.Value, bool) {
	v, ok := e.totals[metric]
	return v, ok
}

func (e *Engine) buildSummaries() []Summary {
	var out []Summary
	for _, g := range e.cat.Groups() {
		members := e.table.InGroup(g)
		if len(members) == 0 {
			continue
		}
		for _, m := range e.cat.All() {
			if s, ok := e.summarize(g, m, members); ok {
				out = append(out, s)
			}
		}
	}
	return out
}

// summarize reduces the present values of metric over members. Ties for min
// and max go to the earliest member.
func (e *Engine) summarize(group, metric string, members []*metro.Record) (Summary, bool) {
	s := Summary{Group: group, Metric: metric, RateLike: e.cat.IsRate(metric)}
	var sum float64
	for _, r := range members {
		v := r.Get(metric)
		if !v.Valid {
			continue
		}
		if s.Count == 0 || v.Num > s.Max {
			s.Max = v.Num
			s.Best = r.Title
		}
		if s.Count == 0 || v.Num < s.Min {
			s.Min = v.Num
			s.Worst = r.Title
		}
		sum += v.Num
		s.Count++
	}
	if s.Count == 0 {
		return Summary{}, false
	}
	s.Mean = sum / float64(s.Count)
	s.Range = s.Max - s.Min
	if !s.RateLike {
		s.Sum = metro.Present(sum)
		s.Share = shareOf(sum, e.totals[metric])
	}
	return s, true
}

// shareOf returns part as a percentage of total, not applicable when the
// total is missing or zero.
func shareOf(part float64, total metro.Value) metro.Value {
	if !total.Valid || total.Num == 0 {
		return metro.Missing()
	}
	return metro.Present(part / total.Num * 100)
}

// Summaries returns the summary table ordered by group code, then metric
// declaration order.
func (e *Engine) Summaries() []Summary {
	return append([]Summary(nil), e.summaries...)
}

// Summary returns the record for (group, metric); ok is false when the group
// has no present value for the metric.
func (e *Engine) Summary(group, metric string) (Summary, bool) {
	i, ok := e.index[pairKey{group, metric}]
	if !ok {
		return Summary{}, false
	}
	return e.summaries[i], true
}

// GroupSummaries returns the summaries of one group restricted to metrics.
func (e *Engine) GroupSummaries(group string, metrics []string) ([]Summary, error) {
	if err := e.checkGroup(group); err != nil {
		return nil, err
	}
	var out []Summary
	for _, m := range metrics {
		if s, ok := e.Summary(group, m); ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (e *Engine) checkGroup(group string) error {
	if _, ok := e.cat.GroupCode(group); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownGroup, group)
	}
	return nil
}

func (e *Engine) checkMetric(metric string) error {
	if !e.cat.IsTracked(metric) {
		return fmt.Errorf("%w: %q", ErrUnknownMetric, metric)
	}
	return nil
}

// GroupSizes returns the number of metros in each group, in group code order.
func (e *Engine) GroupSizes() []GroupSize {
	var out []GroupSize
	for _, g := range e.cat.Groups() {
		code, _ := e.cat.GroupCode(g)
		out = append(out, GroupSize{Code: code, Group: g, Metros: len(e.table.InGroup(g))})
	}
	return out
}

type GroupSize struct {
	Code   int    `json:"code"`
	Group  string `json:"group"`
	Metros int    `json:"metros"`
}
