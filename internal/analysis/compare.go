package analysis

import (
	"github.com/shriya-methkupally/metro-2025-clusters/internal/metro"
)

// Comparison methods.
const (
	MethodShareOfTotal = "share_of_total"
	MethodMeanOfMeans  = "mean_of_means"
)

// GroupValue is one group's contribution to a Comparison: its share of the
// global total for count-like metrics, its mean for rate-like ones.
type GroupValue struct {
	Group string      `json:"group"`
	Value metro.Value `json:"value"`
}

// Comparison is the single figure for a metric over a set of groups.
type Comparison struct {
	Metric   string       `json:"metric"`
	Groups   []string     `json:"groups"`
	RateLike bool         `json:"rate_like"`
	Method   string       `json:"method"`
	Value    metro.Value  `json:"value"`
	PerGroup []GroupValue `json:"per_group"`
}

// Compare reduces metric over the selected groups. Count-like metrics give
// the union's sum as a percentage of the global total; rate-like metrics
// give the unweighted mean of the per-group means. Duplicate group names are
// ignored and an empty selection is rejected.
func (e *Engine) Compare(groups []string, metric string) (Comparison, error) {
	sel, err := e.selection(groups)
	if err != nil {
		return Comparison{}, err
	}
	if err := e.checkMetric(metric); err != nil {
		return Comparison{}, err
	}
	c := Comparison{Metric: metric, Groups: sel, RateLike: e.cat.IsRate(metric)}
	if c.RateLike {
		c.Method = MethodMeanOfMeans
		var sum float64
		var n int
		for _, g := range sel {
			s, ok := e.Summary(g, metric)
			if !ok {
				c.PerGroup = append(c.PerGroup, GroupValue{Group: g})
				continue
			}
			c.PerGroup = append(c.PerGroup, GroupValue{Group: g, Value: metro.Present(s.Mean)})
			sum += s.Mean
			n++
		}
		if n > 0 {
			c.Value = metro.Present(sum / float64(n))
		}
		return c, nil
	}

	c.Method = MethodShareOfTotal
	total := e.totals[metric]
	var sum float64
	var n int
	for _, g := range sel {
		var gsum float64
		var gn int
		for _, r := range e.table.InGroup(g) {
			if v := r.Get(metric); v.Valid {
				gsum += v.Num
				gn++
			}
		}
		gv := GroupValue{Group: g}
		if gn > 0 {
			gv.Value = shareOf(gsum, total)
		}
		c.PerGroup = append(c.PerGroup, gv)
		sum += gsum
		n += gn
	}
	if n > 0 {
		c.Value = shareOf(sum, total)
	}
	return c, nil
}

// CompareTable runs Compare for every metric of a pillar.
func (e *Engine) CompareTable(groups []string, pillar string) ([]Comparison, error) {
	metrics, err := e.cat.Pillar(pillar)
	if err != nil {
		return nil, err
	}
	if _, err := e.selection(groups); err != nil {
		return nil, err
	}
	out := make([]Comparison, 0, len(metrics))
	for _, m := range metrics {
		c, err := e.Compare(groups, m)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (e *Engine) selection(groups []string) ([]string, error) {
	if len(groups) == 0 {
		return nil, ErrEmptySelection
	}
	seen := map[string]bool{}
	var sel []string
	for _, g := range groups {
		if err := e.checkGroup(g); err != nil {
			return nil, err
		}
		if seen[g] {
			continue
		}
		seen[g] = true
		sel = append(sel, g)
	}
	return sel, nil
}
