// Package loader reads the metro metrics table and the cluster assignment
// table, joins them on area code and produces a metro.Table.
package loader

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/shriya-methkupally/metro-2025-clusters/internal/catalog"
	"github.com/shriya-methkupally/metro-2025-clusters/internal/metro"
)

// Options controls which files and columns the loader reads.
type Options struct {
	MetricsPath  string
	ClustersPath string
	// Sheet applies to .xlsx inputs; empty selects the first sheet.
	Sheet             string
	KeyColumn         string
	TitleColumn       string
	GroupColumn       string
	CombinationColumn string
}

// DefaultOptions returns the column names used by the published dataset.
func DefaultOptions() Options {
	return Options{
		KeyColumn:         "CBSA Code",
		TitleColumn:       "CBSA Title",
		GroupColumn:       "Cluster",
		CombinationColumn: "Combination",
	}
}

// Report describes what the loader did besides producing the table.
type Report struct {
	Rows      int
	Coerced   int // non-empty metric cells that were not numeric
	Unmatched int // metros with no row in the cluster table
	Warnings  []string
}

type assignment struct {
	code        *int
	bad         string
	combination string
}

// Load reads both tables and left-joins clusters onto metrics. Cluster codes
// outside the group scheme fail the load with every fault joined into the
// returned error; unparseable metric values become missing.
func Load(opt Options, cat *catalog.Catalog) (*metro.Table, *Report, error) {
	def := DefaultOptions()
	if opt.KeyColumn == "" {
		opt.KeyColumn = def.KeyColumn
	}
	if opt.TitleColumn == "" {
		opt.TitleColumn = def.TitleColumn
	}
	if opt.GroupColumn == "" {
		opt.GroupColumn = def.GroupColumn
	}
	if opt.CombinationColumn == "" {
		opt.CombinationColumn = def.CombinationColumn
	}
	if opt.MetricsPath == "" || opt.ClustersPath == "" {
		return nil, nil, errors.New("both a metrics file and a clusters file are required")
	}

	rep := &Report{}
	clusters, err := readClusters(opt, rep)
	if err != nil {
		return nil, nil, err
	}

	rows, err := ReadRows(opt.MetricsPath, opt.Sheet)
	if err != nil {
		return nil, nil, err
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("%s: empty metrics table", filepath.Base(opt.MetricsPath))
	}
	header := indexHeader(rows[0])
	keyIdx, ok := header.lookup(opt.KeyColumn)
	if !ok {
		return nil, nil, fmt.Errorf("%s: missing column %q", filepath.Base(opt.MetricsPath), opt.KeyColumn)
	}
	titleIdx, ok := header.lookup(opt.TitleColumn)
	if !ok {
		return nil, nil, fmt.Errorf("%s: missing column %q", filepath.Base(opt.MetricsPath), opt.TitleColumn)
	}

	metrics := cat.All()
	metricIdx := make(map[string]int, len(metrics))
	for _, m := range metrics {
		idx, ok := header.lookup(m)
		if !ok {
			rep.Warnings = append(rep.Warnings, fmt.Sprintf("metric %q has no column in %s; all values missing", m, filepath.Base(opt.MetricsPath)))
			continue
		}
		metricIdx[m] = idx
	}

	var (
		records []metro.Record
		faults  []error
		seen    = map[string]bool{}
	)
	for i, row := range rows[1:] {
		code := strings.TrimSpace(cell(row, keyIdx))
		if code == "" && strings.TrimSpace(cell(row, titleIdx)) == "" {
			continue
		}
		rep.Rows++
		key := normalizeKey(code)
		if seen[key] {
			rep.Warnings = append(rep.Warnings, fmt.Sprintf("duplicate metro code %s at row %d", code, i+2))
		}
		seen[key] = true

		rec := metro.Record{
			Code:   code,
			Title:  strings.TrimSpace(cell(row, titleIdx)),
			Row:    i,
			Values: make(map[string]metro.Value, len(metrics)),
		}
		for _, m := range metrics {
			idx, ok := metricIdx[m]
			if !ok {
				rec.Values[m] = metro.Missing()
				continue
			}
			raw := cell(row, idx)
			if x, ok := parseNumeric(raw); ok {
				rec.Values[m] = metro.Present(x)
				continue
			}
			if !missingTokens[strings.ToLower(strings.TrimSpace(raw))] {
				rep.Coerced++
			}
			rec.Values[m] = metro.Missing()
		}

		a, matched := clusters[key]
		if !matched {
			rep.Unmatched++
		}
		if a.bad != "" {
			faults = append(faults, &metro.UnmappedGroupError{AreaCode: code, Code: a.bad})
			continue
		}
		gcode, gname, err := metro.AssignGroup(code, a.code, cat)
		if err != nil {
			faults = append(faults, err)
			continue
		}
		rec.GroupCode = gcode
		rec.Group = gname
		rec.Combination = a.combination
		records = append(records, rec)
	}
	if len(faults) > 0 {
		return nil, rep, fmt.Errorf("%d metro(s) with invalid cluster codes: %w", len(faults), errors.Join(faults...))
	}
	if rep.Coerced > 0 {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("%d non-numeric metric values treated as missing", rep.Coerced))
	}
	if rep.Unmatched > 0 {
		fallback, _ := cat.GroupName(catalog.FallbackCode)
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("%d metros not in cluster table; assigned to %s", rep.Unmatched, fallback))
	}
	return metro.NewTable(records, metrics, cat.Groups()), rep, nil
}

func readClusters(opt Options, rep *Report) (map[string]assignment, error) {
	rows, err := ReadRows(opt.ClustersPath, opt.Sheet)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: empty cluster table", filepath.Base(opt.ClustersPath))
	}
	header := indexHeader(rows[0])
	keyIdx, ok := header.lookup(opt.KeyColumn)
	if !ok {
		return nil, fmt.Errorf("%s: missing column %q", filepath.Base(opt.ClustersPath), opt.KeyColumn)
	}
	groupIdx, ok := header.lookup(opt.GroupColumn)
	if !ok {
		return nil, fmt.Errorf("%s: missing column %q", filepath.Base(opt.ClustersPath), opt.GroupColumn)
	}
	comboIdx, hasCombo := header.lookup(opt.CombinationColumn)

	out := make(map[string]assignment, len(rows)-1)
	for i, row := range rows[1:] {
		key := normalizeKey(cell(row, keyIdx))
		if key == "" {
			continue
		}
		if _, dup := out[key]; dup {
			rep.Warnings = append(rep.Warnings, fmt.Sprintf("duplicate cluster row for %s at row %d ignored", key, i+2))
			continue
		}
		code, bad := parseCode(cell(row, groupIdx))
		a := assignment{code: code, bad: bad}
		if hasCombo {
			a.combination = strings.TrimSpace(cell(row, comboIdx))
		}
		out[key] = a
	}
	return out, nil
}

type headerIndex map[string]int

func indexHeader(row []string) headerIndex {
	h := headerIndex{}
	for i, name := range row {
		full := strings.ToLower(strings.TrimSpace(name))
		if _, ok := h[full]; !ok {
			h[full] = i
		}
		clean, unit := splitUnits(name)
		if unit != "" {
			base := strings.ToLower(clean)
			if _, ok := h[base]; !ok {
				h[base] = i
			}
		}
	}
	return h
}

func (h headerIndex) lookup(name string) (int, bool) {
	idx, ok := h[strings.ToLower(strings.TrimSpace(name))]
	return idx, ok
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
