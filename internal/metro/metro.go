// Package metro defines the per-metro data model: records, the loaded table,
// missing-aware metric values, and cluster-code to group assignment.
package metro

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shriya-methkupally/metro-2025-clusters/internal/catalog"
)

// ErrUnmappedGroup marks a cluster code outside the declared group range.
var ErrUnmappedGroup = errors.New("unmapped group code")

// UnmappedGroupError reports the metro whose cluster code has no group.
type UnmappedGroupError struct {
	AreaCode string
	Code     string
}

func (e *UnmappedGroupError) Error() string {
	return fmt.Sprintf("metro %s: cluster code %s is outside 0-%d", e.AreaCode, e.Code, catalog.NumGroups-1)
}

func (e *UnmappedGroupError) Unwrap() error { return ErrUnmappedGroup }

// Value is a metric value that may be missing.
type Value struct {
	Num   float64
	Valid bool
}

// Present wraps x. NaN and ±Inf are stored as missing.
func Present(x float64) Value {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return Value{}
	}
	return Value{Num: x, Valid: true}
}

func Missing() Value { return Value{} }

// MarshalJSON encodes a missing value as null.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(v.Num)
}

// UnmarshalJSON accepts a number or null.
func (v *Value) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*v = Value{}
		return nil
	}
	var x float64
	if err := json.Unmarshal(b, &x); err != nil {
		return err
	}
	*v = Present(x)
	return nil
}

// Record is one metropolitan statistical area.
type Record struct {
	Code        string
	Title       string
	Row         int // position in the source metrics table
	GroupCode   int
	Group       string
	Combination string
	Values      map[string]Value
}

// Get returns the value of metric, missing when the record has none.
func (r *Record) Get(metric string) Value {
	if r.Values == nil {
		return Value{}
	}
	return r.Values[metric]
}

// Table is the loaded, read-only metro snapshot.
type Table struct {
	Records []Record
	// Metrics lists the metric columns carried by every record.
	Metrics []string
	groups  []string
}

// NewTable builds a Table. groups is the full group scheme in code order and
// decides the ordering of Groups().
func NewTable(records []Record, metrics []string, groups []string) *Table {
	return &Table{Records: records, Metrics: metrics, groups: groups}
}

func (t *Table) Len() int { return len(t.Records) }

// Groups returns the groups with at least one metro, in scheme order.
func (t *Table) Groups() []string {
	used := map[string]bool{}
	for i := range t.Records {
		used[t.Records[i].Group] = true
	}
	var out []string
	for _, g := range t.groups {
		if used[g] {
			out = append(out, g)
		}
	}
	return out
}

// InGroup returns the records of group g in source row order.
func (t *Table) InGroup(g string) []*Record {
	var out []*Record
	for i := range t.Records {
		if t.Records[i].Group == g {
			out = append(out, &t.Records[i])
		}
	}
	return out
}

// FindTitle looks a metro up by display title, ignoring case.
func (t *Table) FindTitle(title string) (*Record, bool) {
	title = strings.TrimSpace(title)
	for i := range t.Records {
		if strings.EqualFold(t.Records[i].Title, title) {
			return &t.Records[i], true
		}
	}
	return nil, false
}

// FindCode looks a metro up by area code.
func (t *Table) FindCode(code string) (*Record, bool) {
	code = strings.TrimSpace(code)
	for i := range t.Records {
		if t.Records[i].Code == code {
			return &t.Records[i], true
		}
	}
	return nil, false
}

// AssignGroup maps a raw cluster code to a group. A nil code takes the
// fallback group; a code outside the scheme is an *UnmappedGroupError.
func AssignGroup(areaCode string, raw *int, cat *catalog.Catalog) (int, string, error) {
	code := catalog.FallbackCode
	if raw != nil {
		code = *raw
	}
	name, ok := cat.GroupName(code)
	if !ok {
		return 0, "", &UnmappedGroupError{AreaCode: areaCode, Code: fmt.Sprint(code)}
	}
	return code, name, nil
}

// CheckPartition verifies that every record carries exactly one known group
// and that the per-group extensions cover the table without overlap.
func CheckPartition(t *Table, cat *catalog.Catalog) error {
	seen := 0
	for _, g := range cat.Groups() {
		seen += len(t.InGroup(g))
	}
	for i := range t.Records {
		r := &t.Records[i]
		name, ok := cat.GroupName(r.GroupCode)
		if !ok || name != r.Group {
			return fmt.Errorf("metro %s: group %q does not match code %d", r.Code, r.Group, r.GroupCode)
		}
	}
	if seen != t.Len() {
		return fmt.Errorf("groups cover %d of %d metros", seen, t.Len())
	}
	return nil
}
