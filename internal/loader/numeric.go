package loader

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var missingTokens = map[string]bool{
	"":     true,
	"-":    true,
	"--":   true,
	"na":   true,
	"n/a":  true,
	"nan":  true,
	"null": true,
	"none": true,
	"#n/a": true,
}

// parseNumeric coerces a metric cell. ok is false for anything that is not a
// finite number; callers treat that as missing.
func parseNumeric(s string) (float64, bool) {
	raw := strings.TrimSpace(s)
	raw = strings.ReplaceAll(raw, "\u00A0", " ")
	if missingTokens[strings.ToLower(raw)] {
		return 0, false
	}
	raw = strings.TrimPrefix(raw, "$")
	raw = strings.TrimSuffix(raw, "%")
	raw = strings.ReplaceAll(raw, ",", "")
	raw = strings.ReplaceAll(raw, " ", "")
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// parseCode reads a cluster code cell. A nil code means missing; bad is the
// original text when the cell is numeric but not an integer.
func parseCode(s string) (code *int, bad string) {
	f, ok := parseNumeric(s)
	if !ok {
		return nil, ""
	}
	if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return nil, strings.TrimSpace(s)
	}
	n := int(f)
	return &n, ""
}

// normalizeKey makes area codes from CSV ("12060") and spreadsheets
// ("12060.0") compare equal.
func normalizeKey(s string) string {
	k := strings.TrimSpace(s)
	if f, err := strconv.ParseFloat(k, 64); err == nil && f == math.Trunc(f) && !strings.ContainsAny(k, "eE") {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return k
}

var unitPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(.*)\s*\(([^)]+)\)\s*$`),  // e.g., Firm AI Use (%)
	regexp.MustCompile(`^(.*)\s*\[([^\]]+)\]\s*$`), // e.g., AI VC Funding [$M]
}

// splitUnits strips a trailing unit annotation from a column header.
func splitUnits(name string) (clean string, unit string) {
	s := strings.TrimSpace(name)
	for _, re := range unitPatterns {
		if m := re.FindStringSubmatch(s); len(m) >= 3 {
			base := strings.TrimSpace(m[1])
			u := strings.TrimSpace(m[2])
			if base != "" && u != "" {
				return base, u
			}
		}
	}
	return s, ""
}
