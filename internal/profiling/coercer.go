package profiling

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultMissingSentinels are the cell values treated as missing.
var DefaultMissingSentinels = []string{
	"", "null", "NULL", "Null", "none", "None", "NONE",
	"nan", "NaN", "NAN", "NA", "N/A", "n/a", "#N/A", "-",
}

var booleanLiterals = map[string]bool{
	"true": true, "t": true, "yes": true, "y": true,
	"false": false, "f": false, "no": false, "n": false,
}

// timestampLayouts are tried in order; the first that parses wins.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
	"2006/01/02",
	"02-Jan-2006",
}

var currencyTokens = []string{"$", "€", "£", "¥", "USD", "EUR", "GBP", "JPY"}

var thousandsGrouped = regexp.MustCompile(`^-?\d{1,3}(,\d{3})+(\.\d+)?$`)

// Coercer parses raw cells into typed values with fixed, deterministic rules.
type Coercer struct {
	missing map[string]struct{}
}

// NewCoercer builds a coercer; nil sentinels means DefaultMissingSentinels.
func NewCoercer(sentinels []string) *Coercer {
	if sentinels == nil {
		sentinels = DefaultMissingSentinels
	}
	m := make(map[string]struct{}, len(sentinels))
	for _, s := range sentinels {
		m[strings.TrimSpace(s)] = struct{}{}
	}
	return &Coercer{missing: m}
}

// IsMissing reports whether a trimmed cell counts as missing.
func (c *Coercer) IsMissing(cell string) bool {
	_, ok := c.missing[strings.TrimSpace(cell)]
	return ok
}

// ParseBoolean accepts only the fixed literal set, case-insensitively.
func (c *Coercer) ParseBoolean(s string) (bool, bool) {
	v, ok := booleanLiterals[strings.ToLower(strings.TrimSpace(s))]
	return v, ok
}

// ParseNumeric handles currency symbols, percent signs, thousands separators,
// accounting parentheses and European decimal commas.
func (c *Coercer) ParseNumeric(s string) (float64, bool) {
	clean := strings.TrimSpace(s)
	if clean == "" {
		return 0, false
	}

	negative := false
	if strings.HasPrefix(clean, "(") && strings.HasSuffix(clean, ")") {
		clean = strings.TrimSuffix(strings.TrimPrefix(clean, "("), ")")
		negative = true
	}
	for _, token := range currencyTokens {
		clean = strings.ReplaceAll(clean, token, "")
	}
	clean = strings.TrimSpace(strings.TrimSuffix(clean, "%"))

	switch {
	case thousandsGrouped.MatchString(clean):
		clean = strings.ReplaceAll(clean, ",", "")
	case strings.Contains(clean, ",") && strings.Contains(clean, "."):
		// 1.234,56
		if strings.LastIndex(clean, ",") > strings.LastIndex(clean, ".") {
			clean = strings.ReplaceAll(clean, ".", "")
			clean = strings.ReplaceAll(clean, ",", ".")
		} else {
			clean = strings.ReplaceAll(clean, ",", "")
		}
	case strings.Count(clean, ",") == 1:
		clean = strings.ReplaceAll(clean, ",", ".")
	}

	if negative {
		clean = "-" + clean
	}
	if strings.ContainsAny(clean, "xXpP_") {
		return 0, false
	}

	v, err := strconv.ParseFloat(clean, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// ParseTimestamp returns the parsed time and the layout that matched.
func (c *Coercer) ParseTimestamp(s string) (time.Time, string, bool) {
	clean := strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, clean); err == nil {
			return t, layout, true
		}
	}
	return time.Time{}, "", false
}
