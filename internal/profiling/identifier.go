package profiling

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"datalens/domain/profile"
)

var (
	uuidPattern     = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
	prefixedPattern = regexp.MustCompile(`^([A-Za-z]+)[-_]?(\d+)$`)
)

// minIdentifierRows keeps tiny tables from flagging every unique column.
const minIdentifierRows = 3

// detectIdentifier decides whether a fully-populated, one-value-per-row
// column behaves like a row key rather than a feature.
func detectIdentifier(name string, rowCount int, col *rawColumn, numeric []float64) (*profile.IdentifierStats, bool) {
	if rowCount < minIdentifierRows || col.missingCount > 0 || col.distinct != rowCount {
		return nil, false
	}

	if numeric != nil {
		if monotonic, ok := sequentialIntegers(numeric); ok {
			return &profile.IdentifierStats{Pattern: profile.PatternSequential, Monotonic: monotonic}, true
		}
	} else {
		if allMatch(col.values, uuidPattern) {
			return &profile.IdentifierStats{Pattern: profile.PatternUUID, Monotonic: sort.StringsAreSorted(col.values)}, true
		}
		if sharedPrefix(col.values) {
			return &profile.IdentifierStats{Pattern: profile.PatternPrefixed, Monotonic: sort.StringsAreSorted(col.values)}, true
		}
	}

	if identifierName(name) {
		monotonic := sort.StringsAreSorted(col.values)
		if numeric != nil {
			monotonic = sort.Float64sAreSorted(numeric)
		}
		return &profile.IdentifierStats{Pattern: profile.PatternNamed, Monotonic: monotonic}, true
	}
	return nil, false
}

// sequentialIntegers reports a +1 or -1 stepped integer run.
func sequentialIntegers(values []float64) (bool, bool) {
	if len(values) < 2 {
		return false, false
	}
	step := values[1] - values[0]
	if step != 1 && step != -1 {
		return false, false
	}
	for i, v := range values {
		if v != math.Trunc(v) {
			return false, false
		}
		if i > 0 && v-values[i-1] != step {
			return false, false
		}
	}
	return true, true
}

func allMatch(values []string, re *regexp.Regexp) bool {
	for _, v := range values {
		if !re.MatchString(v) {
			return false
		}
	}
	return len(values) > 0
}

// sharedPrefix matches values like INV-001, INV-002 with one common prefix.
func sharedPrefix(values []string) bool {
	prefix := ""
	for i, v := range values {
		m := prefixedPattern.FindStringSubmatch(v)
		if m == nil {
			return false
		}
		if i == 0 {
			prefix = strings.ToUpper(m[1])
		} else if strings.ToUpper(m[1]) != prefix {
			return false
		}
	}
	return len(values) > 0
}

func identifierName(name string) bool {
	lower := strings.ToLower(strings.TrimSpace(name))
	if lower == "id" || lower == "uuid" || lower == "key" {
		return true
	}
	if strings.HasSuffix(lower, "_id") || strings.HasSuffix(lower, " id") || strings.HasSuffix(lower, "-id") {
		return true
	}
	// camelCase: customerId, orderID
	if len(name) > 2 && (strings.HasSuffix(name, "Id") || strings.HasSuffix(name, "ID")) {
		r := []rune(name)
		return unicode.IsLower(r[len(r)-3])
	}
	return false
}
