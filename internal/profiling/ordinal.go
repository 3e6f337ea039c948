package profiling

import "strings"

// ordinalScales are label vocabularies with a natural order.
var ordinalScales = [][]string{
	{"low", "medium", "high"},
	{"low", "mid", "high"},
	{"very low", "low", "medium", "high", "very high"},
	{"small", "medium", "large"},
	{"xs", "s", "m", "l", "xl", "xxl"},
	{"poor", "fair", "good", "very good", "excellent"},
	{"never", "rarely", "sometimes", "often", "always"},
	{"strongly disagree", "disagree", "neutral", "agree", "strongly agree"},
	{"junior", "mid", "senior"},
	{"first", "second", "third", "fourth"},
	{"bronze", "silver", "gold", "platinum"},
}

// isOrdinal reports whether every label belongs to one ordered scale.
func isOrdinal(counts map[string]int) bool {
	if len(counts) < 2 {
		return false
	}
	for _, scale := range ordinalScales {
		members := make(map[string]struct{}, len(scale))
		for _, s := range scale {
			members[s] = struct{}{}
		}
		all := true
		for v := range counts {
			if _, ok := members[strings.ToLower(v)]; !ok {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	return false
}
