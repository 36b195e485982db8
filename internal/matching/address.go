package matching

import (
	"regexp"
	"strings"
)

// DefaultAddressThreshold is the similarity two normalized addresses need
// before they are treated as the same place.
const DefaultAddressThreshold = 0.8

var streetSuffixes = []struct {
	pattern *regexp.Regexp
	abbrev  string
}{
	{regexp.MustCompile(`(?i)\bstreet\b`), "st"},
	{regexp.MustCompile(`(?i)\bavenue\b`), "ave"},
	{regexp.MustCompile(`(?i)\bboulevard\b`), "blvd"},
	{regexp.MustCompile(`(?i)\bdrive\b`), "dr"},
	{regexp.MustCompile(`(?i)\blane\b`), "ln"},
	{regexp.MustCompile(`(?i)\broad\b`), "rd"},
	{regexp.MustCompile(`(?i)\bcourt\b`), "ct"},
	{regexp.MustCompile(`(?i)\bplace\b`), "pl"},
	{regexp.MustCompile(`(?i)\bcircle\b`), "cir"},
	// "way" has no shorter form and is left untouched; rewriting it
	// would only clobber the input's casing.
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// NormalizeAddress canonicalizes common street-suffix spellings so that
// "123 Main Street" and "123 Main St" compare as equal.
func NormalizeAddress(addr string) string {
	out := strings.TrimSpace(addr)
	for _, s := range streetSuffixes {
		out = s.pattern.ReplaceAllString(out, s.abbrev)
	}
	return whitespaceRun.ReplaceAllString(out, " ")
}

// CompareAddresses reports whether two free-text addresses are similar
// enough to refer to the same place. Both sides are normalized and
// lowercased before scoring with the generic string similarity.
//
// Whole-string edit distance means a shared word (a city name embedded in
// free text) can dominate the score; callers needing component-level
// precision should not rely on this alone.
func CompareAddresses(a, b string, threshold float64) bool {
	na := strings.ToLower(NormalizeAddress(a))
	nb := strings.ToLower(NormalizeAddress(b))
	if na == "" || nb == "" {
		return false
	}
	return StringSimilarity(na, nb) >= threshold
}
