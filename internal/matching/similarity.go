package matching

import "strings"

// StringSimilarity scores how close two strings are, 0 to 1.
// Comparison is case-insensitive and ignores surrounding whitespace.
// Identical strings score 1 (two empty strings are identical); if only
// one side is empty the score is 0. Otherwise the score is 1 minus the
// Levenshtein distance normalized by the longer string's length, with a
// substring shortcut that scores containment by relative length.
func StringSimilarity(a, b string) float64 {
	s1 := strings.ToLower(strings.TrimSpace(a))
	s2 := strings.ToLower(strings.TrimSpace(b))

	if s1 == s2 {
		return 1
	}
	if len(s1) == 0 || len(s2) == 0 {
		return 0
	}

	if strings.Contains(s1, s2) || strings.Contains(s2, s1) {
		return float64(min(len(s1), len(s2))) / float64(max(len(s1), len(s2)))
	}

	dist := levenshtein(s1, s2)
	longer := max(len(s1), len(s2))
	return 1 - float64(dist)/float64(longer)
}

// strongComponentThreshold is the per-token score a multi-word name needs
// on at least one token before aggregate token matches are trusted.
const strongComponentThreshold = 0.8

// directOverrideThreshold lets a near-exact whole-string match through even
// when no individual token matched strongly.
const directOverrideThreshold = 0.9

// NameSimilarity scores a search name against a candidate name. It takes
// the better of the whole-string similarity and a component-wise score
// that matches each search token against its best candidate token.
//
// When the search name has multiple tokens and none of them reaches a
// strong per-token match, the aggregate token score is discarded unless
// the whole-string similarity itself exceeds 0.9. Short common tokens
// ("John") would otherwise inflate scores against unrelated names.
func NameSimilarity(search, candidate string) float64 {
	searchTokens := nameTokens(search)
	candidateTokens := nameTokens(candidate)

	if len(searchTokens) == 0 || len(candidateTokens) == 0 {
		return 0
	}

	direct := StringSimilarity(search, candidate)

	var sum float64
	strong := false
	for _, st := range searchTokens {
		best := 0.0
		for _, ct := range candidateTokens {
			if s := StringSimilarity(st, ct); s > best {
				best = s
			}
		}
		if best >= strongComponentThreshold {
			strong = true
		}
		sum += best
	}
	component := sum / float64(len(searchTokens))

	if len(searchTokens) > 1 && !strong && direct <= directOverrideThreshold {
		return direct
	}

	if component > direct {
		return component
	}
	return direct
}

// nameTokens splits a name on whitespace, keeping tokens longer than one
// character. Single letters (middle initials, stray punctuation) carry no
// matching signal.
func nameTokens(name string) []string {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(name)))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) > 1 {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

func levenshtein(s1, s2 string) int {
	prev := make([]int, len(s2)+1)
	curr := make([]int, len(s2)+1)

	for j := 0; j <= len(s2); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(s1); i++ {
		curr[0] = i
		for j := 1; j <= len(s2); j++ {
			cost := 1
			if s1[i-1] == s2[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, min(curr[j-1]+1, prev[j-1]+cost))
		}
		prev, curr = curr, prev
	}
	return prev[len(s2)]
}
