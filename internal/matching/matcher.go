package matching

import "time"

// Candidate is a review as seen by the matcher: its stored customer
// fields plus claim state.
type Candidate struct {
	ReviewID   int64
	BusinessID int64
	ClaimedBy  *int64
	CustomerID *int64
	Fields     ReviewFields
	CreatedAt  time.Time
}

// Match is one categorized review in a user's feed.
type Match struct {
	ReviewID    int64     `json:"review_id"`
	Type        MatchType `json:"match_type"`
	Score       int       `json:"match_score"`
	Reasons     []string  `json:"match_reasons"`
	IsNewReview bool      `json:"is_new_review"`
}

// Categorize classifies reviews for one user. Reviews claimed by anyone
// else are removed from the pool before any scoring happens; a claimed
// review must never surface as someone's potential match. Reviews already
// claimed by this user come back as MatchClaimed. The rest are scored by
// the supplied policy and kept only when they score strictly above the
// potential floor: a bare single weak signal is not worth surfacing.
// lastLogin marks which reviews the user has not seen yet.
func Categorize(candidates []Candidate, userID int64, profile Profile, lastLogin time.Time, policy Policy) []Match {
	var matches []Match

	for _, c := range candidates {
		claimedByUser := (c.ClaimedBy != nil && *c.ClaimedBy == userID) ||
			(c.CustomerID != nil && *c.CustomerID == userID)
		claimedByOther := !claimedByUser &&
			((c.ClaimedBy != nil) || (c.CustomerID != nil))

		if claimedByOther {
			continue
		}

		if claimedByUser {
			matches = append(matches, Match{
				ReviewID: c.ReviewID,
				Type:     MatchClaimed,
				Score:    100,
				Reasons:  []string{"already claimed by you"},
			})
			continue
		}

		res := policy.Evaluate(c.Fields, profile)
		if res.Type == MatchNone || res.Score <= potentialScore {
			continue
		}

		matches = append(matches, Match{
			ReviewID:    c.ReviewID,
			Type:        res.Type,
			Score:       res.Score,
			Reasons:     res.Reasons,
			IsNewReview: c.CreatedAt.After(lastLogin),
		})
	}

	return matches
}
