package matching

import "strings"

type MatchType string

const (
	MatchNone        MatchType = "none"
	MatchPotential   MatchType = "potential"
	MatchHighQuality MatchType = "high_quality"
	MatchClaimed     MatchType = "claimed"
)

// ReviewFields are the free-text customer fields a business typed in when
// authoring a review. They are not foreign keys; the customer may not have
// an account yet.
type ReviewFields struct {
	CustomerName    string
	CustomerPhone   string
	CustomerAddress string
	CustomerCity    string
	CustomerZip     string
}

// Profile is the candidate user's own contact information.
type Profile struct {
	Name    string
	Phone   string
	Address string
	City    string
	Zip     string
}

type Result struct {
	Type    MatchType `json:"match_type"`
	Score   int       `json:"match_score"`
	Reasons []string  `json:"match_reasons"`
}

// Policy decides whether a review's stored customer fields look like a
// given user. Two deliberately different policies exist: AdditivePolicy
// ranks candidates for display, TwoOfThreePolicy gates default visibility.
// They are not interchangeable.
type Policy interface {
	Evaluate(review ReviewFields, user Profile) Result
}

const (
	nameWeight    = 40
	phoneWeight   = 30
	addressWeight = 30

	highQualityScore = 70
	potentialScore   = 30

	nameMatchThreshold = 0.8
)

// nameSignal is the whole-string comparison both policies use for the
// name field. The token-based NameSimilarity is deliberately NOT used
// here: it scores reordered and partial tokens higher, which would widen
// a signal that decides whether someone else's review surfaces at all.
func nameSignal(reviewName, userName string) bool {
	return reviewName != "" && userName != "" &&
		StringSimilarity(reviewName, userName) >= nameMatchThreshold
}

// AdditivePolicy sums fixed weights per matched signal. Thresholds are
// conservative: no single signal reaches high_quality on its own, so a
// false positive needs two independently wrong fields before it exposes
// someone else's review.
type AdditivePolicy struct{}

func (AdditivePolicy) Evaluate(review ReviewFields, user Profile) Result {
	score := 0
	var reasons []string

	if nameSignal(review.CustomerName, user.Name) {
		score += nameWeight
		reasons = append(reasons, "name match")
	}

	if phonesEqual(review.CustomerPhone, user.Phone) {
		score += phoneWeight
		reasons = append(reasons, "phone number match")
	}

	if review.CustomerAddress != "" && user.Address != "" &&
		CompareAddresses(review.CustomerAddress, user.Address, DefaultAddressThreshold) {
		score += addressWeight
		reasons = append(reasons, "address match")
	}

	switch {
	case score >= highQualityScore:
		return Result{Type: MatchHighQuality, Score: score, Reasons: reasons}
	case score >= potentialScore:
		return Result{Type: MatchPotential, Score: score, Reasons: reasons}
	default:
		return Result{Type: MatchNone, Score: score, Reasons: reasons}
	}
}

// TwoOfThreePolicy requires at least two of name, phone, and address to
// match independently. High similarity on a single field is rejected no
// matter how high it is.
type TwoOfThreePolicy struct{}

func (TwoOfThreePolicy) Evaluate(review ReviewFields, user Profile) Result {
	matched := 0
	var reasons []string

	if nameSignal(review.CustomerName, user.Name) {
		matched++
		reasons = append(reasons, "name match")
	}
	if phonesEqual(review.CustomerPhone, user.Phone) {
		matched++
		reasons = append(reasons, "phone number match")
	}
	if review.CustomerAddress != "" && user.Address != "" &&
		CompareAddresses(review.CustomerAddress, user.Address, DefaultAddressThreshold) {
		matched++
		reasons = append(reasons, "address match")
	}

	if matched < 2 {
		return Result{Type: MatchNone, Score: matched * 33, Reasons: reasons}
	}
	return Result{Type: MatchHighQuality, Score: min(100, matched*34), Reasons: reasons}
}

// phonesEqual compares phone numbers on digits only. Two empty strings are
// not a match.
func phonesEqual(a, b string) bool {
	da := digitsOnly(a)
	db := digitsOnly(b)
	return da != "" && db != "" && da == db
}

func digitsOnly(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
