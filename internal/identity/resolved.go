// Package identity resolves the customer shown on a review card from the
// several places that information can live: the claiming user's account,
// the claim record, and the free-text fields the business typed when it
// wrote the review.
package identity

// Source is one provider of customer fields, in decreasing precedence.
type Source struct {
	Name    string
	Phone   string
	Address string
	City    string
	State   string
	Zip     string
	Avatar  string
}

// Resolved is the merged customer identity for display. Verified reports
// whether the identity is backed by a claiming account rather than only
// the review's inline text.
type Resolved struct {
	Name     string `json:"name"`
	Phone    string `json:"phone,omitempty"`
	Address  string `json:"address,omitempty"`
	City     string `json:"city,omitempty"`
	State    string `json:"state,omitempty"`
	Zip      string `json:"zipcode,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
	Verified bool   `json:"verified"`
}

// Resolve merges sources field by field. Precedence is the argument
// order: claim record first, then the claiming user's profile, then the
// review's inline fields. The first non-empty value wins per field;
// later sources never overwrite earlier ones.
func Resolve(claimBacked bool, sources ...Source) Resolved {
	var r Resolved
	for _, s := range sources {
		r.Name = firstNonEmpty(r.Name, s.Name)
		r.Phone = firstNonEmpty(r.Phone, s.Phone)
		r.Address = firstNonEmpty(r.Address, s.Address)
		r.City = firstNonEmpty(r.City, s.City)
		r.State = firstNonEmpty(r.State, s.State)
		r.Zip = firstNonEmpty(r.Zip, s.Zip)
		r.Avatar = firstNonEmpty(r.Avatar, s.Avatar)
	}
	r.Verified = claimBacked
	return r
}

func firstNonEmpty(current, candidate string) string {
	if current != "" {
		return current
	}
	return candidate
}
