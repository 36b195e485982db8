package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdditivePolicyPhoneAndAddressOnly(t *testing.T) {
	review := ReviewFields{
		CustomerName:    "Somebody Else",
		CustomerPhone:   "(555) 123-4567",
		CustomerAddress: "123 Main Street",
	}
	user := Profile{
		Name:    "Robert Brown",
		Phone:   "555-123-4567",
		Address: "123 Main St",
	}

	res := AdditivePolicy{}.Evaluate(review, user)

	// phone (+30) and address (+30) without a name match stays potential
	assert.Equal(t, MatchPotential, res.Type)
	assert.Equal(t, 60, res.Score)
}

func TestAdditivePolicyAllThreeSignals(t *testing.T) {
	review := ReviewFields{
		CustomerName:    "Robert Brown",
		CustomerPhone:   "(555) 123-4567",
		CustomerAddress: "123 Main Street",
	}
	user := Profile{
		Name:    "Robert Brown",
		Phone:   "5551234567",
		Address: "123 Main St",
	}

	res := AdditivePolicy{}.Evaluate(review, user)

	assert.Equal(t, MatchHighQuality, res.Type)
	assert.Equal(t, 100, res.Score)
	assert.Len(t, res.Reasons, 3)
}

func TestAdditivePolicyNameAloneIsPotential(t *testing.T) {
	review := ReviewFields{CustomerName: "Robert Brown"}
	user := Profile{Name: "Robert Brown"}

	res := AdditivePolicy{}.Evaluate(review, user)

	// a single signal never reaches high_quality
	assert.Equal(t, MatchPotential, res.Type)
	assert.Equal(t, 40, res.Score)
}

func TestAdditivePolicyNoSignals(t *testing.T) {
	review := ReviewFields{CustomerName: "Robert Brown", CustomerPhone: "111"}
	user := Profile{Name: "Alice Green", Phone: "222"}

	res := AdditivePolicy{}.Evaluate(review, user)

	assert.Equal(t, MatchNone, res.Type)
	assert.Equal(t, 0, res.Score)
}

func TestNameSignalIsWholeStringOnly(t *testing.T) {
	// Reordered tokens score 1.0 under the token-based NameSimilarity but
	// near zero under whole-string similarity. The policies must use the
	// latter, so no name signal fires here.
	review := ReviewFields{CustomerName: "Smith John"}
	user := Profile{Name: "John Smith"}

	res := AdditivePolicy{}.Evaluate(review, user)

	assert.Equal(t, MatchNone, res.Type)
	assert.Equal(t, 0, res.Score)
	assert.Empty(t, res.Reasons)

	gate := TwoOfThreePolicy{}.Evaluate(review, user)
	assert.Equal(t, MatchNone, gate.Type)
}

func TestTwoOfThreeRejectsPhoneOnly(t *testing.T) {
	review := ReviewFields{
		CustomerName:  "Somebody Else",
		CustomerPhone: "5551234567",
	}
	user := Profile{
		Name:  "Robert Brown",
		Phone: "(555) 123-4567",
	}

	res := TwoOfThreePolicy{}.Evaluate(review, user)

	// a single matching field never passes the gate
	assert.Equal(t, MatchNone, res.Type)
}

func TestTwoOfThreeRejectsSingleField(t *testing.T) {
	review := ReviewFields{CustomerName: "Robert Brown"}
	user := Profile{Name: "Robert Brown"}

	res := TwoOfThreePolicy{}.Evaluate(review, user)

	// exact name alone is not enough under the visibility gate
	assert.Equal(t, MatchNone, res.Type)
}

func TestTwoOfThreeAcceptsTwoFields(t *testing.T) {
	review := ReviewFields{
		CustomerName:  "Robert Brown",
		CustomerPhone: "555 123 4567",
	}
	user := Profile{
		Name:  "Robert Brown",
		Phone: "555-123-4567",
	}

	res := TwoOfThreePolicy{}.Evaluate(review, user)

	assert.Equal(t, MatchHighQuality, res.Type)
}

func TestPoliciesDiverge(t *testing.T) {
	// phone + address matches: potential under the additive policy but a
	// pass under two-of-three. The two policies are intentionally not
	// equivalent.
	review := ReviewFields{
		CustomerPhone:   "5551234567",
		CustomerAddress: "9 Sunset Boulevard",
	}
	user := Profile{
		Phone:   "5551234567",
		Address: "9 Sunset Blvd",
	}

	additive := AdditivePolicy{}.Evaluate(review, user)
	gate := TwoOfThreePolicy{}.Evaluate(review, user)

	assert.Equal(t, MatchPotential, additive.Type)
	assert.Equal(t, MatchHighQuality, gate.Type)
}

func TestPhonesEqualDigitsOnly(t *testing.T) {
	assert.True(t, phonesEqual("(555) 123-4567", "555.123.4567"))
	assert.False(t, phonesEqual("", ""))
	assert.False(t, phonesEqual("555", ""))
}
