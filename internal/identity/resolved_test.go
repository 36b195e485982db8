package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolvePrecedenceOrder(t *testing.T) {
	claim := Source{Name: "Robert Brown"}
	profile := Source{Name: "Bob Brown", Phone: "5551234567", City: "Springfield"}
	inline := Source{Name: "R. Brown", Phone: "999", Address: "123 Main St", City: "Shelbyville"}

	r := Resolve(true, claim, profile, inline)

	assert.Equal(t, "Robert Brown", r.Name)     // claim wins
	assert.Equal(t, "5551234567", r.Phone)      // profile fills the gap
	assert.Equal(t, "123 Main St", r.Address)   // inline is the only source
	assert.Equal(t, "Springfield", r.City)      // earlier source never overwritten
	assert.True(t, r.Verified)
}

func TestResolveUnclaimedFallsBackToInline(t *testing.T) {
	inline := Source{Name: "R. Brown", Address: "123 Main St"}

	r := Resolve(false, Source{}, Source{}, inline)

	assert.Equal(t, "R. Brown", r.Name)
	assert.Equal(t, "123 Main St", r.Address)
	assert.False(t, r.Verified)
}

func TestResolveNoSources(t *testing.T) {
	r := Resolve(false)
	assert.Equal(t, Resolved{}, r)
}
