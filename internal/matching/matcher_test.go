package matching

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func ptr(v int64) *int64 { return &v }

func TestCategorizeExcludesGloballyClaimed(t *testing.T) {
	profile := Profile{Name: "Robert Brown", Phone: "5551234567", Address: "123 Main St"}

	// perfect field match, but claimed by user 99
	candidates := []Candidate{
		{
			ReviewID:  1,
			ClaimedBy: ptr(99),
			Fields: ReviewFields{
				CustomerName:    "Robert Brown",
				CustomerPhone:   "5551234567",
				CustomerAddress: "123 Main Street",
			},
		},
	}

	matches := Categorize(candidates, 7, profile, time.Time{}, AdditivePolicy{})
	assert.Empty(t, matches)
}

func TestCategorizeClaimedByUser(t *testing.T) {
	candidates := []Candidate{
		{ReviewID: 1, ClaimedBy: ptr(7)},
		{ReviewID: 2, CustomerID: ptr(7)},
	}

	matches := Categorize(candidates, 7, Profile{}, time.Time{}, AdditivePolicy{})

	assert.Len(t, matches, 2)
	for _, m := range matches {
		assert.Equal(t, MatchClaimed, m.Type)
		assert.Equal(t, 100, m.Score)
	}
}

func TestCategorizeDropsFloorScore(t *testing.T) {
	profile := Profile{Phone: "5551234567", Address: "123 Main St"}

	candidates := []Candidate{
		// address only: additive score 30, exactly at the potential floor
		{
			ReviewID: 1,
			Fields:   ReviewFields{CustomerAddress: "123 Main Street"},
		},
		// phone and address: 60, comfortably above it
		{
			ReviewID: 2,
			Fields: ReviewFields{
				CustomerPhone:   "5551234567",
				CustomerAddress: "123 Main Street",
			},
		},
	}

	matches := Categorize(candidates, 7, profile, time.Time{}, AdditivePolicy{})

	assert.Len(t, matches, 1)
	assert.Equal(t, int64(2), matches[0].ReviewID)
}

func TestCategorizeScoresUnclaimed(t *testing.T) {
	lastLogin := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	profile := Profile{Name: "Robert Brown", Phone: "5551234567"}

	candidates := []Candidate{
		{
			ReviewID:  1,
			CreatedAt: lastLogin.Add(time.Hour),
			Fields: ReviewFields{
				CustomerName:  "Robert Brown",
				CustomerPhone: "5551234567",
			},
		},
		{
			ReviewID:  2,
			CreatedAt: lastLogin.Add(-time.Hour),
			Fields:    ReviewFields{CustomerName: "Robert Brown"},
		},
		{
			ReviewID: 3,
			Fields:   ReviewFields{CustomerName: "Nobody Similar At All"},
		},
	}

	matches := Categorize(candidates, 7, profile, lastLogin, AdditivePolicy{})

	assert.Len(t, matches, 2)

	assert.Equal(t, int64(1), matches[0].ReviewID)
	assert.Equal(t, MatchHighQuality, matches[0].Type)
	assert.True(t, matches[0].IsNewReview)

	assert.Equal(t, int64(2), matches[1].ReviewID)
	assert.Equal(t, MatchPotential, matches[1].Type)
	assert.False(t, matches[1].IsNewReview)
}
