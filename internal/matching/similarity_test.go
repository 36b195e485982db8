package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStringSimilarityIdentity(t *testing.T) {
	assert.Equal(t, 1.0, StringSimilarity("Samantha", "Samantha"))
	assert.Equal(t, 1.0, StringSimilarity("  Samantha ", "samantha"))
	assert.Equal(t, 1.0, StringSimilarity("", ""))
}

func TestStringSimilarityEmptySide(t *testing.T) {
	assert.Equal(t, 0.0, StringSimilarity("", "x"))
	assert.Equal(t, 0.0, StringSimilarity("x", ""))
}

func TestStringSimilaritySymmetric(t *testing.T) {
	a, b := "123 Main St", "123 Maple Street"
	assert.Equal(t, StringSimilarity(a, b), StringSimilarity(b, a))
}

func TestStringSimilarityEditDistance(t *testing.T) {
	// one deletion over ten characters
	assert.InDelta(t, 0.9, StringSimilarity("john smith", "jon smith"), 1e-9)
	// containment falls back to the length ratio
	assert.InDelta(t, 0.5, StringSimilarity("smith", "john smith"), 1e-9)
}

func TestNameSimilarityCloseName(t *testing.T) {
	// "Smith" is an exact component, "John"/"Jon" is a strong direct match.
	assert.GreaterOrEqual(t, NameSimilarity("John Smith", "Jon Smith"), 0.8)
}

func TestNameSimilarityUnrelatedName(t *testing.T) {
	assert.Less(t, NameSimilarity("John Smith", "Amy Jones"), 0.3)
}

func TestNameSimilarityEmptyInput(t *testing.T) {
	assert.Equal(t, 0.0, NameSimilarity("", "John Smith"))
	assert.Equal(t, 0.0, NameSimilarity("John Smith", ""))
}

func TestNameSimilaritySuppressesWeakAggregate(t *testing.T) {
	// No token reaches a strong match and the whole-string similarity is
	// well under the override threshold, so the aggregate token score must
	// be discarded in favor of the (low) direct score.
	got := NameSimilarity("Smyyth Jonn", "Jon Smith")
	assert.Equal(t, StringSimilarity("Smyyth Jonn", "Jon Smith"), got)
	assert.Less(t, got, 0.5)
}

func TestNameSimilarityStrongComponentNotSuppressed(t *testing.T) {
	// An exact last-name component keeps the aggregate alive even though
	// the first names differ.
	assert.GreaterOrEqual(t, NameSimilarity("Johnathan Smith", "Jon Smith"), 0.5)
}

func TestNameSimilarityIgnoresInitials(t *testing.T) {
	// Single-letter tokens carry no signal either way.
	withInitial := NameSimilarity("John Q Smith", "John Smith")
	assert.GreaterOrEqual(t, withInitial, 0.8)
}
