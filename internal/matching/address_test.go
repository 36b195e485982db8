package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeAddress(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"123 Main Street", "123 Main st"},
		{"45 Oak Avenue", "45 Oak ave"},
		{"9 Sunset Boulevard", "9 Sunset blvd"},
		{"12 Hill Drive", "12 Hill dr"},
		{"7 Pine Lane", "7 Pine ln"},
		{"88 River Road", "88 River rd"},
		{"3 Kings Court", "3 Kings ct"},
		{"6 Market Place", "6 Market pl"},
		{"2 Dove Circle", "2 Dove cir"},
		{"1  Broad   Way", "1 Broad Way"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeAddress(tt.in), "input %q", tt.in)
	}
}

func TestCompareAddressesSuffixSynonyms(t *testing.T) {
	assert.True(t, CompareAddresses("123 Main Street", "123 Main St", 0.8))
	assert.True(t, CompareAddresses("123 MAIN STREET", "123 main st", 0.8))
}

func TestCompareAddressesDifferentStreets(t *testing.T) {
	assert.False(t, CompareAddresses("123 Main St", "456 Oak Ave", 0.8))
}

func TestCompareAddressesEmpty(t *testing.T) {
	assert.False(t, CompareAddresses("", "123 Main St", 0.8))
	assert.False(t, CompareAddresses("123 Main St", "", 0.8))
}
