package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShareCodecRoundTrip(t *testing.T) {
	codec, err := NewShareCodec("test-salt")
	require.NoError(t, err)

	for _, id := range []int64{1, 42, 987654321} {
		code, err := codec.Encode(id)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(code), 8)

		got, err := codec.Decode(code)
		require.NoError(t, err)
		assert.Equal(t, id, got)
	}
}

func TestShareCodecRejectsGarbage(t *testing.T) {
	codec, err := NewShareCodec("test-salt")
	require.NoError(t, err)

	_, err = codec.Decode("not a code!!")
	assert.ErrorIs(t, err, ErrBadShareCode)
}

func TestShareCodecSaltChangesCodes(t *testing.T) {
	a, err := NewShareCodec("salt-a")
	require.NoError(t, err)
	b, err := NewShareCodec("salt-b")
	require.NoError(t, err)

	codeA, err := a.Encode(77)
	require.NoError(t, err)
	codeB, err := b.Encode(77)
	require.NoError(t, err)
	assert.NotEqual(t, codeA, codeB)
}
