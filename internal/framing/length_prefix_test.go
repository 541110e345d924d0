package framing

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLengthPrefixCarriesTerminatorBytes(t *testing.T) {
	t.Parallel()

	codec := NewLengthPrefixCodec(Limits{})
	message := []byte("SEND THE END")

	fragments, err := codec.Encode(message, 5)
	require.NoError(t, err)
	require.Len(t, fragments, 4)
	assert.Equal(t, []byte{0, 0, 0, 12, 'S'}, fragments[0])

	var acc Accumulator
	for _, fragment := range fragments[:len(fragments)-1] {
		_, ok, err := codec.Decode(&acc, fragment)
		require.NoError(t, err)
		require.False(t, ok)
	}

	got, ok, err := codec.Decode(&acc, fragments[len(fragments)-1])
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, message, got)
}

func TestLengthPrefixEmptyMessage(t *testing.T) {
	t.Parallel()

	codec := NewLengthPrefixCodec(Limits{})

	fragments, err := codec.Encode(nil, 20)
	require.NoError(t, err)
	require.Len(t, fragments, 1)

	var acc Accumulator
	got, ok, err := codec.Decode(&acc, fragments[0])
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, got)
}

func TestLengthPrefixRejectsOversizedHeader(t *testing.T) {
	t.Parallel()

	codec := NewLengthPrefixCodec(Limits{MaxMessageBytes: 16})
	var acc Accumulator

	_, ok, err := codec.Decode(&acc, []byte{0, 0, 1, 0})
	assert.ErrorIs(t, err, ErrMessageTooLarge)
	assert.False(t, ok)
	assert.Zero(t, acc.Len())

	_, err = codec.Encode(make([]byte, 17), 20)
	assert.ErrorIs(t, err, ErrMessageTooLarge)
}

func TestLengthPrefixRoundTripLaw(t *testing.T) {
	t.Parallel()

	codec := NewLengthPrefixCodec(Limits{})
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 300; i++ {
		message := make([]byte, rng.Intn(200))
		rng.Read(message)
		size := 1 + rng.Intn(24)

		fragments, err := codec.Encode(message, size)
		require.NoError(t, err)

		var acc Accumulator
		for n, fragment := range fragments {
			got, ok, err := codec.Decode(&acc, fragment)
			require.NoError(t, err)
			if n < len(fragments)-1 {
				require.False(t, ok)
				continue
			}
			require.True(t, ok)
			require.Equal(t, message, got)
		}
	}
}
