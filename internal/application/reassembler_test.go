package application

import (
	"testing"

	"github.com/bnema/orderlink/internal/framing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReassemblerCreatesBufferOnFirstFragment(t *testing.T) {
	t.Parallel()

	reassembler := NewReassembler(newTestCodec(t, framing.Limits{}), zerolog.Nop())
	assert.False(t, reassembler.Has("AA:BB"))

	_, ok, err := reassembler.OnFragment("AA:BB", []byte("CORTA"), testNow)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, reassembler.Has("AA:BB"))
	assert.Equal(t, 5, reassembler.Buffered("AA:BB"))

	record, ok, err := reassembler.OnFragment("AA:BB", []byte("DOEND"), testNow)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "CORTADO", record.Text())
	assert.False(t, reassembler.Has("AA:BB"))
	assert.Zero(t, reassembler.TotalBuffered())
}

func TestReassemblerDiscardReportsDroppedBytes(t *testing.T) {
	t.Parallel()

	reassembler := NewReassembler(newTestCodec(t, framing.Limits{}), zerolog.Nop())
	_, _, err := reassembler.OnFragment("AA:BB", []byte("half"), testNow)
	require.NoError(t, err)
	_, _, err = reassembler.OnFragment("CC:DD", []byte("other"), testNow)
	require.NoError(t, err)

	assert.Equal(t, 9, reassembler.TotalBuffered())
	assert.Equal(t, 4, reassembler.Discard("AA:BB"))
	assert.Zero(t, reassembler.Discard("AA:BB"))
	assert.Equal(t, 5, reassembler.TotalBuffered())
}

func TestReassemblerDropsBufferOnCodecError(t *testing.T) {
	t.Parallel()

	reassembler := NewReassembler(newTestCodec(t, framing.Limits{MaxMessageBytes: 3}), zerolog.Nop())

	_, ok, err := reassembler.OnFragment("AA:BB", []byte("toolong"), testNow)
	assert.ErrorIs(t, err, framing.ErrMessageTooLarge)
	assert.Contains(t, err.Error(), "AA:BB")
	assert.False(t, ok)
	assert.False(t, reassembler.Has("AA:BB"))
}
