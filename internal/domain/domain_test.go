package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectionIDValidate(t *testing.T) {
	tests := []struct {
		name    string
		id      ConnectionID
		wantErr bool
	}{
		{name: "address", id: "AA:BB:CC:DD:EE:FF"},
		{name: "opaque", id: "peer-1"},
		{name: "empty", id: "", wantErr: true},
		{name: "blank", id: "   ", wantErr: true},
		{name: "embedded space", id: "AA BB", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.id.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformedIdentity)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestNewPeerFallsBackToUnnamedDevice(t *testing.T) {
	assert.Equal(t, UnnamedDevice, NewPeer("AA:BB", "").Name)
	assert.Equal(t, UnnamedDevice, NewPeer("AA:BB", "  ").Name)
	assert.Equal(t, "Till 1", NewPeer("AA:BB", " Till 1 ").Name)
}

func TestConnectionStateTransitions(t *testing.T) {
	peer := NewPeer("AA:BB", "Till 1")
	tests := []struct {
		name    string
		from    ConnectionState
		to      ConnectionState
		want    ConnectionPhase
		wantErr bool
	}{
		{name: "fresh connecting", from: ConnectionState{}, to: Connecting(), want: PhaseConnecting},
		{name: "fresh connected", from: ConnectionState{}, to: Connected(peer), want: PhaseConnected},
		{name: "connecting to connected", from: Connecting(), to: Connected(peer), want: PhaseConnected},
		{name: "connected to disconnected", from: Connected(peer), to: Disconnected(), want: PhaseDisconnected},
		{name: "connecting to disconnected", from: Connecting(), to: Disconnected(), want: PhaseDisconnected},
		{name: "disconnected restarts", from: Disconnected(), to: Connecting(), want: PhaseConnecting},
		{name: "repeat disconnect", from: Disconnected(), to: Disconnected(), want: PhaseDisconnected},
		{name: "reconnect refresh", from: Connected(peer), to: Connected(peer), want: PhaseConnected},
		{name: "connected back to connecting", from: Connected(peer), to: Connecting(), wantErr: true},
		{name: "unknown phase", from: Connecting(), to: ConnectionState{Phase: "bonding"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.from.Transition(tt.to)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTransition)
				assert.Equal(t, tt.from, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Phase)
		})
	}
}

func TestDisconnectedDropsPeer(t *testing.T) {
	at := time.Date(2026, 2, 14, 12, 0, 0, 0, time.UTC)
	next := Disconnected()
	next.ChangedAt = at

	got, err := Connected(NewPeer("AA:BB", "Till 1")).Transition(next)
	require.NoError(t, err)
	assert.Equal(t, Peer{}, got.Peer)
	assert.Equal(t, at, got.ChangedAt)
	assert.Equal(t, "disconnected", got.String())
}

func TestStateForMapsLinkStates(t *testing.T) {
	peer := NewPeer("AA:BB", "")

	state, err := StateFor(LinkConnected, peer)
	require.NoError(t, err)
	assert.Equal(t, "Connected(Unnamed Device, AA:BB)", state.String())

	state, err = StateFor(LinkConnecting, peer)
	require.NoError(t, err)
	assert.Equal(t, PhaseConnecting, state.Phase)

	state, err = StateFor(LinkDisconnected, peer)
	require.NoError(t, err)
	assert.Equal(t, PhaseDisconnected, state.Phase)

	_, err = StateFor(LinkDisconnecting, peer)
	assert.ErrorIs(t, err, ErrUnknownLinkState)

	_, err = StateFor(LinkState(42), peer)
	assert.ErrorIs(t, err, ErrUnknownLinkState)
	assert.Contains(t, err.Error(), "unknown(42)")
}

func TestRecordOwnsPayload(t *testing.T) {
	payload := []byte("LATTE")
	record := NewRecord("AA:BB", payload, time.Time{})
	payload[0] = 'X'
	assert.Equal(t, "LATTE", record.Text())

	clone := record.Clone()
	clone.Payload[0] = 'M'
	assert.Equal(t, "LATTE", record.Text())
}
