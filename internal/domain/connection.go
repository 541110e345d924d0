package domain

import (
	"fmt"
	"strings"
	"time"
)

const UnnamedDevice = "Unnamed Device"

// ConnectionID is the transport-stable identity of a peer, typically its
// Bluetooth address.
type ConnectionID string

func (id ConnectionID) Validate() error {
	if strings.TrimSpace(string(id)) == "" {
		return ErrMalformedIdentity
	}
	if strings.ContainsAny(string(id), " \t\r\n") {
		return fmt.Errorf("%w: %q", ErrMalformedIdentity, string(id))
	}

	return nil
}

type Peer struct {
	Name string
	ID   ConnectionID
}

func NewPeer(id ConnectionID, name string) Peer {
	name = strings.TrimSpace(name)
	if name == "" {
		name = UnnamedDevice
	}

	return Peer{Name: name, ID: id}
}

type ConnectionPhase string

const (
	PhaseConnecting   ConnectionPhase = "connecting"
	PhaseConnected    ConnectionPhase = "connected"
	PhaseDisconnected ConnectionPhase = "disconnected"
)

func (p ConnectionPhase) Valid() bool {
	switch p {
	case PhaseConnecting, PhaseConnected, PhaseDisconnected:
		return true
	default:
		return false
	}
}

// ConnectionState is the current lifecycle position of one connection. Peer is
// only meaningful while Connected.
type ConnectionState struct {
	Phase     ConnectionPhase
	Peer      Peer
	ChangedAt time.Time
}

func Connecting() ConnectionState {
	return ConnectionState{Phase: PhaseConnecting}
}

func Connected(peer Peer) ConnectionState {
	return ConnectionState{Phase: PhaseConnected, Peer: peer}
}

func Disconnected() ConnectionState {
	return ConnectionState{Phase: PhaseDisconnected}
}

func (s ConnectionState) String() string {
	if s.Phase == PhaseConnected {
		return fmt.Sprintf("Connected(%s, %s)", s.Peer.Name, s.Peer.ID)
	}

	return string(s.Phase)
}

// Transition applies next on top of the current state. A zero current state
// means no machine exists yet for the identity. Moving to Disconnected is
// always legal; leaving Disconnected starts a fresh machine.
func (s ConnectionState) Transition(next ConnectionState) (ConnectionState, error) {
	if !next.Phase.Valid() {
		return s, fmt.Errorf("%w: phase %q", ErrInvalidTransition, next.Phase)
	}

	switch next.Phase {
	case PhaseDisconnected:
		return ConnectionState{Phase: PhaseDisconnected, ChangedAt: next.ChangedAt}, nil
	case PhaseConnecting:
		switch s.Phase {
		case "", PhaseDisconnected, PhaseConnecting:
			return ConnectionState{Phase: PhaseConnecting, ChangedAt: next.ChangedAt}, nil
		}
	case PhaseConnected:
		switch s.Phase {
		case "", PhaseDisconnected, PhaseConnecting, PhaseConnected:
			return next, nil
		}
	}

	return s, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.Phase, next.Phase)
}

// LinkState is the raw connection state code reported by a transport. Values
// follow the platform profile constants.
type LinkState int

const (
	LinkDisconnected  LinkState = 0
	LinkConnecting    LinkState = 1
	LinkConnected     LinkState = 2
	LinkDisconnecting LinkState = 3
)

func (l LinkState) String() string {
	switch l {
	case LinkDisconnected:
		return "disconnected"
	case LinkConnecting:
		return "connecting"
	case LinkConnected:
		return "connected"
	case LinkDisconnecting:
		return "disconnecting"
	default:
		return fmt.Sprintf("unknown(%d)", int(l))
	}
}

// StateFor maps a raw link state onto the connection state machine.
// Disconnecting carries no transition of its own; the transport always
// follows it with Disconnected.
func StateFor(raw LinkState, peer Peer) (ConnectionState, error) {
	switch raw {
	case LinkConnecting:
		return Connecting(), nil
	case LinkConnected:
		return Connected(peer), nil
	case LinkDisconnected:
		return Disconnected(), nil
	default:
		return ConnectionState{}, fmt.Errorf("%w: %s", ErrUnknownLinkState, raw)
	}
}
