package application

import (
	"time"

	"github.com/bnema/orderlink/internal/domain"
)

type ConnectionStatus struct {
	ID                   domain.ConnectionID
	State                domain.ConnectionState
	BufferedBytes        int
	NotificationsEnabled bool
}

type Snapshot struct {
	TakenAt     time.Time
	Connections []ConnectionStatus
	Records     []domain.Record
}

func (s Snapshot) Connected() int {
	n := 0
	for _, conn := range s.Connections {
		if conn.State.Phase == domain.PhaseConnected {
			n++
		}
	}
	return n
}

type EventKind string

const (
	EventConnection    EventKind = "connection"
	EventRecord        EventKind = "record"
	EventNotifications EventKind = "notifications"
)

// Event is pushed to registry watchers after every observable mutation.
type Event struct {
	Kind         EventKind
	ConnectionID domain.ConnectionID
	State        *domain.ConnectionState `json:",omitempty"`
	Record       *domain.Record          `json:",omitempty"`
	Enabled      bool                    `json:",omitempty"`
}
