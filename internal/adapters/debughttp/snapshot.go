package debughttp

import (
	"time"

	"github.com/bnema/orderlink/internal/application"
	"github.com/bnema/orderlink/internal/domain"
)

// SnapshotDoc is the JSON form of a registry snapshot served at
// /debug/snapshot.
type SnapshotDoc struct {
	TakenAt     time.Time       `json:"taken_at"`
	Connections []ConnectionDoc `json:"connections"`
	Records     []RecordDoc     `json:"records"`
}

type ConnectionDoc struct {
	ID                   string    `json:"id"`
	Phase                string    `json:"phase"`
	PeerName             string    `json:"peer_name,omitempty"`
	ChangedAt            time.Time `json:"changed_at"`
	BufferedBytes        int       `json:"buffered_bytes"`
	NotificationsEnabled bool      `json:"notifications_enabled"`
}

type RecordDoc struct {
	Seq          uint64    `json:"seq"`
	ConnectionID string    `json:"connection_id"`
	Text         string    `json:"text"`
	CompletedAt  time.Time `json:"completed_at"`
}

func NewSnapshotDoc(s application.Snapshot) SnapshotDoc {
	doc := SnapshotDoc{
		TakenAt:     s.TakenAt,
		Connections: make([]ConnectionDoc, 0, len(s.Connections)),
		Records:     make([]RecordDoc, 0, len(s.Records)),
	}
	for _, conn := range s.Connections {
		doc.Connections = append(doc.Connections, ConnectionDoc{
			ID:                   string(conn.ID),
			Phase:                string(conn.State.Phase),
			PeerName:             conn.State.Peer.Name,
			ChangedAt:            conn.State.ChangedAt,
			BufferedBytes:        conn.BufferedBytes,
			NotificationsEnabled: conn.NotificationsEnabled,
		})
	}
	for _, record := range s.Records {
		doc.Records = append(doc.Records, NewRecordDoc(record))
	}
	return doc
}

func NewRecordDoc(r domain.Record) RecordDoc {
	return RecordDoc{
		Seq:          r.Seq,
		ConnectionID: string(r.ConnectionID),
		Text:         r.Text(),
		CompletedAt:  r.CompletedAt,
	}
}

// Snapshot converts the document back into the application view.
func (d SnapshotDoc) Snapshot() application.Snapshot {
	s := application.Snapshot{
		TakenAt:     d.TakenAt,
		Connections: make([]application.ConnectionStatus, 0, len(d.Connections)),
		Records:     make([]domain.Record, 0, len(d.Records)),
	}
	for _, conn := range d.Connections {
		id := domain.ConnectionID(conn.ID)
		state := domain.ConnectionState{Phase: domain.ConnectionPhase(conn.Phase), ChangedAt: conn.ChangedAt}
		if state.Phase == domain.PhaseConnected {
			state.Peer = domain.Peer{Name: conn.PeerName, ID: id}
		}
		s.Connections = append(s.Connections, application.ConnectionStatus{
			ID:                   id,
			State:                state,
			BufferedBytes:        conn.BufferedBytes,
			NotificationsEnabled: conn.NotificationsEnabled,
		})
	}
	for _, record := range d.Records {
		r := domain.NewRecord(domain.ConnectionID(record.ConnectionID), []byte(record.Text), record.CompletedAt)
		r.Seq = record.Seq
		s.Records = append(s.Records, r)
	}
	return s
}
