package domain

import "time"

// Record is one fully reassembled order. Payload is owned by the record and
// must not be mutated after construction.
type Record struct {
	Seq          uint64
	ConnectionID ConnectionID
	Payload      []byte
	CompletedAt  time.Time
}

func NewRecord(id ConnectionID, payload []byte, completedAt time.Time) Record {
	return Record{
		ConnectionID: id,
		Payload:      append([]byte(nil), payload...),
		CompletedAt:  completedAt,
	}
}

func (r Record) Text() string {
	return string(r.Payload)
}

// Clone returns a copy whose payload does not alias the receiver's.
func (r Record) Clone() Record {
	r.Payload = append([]byte(nil), r.Payload...)
	return r
}
