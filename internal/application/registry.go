package application

import (
	"fmt"
	"sort"
	"sync"

	"github.com/bnema/orderlink/internal/domain"
	"github.com/bnema/orderlink/internal/framing"
	"github.com/bnema/orderlink/internal/ports"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const watcherBuffer = 32

// Registry owns connection states, reassembly buffers and the order log. All
// mutations happen under one lock, so a disconnect and a fragment for the same
// connection are applied in some total order: once the disconnect is in, the
// buffer is gone and later fragments are dropped until the peer reconnects.
type Registry struct {
	mu            sync.RWMutex
	states        map[domain.ConnectionID]domain.ConnectionState
	notifications map[domain.ConnectionID]bool
	reassembler   *Reassembler
	records       []domain.Record
	watchers      map[string]chan Event
	closed        bool

	clock   ports.Clock
	metrics ports.Metrics
	logger  zerolog.Logger
}

func NewRegistry(codec framing.Codec, clock ports.Clock, metrics ports.Metrics, logger zerolog.Logger) *Registry {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}

	return &Registry{
		states:        make(map[domain.ConnectionID]domain.ConnectionState),
		notifications: make(map[domain.ConnectionID]bool),
		reassembler:   NewReassembler(codec, logger),
		watchers:      make(map[string]chan Event),
		clock:         clock,
		metrics:       metrics,
		logger:        logger,
	}
}

// UpdateConnectionState runs the connection state machine for id. Entering
// Disconnected deletes the connection's reassembly buffer; leaving it starts
// from an empty one.
func (r *Registry) UpdateConnectionState(id domain.ConnectionID, next domain.ConnectionState) error {
	if err := id.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current, known := r.states[id]
	next.ChangedAt = r.clock.Now()

	updated, err := current.Transition(next)
	if err != nil {
		r.logger.Warn().Err(err).Str("conn", string(id)).Msg("connection transition rejected")
		return err
	}

	if updated.Phase == domain.PhaseDisconnected || !known || current.Phase == domain.PhaseDisconnected {
		if dropped := r.reassembler.Discard(id); dropped > 0 {
			r.logger.Info().Str("conn", string(id)).Int("dropped_bytes", dropped).Msg("discarded incomplete message")
			r.metrics.FragmentDropped("disconnect")
		}
	}
	if updated.Phase == domain.PhaseDisconnected {
		delete(r.notifications, id)
	}

	r.states[id] = updated
	r.metrics.ConnectionPhase(updated.Phase)
	r.metrics.BufferedBytes(r.reassembler.TotalBuffered())

	r.logger.Info().Str("conn", string(id)).Str("state", updated.String()).Msg("connection state updated")

	state := updated
	r.publish(Event{Kind: EventConnection, ConnectionID: id, State: &state})
	return nil
}

// SubmitResult is the outcome of one inbound fragment.
type SubmitResult struct {
	Record   domain.Record
	Complete bool
	// Dropped is set when the connection was Disconnected and the fragment
	// never reached reassembly.
	Dropped bool
}

// SubmitFragment feeds one inbound fragment through reassembly. It returns the
// appended record when the fragment completed a message. Fragments for a
// connection that is currently Disconnected are dropped without error.
func (r *Registry) SubmitFragment(id domain.ConnectionID, fragment []byte) (domain.Record, bool, error) {
	res, err := r.Submit(id, fragment)
	return res.Record, res.Complete, err
}

// Submit is SubmitFragment with the drop reported in the result.
func (r *Registry) Submit(id domain.ConnectionID, fragment []byte) (SubmitResult, error) {
	if err := id.Validate(); err != nil {
		return SubmitResult{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.metrics.FragmentReceived(len(fragment))

	if state, ok := r.states[id]; ok && state.Phase == domain.PhaseDisconnected {
		r.logger.Debug().Str("conn", string(id)).Int("fragment_len", len(fragment)).Msg("dropping fragment for disconnected connection")
		r.metrics.FragmentDropped("disconnected")
		return SubmitResult{Dropped: true}, nil
	}

	record, complete, err := r.reassembler.OnFragment(id, fragment, r.clock.Now())
	r.metrics.BufferedBytes(r.reassembler.TotalBuffered())
	if err != nil {
		r.metrics.FragmentDropped("overflow")
		return SubmitResult{}, err
	}
	if !complete {
		return SubmitResult{}, nil
	}

	record.Seq = uint64(len(r.records)) + 1
	r.records = append(r.records, record)
	r.metrics.RecordCompleted()

	r.logger.Info().Str("conn", string(id)).Uint64("seq", record.Seq).Int("len", len(record.Payload)).Msg("order completed")

	published := record.Clone()
	r.publish(Event{Kind: EventRecord, ConnectionID: id, Record: &published})
	return SubmitResult{Record: record.Clone(), Complete: true}, nil
}

func (r *Registry) SetNotifications(id domain.ConnectionID, enabled bool) error {
	if err := id.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if state, ok := r.states[id]; ok && state.Phase == domain.PhaseDisconnected {
		return fmt.Errorf("set notifications for %s: %w", id, domain.ErrConnectionClosed)
	}

	if enabled {
		r.notifications[id] = true
	} else {
		delete(r.notifications, id)
	}

	r.publish(Event{Kind: EventNotifications, ConnectionID: id, Enabled: enabled})
	return nil
}

func (r *Registry) NotificationsEnabled(id domain.ConnectionID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.notifications[id]
}

func (r *Registry) ConnectionState(id domain.ConnectionID) (domain.ConnectionState, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, ok := r.states[id]
	return state, ok
}

// ConnectionStates returns a copy of the identity to state mapping.
func (r *Registry) ConnectionStates() map[domain.ConnectionID]domain.ConnectionState {
	r.mu.RLock()
	defer r.mu.RUnlock()

	states := make(map[domain.ConnectionID]domain.ConnectionState, len(r.states))
	for id, state := range r.states {
		states[id] = state
	}
	return states
}

// Records returns a copy of the order log in completion order.
func (r *Registry) Records() []domain.Record {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.recordsLocked()
}

func (r *Registry) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	connections := make([]ConnectionStatus, 0, len(r.states))
	for id, state := range r.states {
		connections = append(connections, ConnectionStatus{
			ID:                   id,
			State:                state,
			BufferedBytes:        r.reassembler.Buffered(id),
			NotificationsEnabled: r.notifications[id],
		})
	}
	sort.Slice(connections, func(i, j int) bool {
		return connections[i].ID < connections[j].ID
	})

	return Snapshot{
		TakenAt:     r.clock.Now(),
		Connections: connections,
		Records:     r.recordsLocked(),
	}
}

func (r *Registry) recordsLocked() []domain.Record {
	records := make([]domain.Record, 0, len(r.records))
	for _, record := range r.records {
		records = append(records, record.Clone())
	}
	return records
}

// Subscribe registers a watcher. Events are dropped for a watcher whose
// channel is full rather than blocking the writer.
func (r *Registry) Subscribe() (string, <-chan Event) {
	id := uuid.NewString()
	ch := make(chan Event, watcherBuffer)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		close(ch)
		return id, ch
	}
	r.watchers[id] = ch
	return id, ch
}

func (r *Registry) Unsubscribe(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ch, ok := r.watchers[id]; ok {
		close(ch)
		delete(r.watchers, id)
	}
}

// Close closes every watcher channel. The registry keeps answering queries.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true
	for id, ch := range r.watchers {
		close(ch)
		delete(r.watchers, id)
	}
}

func (r *Registry) publish(ev Event) {
	for id, ch := range r.watchers {
		select {
		case ch <- ev:
		default:
			r.logger.Debug().Str("watcher", id).Str("event", string(ev.Kind)).Msg("watcher full, event dropped")
		}
	}
}
