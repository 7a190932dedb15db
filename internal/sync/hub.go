package sync

import (
	"encoding/json"
	stdsync "sync"

	"github.com/google/uuid"

	"github.com/coupleshub/backend/pkg/metrics"
)

const subscriberBuffer = 16

// ChangeEnvelope is the wire shape streamed to realtime subscribers.
type ChangeEnvelope struct {
	Table    string          `json:"table"`
	Kind     string          `json:"kind"`
	CoupleID uuid.UUID       `json:"couple_id"`
	Row      json.RawMessage `json:"row"`
}

// Hub fans change envelopes out to per-couple subscribers.
type Hub struct {
	mu      stdsync.Mutex
	nextID  uint64
	streams map[uuid.UUID]map[uint64]chan ChangeEnvelope
	metrics *metrics.RealtimeMetrics
}

// NewHub builds an empty subscriber registry.
func NewHub(m *metrics.RealtimeMetrics) *Hub {
	return &Hub{
		streams: map[uuid.UUID]map[uint64]chan ChangeEnvelope{},
		metrics: m,
	}
}

// Subscribe registers a listener for the couple's changes. The returned cancel
// func must be called when the consumer goes away; it closes the channel and
// releases the slot.
func (h *Hub) Subscribe(coupleID uuid.UUID) (<-chan ChangeEnvelope, func()) {
	ch := make(chan ChangeEnvelope, subscriberBuffer)

	h.mu.Lock()
	h.nextID++
	id := h.nextID
	if h.streams[coupleID] == nil {
		h.streams[coupleID] = map[uint64]chan ChangeEnvelope{}
	}
	h.streams[coupleID][id] = ch
	h.mu.Unlock()

	h.metrics.IncSubscribers()

	var once stdsync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			if subs, ok := h.streams[coupleID]; ok {
				if _, live := subs[id]; live {
					delete(subs, id)
					close(ch)
				}
				if len(subs) == 0 {
					delete(h.streams, coupleID)
				}
			}
			h.mu.Unlock()
			h.metrics.DecSubscribers()
		})
	}
	return ch, cancel
}

// Broadcast delivers the envelope to every subscriber of the couple without
// blocking. A subscriber whose buffer is full misses the event. Sends happen
// under the same lock that guards cancel's close, so a subscriber tearing
// down mid-broadcast can never turn a send into a send-on-closed-channel.
func (h *Hub) Broadcast(coupleID uuid.UUID, envelope ChangeEnvelope) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range h.streams[coupleID] {
		select {
		case ch <- envelope:
			h.metrics.IncDelivered(envelope.Table)
		default:
			h.metrics.IncDropped(envelope.Table)
		}
	}
}

// SubscriberCount reports live subscriptions for the couple.
func (h *Hub) SubscriberCount(coupleID uuid.UUID) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.streams[coupleID])
}
