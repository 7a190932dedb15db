package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/coupleshub/backend/pkg/enums"
)

// ActorRef identifies who produced the event.
type ActorRef struct {
	UserID   uuid.UUID  `json:"userId"`
	CoupleID *uuid.UUID `json:"coupleId,omitempty"`
}

// PayloadEnvelope is the stable payload structure stored in outbox_events.
type PayloadEnvelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Actor      *ActorRef       `json:"actor,omitempty"`
	Data       json.RawMessage `json:"data"`
}

// RowChange is the data payload for resource.changed events: one row-level
// mutation on a couple-scoped table, mirrored to realtime subscribers.
type RowChange struct {
	Table    enums.OutboxAggregateType `json:"table"`
	Kind     enums.ChangeKind          `json:"kind"`
	CoupleID uuid.UUID                 `json:"coupleId"`
	Row      json.RawMessage           `json:"row"`
}
