package sync

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/coupleshub/backend/pkg/enums"
	"github.com/coupleshub/backend/pkg/logger"
	"github.com/coupleshub/backend/pkg/outbox"
)

// Consumer watches the domain subscription and feeds the realtime hub.
//
// Delivery to subscribers is at-least-once; duplicated events are absorbed by
// the idempotent Collection operations on the receiving side, so no dedup
// state is kept here.
type Consumer struct {
	hub          *Hub
	subscription *pubsub.Subscriber
	logg         *logger.Logger
}

// NewConsumer builds a realtime consumer over the domain subscription.
func NewConsumer(hub *Hub, subscription *pubsub.Subscriber, logg *logger.Logger) (*Consumer, error) {
	if hub == nil {
		return nil, fmt.Errorf("hub required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("domain subscription required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		hub:          hub,
		subscription: subscription,
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		c.process(ctx, msg)
		msg.Ack()
	})
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) {
	eventType := msg.Attributes["event_type"]
	fields := map[string]any{
		"message_id": msg.ID,
		"event_type": eventType,
	}
	logCtx := c.logg.WithFields(ctx, fields)

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return
	}

	switch eventType {
	case string(enums.EventResourceChanged):
		c.broadcastRowChange(logCtx, envelope)
	case string(enums.EventCoupleActivated):
		c.broadcastActivation(logCtx, envelope)
	default:
		c.logg.Info(logCtx, "skipping non-realtime event")
	}
}

func (c *Consumer) broadcastRowChange(ctx context.Context, envelope outbox.PayloadEnvelope) {
	var change outbox.RowChange
	if err := json.Unmarshal(envelope.Data, &change); err != nil {
		c.logg.Error(ctx, "failed to parse row change", err)
		return
	}
	if change.CoupleID == uuid.Nil {
		c.logg.Error(ctx, "row change missing couple id", nil)
		return
	}

	c.hub.Broadcast(change.CoupleID, ChangeEnvelope{
		Table:    string(change.Table),
		Kind:     string(change.Kind),
		CoupleID: change.CoupleID,
		Row:      change.Row,
	})
}

// broadcastActivation surfaces couple.activated on the stream so a pending
// partner learns the pairing completed without polling.
func (c *Consumer) broadcastActivation(ctx context.Context, envelope outbox.PayloadEnvelope) {
	var payload struct {
		CoupleID uuid.UUID `json:"couple_id"`
	}
	if err := json.Unmarshal(envelope.Data, &payload); err != nil {
		c.logg.Error(ctx, "failed to parse activation payload", err)
		return
	}
	if payload.CoupleID == uuid.Nil {
		c.logg.Error(ctx, "activation missing couple id", nil)
		return
	}

	c.hub.Broadcast(payload.CoupleID, ChangeEnvelope{
		Table:    string(enums.AggregateCoupleRelationship),
		Kind:     string(enums.ChangeKindUpdate),
		CoupleID: payload.CoupleID,
		Row:      envelope.Data,
	})
}
