package enums

import "fmt"

// OutboxEventType identifies the domain event stored in outbox_events.
type OutboxEventType string

const (
	EventCoupleInvited   OutboxEventType = "couple.invited"
	EventCoupleActivated OutboxEventType = "couple.activated"
	EventResourceChanged OutboxEventType = "resource.changed"
)

var validOutboxEventTypes = []OutboxEventType{
	EventCoupleInvited,
	EventCoupleActivated,
	EventResourceChanged,
}

// String implements fmt.Stringer.
func (o OutboxEventType) String() string {
	return string(o)
}

// IsValid reports whether the value matches a known OutboxEventType.
func (o OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into an OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid outbox event type %q", value)
}

// OutboxAggregateType names the table a domain event belongs to.
type OutboxAggregateType string

const (
	AggregateCoupleRelationship OutboxAggregateType = "couple_relationships"
	AggregateEvent              OutboxAggregateType = "events"
	AggregateTodo               OutboxAggregateType = "todos"
	AggregateGroceryItem        OutboxAggregateType = "grocery_items"
	AggregateBill               OutboxAggregateType = "bills"
)

var validOutboxAggregateTypes = []OutboxAggregateType{
	AggregateCoupleRelationship,
	AggregateEvent,
	AggregateTodo,
	AggregateGroceryItem,
	AggregateBill,
}

// String implements fmt.Stringer.
func (o OutboxAggregateType) String() string {
	return string(o)
}

// IsValid reports whether the value matches a known OutboxAggregateType.
func (o OutboxAggregateType) IsValid() bool {
	for _, candidate := range validOutboxAggregateTypes {
		if candidate == o {
			return true
		}
	}
	return false
}
