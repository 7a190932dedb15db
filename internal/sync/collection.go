package sync

import (
	"sort"

	"github.com/google/uuid"

	"github.com/coupleshub/backend/pkg/enums"
)

// Item is anything a Collection can mirror.
type Item interface {
	ItemID() uuid.UUID
}

// ChangeEvent is one row-level mutation applied to a mirror.
type ChangeEvent[T Item] struct {
	Kind enums.ChangeKind
	Row  T
}

// Descriptor fixes the resource's display order.
type Descriptor[T Item] struct {
	Less func(a, b T) bool
}

// Collection is an ordered in-memory mirror of one couple-scoped table.
//
// Insert and delete are idempotent, update replaces the row wholesale by id
// (last write wins, no field merge). A change event racing the initial load
// may arrive before or after Replace; the idempotent operations absorb the
// double-apply, and an update for a row the mirror never saw is skipped
// rather than resurrected.
type Collection[T Item] struct {
	desc  Descriptor[T]
	items []T
	index map[uuid.UUID]int
}

// NewCollection builds an empty mirror ordered by the descriptor.
func NewCollection[T Item](desc Descriptor[T]) *Collection[T] {
	return &Collection[T]{
		desc:  desc,
		index: map[uuid.UUID]int{},
	}
}

// Replace swaps the full contents, resorted per the descriptor.
func (c *Collection[T]) Replace(items []T) {
	c.items = append([]T(nil), items...)
	c.resort()
}

// Apply folds one change event into the mirror.
func (c *Collection[T]) Apply(event ChangeEvent[T]) {
	id := event.Row.ItemID()
	switch event.Kind {
	case enums.ChangeKindInsert:
		if _, exists := c.index[id]; exists {
			return
		}
		c.items = append(c.items, event.Row)
		c.resort()

	case enums.ChangeKindUpdate:
		pos, exists := c.index[id]
		if !exists {
			return
		}
		c.items[pos] = event.Row
		c.resort()

	case enums.ChangeKindDelete:
		pos, exists := c.index[id]
		if !exists {
			return
		}
		c.items = append(c.items[:pos], c.items[pos+1:]...)
		c.resort()
	}
}

// Items returns a copy of the mirror in descriptor order.
func (c *Collection[T]) Items() []T {
	return append([]T(nil), c.items...)
}

// Len reports the number of mirrored rows.
func (c *Collection[T]) Len() int {
	return len(c.items)
}

// Get returns the mirrored row by id.
func (c *Collection[T]) Get(id uuid.UUID) (T, bool) {
	if pos, ok := c.index[id]; ok {
		return c.items[pos], true
	}
	var zero T
	return zero, false
}

func (c *Collection[T]) resort() {
	if c.desc.Less != nil {
		sort.SliceStable(c.items, func(i, j int) bool {
			return c.desc.Less(c.items[i], c.items[j])
		})
	}
	c.index = make(map[uuid.UUID]int, len(c.items))
	for i, item := range c.items {
		c.index[item.ItemID()] = i
	}
}
