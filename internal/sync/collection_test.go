package sync

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/coupleshub/backend/pkg/enums"
)

type testRow struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
}

func (r testRow) ItemID() uuid.UUID { return r.ID }

func newestFirst() Descriptor[testRow] {
	return Descriptor[testRow]{
		Less: func(a, b testRow) bool { return a.CreatedAt.After(b.CreatedAt) },
	}
}

func row(name string, age time.Duration) testRow {
	return testRow{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: time.Now().Add(-age),
	}
}

func names(items []testRow) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Name)
	}
	return out
}

func TestReplaceSortsByDescriptor(t *testing.T) {
	c := NewCollection(newestFirst())

	old := row("old", 2*time.Hour)
	mid := row("mid", time.Hour)
	recent := row("recent", time.Minute)

	c.Replace([]testRow{old, recent, mid})

	got := names(c.Items())
	want := []string{"recent", "mid", "old"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order mismatch: got %v want %v", got, want)
		}
	}
}

func TestReplaceEmptyLeavesNothing(t *testing.T) {
	c := NewCollection(newestFirst())
	c.Replace([]testRow{row("a", time.Hour)})
	c.Replace(nil)
	if c.Len() != 0 {
		t.Fatalf("expected empty collection, got %d items", c.Len())
	}
}

func TestInsertIsIdempotent(t *testing.T) {
	c := NewCollection(newestFirst())
	r := row("only", time.Hour)

	c.Apply(ChangeEvent[testRow]{Kind: enums.ChangeKindInsert, Row: r})
	c.Apply(ChangeEvent[testRow]{Kind: enums.ChangeKindInsert, Row: r})

	if c.Len() != 1 {
		t.Fatalf("expected duplicate insert to be absorbed, got %d items", c.Len())
	}
}

func TestUpdateReplacesWholesale(t *testing.T) {
	c := NewCollection(newestFirst())
	r := row("before", time.Hour)
	c.Replace([]testRow{r})

	updated := r
	updated.Name = "after"
	updated.CreatedAt = time.Now()
	c.Apply(ChangeEvent[testRow]{Kind: enums.ChangeKindUpdate, Row: updated})

	got, ok := c.Get(r.ID)
	if !ok {
		t.Fatalf("row missing after update")
	}
	if got.Name != "after" {
		t.Fatalf("expected wholesale replace, got %q", got.Name)
	}
}

func TestUpdateForUnknownRowIsSkipped(t *testing.T) {
	c := NewCollection(newestFirst())
	c.Apply(ChangeEvent[testRow]{Kind: enums.ChangeKindUpdate, Row: row("ghost", time.Hour)})
	if c.Len() != 0 {
		t.Fatalf("expected unknown update to be skipped, got %d items", c.Len())
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	c := NewCollection(newestFirst())
	r := row("gone", time.Hour)
	c.Replace([]testRow{r})

	c.Apply(ChangeEvent[testRow]{Kind: enums.ChangeKindDelete, Row: r})
	c.Apply(ChangeEvent[testRow]{Kind: enums.ChangeKindDelete, Row: r})

	if c.Len() != 0 {
		t.Fatalf("expected empty collection, got %d items", c.Len())
	}
}

func TestInsertKeepsDescriptorOrder(t *testing.T) {
	c := NewCollection(newestFirst())
	c.Replace([]testRow{row("old", 2 * time.Hour), row("mid", time.Hour)})

	c.Apply(ChangeEvent[testRow]{Kind: enums.ChangeKindInsert, Row: row("new", time.Second)})

	got := names(c.Items())
	if got[0] != "new" {
		t.Fatalf("expected newest row first, got %v", got)
	}
}
