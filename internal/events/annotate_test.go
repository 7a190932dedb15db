package events

import (
	"testing"

	"github.com/coupleshub/backend/pkg/enums"
)

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func TestAnnotateExtractsTimeLocationAndCategory(t *testing.T) {
	cases := []struct {
		name     string
		text     string
		title    string
		time     string
		location string
		category enums.EventCategory
	}{
		{
			name:     "time before trailing place",
			text:     "dinner at Luigi's 7pm",
			title:    "dinner",
			time:     "19:00",
			location: "Luigi's",
			category: enums.EventCategoryDate,
		},
		{
			name:     "place after time is captured",
			text:     "dinner 7pm at Luigi's",
			title:    "dinner",
			time:     "19:00",
			location: "Luigi's",
			category: enums.EventCategoryDate,
		},
		{
			name:     "appointment with 24h clock",
			text:     "doctor checkup 10:30",
			title:    "doctor checkup",
			time:     "10:30",
			category: enums.EventCategoryAppointment,
		},
		{
			name:     "travel keyword",
			text:     "flight 6:45am at SFO",
			title:    "flight",
			time:     "06:45",
			location: "SFO",
			category: enums.EventCategoryTravel,
		},
		{
			name:     "celebration keyword",
			text:     "mom's birthday party",
			title:    "mom's birthday party",
			category: enums.EventCategoryCelebration,
		},
		{
			name:     "plain text stays general",
			text:     "pick up dry cleaning",
			title:    "pick up dry cleaning",
			category: enums.EventCategoryGeneral,
		},
		{
			name:     "midnight normalizes to zero hour",
			text:     "airport shuttle 12am",
			title:    "airport shuttle",
			time:     "00:00",
			category: enums.EventCategoryTravel,
		},
		{
			name:     "noon stays twelve",
			text:     "brunch 12pm",
			title:    "brunch",
			time:     "12:00",
			category: enums.EventCategoryDate,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ann := Annotate(tc.text)
			if ann.Title != tc.title {
				t.Fatalf("title: expected %q, got %q", tc.title, ann.Title)
			}
			if got := strOrEmpty(ann.Time); got != tc.time {
				t.Fatalf("time: expected %q, got %q", tc.time, got)
			}
			if got := strOrEmpty(ann.Location); got != tc.location {
				t.Fatalf("location: expected %q, got %q", tc.location, got)
			}
			if ann.Category != tc.category {
				t.Fatalf("category: expected %s, got %s", tc.category, ann.Category)
			}
		})
	}
}

func TestAnnotateEmptyText(t *testing.T) {
	ann := Annotate("   ")
	if ann.Title != "" || ann.Time != nil || ann.Location != nil {
		t.Fatalf("expected empty annotation, got %+v", ann)
	}
	if ann.Category != enums.EventCategoryGeneral {
		t.Fatalf("expected general category, got %s", ann.Category)
	}
}

func TestDefaultColorCoversEveryCategory(t *testing.T) {
	seen := map[string]enums.EventCategory{}
	for _, category := range []enums.EventCategory{
		enums.EventCategoryDate,
		enums.EventCategoryAppointment,
		enums.EventCategoryTravel,
		enums.EventCategoryCelebration,
	} {
		color := defaultColor(category)
		if color == "" {
			t.Fatalf("no color for %s", category)
		}
		if prev, dup := seen[color]; dup {
			t.Fatalf("color %s shared by %s and %s", color, prev, category)
		}
		seen[color] = category
	}
	if defaultColor(enums.EventCategoryGeneral) == "" {
		t.Fatalf("general category needs a fallback color")
	}
}
