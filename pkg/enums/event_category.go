package enums

import "fmt"

// EventCategory labels calendar entries. The quick-add annotator infers one
// from free text on a best-effort basis; the value is never authoritative.
type EventCategory string

const (
	EventCategoryGeneral     EventCategory = "general"
	EventCategoryDate        EventCategory = "date"
	EventCategoryAppointment EventCategory = "appointment"
	EventCategoryTravel      EventCategory = "travel"
	EventCategoryCelebration EventCategory = "celebration"
	EventCategoryOther       EventCategory = "other"
)

var validEventCategories = []EventCategory{
	EventCategoryGeneral,
	EventCategoryDate,
	EventCategoryAppointment,
	EventCategoryTravel,
	EventCategoryCelebration,
	EventCategoryOther,
}

// String implements fmt.Stringer.
func (e EventCategory) String() string {
	return string(e)
}

// IsValid reports whether the value matches a known EventCategory.
func (e EventCategory) IsValid() bool {
	for _, candidate := range validEventCategories {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseEventCategory converts raw input into an EventCategory.
func ParseEventCategory(value string) (EventCategory, error) {
	for _, candidate := range validEventCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event category %q", value)
}
