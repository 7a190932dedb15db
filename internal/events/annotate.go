package events

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/coupleshub/backend/pkg/enums"
)

// Annotation is what the quick-add annotator could infer from free text.
// Every field is best-effort; a miss leaves the zero value and the event is
// still valid.
type Annotation struct {
	Title    string
	Time     *string
	Location *string
	Category enums.EventCategory
}

var (
	clockRe    = regexp.MustCompile(`\b([01]?\d|2[0-3]):([0-5]\d)\b`)
	meridiemRe = regexp.MustCompile(`(?i)\b(1[0-2]|0?[1-9])(?::([0-5]\d))?\s*(am|pm)\b`)
	atTailRe   = regexp.MustCompile(`(?i)\s+at\s+([^@]+)$`)
)

// first match wins, so the order is fixed
var categoryKeywords = []struct {
	category enums.EventCategory
	keywords []string
}{
	{enums.EventCategoryAppointment, []string{"doctor", "dentist", "appointment", "checkup", "vet"}},
	{enums.EventCategoryTravel, []string{"flight", "trip", "travel", "vacation", "airport"}},
	{enums.EventCategoryCelebration, []string{"birthday", "anniversary", "party", "wedding"}},
	{enums.EventCategoryDate, []string{"dinner", "date", "movie", "picnic", "brunch"}},
}

// Annotate extracts a time, a trailing "at <place>" location, and a keyword
// category from the text. Whatever remains becomes the title.
func Annotate(text string) Annotation {
	ann := Annotation{Category: enums.EventCategoryGeneral}
	remaining := strings.TrimSpace(text)
	if remaining == "" {
		return ann
	}

	if t, rest, ok := extractTime(remaining); ok {
		ann.Time = &t
		remaining = rest
	}

	if m := atTailRe.FindStringSubmatch(remaining); m != nil {
		place := strings.TrimSpace(m[1])
		if place != "" {
			ann.Location = &place
			remaining = strings.TrimSpace(remaining[:len(remaining)-len(m[0])])
		}
	}

	lower := strings.ToLower(remaining)
match:
	for _, entry := range categoryKeywords {
		for _, keyword := range entry.keywords {
			if strings.Contains(lower, keyword) {
				ann.Category = entry.category
				break match
			}
		}
	}

	ann.Title = strings.TrimSpace(remaining)
	return ann
}

// extractTime finds either HH:MM or h[:mm] am/pm and normalizes to HH:MM.
func extractTime(text string) (string, string, bool) {
	if m := meridiemRe.FindStringSubmatch(text); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute := 0
		if m[2] != "" {
			minute, _ = strconv.Atoi(m[2])
		}
		if strings.EqualFold(m[3], "pm") && hour != 12 {
			hour += 12
		}
		if strings.EqualFold(m[3], "am") && hour == 12 {
			hour = 0
		}
		rest := strings.TrimSpace(strings.Replace(text, m[0], "", 1))
		return fmt.Sprintf("%02d:%02d", hour, minute), rest, true
	}

	if m := clockRe.FindStringSubmatch(text); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		rest := strings.TrimSpace(strings.Replace(text, m[0], "", 1))
		return fmt.Sprintf("%02d:%02d", hour, minute), rest, true
	}

	return "", text, false
}

// defaultColor maps each category to its calendar swatch.
func defaultColor(category enums.EventCategory) string {
	switch category {
	case enums.EventCategoryDate:
		return "#e91e63"
	case enums.EventCategoryAppointment:
		return "#2196f3"
	case enums.EventCategoryTravel:
		return "#ff9800"
	case enums.EventCategoryCelebration:
		return "#9c27b0"
	default:
		return "#4caf50"
	}
}
