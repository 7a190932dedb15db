package enums

import "fmt"

// RecurrencePeriod describes how often a recurring bill repeats.
type RecurrencePeriod string

const (
	RecurrencePeriodWeekly    RecurrencePeriod = "weekly"
	RecurrencePeriodMonthly   RecurrencePeriod = "monthly"
	RecurrencePeriodQuarterly RecurrencePeriod = "quarterly"
	RecurrencePeriodYearly    RecurrencePeriod = "yearly"
)

var validRecurrencePeriods = []RecurrencePeriod{
	RecurrencePeriodWeekly,
	RecurrencePeriodMonthly,
	RecurrencePeriodQuarterly,
	RecurrencePeriodYearly,
}

// String implements fmt.Stringer.
func (r RecurrencePeriod) String() string {
	return string(r)
}

// IsValid reports whether the value matches a known RecurrencePeriod.
func (r RecurrencePeriod) IsValid() bool {
	for _, candidate := range validRecurrencePeriods {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRecurrencePeriod converts raw input into a RecurrencePeriod.
func ParseRecurrencePeriod(value string) (RecurrencePeriod, error) {
	for _, candidate := range validRecurrencePeriods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid recurrence period %q", value)
}
