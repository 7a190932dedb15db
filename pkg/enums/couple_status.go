package enums

import "fmt"

// CoupleStatus captures the lifecycle of a couple relationship.
// The transition pending -> active is one-way; there is no revocation path.
type CoupleStatus string

const (
	CoupleStatusPending CoupleStatus = "pending"
	CoupleStatusActive  CoupleStatus = "active"
)

var validCoupleStatuses = []CoupleStatus{
	CoupleStatusPending,
	CoupleStatusActive,
}

// String implements fmt.Stringer.
func (c CoupleStatus) String() string {
	return string(c)
}

// IsValid reports whether the value matches a known CoupleStatus.
func (c CoupleStatus) IsValid() bool {
	for _, candidate := range validCoupleStatuses {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCoupleStatus converts raw input into a CoupleStatus.
func ParseCoupleStatus(value string) (CoupleStatus, error) {
	for _, candidate := range validCoupleStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid couple status %q", value)
}
