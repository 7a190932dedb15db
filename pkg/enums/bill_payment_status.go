package enums

import "fmt"

// BillPaymentStatus tracks whether a bill has been settled by either partner.
type BillPaymentStatus string

const (
	BillPaymentStatusPending BillPaymentStatus = "pending"
	BillPaymentStatusPaid    BillPaymentStatus = "paid"
)

var validBillPaymentStatuses = []BillPaymentStatus{
	BillPaymentStatusPending,
	BillPaymentStatusPaid,
}

// String implements fmt.Stringer.
func (b BillPaymentStatus) String() string {
	return string(b)
}

// IsValid reports whether the value is a known BillPaymentStatus.
func (b BillPaymentStatus) IsValid() bool {
	for _, candidate := range validBillPaymentStatuses {
		if candidate == b {
			return true
		}
	}
	return false
}

// ParseBillPaymentStatus converts raw input into a BillPaymentStatus.
func ParseBillPaymentStatus(value string) (BillPaymentStatus, error) {
	for _, candidate := range validBillPaymentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid bill payment status %q", value)
}
