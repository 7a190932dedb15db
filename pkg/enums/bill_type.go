package enums

import "fmt"

// BillType categorizes a shared household bill.
type BillType string

const (
	BillTypeElectricity  BillType = "electricity"
	BillTypeWater        BillType = "water"
	BillTypeGas          BillType = "gas"
	BillTypeInternet     BillType = "internet"
	BillTypeRent         BillType = "rent"
	BillTypePhone        BillType = "phone"
	BillTypeInsurance    BillType = "insurance"
	BillTypeSubscription BillType = "subscription"
	BillTypeOther        BillType = "other"
)

var validBillTypes = []BillType{
	BillTypeElectricity,
	BillTypeWater,
	BillTypeGas,
	BillTypeInternet,
	BillTypeRent,
	BillTypePhone,
	BillTypeInsurance,
	BillTypeSubscription,
	BillTypeOther,
}

// String implements fmt.Stringer.
func (b BillType) String() string {
	return string(b)
}

// IsValid reports whether the value matches a known BillType.
func (b BillType) IsValid() bool {
	for _, candidate := range validBillTypes {
		if candidate == b {
			return true
		}
	}
	return false
}

// ParseBillType converts raw input into a BillType.
func ParseBillType(value string) (BillType, error) {
	for _, candidate := range validBillTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid bill type %q", value)
}
