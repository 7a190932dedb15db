package enums

import "fmt"

// ChangeKind is the kind of row-level change delivered to realtime
// subscribers, mirroring the remote table's insert/update/delete stream.
type ChangeKind string

const (
	ChangeKindInsert ChangeKind = "insert"
	ChangeKindUpdate ChangeKind = "update"
	ChangeKindDelete ChangeKind = "delete"
)

var validChangeKinds = []ChangeKind{
	ChangeKindInsert,
	ChangeKindUpdate,
	ChangeKindDelete,
}

// String implements fmt.Stringer.
func (c ChangeKind) String() string {
	return string(c)
}

// IsValid reports whether the value matches a known ChangeKind.
func (c ChangeKind) IsValid() bool {
	for _, candidate := range validChangeKinds {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseChangeKind converts raw input into a ChangeKind.
func ParseChangeKind(value string) (ChangeKind, error) {
	for _, candidate := range validChangeKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid change kind %q", value)
}
