package enums

import "fmt"

// CourierStatus is the account standing of a delivery courier.
type CourierStatus string

const (
	CourierStatusActive    CourierStatus = "active"
	CourierStatusInactive  CourierStatus = "inactive"
	CourierStatusSuspended CourierStatus = "suspended"
)

var validCourierStatuses = []CourierStatus{
	CourierStatusActive,
	CourierStatusInactive,
	CourierStatusSuspended,
}

// String implements fmt.Stringer.
func (c CourierStatus) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CourierStatus.
func (c CourierStatus) IsValid() bool {
	for _, candidate := range validCourierStatuses {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCourierStatus converts raw input into a CourierStatus.
func ParseCourierStatus(value string) (CourierStatus, error) {
	for _, candidate := range validCourierStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid courier status %q", value)
}
