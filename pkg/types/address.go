package types

import (
	"fmt"
	"strings"
)

// DeliveryAddress is the drop-off location snapshot stored on each order.
// Latitude/longitude are mandatory so courier routing always has a fix.
type DeliveryAddress struct {
	Street    string  `json:"street"`
	City      string  `json:"city"`
	State     string  `json:"state,omitempty"`
	Pincode   string  `json:"pincode"`
	Landmark  string  `json:"landmark,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Validate enforces the fields an order cannot be delivered without.
func (a DeliveryAddress) Validate() error {
	if strings.TrimSpace(a.City) == "" {
		return fmt.Errorf("address: missing city")
	}
	if strings.TrimSpace(a.Pincode) == "" {
		return fmt.Errorf("address: missing pincode")
	}
	if a.Latitude < -90 || a.Latitude > 90 {
		return fmt.Errorf("address: latitude %v out of range [-90,90]", a.Latitude)
	}
	if a.Longitude < -180 || a.Longitude > 180 {
		return fmt.Errorf("address: longitude %v out of range [-180,180]", a.Longitude)
	}
	return nil
}
