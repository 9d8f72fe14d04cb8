package enums

import "fmt"

// WalletEntryType distinguishes money entering or leaving a wallet.
type WalletEntryType string

const (
	WalletEntryTypeCredit WalletEntryType = "credit"
	WalletEntryTypeDebit  WalletEntryType = "debit"
)

var validWalletEntryTypes = []WalletEntryType{
	WalletEntryTypeCredit,
	WalletEntryTypeDebit,
}

// String implements fmt.Stringer.
func (w WalletEntryType) String() string {
	return string(w)
}

// IsValid reports whether the value is a known WalletEntryType.
func (w WalletEntryType) IsValid() bool {
	for _, candidate := range validWalletEntryTypes {
		if candidate == w {
			return true
		}
	}
	return false
}

// WalletEntryStatus is fixed at entry creation; entries never transition.
type WalletEntryStatus string

const (
	WalletEntryStatusCompleted WalletEntryStatus = "completed"
	WalletEntryStatusPending   WalletEntryStatus = "pending"
	WalletEntryStatusFailed    WalletEntryStatus = "failed"
)

var validWalletEntryStatuses = []WalletEntryStatus{
	WalletEntryStatusCompleted,
	WalletEntryStatusPending,
	WalletEntryStatusFailed,
}

// String implements fmt.Stringer.
func (w WalletEntryStatus) String() string {
	return string(w)
}

// IsValid reports whether the value is a known WalletEntryStatus.
func (w WalletEntryStatus) IsValid() bool {
	for _, candidate := range validWalletEntryStatuses {
		if candidate == w {
			return true
		}
	}
	return false
}

// ParseWalletEntryType converts raw input into a WalletEntryType.
func ParseWalletEntryType(value string) (WalletEntryType, error) {
	for _, candidate := range validWalletEntryTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid wallet entry type %q", value)
}
