package accounting

import "github.com/shopspring/decimal"

// PaymentState is the settlement state of a financial document.
// It is always derived from (paid, total) via ComputePaymentState,
// never set independently.
type PaymentState string

const (
	PaymentStateNotPaid       PaymentState = "NOT_PAID"
	PaymentStatePartiallyPaid PaymentState = "PARTIALLY_PAID"
	PaymentStatePaid          PaymentState = "PAID"
)

// IsValid checks if the state is a valid PaymentState
func (s PaymentState) IsValid() bool {
	switch s {
	case PaymentStateNotPaid, PaymentStatePartiallyPaid, PaymentStatePaid:
		return true
	}
	return false
}

// String returns the string representation of PaymentState
func (s PaymentState) String() string {
	return string(s)
}

// ComputePaymentState derives the settlement state from paid and total amounts.
// Overpayment maps to PAID; there is no separate overpaid state. Comparisons
// are exact decimal comparisons, never epsilon-based.
func ComputePaymentState(paid, total decimal.Decimal) PaymentState {
	switch {
	case paid.GreaterThanOrEqual(total):
		return PaymentStatePaid
	case paid.IsPositive():
		return PaymentStatePartiallyPaid
	default:
		return PaymentStateNotPaid
	}
}
