package domain

import "github.com/shopspring/decimal"

const (
	EventTypeRentCharge      = "RentCharge"
	EventTypePaymentReceived = "PaymentReceived"
	EventTypeLateFee         = "LateFee"
	EventTypeAdjustment      = "Adjustment"
	EventTypeUnknown         = "Unknown"
)

// Display defaults applied by the event source when a tenant record is
// missing the denormalized fields. They are part of the hashed payload.
const (
	UnknownTenantName   = "Unknown tenant"
	UnknownPropertyName = "Unknown property"
)

// LedgerEvent is a single rent ledger occurrence as supplied by the event
// source. A nil pointer or an invalid Amount means the field is absent, which
// is hashed differently from an empty value.
type LedgerEvent struct {
	ID           *string
	Type         string
	Date         *string
	TenantID     *string
	TenantName   *string
	PropertyName *string
	Unit         *string
	Amount       decimal.NullDecimal
	Method       *string
	Notes        *string
}

func StringPtr(s string) *string {
	return &s
}

func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
