package accounting

import (
	"github.com/openledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentCreatedEvent is raised when a new payment is created
type PaymentCreatedEvent struct {
	shared.BaseDomainEvent
	PaymentID     uuid.UUID       `json:"payment_id"`
	PaymentNumber string          `json:"payment_number"`
	ContactID     uuid.UUID       `json:"contact_id"`
	Amount        decimal.Decimal `json:"amount"`
}

// EventType returns the event type name
func (e *PaymentCreatedEvent) EventType() string {
	return "PaymentCreated"
}

// NewPaymentCreatedEvent creates a new PaymentCreatedEvent
func NewPaymentCreatedEvent(p *Payment) *PaymentCreatedEvent {
	return &PaymentCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PaymentCreated", "Payment", p.ID, p.CompanyID),
		PaymentID:       p.ID,
		PaymentNumber:   p.PaymentNumber,
		ContactID:       p.ContactID,
		Amount:          p.Amount,
	}
}

// PaymentStatusChangedEvent is raised when a payment is posted or voided.
// Reconciliation listens for this: allocation totals change whenever the
// owning payment's status changes, not only when allocations change.
type PaymentStatusChangedEvent struct {
	shared.BaseDomainEvent
	PaymentID      uuid.UUID     `json:"payment_id"`
	PaymentNumber  string        `json:"payment_number"`
	PreviousStatus PaymentStatus `json:"previous_status"`
	NewStatus      PaymentStatus `json:"new_status"`
}

// EventType returns the event type name
func (e *PaymentStatusChangedEvent) EventType() string {
	return "PaymentStatusChanged"
}

// NewPaymentStatusChangedEvent creates a new PaymentStatusChangedEvent
func NewPaymentStatusChangedEvent(p *Payment, previous PaymentStatus) *PaymentStatusChangedEvent {
	return &PaymentStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PaymentStatusChanged", "Payment", p.ID, p.CompanyID),
		PaymentID:       p.ID,
		PaymentNumber:   p.PaymentNumber,
		PreviousStatus:  previous,
		NewStatus:       p.Status,
	}
}
