package accounting

import (
	"fmt"
	"time"

	"github.com/openledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus represents the status of a payment
type PaymentStatus string

const (
	PaymentStatusDraft  PaymentStatus = "DRAFT"
	PaymentStatusPosted PaymentStatus = "POSTED"
	PaymentStatusVoid   PaymentStatus = "VOID"
)

// IsValid checks if the status is a valid PaymentStatus
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusDraft, PaymentStatusPosted, PaymentStatusVoid:
		return true
	}
	return false
}

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s PaymentStatus) CanTransitionTo(target PaymentStatus) bool {
	switch s {
	case PaymentStatusDraft:
		return target == PaymentStatusPosted || target == PaymentStatusVoid
	case PaymentStatusPosted:
		return target == PaymentStatusVoid
	case PaymentStatusVoid:
		return false
	}
	return false
}

// PaymentAllocation applies a portion of a payment against a financial document.
// Only allocations whose owning payment is POSTED count toward reconciliation.
type PaymentAllocation struct {
	ID         uuid.UUID
	PaymentID  uuid.UUID
	TargetType DocType
	TargetID   uuid.UUID
	Amount     decimal.Decimal
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Payment is the aggregate root for a customer or vendor payment and the
// allocations that apply it against invoices and bills.
type Payment struct {
	shared.CompanyAggregateRoot
	PaymentNumber string
	ContactID     uuid.UUID
	Amount        decimal.Decimal
	Status        PaymentStatus
	Allocations   []PaymentAllocation
	PostedAt      *time.Time
	VoidedAt      *time.Time
}

// NewPayment creates a new draft payment
func NewPayment(companyID uuid.UUID, paymentNumber string, contactID uuid.UUID, amount decimal.Decimal) (*Payment, error) {
	if companyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_COMPANY", "Company ID cannot be empty")
	}
	if paymentNumber == "" {
		return nil, shared.NewDomainError("INVALID_PAYMENT_NUMBER", "Payment number cannot be empty")
	}
	if contactID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CONTACT", "Contact ID cannot be empty")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}

	p := &Payment{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID),
		PaymentNumber:        paymentNumber,
		ContactID:            contactID,
		Amount:               amount,
		Status:               PaymentStatusDraft,
		Allocations:          make([]PaymentAllocation, 0),
	}

	p.AddDomainEvent(NewPaymentCreatedEvent(p))

	return p, nil
}

// AllocatedAmount returns the sum of all allocation amounts
func (p *Payment) AllocatedAmount() decimal.Decimal {
	total := decimal.Zero
	for _, a := range p.Allocations {
		total = total.Add(a.Amount)
	}
	return total
}

// Allocate applies a portion of the payment against a financial document.
// Allocations can only be changed while the payment is in draft.
func (p *Payment) Allocate(targetType DocType, targetID uuid.UUID, amount decimal.Decimal) (*PaymentAllocation, error) {
	if p.Status != PaymentStatusDraft {
		return nil, shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot allocate payment in %s status", p.Status))
	}
	if !targetType.IsFinancial() {
		return nil, shared.NewDomainError("INVALID_TARGET_TYPE", fmt.Sprintf("Cannot allocate against %s documents", targetType))
	}
	if targetID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TARGET", "Allocation target ID cannot be empty")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Allocation amount must be positive")
	}
	if p.AllocatedAmount().Add(amount).GreaterThan(p.Amount) {
		return nil, shared.NewDomainError("EXCEEDS_PAYMENT", fmt.Sprintf("Allocations would exceed payment amount %s", p.Amount))
	}

	now := time.Now()
	allocation := PaymentAllocation{
		ID:         uuid.New(),
		PaymentID:  p.ID,
		TargetType: targetType,
		TargetID:   targetID,
		Amount:     amount,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	p.Allocations = append(p.Allocations, allocation)
	p.UpdatedAt = now

	return &allocation, nil
}

// Post marks the payment as posted, after which its allocations count
// toward reconciliation of their targets.
func (p *Payment) Post() error {
	if !p.Status.CanTransitionTo(PaymentStatusPosted) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot post payment in %s status", p.Status))
	}

	now := time.Now()
	p.Status = PaymentStatusPosted
	p.PostedAt = &now
	p.UpdatedAt = now
	p.IncrementVersion()

	p.AddDomainEvent(NewPaymentStatusChangedEvent(p, PaymentStatusDraft))

	return nil
}

// Void voids the payment. Voided allocations stop counting toward
// reconciliation, so targets must be reconciled again after voiding.
func (p *Payment) Void() error {
	if !p.Status.CanTransitionTo(PaymentStatusVoid) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot void payment in %s status", p.Status))
	}

	previous := p.Status
	now := time.Now()
	p.Status = PaymentStatusVoid
	p.VoidedAt = &now
	p.UpdatedAt = now
	p.IncrementVersion()

	p.AddDomainEvent(NewPaymentStatusChangedEvent(p, previous))

	return nil
}

// IsPosted returns true if the payment is posted
func (p *Payment) IsPosted() bool {
	return p.Status == PaymentStatusPosted
}
