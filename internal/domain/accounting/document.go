package accounting

import (
	"fmt"
	"time"

	"github.com/openledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DocumentLine represents one line of a document. Lines carry the analytic
// assignment that was resolved (or explicitly supplied) when the document
// was created, plus the audit trail of which rule produced it.
type DocumentLine struct {
	ID                 uuid.UUID
	DocumentID         uuid.UUID
	ProductID          *uuid.UUID
	CategoryID         *uuid.UUID
	Description        string
	Quantity           decimal.Decimal
	UnitPrice          decimal.Decimal
	TaxRate            decimal.Decimal // percentage, e.g. 18 for 18%
	LineTotal          decimal.Decimal // Quantity * UnitPrice * (1 + TaxRate/100)
	AnalyticAccountID  *uuid.UUID
	AnalyticModelID    *uuid.UUID
	AnalyticRuleID     *uuid.UUID
	MatchedFieldsCount int // populated match fields on the winning rule, audit only
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// NewDocumentLine creates a document line and computes its total.
func NewDocumentLine(
	productID, categoryID *uuid.UUID,
	description string,
	quantity, unitPrice, taxRate decimal.Decimal,
) (*DocumentLine, error) {
	if quantity.IsNegative() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Line quantity cannot be negative")
	}
	if taxRate.IsNegative() {
		return nil, shared.NewDomainError("INVALID_TAX_RATE", "Line tax rate cannot be negative")
	}

	now := time.Now()
	return &DocumentLine{
		ID:          uuid.New(),
		ProductID:   productID,
		CategoryID:  categoryID,
		Description: description,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		TaxRate:     taxRate,
		LineTotal:   computeLineTotal(quantity, unitPrice, taxRate),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// computeLineTotal returns qty * unitPrice * (1 + taxRate/100)
func computeLineTotal(quantity, unitPrice, taxRate decimal.Decimal) decimal.Decimal {
	gross := quantity.Mul(unitPrice)
	factor := decimal.NewFromInt(1).Add(taxRate.Div(decimal.NewFromInt(100)))
	return gross.Mul(factor)
}

// AssignAnalytic records an analytic assignment on the line.
func (l *DocumentLine) AssignAnalytic(assignment *AnalyticAssignment) {
	if assignment == nil {
		return
	}
	accountID := assignment.AnalyticAccountID
	modelID := assignment.ModelID
	ruleID := assignment.RuleID
	l.AnalyticAccountID = &accountID
	l.AnalyticModelID = &modelID
	l.AnalyticRuleID = &ruleID
	l.MatchedFieldsCount = assignment.MatchedFieldsCount
}

// OverrideAnalyticAccount records a caller-supplied analytic account.
// An explicit override always wins over automatic resolution, so no
// model/rule audit trail is attached.
func (l *DocumentLine) OverrideAnalyticAccount(accountID uuid.UUID) {
	l.AnalyticAccountID = &accountID
	l.AnalyticModelID = nil
	l.AnalyticRuleID = nil
	l.MatchedFieldsCount = 0
}

// Document is the aggregate root for orders and financial documents.
// Vendor bills, customer invoices, purchase orders and sales orders share
// this structure; the DocType selects the lifecycle machine, and only
// financial documents carry a meaningful payment state.
type Document struct {
	shared.CompanyAggregateRoot
	DocNumber    string
	DocType      DocType
	ContactID    uuid.UUID
	Status       DocumentStatus
	TotalAmount  decimal.Decimal
	PaidAmount   decimal.Decimal
	PaymentState PaymentState
	Lines        []DocumentLine
	PostedAt     *time.Time
	CancelledAt  *time.Time
}

// NewDocument creates a new document in draft state with zero totals.
func NewDocument(companyID uuid.UUID, docNumber string, docType DocType, contactID uuid.UUID) (*Document, error) {
	if companyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_COMPANY", "Company ID cannot be empty")
	}
	if docNumber == "" {
		return nil, shared.NewDomainError("INVALID_DOC_NUMBER", "Document number cannot be empty")
	}
	if !docType.IsValid() {
		return nil, shared.NewDomainError("INVALID_DOC_TYPE", fmt.Sprintf("Unknown document type %q", docType))
	}
	if contactID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CONTACT", "Contact ID cannot be empty")
	}

	doc := &Document{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID),
		DocNumber:            docNumber,
		DocType:              docType,
		ContactID:            contactID,
		Status:               StatusDraft,
		TotalAmount:          decimal.Zero,
		PaidAmount:           decimal.Zero,
		PaymentState:         PaymentStateNotPaid,
		Lines:                make([]DocumentLine, 0),
	}

	doc.AddDomainEvent(NewDocumentCreatedEvent(doc))

	return doc, nil
}

// AddLine appends a line to a draft document.
func (d *Document) AddLine(line *DocumentLine) error {
	if d.Status != StatusDraft {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot add lines to document in %s status", d.Status))
	}
	line.DocumentID = d.ID
	d.Lines = append(d.Lines, *line)
	d.UpdatedAt = time.Now()
	return nil
}

// RecalculateTotal sums line totals into TotalAmount and re-derives the
// payment state. A brand-new document has zero paid amount, so its state
// comes out of ComputePaymentState(0, total).
func (d *Document) RecalculateTotal() {
	total := decimal.Zero
	for _, line := range d.Lines {
		total = total.Add(line.LineTotal)
	}
	d.TotalAmount = total
	d.PaymentState = ComputePaymentState(d.PaidAmount, d.TotalAmount)
	d.UpdatedAt = time.Now()
}

// TransitionTo moves the document through its lifecycle machine.
// A transition to CANCELLED never alters PaidAmount or PaymentState:
// the historical payment record is preserved on cancellation.
func (d *Document) TransitionTo(next DocumentStatus) error {
	if err := AssertTransition(d.DocType, d.Status, next); err != nil {
		return err
	}
	if d.Status == next {
		return nil
	}

	previous := d.Status
	now := time.Now()
	d.Status = next
	switch next {
	case StatusPosted:
		d.PostedAt = &now
	case StatusCancelled:
		d.CancelledAt = &now
	}
	d.UpdatedAt = now
	d.IncrementVersion()

	d.AddDomainEvent(NewDocumentStatusChangedEvent(d, previous))

	return nil
}

// ApplyPaidState records a freshly reconciled paid amount and the state
// derived from it. Only the reconciliation service calls this; no other
// code path writes these two fields.
func (d *Document) ApplyPaidState(paidAmount decimal.Decimal, state PaymentState) error {
	if !d.DocType.IsFinancial() {
		return shared.NewDomainError("INVALID_DOC_TYPE", fmt.Sprintf("%s documents do not carry a payment state", d.DocType))
	}
	if !state.IsValid() {
		return shared.NewDomainError("INVALID_PAYMENT_STATE", fmt.Sprintf("Unknown payment state %q", state))
	}

	d.PaidAmount = paidAmount
	d.PaymentState = state
	d.UpdatedAt = time.Now()
	d.IncrementVersion()

	d.AddDomainEvent(NewDocumentPaidStateChangedEvent(d))

	return nil
}

// IsDraft returns true if the document is in draft
func (d *Document) IsDraft() bool {
	return d.Status == StatusDraft
}

// IsCancelled returns true if the document is cancelled
func (d *Document) IsCancelled() bool {
	return d.Status == StatusCancelled
}

// IsSettled returns true if the document is fully paid
func (d *Document) IsSettled() bool {
	return d.PaymentState == PaymentStatePaid
}

// LineCount returns the number of lines on the document
func (d *Document) LineCount() int {
	return len(d.Lines)
}
