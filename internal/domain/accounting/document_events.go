package accounting

import (
	"github.com/openledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DocumentCreatedEvent is raised when a new document is created
type DocumentCreatedEvent struct {
	shared.BaseDomainEvent
	DocumentID uuid.UUID `json:"document_id"`
	DocNumber  string    `json:"doc_number"`
	DocType    DocType   `json:"doc_type"`
	ContactID  uuid.UUID `json:"contact_id"`
}

// EventType returns the event type name
func (e *DocumentCreatedEvent) EventType() string {
	return "DocumentCreated"
}

// NewDocumentCreatedEvent creates a new DocumentCreatedEvent
func NewDocumentCreatedEvent(d *Document) *DocumentCreatedEvent {
	return &DocumentCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("DocumentCreated", "Document", d.ID, d.CompanyID),
		DocumentID:      d.ID,
		DocNumber:       d.DocNumber,
		DocType:         d.DocType,
		ContactID:       d.ContactID,
	}
}

// DocumentStatusChangedEvent is raised when a document moves through its lifecycle
type DocumentStatusChangedEvent struct {
	shared.BaseDomainEvent
	DocumentID     uuid.UUID      `json:"document_id"`
	DocNumber      string         `json:"doc_number"`
	DocType        DocType        `json:"doc_type"`
	PreviousStatus DocumentStatus `json:"previous_status"`
	NewStatus      DocumentStatus `json:"new_status"`
}

// EventType returns the event type name
func (e *DocumentStatusChangedEvent) EventType() string {
	return "DocumentStatusChanged"
}

// NewDocumentStatusChangedEvent creates a new DocumentStatusChangedEvent
func NewDocumentStatusChangedEvent(d *Document, previous DocumentStatus) *DocumentStatusChangedEvent {
	return &DocumentStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("DocumentStatusChanged", "Document", d.ID, d.CompanyID),
		DocumentID:      d.ID,
		DocNumber:       d.DocNumber,
		DocType:         d.DocType,
		PreviousStatus:  previous,
		NewStatus:       d.Status,
	}
}

// DocumentPaidStateChangedEvent is raised after reconciliation rewrites
// the paid amount and payment state of a financial document
type DocumentPaidStateChangedEvent struct {
	shared.BaseDomainEvent
	DocumentID   uuid.UUID       `json:"document_id"`
	DocNumber    string          `json:"doc_number"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	PaidAmount   decimal.Decimal `json:"paid_amount"`
	PaymentState PaymentState    `json:"payment_state"`
}

// EventType returns the event type name
func (e *DocumentPaidStateChangedEvent) EventType() string {
	return "DocumentPaidStateChanged"
}

// NewDocumentPaidStateChangedEvent creates a new DocumentPaidStateChangedEvent
func NewDocumentPaidStateChangedEvent(d *Document) *DocumentPaidStateChangedEvent {
	return &DocumentPaidStateChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("DocumentPaidStateChanged", "Document", d.ID, d.CompanyID),
		DocumentID:      d.ID,
		DocNumber:       d.DocNumber,
		TotalAmount:     d.TotalAmount,
		PaidAmount:      d.PaidAmount,
		PaymentState:    d.PaymentState,
	}
}
