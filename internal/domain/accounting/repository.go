package accounting

import (
	"context"

	"github.com/openledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AnalyticRuleModelFilter defines filtering options for rule model queries
type AnalyticRuleModelFilter struct {
	shared.Filter
	IsActive *bool
}

// AnalyticRuleModelRepository defines the interface for rule model persistence
type AnalyticRuleModelRepository interface {
	// FindByID finds a rule model by ID
	FindByID(ctx context.Context, id uuid.UUID) (*AnalyticRuleModel, error)

	// FindByIDForCompany finds a rule model by ID for a specific company
	FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*AnalyticRuleModel, error)

	// FindAllForCompany finds all rule models for a company with filtering
	FindAllForCompany(ctx context.Context, companyID uuid.UUID, filter AnalyticRuleModelFilter) ([]AnalyticRuleModel, error)

	// ListActiveModels loads the active rule models for a company that contain
	// at least one rule for the given doc type, ordered by priority ascending
	// with creation order breaking ties. Rules within each model are ordered by
	// rule priority ascending, creation order breaking ties.
	ListActiveModels(ctx context.Context, companyID uuid.UUID, docType DocType) ([]AnalyticRuleModel, error)

	// Save creates or updates a rule model and its rules
	Save(ctx context.Context, model *AnalyticRuleModel) error

	// CountForCompany counts rule models for a company
	CountForCompany(ctx context.Context, companyID uuid.UUID, filter AnalyticRuleModelFilter) (int64, error)
}

// DocumentFilter defines filtering options for document queries
type DocumentFilter struct {
	shared.Filter
	DocType      *DocType
	Status       *DocumentStatus
	PaymentState *PaymentState
	ContactID    *uuid.UUID
}

// DocumentRepository defines the interface for document persistence
type DocumentRepository interface {
	// FindByID finds a document by ID, lines included
	FindByID(ctx context.Context, id uuid.UUID) (*Document, error)

	// FindByIDForCompany finds a document by ID for a specific company
	FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*Document, error)

	// FindByTarget finds a financial document by doc type and ID.
	// Used by reconciliation to load an allocation target.
	FindByTarget(ctx context.Context, docType DocType, id uuid.UUID) (*Document, error)

	// FindAllForCompany finds documents for a company with filtering
	FindAllForCompany(ctx context.Context, companyID uuid.UUID, filter DocumentFilter) ([]Document, error)

	// CountForCompany counts documents for a company
	CountForCompany(ctx context.Context, companyID uuid.UUID, filter DocumentFilter) (int64, error)

	// CreateWithLines persists a new document header and all of its lines in
	// one transaction. A failure on any line rolls back the header and every
	// prior line.
	CreateWithLines(ctx context.Context, doc *Document) error

	// Save updates an existing document header
	Save(ctx context.Context, doc *Document) error

	// SaveWithLock updates the document header with a version check, returning
	// shared.ErrConcurrencyConflict if another writer got there first.
	SaveWithLock(ctx context.Context, doc *Document) error

	// GenerateDocNumber generates the next document number for a doc type
	GenerateDocNumber(ctx context.Context, companyID uuid.UUID, docType DocType) (string, error)
}

// PaymentRepository defines the interface for payment persistence
type PaymentRepository interface {
	// FindByID finds a payment by ID, allocations included
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)

	// FindByIDForCompany finds a payment by ID for a specific company
	FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*Payment, error)

	// FindAllForCompany finds payments for a company
	FindAllForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]Payment, error)

	// Save creates or updates a payment and its allocations in one transaction
	Save(ctx context.Context, payment *Payment) error

	// SumPostedAllocations sums allocation amounts against the target over
	// allocations whose owning payment is POSTED. Draft and void payments
	// contribute nothing.
	SumPostedAllocations(ctx context.Context, targetType DocType, targetID uuid.UUID) (decimal.Decimal, error)

	// GeneratePaymentNumber generates the next payment number for a company
	GeneratePaymentNumber(ctx context.Context, companyID uuid.UUID) (string, error)
}

// ProductReader resolves product master data the posting core needs.
// Product CRUD itself lives outside the core.
type ProductReader interface {
	// GetProductCategory returns the category of a product, or nil when the
	// product has no category. A missing product is shared.ErrNotFound.
	GetProductCategory(ctx context.Context, productID uuid.UUID) (*uuid.UUID, error)
}

// CompanyRepository manages the minimal company records documents
// foreign-key to.
type CompanyRepository interface {
	// Ensure creates the company record if it does not exist. Idempotent.
	Ensure(ctx context.Context, companyID uuid.UUID) error
}
