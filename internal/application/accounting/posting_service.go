// Package accounting contains the application services of the document
// posting core: document creation and lifecycle, payment handling, and
// payment reconciliation.
package accounting

import (
	"context"
	"fmt"

	"github.com/openledger/backend/internal/domain/accounting"
	"github.com/openledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PostingService orchestrates document creation and lifecycle transitions.
// Creation runs as one all-or-nothing unit of work: a failure on any line
// leaves no header and no lines behind.
type PostingService struct {
	documents accounting.DocumentRepository
	companies accounting.CompanyRepository
	products  accounting.ProductReader
	resolver  *accounting.AnalyticResolver
}

// NewPostingService creates a new PostingService
func NewPostingService(
	documents accounting.DocumentRepository,
	companies accounting.CompanyRepository,
	products accounting.ProductReader,
	resolver *accounting.AnalyticResolver,
) *PostingService {
	return &PostingService{
		documents: documents,
		companies: companies,
		products:  products,
		resolver:  resolver,
	}
}

// CreateLineInput is one line of a document creation request.
// AnalyticAccountID is an explicit override: when set, it wins over
// automatic rule resolution and no rule audit trail is recorded.
type CreateLineInput struct {
	ProductID         *uuid.UUID
	Description       string
	Quantity          decimal.Decimal
	UnitPrice         decimal.Decimal
	TaxRate           decimal.Decimal
	AnalyticAccountID *uuid.UUID
}

// CreateDocumentInput is a request to create a document with its lines
type CreateDocumentInput struct {
	CompanyID     uuid.UUID
	DocType       accounting.DocType
	DocNumber     string // generated when empty
	ContactID     uuid.UUID
	ContactTagIDs []uuid.UUID
	Lines         []CreateLineInput
}

// CreateDocument creates a document with its lines in one unit of work:
// ensure the owning company exists, create the draft header, resolve and
// append each line in input order, then set the accumulated total. Lines
// are resolved before anything is persisted, so a product lookup failure
// on any line aborts the whole operation with nothing written.
func (s *PostingService) CreateDocument(ctx context.Context, input CreateDocumentInput) (*accounting.Document, error) {
	if !input.DocType.IsValid() {
		return nil, shared.NewDomainError("INVALID_DOC_TYPE", fmt.Sprintf("Unknown document type %q", input.DocType))
	}

	// Lines foreign-key to the company transitively, so the company record
	// must exist before the document transaction commits.
	if err := s.companies.Ensure(ctx, input.CompanyID); err != nil {
		return nil, fmt.Errorf("failed to ensure company: %w", err)
	}

	docNumber := input.DocNumber
	if docNumber == "" {
		generated, err := s.documents.GenerateDocNumber(ctx, input.CompanyID, input.DocType)
		if err != nil {
			return nil, fmt.Errorf("failed to generate document number: %w", err)
		}
		docNumber = generated
	}

	doc, err := accounting.NewDocument(input.CompanyID, docNumber, input.DocType, input.ContactID)
	if err != nil {
		return nil, err
	}

	for i, lineInput := range input.Lines {
		line, err := s.buildLine(ctx, doc, lineInput, input.ContactTagIDs)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		if err := doc.AddLine(line); err != nil {
			return nil, err
		}
	}

	doc.RecalculateTotal()

	if err := s.documents.CreateWithLines(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to persist document: %w", err)
	}

	return doc, nil
}

// buildLine resolves a line input into a document line: category lookup,
// line total arithmetic, and analytic assignment (explicit override or
// rule resolution).
func (s *PostingService) buildLine(
	ctx context.Context,
	doc *accounting.Document,
	input CreateLineInput,
	contactTagIDs []uuid.UUID,
) (*accounting.DocumentLine, error) {
	var categoryID *uuid.UUID
	if input.ProductID != nil {
		resolved, err := s.products.GetProductCategory(ctx, *input.ProductID)
		if err != nil {
			return nil, fmt.Errorf("product %s: %w", input.ProductID, err)
		}
		categoryID = resolved
	}

	line, err := accounting.NewDocumentLine(
		input.ProductID,
		categoryID,
		input.Description,
		input.Quantity,
		input.UnitPrice,
		input.TaxRate,
	)
	if err != nil {
		return nil, err
	}

	if input.AnalyticAccountID != nil {
		line.OverrideAnalyticAccount(*input.AnalyticAccountID)
		return line, nil
	}

	contactID := doc.ContactID
	assignment, err := s.resolver.Resolve(ctx, doc.CompanyID, doc.DocType, accounting.LineCandidate{
		ProductID:     input.ProductID,
		CategoryID:    categoryID,
		ContactID:     &contactID,
		ContactTagIDs: contactTagIDs,
	})
	if err != nil {
		return nil, fmt.Errorf("analytic resolution: %w", err)
	}
	// No match means no automatic assignment; the line stays unassigned.
	line.AssignAnalytic(assignment)

	return line, nil
}

// GetDocument loads a document with its lines
func (s *PostingService) GetDocument(ctx context.Context, companyID, docID uuid.UUID) (*accounting.Document, error) {
	return s.documents.FindByIDForCompany(ctx, companyID, docID)
}

// ListDocuments lists documents for a company
func (s *PostingService) ListDocuments(ctx context.Context, companyID uuid.UUID, filter accounting.DocumentFilter) ([]accounting.Document, int64, error) {
	docs, err := s.documents.FindAllForCompany(ctx, companyID, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.documents.CountForCompany(ctx, companyID, filter)
	if err != nil {
		return nil, 0, err
	}
	return docs, total, nil
}

// TransitionDocument moves a document through its lifecycle machine.
// The guard runs before any mutation; an invalid move leaves the document
// untouched. Cancellation preserves paid amount and payment state.
func (s *PostingService) TransitionDocument(
	ctx context.Context,
	companyID, docID uuid.UUID,
	next accounting.DocumentStatus,
) (*accounting.Document, error) {
	doc, err := s.documents.FindByIDForCompany(ctx, companyID, docID)
	if err != nil {
		return nil, err
	}

	before := doc.Version
	if err := doc.TransitionTo(next); err != nil {
		return nil, err
	}
	if doc.Version == before {
		// Self-transition no-op, nothing to persist.
		return doc, nil
	}

	// SaveWithLock rather than Save: a plain save writes every header
	// column and would clobber paid_amount/payment_state reconciled by a
	// concurrent payment.
	if err := s.documents.SaveWithLock(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to save document: %w", err)
	}

	return doc, nil
}
