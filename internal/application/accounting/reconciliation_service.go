package accounting

import (
	"context"
	"errors"
	"fmt"

	"github.com/openledger/backend/internal/domain/accounting"
	"github.com/openledger/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// maxReconcileAttempts bounds the optimistic-lock retry loop. A conflict
// means another reconciliation of the same target won the race; retrying
// from scratch re-reads everything and converges.
const maxReconcileAttempts = 3

// ReconciliationService recomputes a financial document's paid amount and
// payment state from its posted allocations. It is the only writer of those
// two fields.
type ReconciliationService struct {
	documents accounting.DocumentRepository
	payments  accounting.PaymentRepository
}

// NewReconciliationService creates a new ReconciliationService
func NewReconciliationService(
	documents accounting.DocumentRepository,
	payments accounting.PaymentRepository,
) *ReconciliationService {
	return &ReconciliationService{
		documents: documents,
		payments:  payments,
	}
}

// Reconcile re-reads the target document, sums allocations whose owning
// payment is posted, derives the payment state from the sum, and writes
// both fields back under an optimistic version check. The whole sequence
// is retried a bounded number of times on write contention; reconciling
// with no intervening allocation change is idempotent.
func (s *ReconciliationService) Reconcile(
	ctx context.Context,
	targetType accounting.DocType,
	targetID uuid.UUID,
) (*accounting.Document, error) {
	if !targetType.IsFinancial() {
		return nil, shared.NewDomainError("INVALID_TARGET_TYPE", fmt.Sprintf("Cannot reconcile %s documents", targetType))
	}
	if targetID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TARGET", "Reconciliation target ID cannot be empty")
	}

	var lastErr error
	for attempt := 0; attempt < maxReconcileAttempts; attempt++ {
		doc, err := s.documents.FindByTarget(ctx, targetType, targetID)
		if err != nil {
			return nil, err
		}

		paid, err := s.payments.SumPostedAllocations(ctx, targetType, targetID)
		if err != nil {
			return nil, fmt.Errorf("failed to sum allocations: %w", err)
		}

		state := accounting.ComputePaymentState(paid, doc.TotalAmount)
		if err := doc.ApplyPaidState(paid, state); err != nil {
			return nil, err
		}

		err = s.documents.SaveWithLock(ctx, doc)
		if err == nil {
			return doc, nil
		}
		if !errors.Is(err, shared.ErrConcurrencyConflict) {
			return nil, fmt.Errorf("failed to save paid state: %w", err)
		}
		lastErr = err
	}

	return nil, lastErr
}
