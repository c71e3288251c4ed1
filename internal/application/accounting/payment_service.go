package accounting

import (
	"context"
	"fmt"

	"github.com/openledger/backend/internal/domain/accounting"
	"github.com/openledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentService manages payments and keeps allocation targets reconciled.
// Posting or voiding a payment changes which allocations count, so every
// status change triggers reconciliation of all affected targets.
type PaymentService struct {
	payments       accounting.PaymentRepository
	companies      accounting.CompanyRepository
	reconciliation *ReconciliationService
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	payments accounting.PaymentRepository,
	companies accounting.CompanyRepository,
	reconciliation *ReconciliationService,
) *PaymentService {
	return &PaymentService{
		payments:       payments,
		companies:      companies,
		reconciliation: reconciliation,
	}
}

// AllocationInput is one allocation of a payment creation request
type AllocationInput struct {
	TargetType accounting.DocType
	TargetID   uuid.UUID
	Amount     decimal.Decimal
}

// CreatePaymentInput is a request to create a draft payment
type CreatePaymentInput struct {
	CompanyID     uuid.UUID
	PaymentNumber string // generated when empty
	ContactID     uuid.UUID
	Amount        decimal.Decimal
	Allocations   []AllocationInput
}

// CreatePayment creates a draft payment with its allocations.
// Draft allocations contribute nothing to reconciliation until the
// payment is posted.
func (s *PaymentService) CreatePayment(ctx context.Context, input CreatePaymentInput) (*accounting.Payment, error) {
	if err := s.companies.Ensure(ctx, input.CompanyID); err != nil {
		return nil, fmt.Errorf("failed to ensure company: %w", err)
	}

	number := input.PaymentNumber
	if number == "" {
		generated, err := s.payments.GeneratePaymentNumber(ctx, input.CompanyID)
		if err != nil {
			return nil, fmt.Errorf("failed to generate payment number: %w", err)
		}
		number = generated
	}

	payment, err := accounting.NewPayment(input.CompanyID, number, input.ContactID, input.Amount)
	if err != nil {
		return nil, err
	}

	for _, alloc := range input.Allocations {
		if _, err := payment.Allocate(alloc.TargetType, alloc.TargetID, alloc.Amount); err != nil {
			return nil, err
		}
	}

	if err := s.payments.Save(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to persist payment: %w", err)
	}

	return payment, nil
}

// GetPayment loads a payment with its allocations
func (s *PaymentService) GetPayment(ctx context.Context, companyID, paymentID uuid.UUID) (*accounting.Payment, error) {
	return s.payments.FindByIDForCompany(ctx, companyID, paymentID)
}

// ListPayments lists payments for a company
func (s *PaymentService) ListPayments(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]accounting.Payment, error) {
	return s.payments.FindAllForCompany(ctx, companyID, filter)
}

// Allocate adds an allocation to a draft payment
func (s *PaymentService) Allocate(ctx context.Context, companyID, paymentID uuid.UUID, input AllocationInput) (*accounting.Payment, error) {
	payment, err := s.payments.FindByIDForCompany(ctx, companyID, paymentID)
	if err != nil {
		return nil, err
	}

	if _, err := payment.Allocate(input.TargetType, input.TargetID, input.Amount); err != nil {
		return nil, err
	}

	if err := s.payments.Save(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to save payment: %w", err)
	}

	return payment, nil
}

// PostPayment posts a draft payment and reconciles every allocation target
func (s *PaymentService) PostPayment(ctx context.Context, companyID, paymentID uuid.UUID) (*accounting.Payment, error) {
	payment, err := s.payments.FindByIDForCompany(ctx, companyID, paymentID)
	if err != nil {
		return nil, err
	}

	if err := payment.Post(); err != nil {
		return nil, err
	}

	if err := s.payments.Save(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to save payment: %w", err)
	}

	if err := s.reconcileTargets(ctx, payment); err != nil {
		return nil, err
	}

	return payment, nil
}

// VoidPayment voids a payment and reconciles every allocation target,
// removing the voided allocations from their paid amounts.
func (s *PaymentService) VoidPayment(ctx context.Context, companyID, paymentID uuid.UUID) (*accounting.Payment, error) {
	payment, err := s.payments.FindByIDForCompany(ctx, companyID, paymentID)
	if err != nil {
		return nil, err
	}

	wasPosted := payment.IsPosted()

	if err := payment.Void(); err != nil {
		return nil, err
	}

	if err := s.payments.Save(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to save payment: %w", err)
	}

	// Voiding a draft changes nothing for its targets.
	if wasPosted {
		if err := s.reconcileTargets(ctx, payment); err != nil {
			return nil, err
		}
	}

	return payment, nil
}

// reconcileTargets reconciles each distinct allocation target of a payment
func (s *PaymentService) reconcileTargets(ctx context.Context, payment *accounting.Payment) error {
	type target struct {
		docType accounting.DocType
		id      uuid.UUID
	}
	seen := make(map[target]bool)
	for _, alloc := range payment.Allocations {
		key := target{docType: alloc.TargetType, id: alloc.TargetID}
		if seen[key] {
			continue
		}
		seen[key] = true
		if _, err := s.reconciliation.Reconcile(ctx, alloc.TargetType, alloc.TargetID); err != nil {
			return fmt.Errorf("failed to reconcile %s %s: %w", alloc.TargetType, alloc.TargetID, err)
		}
	}
	return nil
}
