package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openledger/backend/internal/domain/accounting"
	"github.com/openledger/backend/internal/domain/shared"
	"github.com/openledger/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormPaymentRepository implements PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByID finds a payment by its ID, allocations included
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*accounting.Payment, error) {
	var model models.PaymentModel
	if err := r.db.WithContext(ctx).
		Preload("Allocations").
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForCompany finds a payment by ID for a specific company
func (r *GormPaymentRepository) FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*accounting.Payment, error) {
	var model models.PaymentModel
	if err := r.db.WithContext(ctx).
		Preload("Allocations").
		Where("company_id = ? AND id = ?", companyID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForCompany finds payments for a company
func (r *GormPaymentRepository) FindAllForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]accounting.Payment, error) {
	var paymentModels []models.PaymentModel
	query := r.db.WithContext(ctx).Model(&models.PaymentModel{}).
		Preload("Allocations").
		Where("company_id = ?", companyID)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	if filter.OrderBy != "" {
		orderDir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			orderDir = "DESC"
		}
		query = query.Order(filter.OrderBy + " " + orderDir)
	} else {
		query = query.Order("created_at DESC")
	}

	if err := query.Find(&paymentModels).Error; err != nil {
		return nil, err
	}
	payments := make([]accounting.Payment, len(paymentModels))
	for i, model := range paymentModels {
		payments[i] = *model.ToDomain()
	}
	return payments, nil
}

// Save creates or updates a payment and its allocations in one transaction
func (r *GormPaymentRepository) Save(ctx context.Context, payment *accounting.Payment) error {
	model := models.PaymentModelFromDomain(payment)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Allocations").Save(model).Error; err != nil {
			return fmt.Errorf("failed to save payment: %w", err)
		}
		for i := range model.Allocations {
			if err := tx.Save(&model.Allocations[i]).Error; err != nil {
				return fmt.Errorf("failed to save allocation: %w", err)
			}
		}
		return nil
	})
}

// SumPostedAllocations sums allocation amounts against the target over
// allocations whose owning payment is POSTED.
func (r *GormPaymentRepository) SumPostedAllocations(ctx context.Context, targetType accounting.DocType, targetID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&models.PaymentAllocationModel{}).
		Select("COALESCE(SUM(payment_allocations.amount), 0) as total").
		Joins("JOIN payments ON payments.id = payment_allocations.payment_id").
		Where("payment_allocations.target_type = ? AND payment_allocations.target_id = ? AND payments.status = ?",
			targetType, targetID, accounting.PaymentStatusPosted).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// GeneratePaymentNumber generates the next payment number for a company.
// Format: PAY-YYYYMMDD-XXXXX
func (r *GormPaymentRepository) GeneratePaymentNumber(ctx context.Context, companyID uuid.UUID) (string, error) {
	date := time.Now().Format("20060102")
	prefix := fmt.Sprintf("PAY-%s-", date)

	var maxNumber string
	if err := r.db.WithContext(ctx).
		Model(&models.PaymentModel{}).
		Select("payment_number").
		Where("company_id = ? AND payment_number LIKE ?", companyID, prefix+"%").
		Order("payment_number DESC").
		Limit(1).
		Pluck("payment_number", &maxNumber).Error; err != nil {
		return "", err
	}

	var nextNum int
	if maxNumber != "" {
		parts := strings.Split(maxNumber, "-")
		if len(parts) == 3 {
			fmt.Sscanf(parts[2], "%d", &nextNum)
		}
	}
	nextNum++

	return fmt.Sprintf("%s%05d", prefix, nextNum), nil
}
