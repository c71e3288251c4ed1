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
	"gorm.io/gorm"
)

// docNumberPrefixes maps each doc type to its number prefix.
var docNumberPrefixes = map[accounting.DocType]string{
	accounting.DocTypeVendorBill:      "BILL",
	accounting.DocTypeCustomerInvoice: "INV",
	accounting.DocTypePurchaseOrder:   "PO",
	accounting.DocTypeSalesOrder:      "SO",
}

// GormDocumentRepository implements DocumentRepository using GORM
type GormDocumentRepository struct {
	db *gorm.DB
}

// NewGormDocumentRepository creates a new GormDocumentRepository
func NewGormDocumentRepository(db *gorm.DB) *GormDocumentRepository {
	return &GormDocumentRepository{db: db}
}

// FindByID finds a document by its ID, lines included
func (r *GormDocumentRepository) FindByID(ctx context.Context, id uuid.UUID) (*accounting.Document, error) {
	var model models.DocumentModel
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForCompany finds a document by ID for a specific company
func (r *GormDocumentRepository) FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*accounting.Document, error) {
	var model models.DocumentModel
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("company_id = ? AND id = ?", companyID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByTarget finds a financial document by doc type and ID
func (r *GormDocumentRepository) FindByTarget(ctx context.Context, docType accounting.DocType, id uuid.UUID) (*accounting.Document, error) {
	var model models.DocumentModel
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("doc_type = ? AND id = ?", docType, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForCompany finds documents for a company with filtering
func (r *GormDocumentRepository) FindAllForCompany(ctx context.Context, companyID uuid.UUID, filter accounting.DocumentFilter) ([]accounting.Document, error) {
	var documentModels []models.DocumentModel
	query := r.db.WithContext(ctx).Model(&models.DocumentModel{}).
		Preload("Lines").
		Where("company_id = ?", companyID)
	query = r.applyFilter(query, filter)

	if err := query.Find(&documentModels).Error; err != nil {
		return nil, err
	}
	documents := make([]accounting.Document, len(documentModels))
	for i, model := range documentModels {
		documents[i] = *model.ToDomain()
	}
	return documents, nil
}

// CountForCompany counts documents for a company
func (r *GormDocumentRepository) CountForCompany(ctx context.Context, companyID uuid.UUID, filter accounting.DocumentFilter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.DocumentModel{}).
		Where("company_id = ?", companyID)
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CreateWithLines persists a new document header and all of its lines in one
// transaction. A failure on any line rolls back the header and every prior line.
func (r *GormDocumentRepository) CreateWithLines(ctx context.Context, doc *accounting.Document) error {
	model := models.DocumentModelFromDomain(doc)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(model).Error; err != nil {
			return fmt.Errorf("failed to create document: %w", err)
		}
		return nil
	})
}

// Save updates an existing document header
func (r *GormDocumentRepository) Save(ctx context.Context, doc *accounting.Document) error {
	model := models.DocumentModelFromDomain(doc)
	return r.db.WithContext(ctx).Omit("Lines").Save(model).Error
}

// SaveWithLock updates the document header with an optimistic version check
func (r *GormDocumentRepository) SaveWithLock(ctx context.Context, doc *accounting.Document) error {
	model := models.DocumentModelFromDomain(doc)
	result := r.db.WithContext(ctx).
		Model(&models.DocumentModel{}).
		Where("id = ? AND version = ?", doc.ID, doc.Version-1).
		Omit("Lines").
		Updates(map[string]any{
			"status":        model.Status,
			"total_amount":  model.TotalAmount,
			"paid_amount":   model.PaidAmount,
			"payment_state": model.PaymentState,
			"posted_at":     model.PostedAt,
			"cancelled_at":  model.CancelledAt,
			"version":       model.Version,
			"updated_at":    model.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// GenerateDocNumber generates the next document number for a doc type.
// Format: <PREFIX>-YYYYMMDD-XXXXX
func (r *GormDocumentRepository) GenerateDocNumber(ctx context.Context, companyID uuid.UUID, docType accounting.DocType) (string, error) {
	typePrefix, ok := docNumberPrefixes[docType]
	if !ok {
		return "", shared.NewDomainError("INVALID_DOC_TYPE", fmt.Sprintf("Cannot number %s documents", docType))
	}
	date := time.Now().Format("20060102")
	prefix := fmt.Sprintf("%s-%s-", typePrefix, date)

	var maxNumber string
	if err := r.db.WithContext(ctx).
		Model(&models.DocumentModel{}).
		Select("doc_number").
		Where("company_id = ? AND doc_number LIKE ?", companyID, prefix+"%").
		Order("doc_number DESC").
		Limit(1).
		Pluck("doc_number", &maxNumber).Error; err != nil {
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

// applyFilter applies filter options to the query
func (r *GormDocumentRepository) applyFilter(query *gorm.DB, filter accounting.DocumentFilter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

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

	return query
}

// applyFilterWithoutPagination applies filter conditions without pagination
func (r *GormDocumentRepository) applyFilterWithoutPagination(query *gorm.DB, filter accounting.DocumentFilter) *gorm.DB {
	if filter.DocType != nil {
		query = query.Where("doc_type = ?", *filter.DocType)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.PaymentState != nil {
		query = query.Where("payment_state = ?", *filter.PaymentState)
	}
	if filter.ContactID != nil {
		query = query.Where("contact_id = ?", *filter.ContactID)
	}
	if filter.Search != "" {
		query = query.Where("doc_number ILIKE ?", "%"+filter.Search+"%")
	}
	return query
}
