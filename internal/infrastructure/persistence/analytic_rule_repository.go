package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openledger/backend/internal/domain/accounting"
	"github.com/openledger/backend/internal/domain/shared"
	"github.com/openledger/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormAnalyticRuleRepository implements AnalyticRuleModelRepository using GORM
type GormAnalyticRuleRepository struct {
	db *gorm.DB
}

// NewGormAnalyticRuleRepository creates a new GormAnalyticRuleRepository
func NewGormAnalyticRuleRepository(db *gorm.DB) *GormAnalyticRuleRepository {
	return &GormAnalyticRuleRepository{db: db}
}

// preloadRules orders rules by rule priority ascending, creation order breaking
// ties, so the resolver can scan them in evaluation order.
func preloadRules(db *gorm.DB) *gorm.DB {
	return db.Order("rule_priority ASC, created_at ASC, id ASC")
}

// FindByID finds a rule model by its ID
func (r *GormAnalyticRuleRepository) FindByID(ctx context.Context, id uuid.UUID) (*accounting.AnalyticRuleModel, error) {
	var model models.AnalyticRuleModelModel
	if err := r.db.WithContext(ctx).
		Preload("Rules", preloadRules).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForCompany finds a rule model by ID for a specific company
func (r *GormAnalyticRuleRepository) FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*accounting.AnalyticRuleModel, error) {
	var model models.AnalyticRuleModelModel
	if err := r.db.WithContext(ctx).
		Preload("Rules", preloadRules).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForCompany finds all rule models for a company with filtering
func (r *GormAnalyticRuleRepository) FindAllForCompany(ctx context.Context, companyID uuid.UUID, filter accounting.AnalyticRuleModelFilter) ([]accounting.AnalyticRuleModel, error) {
	var ruleModels []models.AnalyticRuleModelModel
	query := r.db.WithContext(ctx).Model(&models.AnalyticRuleModelModel{}).
		Preload("Rules", preloadRules).
		Where("company_id = ?", companyID)
	query = r.applyFilter(query, filter)

	if err := query.Find(&ruleModels).Error; err != nil {
		return nil, err
	}
	result := make([]accounting.AnalyticRuleModel, len(ruleModels))
	for i, model := range ruleModels {
		result[i] = *model.ToDomain()
	}
	return result, nil
}

// ListActiveModels loads the active rule models for a company that contain at
// least one rule for the given doc type, in priority order with creation order
// breaking ties.
func (r *GormAnalyticRuleRepository) ListActiveModels(ctx context.Context, companyID uuid.UUID, docType accounting.DocType) ([]accounting.AnalyticRuleModel, error) {
	var ruleModels []models.AnalyticRuleModelModel
	if err := r.db.WithContext(ctx).
		Model(&models.AnalyticRuleModelModel{}).
		Preload("Rules", preloadRules).
		Where("company_id = ? AND is_active = ?", companyID, true).
		Where("id IN (?)", r.db.Model(&models.AnalyticRuleModel{}).
			Select("model_id").
			Where("doc_type = ? AND is_active = ?", docType, true)).
		Order("priority ASC, created_at ASC, id ASC").
		Find(&ruleModels).Error; err != nil {
		return nil, err
	}
	result := make([]accounting.AnalyticRuleModel, len(ruleModels))
	for i, model := range ruleModels {
		result[i] = *model.ToDomain()
	}
	return result, nil
}

// Save creates or updates a rule model and its rules in one transaction
func (r *GormAnalyticRuleRepository) Save(ctx context.Context, model *accounting.AnalyticRuleModel) error {
	persisted := models.AnalyticRuleModelModelFromDomain(model)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Rules").Save(persisted).Error; err != nil {
			return fmt.Errorf("failed to save rule model: %w", err)
		}
		for i := range persisted.Rules {
			if err := tx.Save(&persisted.Rules[i]).Error; err != nil {
				return fmt.Errorf("failed to save rule: %w", err)
			}
		}
		return nil
	})
}

// CountForCompany counts rule models for a company
func (r *GormAnalyticRuleRepository) CountForCompany(ctx context.Context, companyID uuid.UUID, filter accounting.AnalyticRuleModelFilter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.AnalyticRuleModelModel{}).
		Where("company_id = ?", companyID)
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormAnalyticRuleRepository) applyFilter(query *gorm.DB, filter accounting.AnalyticRuleModelFilter) *gorm.DB {
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
		query = query.Order("priority ASC, created_at ASC")
	}

	return query
}

// applyFilterWithoutPagination applies filter conditions without pagination
func (r *GormAnalyticRuleRepository) applyFilterWithoutPagination(query *gorm.DB, filter accounting.AnalyticRuleModelFilter) *gorm.DB {
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	if filter.Search != "" {
		query = query.Where("name ILIKE ?", "%"+filter.Search+"%")
	}
	return query
}
