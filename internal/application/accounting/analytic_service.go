package accounting

import (
	"context"
	"fmt"

	"github.com/openledger/backend/internal/domain/accounting"
	"github.com/google/uuid"
)

// AnalyticService administers rule models and exposes dry-run resolution
// for admin tooling. The posting core itself only reads rule state.
type AnalyticService struct {
	models   accounting.AnalyticRuleModelRepository
	resolver *accounting.AnalyticResolver
}

// NewAnalyticService creates a new AnalyticService
func NewAnalyticService(
	models accounting.AnalyticRuleModelRepository,
	resolver *accounting.AnalyticResolver,
) *AnalyticService {
	return &AnalyticService{
		models:   models,
		resolver: resolver,
	}
}

// RuleInput is one rule of a rule model creation request
type RuleInput struct {
	DocType           accounting.DocType
	MatchProductID    *uuid.UUID
	MatchCategoryID   *uuid.UUID
	MatchContactID    *uuid.UUID
	MatchContactTagID *uuid.UUID
	AnalyticAccountID uuid.UUID
	RulePriority      int
}

// CreateModelInput is a request to create a rule model with its rules
type CreateModelInput struct {
	CompanyID uuid.UUID
	Name      string
	Priority  int
	Rules     []RuleInput
}

// CreateModel creates a rule model with its rules
func (s *AnalyticService) CreateModel(ctx context.Context, input CreateModelInput) (*accounting.AnalyticRuleModel, error) {
	model, err := accounting.NewAnalyticRuleModel(input.CompanyID, input.Name, input.Priority)
	if err != nil {
		return nil, err
	}

	for _, ruleInput := range input.Rules {
		rule := accounting.AnalyticRule{
			DocType:           ruleInput.DocType,
			MatchProductID:    ruleInput.MatchProductID,
			MatchCategoryID:   ruleInput.MatchCategoryID,
			MatchContactID:    ruleInput.MatchContactID,
			MatchContactTagID: ruleInput.MatchContactTagID,
			AnalyticAccountID: ruleInput.AnalyticAccountID,
			RulePriority:      ruleInput.RulePriority,
			IsActive:          true,
		}
		if err := model.AddRule(rule); err != nil {
			return nil, err
		}
	}

	if err := s.models.Save(ctx, model); err != nil {
		return nil, fmt.Errorf("failed to persist rule model: %w", err)
	}

	return model, nil
}

// GetModel loads a rule model with its rules
func (s *AnalyticService) GetModel(ctx context.Context, companyID, modelID uuid.UUID) (*accounting.AnalyticRuleModel, error) {
	return s.models.FindByIDForCompany(ctx, companyID, modelID)
}

// ListModels lists rule models for a company
func (s *AnalyticService) ListModels(ctx context.Context, companyID uuid.UUID, filter accounting.AnalyticRuleModelFilter) ([]accounting.AnalyticRuleModel, int64, error) {
	models, err := s.models.FindAllForCompany(ctx, companyID, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.models.CountForCompany(ctx, companyID, filter)
	if err != nil {
		return nil, 0, err
	}
	return models, total, nil
}

// ArchiveModel deactivates a rule model so the resolver skips it
func (s *AnalyticService) ArchiveModel(ctx context.Context, companyID, modelID uuid.UUID) (*accounting.AnalyticRuleModel, error) {
	model, err := s.models.FindByIDForCompany(ctx, companyID, modelID)
	if err != nil {
		return nil, err
	}

	model.Archive()

	if err := s.models.Save(ctx, model); err != nil {
		return nil, fmt.Errorf("failed to save rule model: %w", err)
	}

	return model, nil
}

// Preview runs rule resolution for a candidate without touching any
// document. A nil assignment means no rule matched.
func (s *AnalyticService) Preview(
	ctx context.Context,
	companyID uuid.UUID,
	docType accounting.DocType,
	candidate accounting.LineCandidate,
) (*accounting.AnalyticAssignment, error) {
	return s.resolver.Resolve(ctx, companyID, docType, candidate)
}
