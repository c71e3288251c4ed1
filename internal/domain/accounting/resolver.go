package accounting

import (
	"context"

	"github.com/openledger/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// AnalyticResolver is a domain service that assigns analytic accounts to
// document lines by scanning active rule models in priority order.
//
// Rule sets are re-read on every call; there is no caching, so a resolution
// always reflects the current rule state. The resolver performs only reads
// and is safe for concurrent use.
type AnalyticResolver struct {
	models AnalyticRuleModelRepository
}

// NewAnalyticResolver creates a new AnalyticResolver
func NewAnalyticResolver(models AnalyticRuleModelRepository) *AnalyticResolver {
	return &AnalyticResolver{models: models}
}

// Resolve returns the assignment of the first active rule, in model-priority
// then rule-priority order, whose populated match fields all pass against the
// candidate. Model priority is evaluated before rule specificity: a broad
// catch-all in a higher-priority model wins over a narrower rule in a
// lower-priority one.
//
// A nil assignment with nil error means no rule matched; callers treat that
// as "no automatic assignment", not a failure.
func (r *AnalyticResolver) Resolve(
	ctx context.Context,
	companyID uuid.UUID,
	docType DocType,
	candidate LineCandidate,
) (*AnalyticAssignment, error) {
	if companyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_COMPANY", "Company ID cannot be empty")
	}
	if !docType.IsValid() {
		return nil, shared.NewDomainError("INVALID_DOC_TYPE", "Doc type is required for rule resolution")
	}

	models, err := r.models.ListActiveModels(ctx, companyID, docType)
	if err != nil {
		return nil, err
	}

	for _, model := range models {
		for _, rule := range model.Rules {
			if !rule.IsActive || rule.DocType != docType {
				continue
			}
			if rule.Matches(candidate) {
				return &AnalyticAssignment{
					AnalyticAccountID:  rule.AnalyticAccountID,
					ModelID:            model.ID,
					RuleID:             rule.ID,
					MatchedFieldsCount: rule.MatchedFieldsCount(),
				}, nil
			}
		}
	}

	return nil, nil
}
