package accounting

import (
	"time"

	"github.com/openledger/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// AnalyticRule matches document lines and assigns an analytic account
// (cost center) when every populated match field equals the corresponding
// candidate attribute. Unset match fields are wildcards and always pass,
// so a rule with no populated fields is a deliberate catch-all for its
// doc type.
type AnalyticRule struct {
	ID                uuid.UUID
	ModelID           uuid.UUID
	DocType           DocType
	MatchProductID    *uuid.UUID
	MatchCategoryID   *uuid.UUID
	MatchContactID    *uuid.UUID
	MatchContactTagID *uuid.UUID
	AnalyticAccountID uuid.UUID // account assigned when the rule matches
	RulePriority      int
	IsActive          bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// MatchedFieldsCount returns how many of the four match fields are populated.
// Recorded on the winning assignment for audit; it never affects selection.
func (r *AnalyticRule) MatchedFieldsCount() int {
	count := 0
	if r.MatchProductID != nil {
		count++
	}
	if r.MatchCategoryID != nil {
		count++
	}
	if r.MatchContactID != nil {
		count++
	}
	if r.MatchContactTagID != nil {
		count++
	}
	return count
}

// Matches tests the rule against a candidate line. Every populated match
// field must equal the candidate's attribute; the contact tag field must be
// a member of the candidate's tag set.
func (r *AnalyticRule) Matches(candidate LineCandidate) bool {
	if r.MatchProductID != nil {
		if candidate.ProductID == nil || *candidate.ProductID != *r.MatchProductID {
			return false
		}
	}
	if r.MatchCategoryID != nil {
		if candidate.CategoryID == nil || *candidate.CategoryID != *r.MatchCategoryID {
			return false
		}
	}
	if r.MatchContactID != nil {
		if candidate.ContactID == nil || *candidate.ContactID != *r.MatchContactID {
			return false
		}
	}
	if r.MatchContactTagID != nil {
		found := false
		for _, tagID := range candidate.ContactTagIDs {
			if tagID == *r.MatchContactTagID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// AnalyticRuleModel groups rules under a company-wide evaluation priority.
// Lower priority values are evaluated first; ties fall back to creation order.
type AnalyticRuleModel struct {
	shared.CompanyAggregateRoot
	Name     string
	Priority int
	IsActive bool
	Rules    []AnalyticRule
}

// NewAnalyticRuleModel creates a new active rule model
func NewAnalyticRuleModel(companyID uuid.UUID, name string, priority int) (*AnalyticRuleModel, error) {
	if companyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_COMPANY", "Company ID cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Rule model name cannot be empty")
	}

	return &AnalyticRuleModel{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID),
		Name:                 name,
		Priority:             priority,
		IsActive:             true,
		Rules:                make([]AnalyticRule, 0),
	}, nil
}

// AddRule appends a rule to the model
func (m *AnalyticRuleModel) AddRule(rule AnalyticRule) error {
	if !rule.DocType.IsValid() {
		return shared.NewDomainError("INVALID_DOC_TYPE", "Rule doc type is not valid")
	}
	if rule.AnalyticAccountID == uuid.Nil {
		return shared.NewDomainError("INVALID_ANALYTIC_ACCOUNT", "Rule must assign an analytic account")
	}
	if rule.ID == uuid.Nil {
		rule.ID = uuid.New()
	}
	rule.ModelID = m.ID
	now := time.Now()
	if rule.CreatedAt.IsZero() {
		rule.CreatedAt = now
	}
	rule.UpdatedAt = now
	m.Rules = append(m.Rules, rule)
	m.UpdatedAt = now
	return nil
}

// Archive deactivates the model so the resolver skips it
func (m *AnalyticRuleModel) Archive() {
	m.IsActive = false
	m.UpdatedAt = time.Now()
	m.IncrementVersion()
}

// LineCandidate carries the matching attributes of a document line
// being resolved against the rule set.
type LineCandidate struct {
	ProductID     *uuid.UUID
	CategoryID    *uuid.UUID
	ContactID     *uuid.UUID
	ContactTagIDs []uuid.UUID
}

// AnalyticAssignment is the result of a successful rule resolution.
type AnalyticAssignment struct {
	AnalyticAccountID  uuid.UUID `json:"analytic_account_id"`
	ModelID            uuid.UUID `json:"model_id"`
	RuleID             uuid.UUID `json:"rule_id"`
	MatchedFieldsCount int       `json:"matched_fields_count"`
}
