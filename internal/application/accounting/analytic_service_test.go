package accounting

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/openledger/backend/internal/domain/accounting"
	"github.com/openledger/backend/internal/domain/shared"
)

func newAnalyticFixture() (*MockRuleModelRepository, *AnalyticService) {
	models := new(MockRuleModelRepository)
	resolver := accounting.NewAnalyticResolver(models)
	return models, NewAnalyticService(models, resolver)
}

func TestAnalyticService_CreateModel(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New()

	t.Run("creates model with rules", func(t *testing.T) {
		models, service := newAnalyticFixture()
		models.On("Save", ctx, mock.AnythingOfType("*accounting.AnalyticRuleModel")).Return(nil)

		productID := uuid.New()
		model, err := service.CreateModel(ctx, CreateModelInput{
			CompanyID: companyID,
			Name:      "vendor defaults",
			Priority:  1,
			Rules: []RuleInput{
				{
					DocType:           accounting.DocTypeVendorBill,
					MatchProductID:    &productID,
					AnalyticAccountID: uuid.New(),
					RulePriority:      1,
				},
			},
		})

		require.NoError(t, err)
		assert.True(t, model.IsActive)
		require.Len(t, model.Rules, 1)
		assert.Equal(t, model.ID, model.Rules[0].ModelID)
		assert.True(t, model.Rules[0].IsActive)
	})

	t.Run("rule without analytic account rejects", func(t *testing.T) {
		models, service := newAnalyticFixture()

		_, err := service.CreateModel(ctx, CreateModelInput{
			CompanyID: companyID,
			Name:      "broken",
			Priority:  1,
			Rules: []RuleInput{
				{DocType: accounting.DocTypeVendorBill},
			},
		})

		require.Error(t, err)
		models.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestAnalyticService_ArchiveModel(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New()

	t.Run("archives an active model", func(t *testing.T) {
		models, service := newAnalyticFixture()
		model, err := accounting.NewAnalyticRuleModel(companyID, "old rules", 5)
		require.NoError(t, err)

		models.On("FindByIDForCompany", ctx, companyID, model.ID).Return(model, nil)
		models.On("Save", ctx, model).Return(nil)

		archived, err := service.ArchiveModel(ctx, companyID, model.ID)

		require.NoError(t, err)
		assert.False(t, archived.IsActive)
	})

	t.Run("missing model passes through", func(t *testing.T) {
		models, service := newAnalyticFixture()
		modelID := uuid.New()
		models.On("FindByIDForCompany", ctx, companyID, modelID).Return(nil, shared.ErrNotFound)

		_, err := service.ArchiveModel(ctx, companyID, modelID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestAnalyticService_Preview(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New()

	models, service := newAnalyticFixture()
	accountID := uuid.New()
	model, err := accounting.NewAnalyticRuleModel(companyID, "defaults", 1)
	require.NoError(t, err)
	require.NoError(t, model.AddRule(accounting.AnalyticRule{
		DocType:           accounting.DocTypeCustomerInvoice,
		AnalyticAccountID: accountID,
		IsActive:          true,
	}))

	models.On("ListActiveModels", ctx, companyID, accounting.DocTypeCustomerInvoice).
		Return([]accounting.AnalyticRuleModel{*model}, nil)

	assignment, err := service.Preview(ctx, companyID, accounting.DocTypeCustomerInvoice, accounting.LineCandidate{})

	require.NoError(t, err)
	require.NotNil(t, assignment)
	assert.Equal(t, accountID, assignment.AnalyticAccountID)
}
