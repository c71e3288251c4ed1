package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openledger/backend/internal/domain/accounting"
	"github.com/openledger/backend/internal/domain/shared"
)

func createTestRuleModel(t *testing.T, companyID uuid.UUID, name string, priority int, rules ...accounting.AnalyticRule) *accounting.AnalyticRuleModel {
	t.Helper()
	model, err := accounting.NewAnalyticRuleModel(companyID, name, priority)
	require.NoError(t, err)
	for _, rule := range rules {
		require.NoError(t, model.AddRule(rule))
	}
	return model
}

func TestGormAnalyticRuleRepository_SaveRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormAnalyticRuleRepository(db)
	ctx := context.Background()

	companyID := uuid.New()
	productID := uuid.New()
	model := createTestRuleModel(t, companyID, "Freight costs", 5,
		accounting.AnalyticRule{
			DocType:           accounting.DocTypeVendorBill,
			MatchProductID:    &productID,
			AnalyticAccountID: uuid.New(),
			RulePriority:      1,
			IsActive:          true,
		},
	)
	require.NoError(t, repo.Save(ctx, model))

	loaded, err := repo.FindByID(ctx, model.ID)
	require.NoError(t, err)
	assert.Equal(t, "Freight costs", loaded.Name)
	assert.Equal(t, 5, loaded.Priority)
	assert.True(t, loaded.IsActive)
	require.Len(t, loaded.Rules, 1)
	assert.Equal(t, model.ID, loaded.Rules[0].ModelID)
	require.NotNil(t, loaded.Rules[0].MatchProductID)
	assert.Equal(t, productID, *loaded.Rules[0].MatchProductID)

	t.Run("archive persists", func(t *testing.T) {
		loaded.Archive()
		require.NoError(t, repo.Save(ctx, loaded))

		reloaded, err := repo.FindByIDForCompany(ctx, companyID, model.ID)
		require.NoError(t, err)
		assert.False(t, reloaded.IsActive)
	})

	t.Run("company scoping", func(t *testing.T) {
		_, err := repo.FindByIDForCompany(ctx, uuid.New(), model.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("model archived before first save is created inactive", func(t *testing.T) {
		archived := createTestRuleModel(t, companyID, "Archived at birth", 9,
			accounting.AnalyticRule{
				DocType:           accounting.DocTypeVendorBill,
				AnalyticAccountID: uuid.New(),
				RulePriority:      1,
				IsActive:          true,
			},
		)
		archived.Archive()
		require.NoError(t, repo.Save(ctx, archived))

		reloaded, err := repo.FindByID(ctx, archived.ID)
		require.NoError(t, err)
		assert.False(t, reloaded.IsActive)
	})

	t.Run("inactive rule rows are created inactive", func(t *testing.T) {
		mixed := createTestRuleModel(t, companyID, "Mixed rules", 11,
			accounting.AnalyticRule{
				DocType:           accounting.DocTypeVendorBill,
				AnalyticAccountID: uuid.New(),
				RulePriority:      1,
				IsActive:          false,
			},
		)
		require.NoError(t, repo.Save(ctx, mixed))

		reloaded, err := repo.FindByID(ctx, mixed.ID)
		require.NoError(t, err)
		require.Len(t, reloaded.Rules, 1)
		assert.False(t, reloaded.Rules[0].IsActive)
	})
}

func TestGormAnalyticRuleRepository_ListActiveModels(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormAnalyticRuleRepository(db)
	ctx := context.Background()

	companyID := uuid.New()
	billRule := func(rulePriority int) accounting.AnalyticRule {
		return accounting.AnalyticRule{
			DocType:           accounting.DocTypeVendorBill,
			AnalyticAccountID: uuid.New(),
			RulePriority:      rulePriority,
			IsActive:          true,
		}
	}

	second := createTestRuleModel(t, companyID, "Second", 20, billRule(1))
	require.NoError(t, repo.Save(ctx, second))
	first := createTestRuleModel(t, companyID, "First", 10, billRule(2), billRule(1))
	require.NoError(t, repo.Save(ctx, first))

	archived := createTestRuleModel(t, companyID, "Archived", 1, billRule(1))
	archived.Archive()
	require.NoError(t, repo.Save(ctx, archived))

	ordersOnly := createTestRuleModel(t, companyID, "Orders only", 2, accounting.AnalyticRule{
		DocType:           accounting.DocTypeSalesOrder,
		AnalyticAccountID: uuid.New(),
		RulePriority:      1,
		IsActive:          true,
	})
	require.NoError(t, repo.Save(ctx, ordersOnly))

	foreign := createTestRuleModel(t, uuid.New(), "Foreign", 1, billRule(1))
	require.NoError(t, repo.Save(ctx, foreign))

	t.Run("orders by model priority and filters on doc type", func(t *testing.T) {
		models, err := repo.ListActiveModels(ctx, companyID, accounting.DocTypeVendorBill)
		require.NoError(t, err)
		require.Len(t, models, 2)
		assert.Equal(t, "First", models[0].Name)
		assert.Equal(t, "Second", models[1].Name)
	})

	t.Run("rules within a model ordered by rule priority", func(t *testing.T) {
		models, err := repo.ListActiveModels(ctx, companyID, accounting.DocTypeVendorBill)
		require.NoError(t, err)
		require.Len(t, models[0].Rules, 2)
		assert.Equal(t, 1, models[0].Rules[0].RulePriority)
		assert.Equal(t, 2, models[0].Rules[1].RulePriority)
	})

	t.Run("doc type with no rules yields nothing", func(t *testing.T) {
		models, err := repo.ListActiveModels(ctx, companyID, accounting.DocTypePurchaseOrder)
		require.NoError(t, err)
		assert.Empty(t, models)
	})
}

func TestGormAnalyticRuleRepository_ListActiveModels_TieBreak(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormAnalyticRuleRepository(db)
	ctx := context.Background()

	companyID := uuid.New()
	rule := func() accounting.AnalyticRule {
		return accounting.AnalyticRule{
			DocType:           accounting.DocTypeCustomerInvoice,
			AnalyticAccountID: uuid.New(),
			RulePriority:      1,
			IsActive:          true,
		}
	}

	older := createTestRuleModel(t, companyID, "Older", 3, rule())
	require.NoError(t, repo.Save(ctx, older))
	time.Sleep(10 * time.Millisecond)
	newer := createTestRuleModel(t, companyID, "Newer", 3, rule())
	require.NoError(t, repo.Save(ctx, newer))

	models, err := repo.ListActiveModels(ctx, companyID, accounting.DocTypeCustomerInvoice)
	require.NoError(t, err)
	require.Len(t, models, 2)
	assert.Equal(t, "Older", models[0].Name)
	assert.Equal(t, "Newer", models[1].Name)
}

func TestGormAnalyticRuleRepository_FindAllForCompany(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormAnalyticRuleRepository(db)
	ctx := context.Background()

	companyID := uuid.New()
	active := createTestRuleModel(t, companyID, "Active", 1)
	require.NoError(t, repo.Save(ctx, active))
	inactive := createTestRuleModel(t, companyID, "Inactive", 2)
	inactive.Archive()
	require.NoError(t, repo.Save(ctx, inactive))

	t.Run("lists all", func(t *testing.T) {
		models, err := repo.FindAllForCompany(ctx, companyID, accounting.AnalyticRuleModelFilter{})
		require.NoError(t, err)
		assert.Len(t, models, 2)
	})

	t.Run("filters on is_active", func(t *testing.T) {
		isActive := true
		models, err := repo.FindAllForCompany(ctx, companyID, accounting.AnalyticRuleModelFilter{IsActive: &isActive})
		require.NoError(t, err)
		require.Len(t, models, 1)
		assert.Equal(t, "Active", models[0].Name)

		count, err := repo.CountForCompany(ctx, companyID, accounting.AnalyticRuleModelFilter{IsActive: &isActive})
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})
}
