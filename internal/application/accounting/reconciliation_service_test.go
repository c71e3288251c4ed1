package accounting

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/openledger/backend/internal/domain/accounting"
	"github.com/openledger/backend/internal/domain/shared"
)

func newReconcilableDocument(t *testing.T, total string) *accounting.Document {
	t.Helper()
	doc, err := accounting.NewDocument(uuid.New(), "BILL-00020", accounting.DocTypeVendorBill, uuid.New())
	require.NoError(t, err)
	line, err := accounting.NewDocumentLine(nil, nil, "goods", d("1"), d(total), d("0"))
	require.NoError(t, err)
	require.NoError(t, doc.AddLine(line))
	doc.RecalculateTotal()
	require.NoError(t, doc.TransitionTo(accounting.StatusPosted))
	return doc
}

func TestReconciliationService_Reconcile(t *testing.T) {
	ctx := context.Background()

	t.Run("sums posted allocations only", func(t *testing.T) {
		// Target totals 1000; a posted payment allocated 400 and a draft
		// payment allocated 300. Only the posted 400 counts.
		doc := newReconcilableDocument(t, "1000")
		documents := new(MockDocumentRepository)
		payments := new(MockPaymentRepository)
		documents.On("FindByTarget", ctx, accounting.DocTypeVendorBill, doc.ID).Return(doc, nil)
		payments.On("SumPostedAllocations", ctx, accounting.DocTypeVendorBill, doc.ID).Return(d("400"), nil)
		documents.On("SaveWithLock", ctx, doc).Return(nil)

		service := NewReconciliationService(documents, payments)
		updated, err := service.Reconcile(ctx, accounting.DocTypeVendorBill, doc.ID)

		require.NoError(t, err)
		assert.True(t, updated.PaidAmount.Equal(d("400")))
		assert.Equal(t, accounting.PaymentStatePartiallyPaid, updated.PaymentState)
	})

	t.Run("full coverage settles the document", func(t *testing.T) {
		doc := newReconcilableDocument(t, "1000")
		documents := new(MockDocumentRepository)
		payments := new(MockPaymentRepository)
		documents.On("FindByTarget", ctx, accounting.DocTypeVendorBill, doc.ID).Return(doc, nil)
		payments.On("SumPostedAllocations", ctx, accounting.DocTypeVendorBill, doc.ID).Return(d("1000"), nil)
		documents.On("SaveWithLock", ctx, doc).Return(nil)

		service := NewReconciliationService(documents, payments)
		updated, err := service.Reconcile(ctx, accounting.DocTypeVendorBill, doc.ID)

		require.NoError(t, err)
		assert.Equal(t, accounting.PaymentStatePaid, updated.PaymentState)
		assert.True(t, updated.IsSettled())
	})

	t.Run("reconciling twice converges to the same state", func(t *testing.T) {
		doc := newReconcilableDocument(t, "1000")
		documents := new(MockDocumentRepository)
		payments := new(MockPaymentRepository)
		documents.On("FindByTarget", ctx, accounting.DocTypeVendorBill, doc.ID).Return(doc, nil)
		payments.On("SumPostedAllocations", ctx, accounting.DocTypeVendorBill, doc.ID).Return(d("250"), nil)
		documents.On("SaveWithLock", ctx, doc).Return(nil)

		service := NewReconciliationService(documents, payments)

		first, err := service.Reconcile(ctx, accounting.DocTypeVendorBill, doc.ID)
		require.NoError(t, err)
		second, err := service.Reconcile(ctx, accounting.DocTypeVendorBill, doc.ID)
		require.NoError(t, err)

		assert.True(t, first.PaidAmount.Equal(second.PaidAmount))
		assert.Equal(t, first.PaymentState, second.PaymentState)
	})

	t.Run("retries on write contention", func(t *testing.T) {
		doc := newReconcilableDocument(t, "1000")
		documents := new(MockDocumentRepository)
		payments := new(MockPaymentRepository)
		documents.On("FindByTarget", ctx, accounting.DocTypeVendorBill, doc.ID).Return(doc, nil)
		payments.On("SumPostedAllocations", ctx, accounting.DocTypeVendorBill, doc.ID).Return(d("500"), nil)
		documents.On("SaveWithLock", ctx, doc).Return(shared.ErrConcurrencyConflict).Twice()
		documents.On("SaveWithLock", ctx, doc).Return(nil).Once()

		service := NewReconciliationService(documents, payments)
		updated, err := service.Reconcile(ctx, accounting.DocTypeVendorBill, doc.ID)

		require.NoError(t, err)
		assert.True(t, updated.PaidAmount.Equal(d("500")))
		documents.AssertNumberOfCalls(t, "SaveWithLock", 3)
	})

	t.Run("gives up after exhausting retries", func(t *testing.T) {
		doc := newReconcilableDocument(t, "1000")
		documents := new(MockDocumentRepository)
		payments := new(MockPaymentRepository)
		documents.On("FindByTarget", ctx, accounting.DocTypeVendorBill, doc.ID).Return(doc, nil)
		payments.On("SumPostedAllocations", ctx, accounting.DocTypeVendorBill, doc.ID).Return(d("500"), nil)
		documents.On("SaveWithLock", ctx, doc).Return(shared.ErrConcurrencyConflict)

		service := NewReconciliationService(documents, payments)
		_, err := service.Reconcile(ctx, accounting.DocTypeVendorBill, doc.ID)

		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		documents.AssertNumberOfCalls(t, "SaveWithLock", 3)
	})

	t.Run("rejects order targets", func(t *testing.T) {
		service := NewReconciliationService(new(MockDocumentRepository), new(MockPaymentRepository))
		_, err := service.Reconcile(ctx, accounting.DocTypeSalesOrder, uuid.New())
		assert.Error(t, err)
	})

	t.Run("missing target passes through", func(t *testing.T) {
		documents := new(MockDocumentRepository)
		targetID := uuid.New()
		documents.On("FindByTarget", ctx, accounting.DocTypeVendorBill, targetID).Return(nil, shared.ErrNotFound)

		service := NewReconciliationService(documents, new(MockPaymentRepository))
		_, err := service.Reconcile(ctx, accounting.DocTypeVendorBill, targetID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("sum failure aborts without writing", func(t *testing.T) {
		doc := newReconcilableDocument(t, "1000")
		documents := new(MockDocumentRepository)
		payments := new(MockPaymentRepository)
		documents.On("FindByTarget", ctx, accounting.DocTypeVendorBill, doc.ID).Return(doc, nil)
		payments.On("SumPostedAllocations", ctx, accounting.DocTypeVendorBill, doc.ID).
			Return(decimal.Zero, assert.AnError)

		service := NewReconciliationService(documents, payments)
		_, err := service.Reconcile(ctx, accounting.DocTypeVendorBill, doc.ID)

		require.Error(t, err)
		documents.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})
}
