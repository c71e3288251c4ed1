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

type paymentFixture struct {
	payments  *MockPaymentRepository
	documents *MockDocumentRepository
	companies *MockCompanyRepository
	service   *PaymentService
}

func newPaymentFixture() *paymentFixture {
	payments := new(MockPaymentRepository)
	documents := new(MockDocumentRepository)
	companies := new(MockCompanyRepository)
	reconciliation := NewReconciliationService(documents, payments)
	return &paymentFixture{
		payments:  payments,
		documents: documents,
		companies: companies,
		service:   NewPaymentService(payments, companies, reconciliation),
	}
}

func TestPaymentService_CreatePayment(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New()
	contactID := uuid.New()

	t.Run("creates draft payment with allocations", func(t *testing.T) {
		f := newPaymentFixture()
		billID := uuid.New()
		f.companies.On("Ensure", ctx, companyID).Return(nil)
		f.payments.On("Save", ctx, mock.AnythingOfType("*accounting.Payment")).Return(nil)

		payment, err := f.service.CreatePayment(ctx, CreatePaymentInput{
			CompanyID:     companyID,
			PaymentNumber: "PAY-00001",
			ContactID:     contactID,
			Amount:        d("1000"),
			Allocations: []AllocationInput{
				{TargetType: accounting.DocTypeVendorBill, TargetID: billID, Amount: d("600")},
			},
		})

		require.NoError(t, err)
		assert.Equal(t, accounting.PaymentStatusDraft, payment.Status)
		assert.Len(t, payment.Allocations, 1)
		assert.True(t, payment.AllocatedAmount().Equal(d("600")))
	})

	t.Run("generates payment number when empty", func(t *testing.T) {
		f := newPaymentFixture()
		f.companies.On("Ensure", ctx, companyID).Return(nil)
		f.payments.On("GeneratePaymentNumber", ctx, companyID).Return("PAY-20260829-00003", nil)
		f.payments.On("Save", ctx, mock.AnythingOfType("*accounting.Payment")).Return(nil)

		payment, err := f.service.CreatePayment(ctx, CreatePaymentInput{
			CompanyID: companyID,
			ContactID: contactID,
			Amount:    d("100"),
		})

		require.NoError(t, err)
		assert.Equal(t, "PAY-20260829-00003", payment.PaymentNumber)
	})

	t.Run("over-allocation rejects without saving", func(t *testing.T) {
		f := newPaymentFixture()
		f.companies.On("Ensure", ctx, companyID).Return(nil)

		_, err := f.service.CreatePayment(ctx, CreatePaymentInput{
			CompanyID:     companyID,
			PaymentNumber: "PAY-00002",
			ContactID:     contactID,
			Amount:        d("100"),
			Allocations: []AllocationInput{
				{TargetType: accounting.DocTypeVendorBill, TargetID: uuid.New(), Amount: d("150")},
			},
		})

		require.Error(t, err)
		f.payments.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestPaymentService_PostPayment(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New()

	t.Run("posting reconciles every allocation target", func(t *testing.T) {
		f := newPaymentFixture()

		billDoc := newReconcilableDocument(t, "1000")
		invoiceDoc, err := accounting.NewDocument(companyID, "INV-00001", accounting.DocTypeCustomerInvoice, uuid.New())
		require.NoError(t, err)

		payment, err := accounting.NewPayment(companyID, "PAY-00010", uuid.New(), d("900"))
		require.NoError(t, err)
		_, err = payment.Allocate(accounting.DocTypeVendorBill, billDoc.ID, d("400"))
		require.NoError(t, err)
		_, err = payment.Allocate(accounting.DocTypeCustomerInvoice, invoiceDoc.ID, d("500"))
		require.NoError(t, err)

		f.payments.On("FindByIDForCompany", ctx, companyID, payment.ID).Return(payment, nil)
		f.payments.On("Save", ctx, payment).Return(nil)
		f.documents.On("FindByTarget", ctx, accounting.DocTypeVendorBill, billDoc.ID).Return(billDoc, nil)
		f.documents.On("FindByTarget", ctx, accounting.DocTypeCustomerInvoice, invoiceDoc.ID).Return(invoiceDoc, nil)
		f.payments.On("SumPostedAllocations", ctx, accounting.DocTypeVendorBill, billDoc.ID).Return(d("400"), nil)
		f.payments.On("SumPostedAllocations", ctx, accounting.DocTypeCustomerInvoice, invoiceDoc.ID).Return(d("500"), nil)
		f.documents.On("SaveWithLock", ctx, mock.AnythingOfType("*accounting.Document")).Return(nil)

		posted, err := f.service.PostPayment(ctx, companyID, payment.ID)

		require.NoError(t, err)
		assert.True(t, posted.IsPosted())
		f.documents.AssertNumberOfCalls(t, "SaveWithLock", 2)
		assert.True(t, billDoc.PaidAmount.Equal(d("400")))
		assert.Equal(t, accounting.PaymentStatePartiallyPaid, billDoc.PaymentState)
	})

	t.Run("duplicate targets reconcile once", func(t *testing.T) {
		f := newPaymentFixture()
		billDoc := newReconcilableDocument(t, "1000")

		payment, err := accounting.NewPayment(companyID, "PAY-00011", uuid.New(), d("300"))
		require.NoError(t, err)
		_, err = payment.Allocate(accounting.DocTypeVendorBill, billDoc.ID, d("100"))
		require.NoError(t, err)
		_, err = payment.Allocate(accounting.DocTypeVendorBill, billDoc.ID, d("200"))
		require.NoError(t, err)

		f.payments.On("FindByIDForCompany", ctx, companyID, payment.ID).Return(payment, nil)
		f.payments.On("Save", ctx, payment).Return(nil)
		f.documents.On("FindByTarget", ctx, accounting.DocTypeVendorBill, billDoc.ID).Return(billDoc, nil)
		f.payments.On("SumPostedAllocations", ctx, accounting.DocTypeVendorBill, billDoc.ID).Return(d("300"), nil)
		f.documents.On("SaveWithLock", ctx, billDoc).Return(nil)

		_, err = f.service.PostPayment(ctx, companyID, payment.ID)

		require.NoError(t, err)
		f.documents.AssertNumberOfCalls(t, "SaveWithLock", 1)
	})

	t.Run("cannot post a posted payment", func(t *testing.T) {
		f := newPaymentFixture()
		payment, err := accounting.NewPayment(companyID, "PAY-00012", uuid.New(), d("100"))
		require.NoError(t, err)
		require.NoError(t, payment.Post())

		f.payments.On("FindByIDForCompany", ctx, companyID, payment.ID).Return(payment, nil)

		_, err = f.service.PostPayment(ctx, companyID, payment.ID)
		require.Error(t, err)
		f.payments.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestPaymentService_VoidPayment(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New()

	t.Run("voiding a posted payment rolls its targets back", func(t *testing.T) {
		f := newPaymentFixture()
		billDoc := newReconcilableDocument(t, "1000")
		require.NoError(t, billDoc.ApplyPaidState(d("400"), accounting.PaymentStatePartiallyPaid))

		payment, err := accounting.NewPayment(companyID, "PAY-00020", uuid.New(), d("400"))
		require.NoError(t, err)
		_, err = payment.Allocate(accounting.DocTypeVendorBill, billDoc.ID, d("400"))
		require.NoError(t, err)
		require.NoError(t, payment.Post())

		f.payments.On("FindByIDForCompany", ctx, companyID, payment.ID).Return(payment, nil)
		f.payments.On("Save", ctx, payment).Return(nil)
		f.documents.On("FindByTarget", ctx, accounting.DocTypeVendorBill, billDoc.ID).Return(billDoc, nil)
		f.payments.On("SumPostedAllocations", ctx, accounting.DocTypeVendorBill, billDoc.ID).Return(d("0"), nil)
		f.documents.On("SaveWithLock", ctx, billDoc).Return(nil)

		voided, err := f.service.VoidPayment(ctx, companyID, payment.ID)

		require.NoError(t, err)
		assert.Equal(t, accounting.PaymentStatusVoid, voided.Status)
		assert.True(t, billDoc.PaidAmount.IsZero())
		assert.Equal(t, accounting.PaymentStateNotPaid, billDoc.PaymentState)
	})

	t.Run("voiding a draft skips reconciliation", func(t *testing.T) {
		f := newPaymentFixture()
		payment, err := accounting.NewPayment(companyID, "PAY-00021", uuid.New(), d("100"))
		require.NoError(t, err)
		_, err = payment.Allocate(accounting.DocTypeVendorBill, uuid.New(), d("100"))
		require.NoError(t, err)

		f.payments.On("FindByIDForCompany", ctx, companyID, payment.ID).Return(payment, nil)
		f.payments.On("Save", ctx, payment).Return(nil)

		voided, err := f.service.VoidPayment(ctx, companyID, payment.ID)

		require.NoError(t, err)
		assert.Equal(t, accounting.PaymentStatusVoid, voided.Status)
		f.documents.AssertNotCalled(t, "FindByTarget", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestPaymentService_Allocate(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New()

	t.Run("adds allocation to draft payment", func(t *testing.T) {
		f := newPaymentFixture()
		payment, err := accounting.NewPayment(companyID, "PAY-00030", uuid.New(), d("500"))
		require.NoError(t, err)

		f.payments.On("FindByIDForCompany", ctx, companyID, payment.ID).Return(payment, nil)
		f.payments.On("Save", ctx, payment).Return(nil)

		updated, err := f.service.Allocate(ctx, companyID, payment.ID, AllocationInput{
			TargetType: accounting.DocTypeCustomerInvoice,
			TargetID:   uuid.New(),
			Amount:     d("200"),
		})

		require.NoError(t, err)
		assert.Len(t, updated.Allocations, 1)
	})

	t.Run("missing payment passes through", func(t *testing.T) {
		f := newPaymentFixture()
		paymentID := uuid.New()
		f.payments.On("FindByIDForCompany", ctx, companyID, paymentID).Return(nil, shared.ErrNotFound)

		_, err := f.service.Allocate(ctx, companyID, paymentID, AllocationInput{
			TargetType: accounting.DocTypeVendorBill,
			TargetID:   uuid.New(),
			Amount:     d("10"),
		})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
