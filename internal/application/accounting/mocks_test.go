package accounting

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/openledger/backend/internal/domain/accounting"
	"github.com/openledger/backend/internal/domain/shared"
)

type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) FindByID(ctx context.Context, id uuid.UUID) (*accounting.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accounting.Document), args.Error(1)
}

func (m *MockDocumentRepository) FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*accounting.Document, error) {
	args := m.Called(ctx, companyID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accounting.Document), args.Error(1)
}

func (m *MockDocumentRepository) FindByTarget(ctx context.Context, docType accounting.DocType, id uuid.UUID) (*accounting.Document, error) {
	args := m.Called(ctx, docType, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accounting.Document), args.Error(1)
}

func (m *MockDocumentRepository) FindAllForCompany(ctx context.Context, companyID uuid.UUID, filter accounting.DocumentFilter) ([]accounting.Document, error) {
	args := m.Called(ctx, companyID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]accounting.Document), args.Error(1)
}

func (m *MockDocumentRepository) CountForCompany(ctx context.Context, companyID uuid.UUID, filter accounting.DocumentFilter) (int64, error) {
	args := m.Called(ctx, companyID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDocumentRepository) CreateWithLines(ctx context.Context, doc *accounting.Document) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockDocumentRepository) Save(ctx context.Context, doc *accounting.Document) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockDocumentRepository) SaveWithLock(ctx context.Context, doc *accounting.Document) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockDocumentRepository) GenerateDocNumber(ctx context.Context, companyID uuid.UUID, docType accounting.DocType) (string, error) {
	args := m.Called(ctx, companyID, docType)
	return args.String(0), args.Error(1)
}

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*accounting.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accounting.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*accounting.Payment, error) {
	args := m.Called(ctx, companyID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accounting.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindAllForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]accounting.Payment, error) {
	args := m.Called(ctx, companyID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]accounting.Payment), args.Error(1)
}

func (m *MockPaymentRepository) Save(ctx context.Context, payment *accounting.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) SumPostedAllocations(ctx context.Context, targetType accounting.DocType, targetID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, targetType, targetID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockPaymentRepository) GeneratePaymentNumber(ctx context.Context, companyID uuid.UUID) (string, error) {
	args := m.Called(ctx, companyID)
	return args.String(0), args.Error(1)
}

type MockRuleModelRepository struct {
	mock.Mock
}

func (m *MockRuleModelRepository) FindByID(ctx context.Context, id uuid.UUID) (*accounting.AnalyticRuleModel, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accounting.AnalyticRuleModel), args.Error(1)
}

func (m *MockRuleModelRepository) FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*accounting.AnalyticRuleModel, error) {
	args := m.Called(ctx, companyID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accounting.AnalyticRuleModel), args.Error(1)
}

func (m *MockRuleModelRepository) FindAllForCompany(ctx context.Context, companyID uuid.UUID, filter accounting.AnalyticRuleModelFilter) ([]accounting.AnalyticRuleModel, error) {
	args := m.Called(ctx, companyID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]accounting.AnalyticRuleModel), args.Error(1)
}

func (m *MockRuleModelRepository) ListActiveModels(ctx context.Context, companyID uuid.UUID, docType accounting.DocType) ([]accounting.AnalyticRuleModel, error) {
	args := m.Called(ctx, companyID, docType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]accounting.AnalyticRuleModel), args.Error(1)
}

func (m *MockRuleModelRepository) Save(ctx context.Context, model *accounting.AnalyticRuleModel) error {
	args := m.Called(ctx, model)
	return args.Error(0)
}

func (m *MockRuleModelRepository) CountForCompany(ctx context.Context, companyID uuid.UUID, filter accounting.AnalyticRuleModelFilter) (int64, error) {
	args := m.Called(ctx, companyID, filter)
	return args.Get(0).(int64), args.Error(1)
}

type MockCompanyRepository struct {
	mock.Mock
}

func (m *MockCompanyRepository) Ensure(ctx context.Context, companyID uuid.UUID) error {
	args := m.Called(ctx, companyID)
	return args.Error(0)
}

type MockProductReader struct {
	mock.Mock
}

func (m *MockProductReader) GetProductCategory(ctx context.Context, productID uuid.UUID) (*uuid.UUID, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*uuid.UUID), args.Error(1)
}
