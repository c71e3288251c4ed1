package models

import (
	"time"

	"github.com/openledger/backend/internal/domain/accounting"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CompanyModel is the persistence model for the minimal company record that
// documents, payments and rule models foreign-key to.
type CompanyModel struct {
	BaseModel
	Name string `gorm:"type:varchar(200)"`
}

// TableName returns the table name for GORM
func (CompanyModel) TableName() string {
	return "companies"
}

// ProductModel is the persistence model for product master data. The posting
// core only reads the category; product CRUD lives elsewhere.
type ProductModel struct {
	BaseModel
	CompanyID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	Name       string     `gorm:"type:varchar(200);not null"`
	CategoryID *uuid.UUID `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// DocumentModel is the persistence model for the Document aggregate root.
type DocumentModel struct {
	CompanyAggregateModel
	DocNumber    string                     `gorm:"type:varchar(50);not null;uniqueIndex:idx_document_company_number,priority:2"`
	DocType      accounting.DocType         `gorm:"type:varchar(30);not null;index"`
	ContactID    uuid.UUID                  `gorm:"type:uuid;not null;index"`
	Status       accounting.DocumentStatus  `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	TotalAmount  decimal.Decimal            `gorm:"type:decimal(18,4);not null"`
	PaidAmount   decimal.Decimal            `gorm:"type:decimal(18,4);not null"`
	PaymentState accounting.PaymentState    `gorm:"type:varchar(20);not null;default:'NOT_PAID';index"`
	Lines        []DocumentLineModel        `gorm:"foreignKey:DocumentID;references:ID"`
	PostedAt     *time.Time
	CancelledAt  *time.Time
}

// TableName returns the table name for GORM
func (DocumentModel) TableName() string {
	return "documents"
}

// ToDomain converts the persistence model to a domain Document aggregate.
func (m *DocumentModel) ToDomain() *accounting.Document {
	doc := &accounting.Document{
		DocNumber:    m.DocNumber,
		DocType:      m.DocType,
		ContactID:    m.ContactID,
		Status:       m.Status,
		TotalAmount:  m.TotalAmount,
		PaidAmount:   m.PaidAmount,
		PaymentState: m.PaymentState,
		PostedAt:     m.PostedAt,
		CancelledAt:  m.CancelledAt,
		Lines:        make([]accounting.DocumentLine, 0, len(m.Lines)),
	}
	m.PopulateCompanyAggregateRoot(&doc.CompanyAggregateRoot)
	for _, line := range m.Lines {
		doc.Lines = append(doc.Lines, *line.ToDomain())
	}
	return doc
}

// FromDomain populates the persistence model from a domain Document aggregate.
func (m *DocumentModel) FromDomain(doc *accounting.Document) {
	m.FromDomainCompanyAggregateRoot(doc.CompanyAggregateRoot)
	m.DocNumber = doc.DocNumber
	m.DocType = doc.DocType
	m.ContactID = doc.ContactID
	m.Status = doc.Status
	m.TotalAmount = doc.TotalAmount
	m.PaidAmount = doc.PaidAmount
	m.PaymentState = doc.PaymentState
	m.PostedAt = doc.PostedAt
	m.CancelledAt = doc.CancelledAt
	m.Lines = make([]DocumentLineModel, 0, len(doc.Lines))
	for i := range doc.Lines {
		var lineModel DocumentLineModel
		lineModel.FromDomain(&doc.Lines[i])
		m.Lines = append(m.Lines, lineModel)
	}
}

// DocumentModelFromDomain creates a new persistence model from a domain Document.
func DocumentModelFromDomain(doc *accounting.Document) *DocumentModel {
	m := &DocumentModel{}
	m.FromDomain(doc)
	return m
}

// DocumentLineModel is the persistence model for a document line.
type DocumentLineModel struct {
	ID                 uuid.UUID          `gorm:"type:uuid;primary_key"`
	DocumentID         uuid.UUID          `gorm:"type:uuid;not null;index"`
	ProductID          *uuid.UUID         `gorm:"type:uuid;index"`
	CategoryID         *uuid.UUID         `gorm:"type:uuid"`
	Description        string             `gorm:"type:varchar(500)"`
	Quantity           decimal.Decimal    `gorm:"type:decimal(18,4);not null"`
	UnitPrice          decimal.Decimal    `gorm:"type:decimal(18,4);not null"`
	TaxRate            decimal.Decimal    `gorm:"type:decimal(8,4);not null"`
	LineTotal          decimal.Decimal    `gorm:"type:decimal(18,4);not null"`
	AnalyticAccountID  *uuid.UUID         `gorm:"type:uuid;index"`
	AnalyticModelID    *uuid.UUID         `gorm:"type:uuid"`
	AnalyticRuleID     *uuid.UUID         `gorm:"type:uuid"`
	MatchedFieldsCount int                `gorm:"not null;default:0"`
	CreatedAt          time.Time          `gorm:"not null"`
	UpdatedAt          time.Time          `gorm:"not null"`
}

// TableName returns the table name for GORM
func (DocumentLineModel) TableName() string {
	return "document_lines"
}

// ToDomain converts the persistence model to a domain DocumentLine.
func (m *DocumentLineModel) ToDomain() *accounting.DocumentLine {
	return &accounting.DocumentLine{
		ID:                 m.ID,
		DocumentID:         m.DocumentID,
		ProductID:          m.ProductID,
		CategoryID:         m.CategoryID,
		Description:        m.Description,
		Quantity:           m.Quantity,
		UnitPrice:          m.UnitPrice,
		TaxRate:            m.TaxRate,
		LineTotal:          m.LineTotal,
		AnalyticAccountID:  m.AnalyticAccountID,
		AnalyticModelID:    m.AnalyticModelID,
		AnalyticRuleID:     m.AnalyticRuleID,
		MatchedFieldsCount: m.MatchedFieldsCount,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain DocumentLine.
func (m *DocumentLineModel) FromDomain(line *accounting.DocumentLine) {
	m.ID = line.ID
	m.DocumentID = line.DocumentID
	m.ProductID = line.ProductID
	m.CategoryID = line.CategoryID
	m.Description = line.Description
	m.Quantity = line.Quantity
	m.UnitPrice = line.UnitPrice
	m.TaxRate = line.TaxRate
	m.LineTotal = line.LineTotal
	m.AnalyticAccountID = line.AnalyticAccountID
	m.AnalyticModelID = line.AnalyticModelID
	m.AnalyticRuleID = line.AnalyticRuleID
	m.MatchedFieldsCount = line.MatchedFieldsCount
	m.CreatedAt = line.CreatedAt
	m.UpdatedAt = line.UpdatedAt
}

// PaymentModel is the persistence model for the Payment aggregate root.
type PaymentModel struct {
	CompanyAggregateModel
	PaymentNumber string                    `gorm:"type:varchar(50);not null;uniqueIndex:idx_payment_company_number,priority:2"`
	ContactID     uuid.UUID                 `gorm:"type:uuid;not null;index"`
	Amount        decimal.Decimal           `gorm:"type:decimal(18,4);not null"`
	Status        accounting.PaymentStatus  `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	Allocations   []PaymentAllocationModel  `gorm:"foreignKey:PaymentID;references:ID"`
	PostedAt      *time.Time
	VoidedAt      *time.Time
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment aggregate.
func (m *PaymentModel) ToDomain() *accounting.Payment {
	payment := &accounting.Payment{
		PaymentNumber: m.PaymentNumber,
		ContactID:     m.ContactID,
		Amount:        m.Amount,
		Status:        m.Status,
		PostedAt:      m.PostedAt,
		VoidedAt:      m.VoidedAt,
		Allocations:   make([]accounting.PaymentAllocation, 0, len(m.Allocations)),
	}
	m.PopulateCompanyAggregateRoot(&payment.CompanyAggregateRoot)
	for _, alloc := range m.Allocations {
		payment.Allocations = append(payment.Allocations, *alloc.ToDomain())
	}
	return payment
}

// FromDomain populates the persistence model from a domain Payment aggregate.
func (m *PaymentModel) FromDomain(payment *accounting.Payment) {
	m.FromDomainCompanyAggregateRoot(payment.CompanyAggregateRoot)
	m.PaymentNumber = payment.PaymentNumber
	m.ContactID = payment.ContactID
	m.Amount = payment.Amount
	m.Status = payment.Status
	m.PostedAt = payment.PostedAt
	m.VoidedAt = payment.VoidedAt
	m.Allocations = make([]PaymentAllocationModel, 0, len(payment.Allocations))
	for i := range payment.Allocations {
		var allocModel PaymentAllocationModel
		allocModel.FromDomain(&payment.Allocations[i])
		m.Allocations = append(m.Allocations, allocModel)
	}
}

// PaymentModelFromDomain creates a new persistence model from a domain Payment.
func PaymentModelFromDomain(payment *accounting.Payment) *PaymentModel {
	m := &PaymentModel{}
	m.FromDomain(payment)
	return m
}

// PaymentAllocationModel is the persistence model for a payment allocation.
type PaymentAllocationModel struct {
	ID         uuid.UUID          `gorm:"type:uuid;primary_key"`
	PaymentID  uuid.UUID          `gorm:"type:uuid;not null;index"`
	TargetType accounting.DocType `gorm:"type:varchar(30);not null;index:idx_allocation_target,priority:1"`
	TargetID   uuid.UUID          `gorm:"type:uuid;not null;index:idx_allocation_target,priority:2"`
	Amount     decimal.Decimal    `gorm:"type:decimal(18,4);not null"`
	CreatedAt  time.Time          `gorm:"not null"`
	UpdatedAt  time.Time          `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PaymentAllocationModel) TableName() string {
	return "payment_allocations"
}

// ToDomain converts the persistence model to a domain PaymentAllocation.
func (m *PaymentAllocationModel) ToDomain() *accounting.PaymentAllocation {
	return &accounting.PaymentAllocation{
		ID:         m.ID,
		PaymentID:  m.PaymentID,
		TargetType: m.TargetType,
		TargetID:   m.TargetID,
		Amount:     m.Amount,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain PaymentAllocation.
func (m *PaymentAllocationModel) FromDomain(alloc *accounting.PaymentAllocation) {
	m.ID = alloc.ID
	m.PaymentID = alloc.PaymentID
	m.TargetType = alloc.TargetType
	m.TargetID = alloc.TargetID
	m.Amount = alloc.Amount
	m.CreatedAt = alloc.CreatedAt
	m.UpdatedAt = alloc.UpdatedAt
}

// AnalyticRuleModelModel is the persistence model for the AnalyticRuleModel
// aggregate root.
type AnalyticRuleModelModel struct {
	CompanyAggregateModel
	Name     string              `gorm:"type:varchar(200);not null"`
	Priority int                 `gorm:"not null;index"`
	// No gorm default tag: GORM drops zero-value fields carrying one from
	// INSERTs, which would persist archived models as active.
	IsActive bool                `gorm:"not null;index"`
	Rules    []AnalyticRuleModel `gorm:"foreignKey:ModelID;references:ID"`
}

// TableName returns the table name for GORM
func (AnalyticRuleModelModel) TableName() string {
	return "analytic_rule_models"
}

// ToDomain converts the persistence model to a domain AnalyticRuleModel aggregate.
func (m *AnalyticRuleModelModel) ToDomain() *accounting.AnalyticRuleModel {
	model := &accounting.AnalyticRuleModel{
		Name:     m.Name,
		Priority: m.Priority,
		IsActive: m.IsActive,
		Rules:    make([]accounting.AnalyticRule, 0, len(m.Rules)),
	}
	m.PopulateCompanyAggregateRoot(&model.CompanyAggregateRoot)
	for _, rule := range m.Rules {
		model.Rules = append(model.Rules, *rule.ToDomain())
	}
	return model
}

// FromDomain populates the persistence model from a domain AnalyticRuleModel aggregate.
func (m *AnalyticRuleModelModel) FromDomain(model *accounting.AnalyticRuleModel) {
	m.FromDomainCompanyAggregateRoot(model.CompanyAggregateRoot)
	m.Name = model.Name
	m.Priority = model.Priority
	m.IsActive = model.IsActive
	m.Rules = make([]AnalyticRuleModel, 0, len(model.Rules))
	for i := range model.Rules {
		var ruleModel AnalyticRuleModel
		ruleModel.FromDomain(&model.Rules[i])
		m.Rules = append(m.Rules, ruleModel)
	}
}

// AnalyticRuleModelModelFromDomain creates a new persistence model from a domain AnalyticRuleModel.
func AnalyticRuleModelModelFromDomain(model *accounting.AnalyticRuleModel) *AnalyticRuleModelModel {
	m := &AnalyticRuleModelModel{}
	m.FromDomain(model)
	return m
}

// AnalyticRuleModel is the persistence model for one analytic rule row.
type AnalyticRuleModel struct {
	ID                uuid.UUID          `gorm:"type:uuid;primary_key"`
	ModelID           uuid.UUID          `gorm:"type:uuid;not null;index"`
	DocType           accounting.DocType `gorm:"type:varchar(30);not null;index"`
	MatchProductID    *uuid.UUID         `gorm:"type:uuid"`
	MatchCategoryID   *uuid.UUID         `gorm:"type:uuid"`
	MatchContactID    *uuid.UUID         `gorm:"type:uuid"`
	MatchContactTagID *uuid.UUID         `gorm:"type:uuid"`
	AnalyticAccountID uuid.UUID          `gorm:"type:uuid;not null"`
	RulePriority      int                `gorm:"not null"`
	IsActive          bool               `gorm:"not null"`
	CreatedAt         time.Time          `gorm:"not null"`
	UpdatedAt         time.Time          `gorm:"not null"`
}

// TableName returns the table name for GORM
func (AnalyticRuleModel) TableName() string {
	return "analytic_rules"
}

// ToDomain converts the persistence model to a domain AnalyticRule.
func (m *AnalyticRuleModel) ToDomain() *accounting.AnalyticRule {
	return &accounting.AnalyticRule{
		ID:                m.ID,
		ModelID:           m.ModelID,
		DocType:           m.DocType,
		MatchProductID:    m.MatchProductID,
		MatchCategoryID:   m.MatchCategoryID,
		MatchContactID:    m.MatchContactID,
		MatchContactTagID: m.MatchContactTagID,
		AnalyticAccountID: m.AnalyticAccountID,
		RulePriority:      m.RulePriority,
		IsActive:          m.IsActive,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain AnalyticRule.
func (m *AnalyticRuleModel) FromDomain(rule *accounting.AnalyticRule) {
	m.ID = rule.ID
	m.ModelID = rule.ModelID
	m.DocType = rule.DocType
	m.MatchProductID = rule.MatchProductID
	m.MatchCategoryID = rule.MatchCategoryID
	m.MatchContactID = rule.MatchContactID
	m.MatchContactTagID = rule.MatchContactTagID
	m.AnalyticAccountID = rule.AnalyticAccountID
	m.RulePriority = rule.RulePriority
	m.IsActive = rule.IsActive
	m.CreatedAt = rule.CreatedAt
	m.UpdatedAt = rule.UpdatedAt
}

// AllModels returns every persistence model for schema migration.
func AllModels() []any {
	return []any{
		&CompanyModel{},
		&ProductModel{},
		&DocumentModel{},
		&DocumentLineModel{},
		&PaymentModel{},
		&PaymentAllocationModel{},
		&AnalyticRuleModelModel{},
		&AnalyticRuleModel{},
	}
}
