package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	accountingapp "github.com/openledger/backend/internal/application/accounting"
	"github.com/openledger/backend/internal/domain/accounting"
	"github.com/openledger/backend/internal/domain/shared/valueobject"
)

// DocumentHandler handles document-related API endpoints
type DocumentHandler struct {
	BaseHandler
	postingService *accountingapp.PostingService
}

// NewDocumentHandler creates a new DocumentHandler
func NewDocumentHandler(postingService *accountingapp.PostingService) *DocumentHandler {
	return &DocumentHandler{
		postingService: postingService,
	}
}

// CreateDocumentRequest represents a request to create a new document
type CreateDocumentRequest struct {
	DocType       string                    `json:"doc_type" binding:"required"`
	DocNumber     string                    `json:"doc_number"`
	ContactID     string                    `json:"contact_id" binding:"required,uuid"`
	ContactTagIDs []string                  `json:"contact_tag_ids" binding:"omitempty,dive,uuid"`
	Lines         []CreateDocumentLineInput `json:"lines"`
}

// CreateDocumentLineInput represents one line in a document creation request
type CreateDocumentLineInput struct {
	ProductID         *string `json:"product_id" binding:"omitempty,uuid"`
	Description       string  `json:"description" binding:"max=500"`
	Quantity          string  `json:"quantity" binding:"required"`
	UnitPrice         string  `json:"unit_price" binding:"required"`
	TaxRate           string  `json:"tax_rate"`
	AnalyticAccountID *string `json:"analytic_account_id" binding:"omitempty,uuid"`
}

// TransitionDocumentRequest represents a request to move a document
// through its lifecycle
type TransitionDocumentRequest struct {
	Status string `json:"status" binding:"required"`
}

// ListDocumentsRequest represents list query parameters for documents
type ListDocumentsRequest struct {
	Page         int    `form:"page,default=1" binding:"min=1"`
	PageSize     int    `form:"page_size,default=20" binding:"min=1,max=100"`
	OrderBy      string `form:"order_by"`
	OrderDir     string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	Search       string `form:"search"`
	DocType      string `form:"doc_type"`
	Status       string `form:"status"`
	PaymentState string `form:"payment_state"`
	ContactID    string `form:"contact_id" binding:"omitempty,uuid"`
}

// DocumentResponse represents a document in API responses
type DocumentResponse struct {
	ID           string                 `json:"id"`
	CompanyID    string                 `json:"company_id"`
	DocNumber    string                 `json:"doc_number"`
	DocType      string                 `json:"doc_type"`
	ContactID    string                 `json:"contact_id"`
	Status       string                 `json:"status"`
	TotalAmount  valueobject.Money      `json:"total_amount"`
	PaidAmount   *valueobject.Money     `json:"paid_amount,omitempty"`
	PaymentState string                 `json:"payment_state,omitempty"`
	Lines        []DocumentLineResponse `json:"lines"`
	PostedAt     *time.Time             `json:"posted_at,omitempty"`
	CancelledAt  *time.Time             `json:"cancelled_at,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
	Version      int                    `json:"version"`
}

// DocumentLineResponse represents a document line in API responses
type DocumentLineResponse struct {
	ID                 string            `json:"id"`
	ProductID          *string           `json:"product_id,omitempty"`
	CategoryID         *string           `json:"category_id,omitempty"`
	Description        string            `json:"description"`
	Quantity           string            `json:"quantity"`
	UnitPrice          valueobject.Money `json:"unit_price"`
	TaxRate            string            `json:"tax_rate"`
	LineTotal          valueobject.Money `json:"line_total"`
	AnalyticAccountID  *string           `json:"analytic_account_id,omitempty"`
	AnalyticModelID    *string           `json:"analytic_model_id,omitempty"`
	AnalyticRuleID     *string           `json:"analytic_rule_id,omitempty"`
	MatchedFieldsCount int               `json:"matched_fields_count"`
}

// DocumentListResponse represents a document in list responses
type DocumentListResponse struct {
	ID           string             `json:"id"`
	DocNumber    string             `json:"doc_number"`
	DocType      string             `json:"doc_type"`
	ContactID    string             `json:"contact_id"`
	Status       string             `json:"status"`
	TotalAmount  valueobject.Money  `json:"total_amount"`
	PaidAmount   *valueobject.Money `json:"paid_amount,omitempty"`
	PaymentState string             `json:"payment_state,omitempty"`
	LineCount    int                `json:"line_count"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// toDocumentResponse converts a domain document to its API representation
func toDocumentResponse(doc *accounting.Document) DocumentResponse {
	resp := DocumentResponse{
		ID:          doc.ID.String(),
		CompanyID:   doc.CompanyID.String(),
		DocNumber:   doc.DocNumber,
		DocType:     doc.DocType.String(),
		ContactID:   doc.ContactID.String(),
		Status:      doc.Status.String(),
		TotalAmount: valueobject.NewMoneyUSD(doc.TotalAmount),
		Lines:       make([]DocumentLineResponse, 0, len(doc.Lines)),
		PostedAt:    doc.PostedAt,
		CancelledAt: doc.CancelledAt,
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
		Version:     doc.Version,
	}

	// Orders carry no payment state on the wire.
	if doc.DocType.IsFinancial() {
		paid := valueobject.NewMoneyUSD(doc.PaidAmount)
		resp.PaidAmount = &paid
		resp.PaymentState = doc.PaymentState.String()
	}

	for _, line := range doc.Lines {
		resp.Lines = append(resp.Lines, toDocumentLineResponse(line))
	}

	return resp
}

// toDocumentLineResponse converts a domain line to its API representation
func toDocumentLineResponse(line accounting.DocumentLine) DocumentLineResponse {
	resp := DocumentLineResponse{
		ID:                 line.ID.String(),
		Description:        line.Description,
		Quantity:           line.Quantity.String(),
		UnitPrice:          valueobject.NewMoneyUSD(line.UnitPrice),
		TaxRate:            line.TaxRate.String(),
		LineTotal:          valueobject.NewMoneyUSD(line.LineTotal),
		MatchedFieldsCount: line.MatchedFieldsCount,
	}
	resp.ProductID = uuidPtrToString(line.ProductID)
	resp.CategoryID = uuidPtrToString(line.CategoryID)
	resp.AnalyticAccountID = uuidPtrToString(line.AnalyticAccountID)
	resp.AnalyticModelID = uuidPtrToString(line.AnalyticModelID)
	resp.AnalyticRuleID = uuidPtrToString(line.AnalyticRuleID)
	return resp
}

// toDocumentListResponse converts a domain document to its list representation
func toDocumentListResponse(doc accounting.Document) DocumentListResponse {
	resp := DocumentListResponse{
		ID:          doc.ID.String(),
		DocNumber:   doc.DocNumber,
		DocType:     doc.DocType.String(),
		ContactID:   doc.ContactID.String(),
		Status:      doc.Status.String(),
		TotalAmount: valueobject.NewMoneyUSD(doc.TotalAmount),
		LineCount:   len(doc.Lines),
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}
	if doc.DocType.IsFinancial() {
		paid := valueobject.NewMoneyUSD(doc.PaidAmount)
		resp.PaidAmount = &paid
		resp.PaymentState = doc.PaymentState.String()
	}
	return resp
}

// Create handles POST /documents
func (h *DocumentHandler) Create(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	var req CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	contactID, err := uuid.Parse(req.ContactID)
	if err != nil {
		h.BadRequest(c, "Invalid contact ID format")
		return
	}

	input := accountingapp.CreateDocumentInput{
		CompanyID: companyID,
		DocType:   accounting.DocType(req.DocType),
		DocNumber: req.DocNumber,
		ContactID: contactID,
	}

	for _, tagID := range req.ContactTagIDs {
		parsed, err := uuid.Parse(tagID)
		if err != nil {
			h.BadRequest(c, "Invalid contact tag ID format")
			return
		}
		input.ContactTagIDs = append(input.ContactTagIDs, parsed)
	}

	for _, lineReq := range req.Lines {
		lineInput, err := toCreateLineInput(lineReq)
		if err != nil {
			h.BadRequest(c, err.Error())
			return
		}
		input.Lines = append(input.Lines, lineInput)
	}

	doc, err := h.postingService.CreateDocument(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toDocumentResponse(doc))
}

// toCreateLineInput converts a line request into an application line input
func toCreateLineInput(req CreateDocumentLineInput) (accountingapp.CreateLineInput, error) {
	quantity, err := decimal.NewFromString(req.Quantity)
	if err != nil {
		return accountingapp.CreateLineInput{}, err
	}
	unitPrice, err := decimal.NewFromString(req.UnitPrice)
	if err != nil {
		return accountingapp.CreateLineInput{}, err
	}
	taxRate := decimal.Zero
	if req.TaxRate != "" {
		taxRate, err = decimal.NewFromString(req.TaxRate)
		if err != nil {
			return accountingapp.CreateLineInput{}, err
		}
	}

	input := accountingapp.CreateLineInput{
		Description: req.Description,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		TaxRate:     taxRate,
	}

	if req.ProductID != nil && *req.ProductID != "" {
		productID, err := uuid.Parse(*req.ProductID)
		if err != nil {
			return accountingapp.CreateLineInput{}, err
		}
		input.ProductID = &productID
	}
	if req.AnalyticAccountID != nil && *req.AnalyticAccountID != "" {
		accountID, err := uuid.Parse(*req.AnalyticAccountID)
		if err != nil {
			return accountingapp.CreateLineInput{}, err
		}
		input.AnalyticAccountID = &accountID
	}

	return input, nil
}

// Get handles GET /documents/:id
func (h *DocumentHandler) Get(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	docID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid document ID format")
		return
	}

	doc, err := h.postingService.GetDocument(c.Request.Context(), companyID, docID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toDocumentResponse(doc))
}

// List handles GET /documents
func (h *DocumentHandler) List(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	var req ListDocumentsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	filter, err := toDocumentFilter(req)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	docs, total, err := h.postingService.ListDocuments(c.Request.Context(), companyID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	items := make([]DocumentListResponse, 0, len(docs))
	for _, doc := range docs {
		items = append(items, toDocumentListResponse(doc))
	}

	h.SuccessWithMeta(c, items, total, req.Page, req.PageSize)
}

// toDocumentFilter converts list query parameters into a repository filter
func toDocumentFilter(req ListDocumentsRequest) (accounting.DocumentFilter, error) {
	filter := accounting.DocumentFilter{}
	filter.Page = req.Page
	filter.PageSize = req.PageSize
	filter.OrderBy = req.OrderBy
	filter.OrderDir = req.OrderDir
	filter.Search = req.Search

	if req.DocType != "" {
		docType := accounting.DocType(req.DocType)
		filter.DocType = &docType
	}
	if req.Status != "" {
		status := accounting.DocumentStatus(req.Status)
		filter.Status = &status
	}
	if req.PaymentState != "" {
		state := accounting.PaymentState(req.PaymentState)
		filter.PaymentState = &state
	}
	if req.ContactID != "" {
		contactID, err := uuid.Parse(req.ContactID)
		if err != nil {
			return accounting.DocumentFilter{}, err
		}
		filter.ContactID = &contactID
	}

	return filter, nil
}

// Transition handles POST /documents/:id/transition
func (h *DocumentHandler) Transition(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	docID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid document ID format")
		return
	}

	var req TransitionDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	doc, err := h.postingService.TransitionDocument(
		c.Request.Context(),
		companyID, docID,
		accounting.DocumentStatus(req.Status),
	)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toDocumentResponse(doc))
}

// RegisterRoutes registers document routes
func (h *DocumentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	documents := rg.Group("/documents")
	{
		documents.GET("", h.List)
		documents.GET("/:id", h.Get)
		documents.POST("", h.Create)
		documents.POST("/:id/transition", h.Transition)
	}
}

// uuidPtrToString converts an optional UUID to an optional string
func uuidPtrToString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}
