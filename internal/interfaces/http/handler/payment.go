package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	accountingapp "github.com/openledger/backend/internal/application/accounting"
	"github.com/openledger/backend/internal/domain/accounting"
	"github.com/openledger/backend/internal/domain/shared"
	"github.com/openledger/backend/internal/domain/shared/valueobject"
	"github.com/openledger/backend/internal/interfaces/http/dto"
)

// PaymentHandler handles payment-related API endpoints
type PaymentHandler struct {
	BaseHandler
	paymentService *accountingapp.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(paymentService *accountingapp.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

// CreatePaymentRequest represents a request to create a new payment
type CreatePaymentRequest struct {
	PaymentNumber string            `json:"payment_number"`
	ContactID     string            `json:"contact_id" binding:"required,uuid"`
	Amount        string            `json:"amount" binding:"required"`
	Allocations   []AllocationInput `json:"allocations"`
}

// AllocationInput represents one allocation in a payment request
type AllocationInput struct {
	TargetType string `json:"target_type" binding:"required"`
	TargetID   string `json:"target_id" binding:"required,uuid"`
	Amount     string `json:"amount" binding:"required"`
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID            string               `json:"id"`
	CompanyID     string               `json:"company_id"`
	PaymentNumber string               `json:"payment_number"`
	ContactID     string               `json:"contact_id"`
	Amount        valueobject.Money    `json:"amount"`
	Status        string               `json:"status"`
	Allocations   []AllocationResponse `json:"allocations"`
	PostedAt      *time.Time           `json:"posted_at,omitempty"`
	VoidedAt      *time.Time           `json:"voided_at,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
	Version       int                  `json:"version"`
}

// AllocationResponse represents a payment allocation in API responses
type AllocationResponse struct {
	ID         string            `json:"id"`
	TargetType string            `json:"target_type"`
	TargetID   string            `json:"target_id"`
	Amount     valueobject.Money `json:"amount"`
	CreatedAt  time.Time         `json:"created_at"`
}

// toPaymentResponse converts a domain payment to its API representation
func toPaymentResponse(payment *accounting.Payment) PaymentResponse {
	resp := PaymentResponse{
		ID:            payment.ID.String(),
		CompanyID:     payment.CompanyID.String(),
		PaymentNumber: payment.PaymentNumber,
		ContactID:     payment.ContactID.String(),
		Amount:        valueobject.NewMoneyUSD(payment.Amount),
		Status:        payment.Status.String(),
		Allocations:   make([]AllocationResponse, 0, len(payment.Allocations)),
		PostedAt:      payment.PostedAt,
		VoidedAt:      payment.VoidedAt,
		CreatedAt:     payment.CreatedAt,
		UpdatedAt:     payment.UpdatedAt,
		Version:       payment.Version,
	}
	for _, alloc := range payment.Allocations {
		resp.Allocations = append(resp.Allocations, AllocationResponse{
			ID:         alloc.ID.String(),
			TargetType: alloc.TargetType.String(),
			TargetID:   alloc.TargetID.String(),
			Amount:     valueobject.NewMoneyUSD(alloc.Amount),
			CreatedAt:  alloc.CreatedAt,
		})
	}
	return resp
}

// Create handles POST /payments
func (h *PaymentHandler) Create(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	contactID, err := uuid.Parse(req.ContactID)
	if err != nil {
		h.BadRequest(c, "Invalid contact ID format")
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		h.BadRequest(c, "Invalid amount format")
		return
	}

	input := accountingapp.CreatePaymentInput{
		CompanyID:     companyID,
		PaymentNumber: req.PaymentNumber,
		ContactID:     contactID,
		Amount:        amount,
	}

	for _, allocReq := range req.Allocations {
		alloc, err := toAllocationInput(allocReq)
		if err != nil {
			h.BadRequest(c, err.Error())
			return
		}
		input.Allocations = append(input.Allocations, alloc)
	}

	payment, err := h.paymentService.CreatePayment(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toPaymentResponse(payment))
}

// toAllocationInput converts an allocation request into an application input
func toAllocationInput(req AllocationInput) (accountingapp.AllocationInput, error) {
	targetID, err := uuid.Parse(req.TargetID)
	if err != nil {
		return accountingapp.AllocationInput{}, err
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return accountingapp.AllocationInput{}, err
	}
	return accountingapp.AllocationInput{
		TargetType: accounting.DocType(req.TargetType),
		TargetID:   targetID,
		Amount:     amount,
	}, nil
}

// Get handles GET /payments/:id
func (h *PaymentHandler) Get(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID format")
		return
	}

	payment, err := h.paymentService.GetPayment(c.Request.Context(), companyID, paymentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toPaymentResponse(payment))
}

// List handles GET /payments
func (h *PaymentHandler) List(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	filter := shared.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
		Search:   req.Search,
	}

	payments, err := h.paymentService.ListPayments(c.Request.Context(), companyID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	items := make([]PaymentResponse, 0, len(payments))
	for i := range payments {
		items = append(items, toPaymentResponse(&payments[i]))
	}

	h.Success(c, items)
}

// Allocate handles POST /payments/:id/allocations
func (h *PaymentHandler) Allocate(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID format")
		return
	}

	var req AllocationInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	input, err := toAllocationInput(req)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	payment, err := h.paymentService.Allocate(c.Request.Context(), companyID, paymentID, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toPaymentResponse(payment))
}

// Post handles POST /payments/:id/post
func (h *PaymentHandler) Post(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID format")
		return
	}

	payment, err := h.paymentService.PostPayment(c.Request.Context(), companyID, paymentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toPaymentResponse(payment))
}

// Void handles POST /payments/:id/void
func (h *PaymentHandler) Void(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID format")
		return
	}

	payment, err := h.paymentService.VoidPayment(c.Request.Context(), companyID, paymentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toPaymentResponse(payment))
}

// RegisterRoutes registers payment routes
func (h *PaymentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	payments := rg.Group("/payments")
	{
		payments.GET("", h.List)
		payments.GET("/:id", h.Get)
		payments.POST("", h.Create)
		payments.POST("/:id/allocations", h.Allocate)
		payments.POST("/:id/post", h.Post)
		payments.POST("/:id/void", h.Void)
	}
}
