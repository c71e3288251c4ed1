package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	accountingapp "github.com/openledger/backend/internal/application/accounting"
	"github.com/openledger/backend/internal/domain/accounting"
)

// AnalyticHandler handles analytic rule model API endpoints
type AnalyticHandler struct {
	BaseHandler
	analyticService *accountingapp.AnalyticService
}

// NewAnalyticHandler creates a new AnalyticHandler
func NewAnalyticHandler(analyticService *accountingapp.AnalyticService) *AnalyticHandler {
	return &AnalyticHandler{
		analyticService: analyticService,
	}
}

// CreateRuleModelRequest represents a request to create a rule model
type CreateRuleModelRequest struct {
	Name     string      `json:"name" binding:"required,min=1,max=200"`
	Priority int         `json:"priority"`
	Rules    []RuleInput `json:"rules"`
}

// RuleInput represents one rule in a rule model request
type RuleInput struct {
	DocType           string  `json:"doc_type" binding:"required"`
	MatchProductID    *string `json:"match_product_id" binding:"omitempty,uuid"`
	MatchCategoryID   *string `json:"match_category_id" binding:"omitempty,uuid"`
	MatchContactID    *string `json:"match_contact_id" binding:"omitempty,uuid"`
	MatchContactTagID *string `json:"match_contact_tag_id" binding:"omitempty,uuid"`
	AnalyticAccountID string  `json:"analytic_account_id" binding:"required,uuid"`
	RulePriority      int     `json:"rule_priority"`
}

// ListRuleModelsRequest represents list query parameters for rule models
type ListRuleModelsRequest struct {
	Page     int    `form:"page,default=1" binding:"min=1"`
	PageSize int    `form:"page_size,default=20" binding:"min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	Search   string `form:"search"`
	IsActive *bool  `form:"is_active"`
}

// PreviewRequest represents a dry-run resolution request
type PreviewRequest struct {
	DocType       string   `json:"doc_type" binding:"required"`
	ProductID     *string  `json:"product_id" binding:"omitempty,uuid"`
	CategoryID    *string  `json:"category_id" binding:"omitempty,uuid"`
	ContactID     *string  `json:"contact_id" binding:"omitempty,uuid"`
	ContactTagIDs []string `json:"contact_tag_ids" binding:"omitempty,dive,uuid"`
}

// RuleModelResponse represents a rule model in API responses
type RuleModelResponse struct {
	ID        string         `json:"id"`
	CompanyID string         `json:"company_id"`
	Name      string         `json:"name"`
	Priority  int            `json:"priority"`
	IsActive  bool           `json:"is_active"`
	Rules     []RuleResponse `json:"rules"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// RuleResponse represents a rule in API responses
type RuleResponse struct {
	ID                string  `json:"id"`
	DocType           string  `json:"doc_type"`
	MatchProductID    *string `json:"match_product_id,omitempty"`
	MatchCategoryID   *string `json:"match_category_id,omitempty"`
	MatchContactID    *string `json:"match_contact_id,omitempty"`
	MatchContactTagID *string `json:"match_contact_tag_id,omitempty"`
	AnalyticAccountID string  `json:"analytic_account_id"`
	RulePriority      int     `json:"rule_priority"`
	IsActive          bool    `json:"is_active"`
}

// PreviewResponse represents the outcome of a dry-run resolution.
// A nil assignment means no rule matched.
type PreviewResponse struct {
	Matched    bool                           `json:"matched"`
	Assignment *accounting.AnalyticAssignment `json:"assignment,omitempty"`
}

// toRuleModelResponse converts a domain rule model to its API representation
func toRuleModelResponse(model *accounting.AnalyticRuleModel) RuleModelResponse {
	resp := RuleModelResponse{
		ID:        model.ID.String(),
		CompanyID: model.CompanyID.String(),
		Name:      model.Name,
		Priority:  model.Priority,
		IsActive:  model.IsActive,
		Rules:     make([]RuleResponse, 0, len(model.Rules)),
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
	for _, rule := range model.Rules {
		resp.Rules = append(resp.Rules, RuleResponse{
			ID:                rule.ID.String(),
			DocType:           rule.DocType.String(),
			MatchProductID:    uuidPtrToString(rule.MatchProductID),
			MatchCategoryID:   uuidPtrToString(rule.MatchCategoryID),
			MatchContactID:    uuidPtrToString(rule.MatchContactID),
			MatchContactTagID: uuidPtrToString(rule.MatchContactTagID),
			AnalyticAccountID: rule.AnalyticAccountID.String(),
			RulePriority:      rule.RulePriority,
			IsActive:          rule.IsActive,
		})
	}
	return resp
}

// Create handles POST /analytic-models
func (h *AnalyticHandler) Create(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	var req CreateRuleModelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	input := accountingapp.CreateModelInput{
		CompanyID: companyID,
		Name:      req.Name,
		Priority:  req.Priority,
	}

	for _, ruleReq := range req.Rules {
		rule, err := toRuleInput(ruleReq)
		if err != nil {
			h.BadRequest(c, err.Error())
			return
		}
		input.Rules = append(input.Rules, rule)
	}

	model, err := h.analyticService.CreateModel(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toRuleModelResponse(model))
}

// toRuleInput converts a rule request into an application rule input
func toRuleInput(req RuleInput) (accountingapp.RuleInput, error) {
	accountID, err := uuid.Parse(req.AnalyticAccountID)
	if err != nil {
		return accountingapp.RuleInput{}, err
	}

	input := accountingapp.RuleInput{
		DocType:           accounting.DocType(req.DocType),
		AnalyticAccountID: accountID,
		RulePriority:      req.RulePriority,
	}

	if input.MatchProductID, err = parseOptionalUUID(req.MatchProductID); err != nil {
		return accountingapp.RuleInput{}, err
	}
	if input.MatchCategoryID, err = parseOptionalUUID(req.MatchCategoryID); err != nil {
		return accountingapp.RuleInput{}, err
	}
	if input.MatchContactID, err = parseOptionalUUID(req.MatchContactID); err != nil {
		return accountingapp.RuleInput{}, err
	}
	if input.MatchContactTagID, err = parseOptionalUUID(req.MatchContactTagID); err != nil {
		return accountingapp.RuleInput{}, err
	}

	return input, nil
}

// Get handles GET /analytic-models/:id
func (h *AnalyticHandler) Get(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	modelID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid model ID format")
		return
	}

	model, err := h.analyticService.GetModel(c.Request.Context(), companyID, modelID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toRuleModelResponse(model))
}

// List handles GET /analytic-models
func (h *AnalyticHandler) List(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	var req ListRuleModelsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	filter := accounting.AnalyticRuleModelFilter{IsActive: req.IsActive}
	filter.Page = req.Page
	filter.PageSize = req.PageSize
	filter.OrderBy = req.OrderBy
	filter.OrderDir = req.OrderDir
	filter.Search = req.Search

	models, total, err := h.analyticService.ListModels(c.Request.Context(), companyID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	items := make([]RuleModelResponse, 0, len(models))
	for i := range models {
		items = append(items, toRuleModelResponse(&models[i]))
	}

	h.SuccessWithMeta(c, items, total, req.Page, req.PageSize)
}

// Archive handles POST /analytic-models/:id/archive
func (h *AnalyticHandler) Archive(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	modelID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid model ID format")
		return
	}

	model, err := h.analyticService.ArchiveModel(c.Request.Context(), companyID, modelID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toRuleModelResponse(model))
}

// Preview handles POST /analytic-models/preview
func (h *AnalyticHandler) Preview(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	var req PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	candidate := accounting.LineCandidate{}
	if candidate.ProductID, err = parseOptionalUUID(req.ProductID); err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}
	if candidate.CategoryID, err = parseOptionalUUID(req.CategoryID); err != nil {
		h.BadRequest(c, "Invalid category ID format")
		return
	}
	if candidate.ContactID, err = parseOptionalUUID(req.ContactID); err != nil {
		h.BadRequest(c, "Invalid contact ID format")
		return
	}
	for _, tagID := range req.ContactTagIDs {
		parsed, err := uuid.Parse(tagID)
		if err != nil {
			h.BadRequest(c, "Invalid contact tag ID format")
			return
		}
		candidate.ContactTagIDs = append(candidate.ContactTagIDs, parsed)
	}

	assignment, err := h.analyticService.Preview(
		c.Request.Context(),
		companyID,
		accounting.DocType(req.DocType),
		candidate,
	)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, PreviewResponse{
		Matched:    assignment != nil,
		Assignment: assignment,
	})
}

// RegisterRoutes registers analytic rule model routes
func (h *AnalyticHandler) RegisterRoutes(rg *gin.RouterGroup) {
	models := rg.Group("/analytic-models")
	{
		models.GET("", h.List)
		models.GET("/:id", h.Get)
		models.POST("", h.Create)
		models.POST("/:id/archive", h.Archive)
		models.POST("/preview", h.Preview)
	}
}

// parseOptionalUUID parses an optional string UUID, treating empty as absent
func parseOptionalUUID(s *string) (*uuid.UUID, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	parsed, err := uuid.Parse(*s)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
