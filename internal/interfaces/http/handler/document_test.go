package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	accountingapp "github.com/openledger/backend/internal/application/accounting"
	"github.com/openledger/backend/internal/domain/accounting"
	"github.com/openledger/backend/internal/infrastructure/persistence"
	"github.com/openledger/backend/internal/infrastructure/persistence/models"
	"github.com/openledger/backend/internal/interfaces/http/dto"
	"github.com/openledger/backend/internal/interfaces/http/middleware"
	"github.com/openledger/backend/internal/interfaces/http/router"
)

// setupTestAPI builds the full API stack over an in-memory database
func setupTestAPI(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.AllModels()...))

	documents := persistence.NewGormDocumentRepository(db)
	payments := persistence.NewGormPaymentRepository(db)
	companies := persistence.NewGormCompanyRepository(db)
	products := persistence.NewGormProductRepository(db)
	ruleModels := persistence.NewGormAnalyticRuleRepository(db)
	resolver := accounting.NewAnalyticResolver(ruleModels)

	postingService := accountingapp.NewPostingService(documents, companies, products, resolver)
	reconciliationService := accountingapp.NewReconciliationService(documents, payments)
	paymentService := accountingapp.NewPaymentService(payments, companies, reconciliationService)
	analyticService := accountingapp.NewAnalyticService(ruleModels, resolver)

	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(middleware.CompanyMiddleware())

	r := router.NewRouter(engine)
	r.Register(NewDocumentHandler(postingService))
	r.Register(NewPaymentHandler(paymentService))
	r.Register(NewAnalyticHandler(analyticService))
	r.Setup()

	return engine, db
}

// doRequest performs a JSON request against the test API
func doRequest(t *testing.T, engine *gin.Engine, method, path, companyID string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if companyID != "" {
		req.Header.Set("X-Company-ID", companyID)
	}

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

// decodeResponse unmarshals a response body into the standard envelope
func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func createBillRequest() CreateDocumentRequest {
	return CreateDocumentRequest{
		DocType:   "VENDOR_BILL",
		ContactID: uuid.NewString(),
		Lines: []CreateDocumentLineInput{
			{Description: "consulting", Quantity: "2", UnitPrice: "100", TaxRate: "10"},
		},
	}
}

func TestDocumentAPI_Create(t *testing.T) {
	engine, _ := setupTestAPI(t)
	companyID := uuid.NewString()

	t.Run("creates a vendor bill with computed totals", func(t *testing.T) {
		w := doRequest(t, engine, http.MethodPost, "/api/v1/documents", companyID, createBillRequest())

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		resp := decodeResponse(t, w)
		assert.True(t, resp.Success)

		data := resp.Data.(map[string]interface{})
		assert.Equal(t, "VENDOR_BILL", data["doc_type"])
		assert.Equal(t, "DRAFT", data["status"])
		assert.Equal(t, "NOT_PAID", data["payment_state"])
		assert.Regexp(t, `^BILL-\d{8}-\d{5}$`, data["doc_number"])

		total := data["total_amount"].(map[string]interface{})
		assert.Equal(t, "220", total["amount"])
		assert.Equal(t, "USD", total["currency"])

		lines := data["lines"].([]interface{})
		require.Len(t, lines, 1)
		lineTotal := lines[0].(map[string]interface{})["line_total"].(map[string]interface{})
		assert.Equal(t, "220", lineTotal["amount"])
	})

	t.Run("orders carry no payment state", func(t *testing.T) {
		req := createBillRequest()
		req.DocType = "SALES_ORDER"
		w := doRequest(t, engine, http.MethodPost, "/api/v1/documents", companyID, req)

		require.Equal(t, http.StatusCreated, w.Code)
		data := decodeResponse(t, w).Data.(map[string]interface{})
		assert.NotContains(t, data, "payment_state")
		assert.NotContains(t, data, "paid_amount")
		assert.Regexp(t, `^SO-\d{8}-\d{5}$`, data["doc_number"])
	})

	t.Run("rejects unknown doc type", func(t *testing.T) {
		req := createBillRequest()
		req.DocType = "QUOTE"
		w := doRequest(t, engine, http.MethodPost, "/api/v1/documents", companyID, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeResponse(t, w)
		assert.False(t, resp.Success)
		assert.Equal(t, dto.ErrCodeInvalidInput, resp.Error.Code)
	})

	t.Run("requires company header", func(t *testing.T) {
		w := doRequest(t, engine, http.MethodPost, "/api/v1/documents", "", createBillRequest())
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestDocumentAPI_Transition(t *testing.T) {
	engine, _ := setupTestAPI(t)
	companyID := uuid.NewString()

	w := doRequest(t, engine, http.MethodPost, "/api/v1/documents", companyID, createBillRequest())
	require.Equal(t, http.StatusCreated, w.Code)
	docID := decodeResponse(t, w).Data.(map[string]interface{})["id"].(string)

	t.Run("posts a draft bill", func(t *testing.T) {
		w := doRequest(t, engine, http.MethodPost,
			fmt.Sprintf("/api/v1/documents/%s/transition", docID),
			companyID, TransitionDocumentRequest{Status: "POSTED"})

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		data := decodeResponse(t, w).Data.(map[string]interface{})
		assert.Equal(t, "POSTED", data["status"])
		assert.NotEmpty(t, data["posted_at"])
	})

	t.Run("rejects an invalid move", func(t *testing.T) {
		w := doRequest(t, engine, http.MethodPost,
			fmt.Sprintf("/api/v1/documents/%s/transition", docID),
			companyID, TransitionDocumentRequest{Status: "DRAFT"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, dto.ErrCodeInvalidTransition, resp.Error.Code)
	})

	t.Run("document from another company is invisible", func(t *testing.T) {
		w := doRequest(t, engine, http.MethodGet,
			"/api/v1/documents/"+docID, uuid.NewString(), nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestDocumentAPI_List(t *testing.T) {
	engine, _ := setupTestAPI(t)
	companyID := uuid.NewString()

	bill := createBillRequest()
	w := doRequest(t, engine, http.MethodPost, "/api/v1/documents", companyID, bill)
	require.Equal(t, http.StatusCreated, w.Code)

	order := createBillRequest()
	order.DocType = "PURCHASE_ORDER"
	w = doRequest(t, engine, http.MethodPost, "/api/v1/documents", companyID, order)
	require.Equal(t, http.StatusCreated, w.Code)

	t.Run("filters by doc type", func(t *testing.T) {
		w := doRequest(t, engine, http.MethodGet,
			"/api/v1/documents?doc_type=VENDOR_BILL", companyID, nil)

		require.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse(t, w)
		items := resp.Data.([]interface{})
		require.Len(t, items, 1)
		assert.Equal(t, "VENDOR_BILL", items[0].(map[string]interface{})["doc_type"])
		require.NotNil(t, resp.Meta)
		assert.Equal(t, int64(1), resp.Meta.Total)
	})

	t.Run("lists everything for the company", func(t *testing.T) {
		w := doRequest(t, engine, http.MethodGet, "/api/v1/documents", companyID, nil)

		require.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse(t, w)
		assert.Len(t, resp.Data.([]interface{}), 2)
	})
}

func TestAnalyticAPI_Preview(t *testing.T) {
	engine, _ := setupTestAPI(t)
	companyID := uuid.NewString()
	accountID := uuid.NewString()

	model := CreateRuleModelRequest{
		Name:     "Default costs",
		Priority: 1,
		Rules: []RuleInput{
			{DocType: "VENDOR_BILL", AnalyticAccountID: accountID, RulePriority: 1},
		},
	}
	w := doRequest(t, engine, http.MethodPost, "/api/v1/analytic-models", companyID, model)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	t.Run("catch-all rule matches any candidate", func(t *testing.T) {
		w := doRequest(t, engine, http.MethodPost, "/api/v1/analytic-models/preview", companyID,
			PreviewRequest{DocType: "VENDOR_BILL"})

		require.Equal(t, http.StatusOK, w.Code)
		data := decodeResponse(t, w).Data.(map[string]interface{})
		assert.Equal(t, true, data["matched"])
		assignment := data["assignment"].(map[string]interface{})
		assert.Equal(t, accountID, assignment["analytic_account_id"])
	})

	t.Run("no rules for the doc type", func(t *testing.T) {
		w := doRequest(t, engine, http.MethodPost, "/api/v1/analytic-models/preview", companyID,
			PreviewRequest{DocType: "SALES_ORDER"})

		require.Equal(t, http.StatusOK, w.Code)
		data := decodeResponse(t, w).Data.(map[string]interface{})
		assert.Equal(t, false, data["matched"])
	})

	t.Run("created document lines carry the resolved assignment", func(t *testing.T) {
		w := doRequest(t, engine, http.MethodPost, "/api/v1/documents", companyID, createBillRequest())

		require.Equal(t, http.StatusCreated, w.Code)
		data := decodeResponse(t, w).Data.(map[string]interface{})
		lines := data["lines"].([]interface{})
		require.Len(t, lines, 1)
		line := lines[0].(map[string]interface{})
		assert.Equal(t, accountID, line["analytic_account_id"])
		assert.NotEmpty(t, line["analytic_model_id"])
	})
}
