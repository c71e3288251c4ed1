package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/openledger/backend/internal/infrastructure/logger"
)

// Keys used to store company information in gin.Context
const (
	CompanyIDKey     = "company_id"
	CompanyHeaderKey = "X-Company-ID"
)

// CompanyMiddlewareConfig holds configuration for company middleware
type CompanyMiddlewareConfig struct {
	// SkipPaths are paths that don't require company context (e.g. health check)
	SkipPaths []string
	// Required determines if company context is mandatory
	Required bool
}

// DefaultCompanyConfig returns default company middleware configuration
func DefaultCompanyConfig() CompanyMiddlewareConfig {
	return CompanyMiddlewareConfig{
		SkipPaths: []string{"/health", "/healthz", "/ready", "/api/v1/system"},
		Required:  true,
	}
}

// CompanyMiddleware extracts the company ID from the X-Company-ID header,
// validates its format, and puts it in both the gin context and the request
// context so the service layer logs carry it.
func CompanyMiddleware() gin.HandlerFunc {
	return CompanyMiddlewareWithConfig(DefaultCompanyConfig())
}

// CompanyMiddlewareWithConfig returns company middleware with custom configuration
func CompanyMiddlewareWithConfig(cfg CompanyMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skipPath := range cfg.SkipPaths {
			if path == skipPath || strings.HasPrefix(path, skipPath+"/") {
				c.Next()
				return
			}
		}

		companyID := c.GetHeader(CompanyHeaderKey)

		if companyID != "" {
			if _, err := uuid.Parse(companyID); err != nil {
				respondBadRequest(c, "Invalid company ID format")
				return
			}
		}

		if companyID == "" && cfg.Required {
			respondBadRequest(c, "Company identification required")
			return
		}

		if companyID != "" {
			c.Set(CompanyIDKey, companyID)

			ctx := c.Request.Context()
			log := logger.FromContext(ctx)
			ctx, _ = logger.WithCompanyID(ctx, log, companyID)
			c.Request = c.Request.WithContext(ctx)
		}

		c.Next()
	}
}

// respondBadRequest aborts the request with a 400 response
func respondBadRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "ERR_BAD_REQUEST",
			"message": message,
		},
	})
}

// GetCompanyID retrieves the company ID from gin.Context
func GetCompanyID(c *gin.Context) string {
	if companyID, exists := c.Get(CompanyIDKey); exists {
		if id, ok := companyID.(string); ok {
			return id
		}
	}
	return ""
}

// GetCompanyUUID retrieves the company ID as UUID from gin.Context
func GetCompanyUUID(c *gin.Context) (uuid.UUID, error) {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return uuid.Nil, nil
	}
	return uuid.Parse(companyID)
}
