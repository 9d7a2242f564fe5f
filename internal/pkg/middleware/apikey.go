package middleware

import (
	"crypto/subtle"

	"github.com/labstack/echo/v4"
	"github.com/opencollective/ledger/internal/pkg/models"
	"github.com/opencollective/ledger/internal/utils"
)

const (
	APIKeyHeader = "X-API-Key"

	ClientLedger     = "ledger"
	ClientSearchSync = "search-sync"
	ClientOperator   = "operator"
)

// APIKeyMiddleware validates API keys for service-to-service and operator calls
type APIKeyMiddleware struct {
	keys map[string]string
}

// NewAPIKeyMiddleware creates an API key middleware from configuration
func NewAPIKeyMiddleware(config *models.APIKeyConfig) *APIKeyMiddleware {
	return &APIKeyMiddleware{
		keys: map[string]string{
			ClientLedger:     config.Ledger,
			ClientSearchSync: config.SearchSync,
			ClientOperator:   config.Operator,
		},
	}
}

// ValidateAPIKey only lets through requests carrying the key of one of the allowed clients
func (m *APIKeyMiddleware) ValidateAPIKey(allowedClients ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			apiKey := c.Request().Header.Get(APIKeyHeader)
			if apiKey == "" {
				return utils.UnauthorizedResponse(c, "API key is required")
			}

			for _, client := range allowedClients {
				expected := m.keys[client]
				if expected != "" && subtle.ConstantTimeCompare([]byte(apiKey), []byte(expected)) == 1 {
					c.Set("api_client", client)
					AddAttribute(c, "api.client", client)
					return next(c)
				}
			}

			return utils.UnauthorizedResponse(c, "Invalid API key")
		}
	}
}
