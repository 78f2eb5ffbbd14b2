package api

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"asterbot/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const (
	apiKeyHeaderDefault = "x-api-key"
	clientKeyUnknown    = "unknown"

	permFiltersLink = "filters:link"
	permReadAds     = "ads:read"
	permReadStats   = "stats:read"

	ctxClientName = "api_client"
)

// Auth проверяет API-ключ, права клиента и ограничивает частоту запросов по ключу.
type Auth struct {
	cfg     config.APIConfig
	header  string
	clients []config.APIClientKey
	limiter *rateLimiter
}

func NewAuth(cfg config.APIConfig) *Auth {
	header := strings.ToLower(strings.TrimSpace(cfg.Auth.HeaderAPIKey))
	if header == "" {
		header = apiKeyHeaderDefault
	}
	return &Auth{
		cfg:     cfg,
		header:  header,
		clients: cfg.Auth.APIKeys,
		limiter: newRateLimiter(cfg.RateLimit),
	}
}

// Require пропускает запрос, если у клиента есть право perm. Пустой список прав разрешает всё.
func (a *Auth) Require(perm string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(a.header))

		if a.cfg.Auth.Enabled {
			if key == "" {
				abortError(c, http.StatusUnauthorized, "missing api key")
				return
			}
			client, ok := a.lookup(key)
			if !ok {
				zerolog.Ctx(c.Request.Context()).Warn().Str("path", c.FullPath()).Msg("invalid api key")
				abortError(c, http.StatusUnauthorized, "invalid api key")
				return
			}
			if !hasPermission(client, perm) {
				abortError(c, http.StatusForbidden, "permission denied")
				return
			}
			c.Set(ctxClientName, client.Name)
		}

		if key == "" {
			key = c.ClientIP()
		}
		if key == "" {
			key = clientKeyUnknown
		}
		if !a.limiter.allow(key) {
			abortError(c, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		c.Next()
	}
}

func (a *Auth) lookup(key string) (config.APIClientKey, bool) {
	for _, client := range a.clients {
		if subtle.ConstantTimeCompare([]byte(client.Key), []byte(key)) == 1 {
			return client, true
		}
	}
	return config.APIClientKey{}, false
}

func hasPermission(client config.APIClientKey, perm string) bool {
	if len(client.Permissions) == 0 {
		return true
	}
	for _, p := range client.Permissions {
		if strings.TrimSpace(p) == perm {
			return true
		}
	}
	return false
}

func abortError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"error": message})
}
