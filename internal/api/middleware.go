package api

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/coraldb/coraldb/internal/ratelimit"
)

// =============================================================================
// AUTH MIDDLEWARE
// =============================================================================

// AuthLevel selects which endpoint classes require credentials, per §6.3.
type AuthLevel string

const (
	AuthNone  AuthLevel = "none"
	AuthWrite AuthLevel = "write"
	AuthRead  AuthLevel = "read"
	AuthAll   AuthLevel = "all"
)

// endpointClass classifies a route for both auth-level and rate-limit
// purposes. table_admin counts as write for auth but has its own rate
// limit bucket.
type endpointClass string

const (
	classHealth     endpointClass = "health"
	classRead       endpointClass = "read"
	classWrite      endpointClass = "write"
	classTableAdmin endpointClass = "table_admin"
)

func classify(path, method string) endpointClass {
	switch {
	case path == "/api/v1/health":
		return classHealth
	case path == "/api/v1/table/create" || path == "/api/v1/table/drop":
		return classTableAdmin
	case strings.HasPrefix(path, "/api/v1/table/list") || strings.HasSuffix(path, "/stats"):
		return classRead
	case path == "/api/v1/search" || path == "/api/v1/get":
		return classRead
	case path == "/api/v1/insert" || path == "/api/v1/update" || path == "/api/v1/delete":
		return classWrite
	default:
		return classRead
	}
}

// requiresAuth reports whether level gates the given class.
func requiresAuth(level AuthLevel, class endpointClass) bool {
	if class == classHealth {
		return false
	}
	switch level {
	case AuthAll:
		return true
	case AuthRead:
		return class == classRead || class == classWrite || class == classTableAdmin
	case AuthWrite:
		return class == classWrite || class == classTableAdmin
	default:
		return false
	}
}

// ParseAuthLevel accepts the documented enum plus the legacy boolean
// mapping (true→all, false→none).
func ParseAuthLevel(s string) AuthLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true":
		return AuthAll
	case "false", "":
		return AuthNone
	case "write":
		return AuthWrite
	case "read":
		return AuthRead
	case "all":
		return AuthAll
	default:
		return AuthNone
	}
}

// APIKeyAuthMiddleware enforces level against a bearer-token / X-API-Key
// credential, in the style of the pack's API-key middleware. Health is
// always exempt; a no-op AuthNone level short-circuits entirely.
func APIKeyAuthMiddleware(level AuthLevel, apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		class := classify(c.Request.URL.Path, c.Request.Method)
		if !requiresAuth(level, class) || apiKey == "" {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") && parts[1] == apiKey {
				c.Next()
				return
			}
		}
		if c.GetHeader("X-API-Key") == apiKey {
			c.Next()
			return
		}

		UnauthorizedError(c, "invalid or missing API key")
		c.Abort()
	}
}

// =============================================================================
// ADMIN BASIC-AUTH MIDDLEWARE
// =============================================================================

// AdminCredentials holds the single static admin user/password pair, with
// the password kept only as a salted hash — AdminCredentials never stores
// the plaintext, and neither value is logged.
type AdminCredentials struct {
	user     string
	passHash [32]byte
	salt     string
}

func NewAdminCredentials(user, password, salt string) AdminCredentials {
	return AdminCredentials{
		user:     user,
		passHash: sha256.Sum256([]byte(salt + password)),
		salt:     salt,
	}
}

func (a AdminCredentials) matches(user, password string) bool {
	if a.user == "" {
		return false
	}
	candidate := sha256.Sum256([]byte(a.salt + password))
	return subtle.ConstantTimeCompare([]byte(user), []byte(a.user)) == 1 &&
		subtle.ConstantTimeCompare(candidate[:], a.passHash[:]) == 1
}

// AdminBasicAuthMiddleware gates admin-only operations (table/drop) behind
// HTTP Basic auth checked against creds. A zero-value AdminCredentials
// (no admin configured) always rejects.
func AdminBasicAuthMiddleware(creds AdminCredentials) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, pass, ok := basicAuth(c.Request)
		if !ok || !creds.matches(user, pass) {
			c.Header("WWW-Authenticate", `Basic realm="coraldb-admin"`)
			UnauthorizedError(c, "admin credentials required")
			c.Abort()
			return
		}
		c.Next()
	}
}

func basicAuth(r *http.Request) (user, pass string, ok bool) {
	auth := r.Header.Get("Authorization")
	const prefix = "Basic "
	if !strings.HasPrefix(auth, prefix) {
		return "", "", false
	}
	decoded, err := base64.StdEncoding.DecodeString(auth[len(prefix):])
	if err != nil {
		return "", "", false
	}
	parts := strings.SplitN(string(decoded), ":", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// =============================================================================
// RATE LIMIT MIDDLEWARE
// =============================================================================

// RateLimitMiddleware rate-limits requests using the provided limiter,
// bucketed by endpoint class (read, write, table_admin). Paths that classify
// does not recognize count as read, so the "default" bucket is never used.
func RateLimitMiddleware(limiter *ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		category := string(classify(c.Request.URL.Path, c.Request.Method))
		if category == string(classHealth) {
			c.Next()
			return
		}

		result := limiter.Allow(category)
		if !result.Allowed {
			retryAfter := int(result.RetryAfter.Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", fmt.Sprintf("%d", retryAfter))
			TooManyRequestsError(c, fmt.Sprintf("rate limit exceeded for %s, retry after %d seconds", result.LimitType, retryAfter))
			c.Abort()
			return
		}

		c.Next()
	}
}

// =============================================================================
// BODY SIZE MIDDLEWARE
// =============================================================================

// MaxBodySizeMiddleware returns middleware that limits request body size.
func MaxBodySizeMiddleware(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil && c.Request.ContentLength > maxBytes {
			PayloadTooLargeError(c, fmt.Sprintf("request body too large, maximum %d bytes", maxBytes))
			c.Abort()
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// =============================================================================
// REQUEST VALIDATION CONSTANTS
// =============================================================================

const (
	DefaultBodyLimit = 1 * 1024 * 1024  // 1MB
	IngestBodyLimit  = 10 * 1024 * 1024 // 10MB
)
