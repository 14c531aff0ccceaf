package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/coraldb/coraldb/internal/database"
	"github.com/coraldb/coraldb/internal/logging"
)

// Response is the envelope every endpoint except /health returns, per
// §6.1: success, data, and a human-readable error or null.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Error   *string     `json:"error"`
}

func errString(msg string) *string {
	return &msg
}

// SuccessResponse sends a 200 with data and a null error.
func SuccessResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, &Response{Success: true, Data: data})
}

// CreatedResponse sends a 201 with data and a null error.
func CreatedResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, &Response{Success: true, Data: data})
}

// ErrorResponse sends a non-2xx response with success=false and the given
// message.
func ErrorResponse(c *gin.Context, code int, message string) {
	c.JSON(code, &Response{Success: false, Error: errString(message)})
}

func BadRequestError(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusBadRequest, message)
}

func NotFoundError(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusNotFound, message)
}

func UnauthorizedError(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusUnauthorized, message)
}

func ForbiddenError(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusForbidden, message)
}

func TooManyRequestsError(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusTooManyRequests, message)
}

func PayloadTooLargeError(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusRequestEntityTooLarge, message)
}

func InternalError(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusInternalServerError, message)
}

// statusForKind maps a core error Kind to an HTTP status, per §7: 4xx for
// client faults, 401/403 for auth, 404 for missing, 500 only for genuinely
// internal invariant breaks (which the core, by construction, never
// returns — every Kind below has a concrete client-facing cause).
func statusForKind(kind database.Kind) int {
	switch kind {
	case database.KindUnknownTable, database.KindUnknownColumn, database.KindNotFound:
		return http.StatusNotFound
	case database.KindDuplicateTable, database.KindDuplicateColumn,
		database.KindInvalidType, database.KindTypeMismatch,
		database.KindArity, database.KindUnsupportedQuery, database.KindBadRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// CoreError logs a *database.Error with its Kind and renders it through the
// standard envelope at the status its Kind maps to.
func CoreError(c *gin.Context, err *database.Error) {
	logging.Warn("core error", "component", "api", "kind", string(err.Kind), "message", err.Message)
	ErrorResponse(c, statusForKind(err.Kind), err.Error())
}
