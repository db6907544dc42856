package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wallet-ledger/internal/domain/shared"
	"github.com/wallet-ledger/internal/wallet_api/middleware"
)

// Response represents a standard API response
type Response struct {
	Data          interface{} `json:"data,omitempty"`
	Error         *ErrorInfo  `json:"error,omitempty"`
	CorrelationID string      `json:"correlation_id,omitempty"`
	Meta          *MetaInfo   `json:"meta,omitempty"`
}

// ErrorInfo represents error information in a response
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// MetaInfo represents metadata in a response
type MetaInfo struct {
	Page       int   `json:"page,omitempty"`
	PerPage    int   `json:"per_page,omitempty"`
	TotalPages int   `json:"total_pages,omitempty"`
	TotalItems int64 `json:"total_items"`
}

// kindStatus maps every ledger error kind to its transport status
var kindStatus = map[shared.ErrorKind]int{
	shared.KindInvalidAmount:            http.StatusBadRequest,
	shared.KindOverWithdrawal:           http.StatusUnprocessableEntity,
	shared.KindIncompatibleCurrency:     http.StatusBadRequest,
	shared.KindUnauthorizedWalletAccess: http.StatusForbidden,
	shared.KindWalletNotFound:           http.StatusNotFound,
	shared.KindUserNotFound:             http.StatusNotFound,
	shared.KindUserAlreadyExists:        http.StatusConflict,
	shared.KindTransactionForSameUser:   http.StatusBadRequest,
	shared.KindEntryNotFound:            http.StatusNotFound,
	shared.KindTransactionNotFound:      http.StatusNotFound,
	shared.KindConversionUnavailable:    http.StatusServiceUnavailable,
	shared.KindCurrencyAlreadyExists:    http.StatusConflict,
	shared.KindCurrencyNotFound:         http.StatusNotFound,
	shared.KindInvalidRequest:           http.StatusBadRequest,
}

// StatusForKind returns the HTTP status for kind, or 500 for unknown kinds
func StatusForKind(kind shared.ErrorKind) int {
	if status, ok := kindStatus[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// NewResponse creates a new response with data
func NewResponse(data interface{}) *Response {
	return &Response{
		Data: data,
	}
}

// NewErrorResponse creates a new error response
func NewErrorResponse(code, message string) *Response {
	return &Response{
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
		},
	}
}

// NewPaginatedResponse creates a new paginated response
func NewPaginatedResponse(data interface{}, page, perPage int, totalItems int64) *Response {
	totalPages := int(totalItems / int64(perPage))
	if totalItems%int64(perPage) > 0 {
		totalPages++
	}

	return &Response{
		Data: data,
		Meta: &MetaInfo{
			Page:       page,
			PerPage:    perPage,
			TotalPages: totalPages,
			TotalItems: totalItems,
		},
	}
}

// RespondWithData sends a JSON response with data
func RespondWithData(c *gin.Context, statusCode int, data interface{}) {
	response := NewResponse(data)
	response.CorrelationID = middleware.GetCorrelationID(c)
	c.JSON(statusCode, response)
}

// RespondWithError sends a JSON response with an error
func RespondWithError(c *gin.Context, statusCode int, code, message string) {
	response := NewErrorResponse(code, message)
	response.CorrelationID = middleware.GetCorrelationID(c)
	c.JSON(statusCode, response)
}

// RespondWithPaginatedData sends a JSON response with paginated data
func RespondWithPaginatedData(c *gin.Context, data interface{}, page, perPage int, totalItems int64) {
	response := NewPaginatedResponse(data, page, perPage, totalItems)
	response.CorrelationID = middleware.GetCorrelationID(c)
	c.JSON(http.StatusOK, response)
}

// RespondOK sends a 200 OK response with data
func RespondOK(c *gin.Context, data interface{}) {
	RespondWithData(c, http.StatusOK, data)
}

// RespondCreated sends a 201 Created response with data
func RespondCreated(c *gin.Context, data interface{}) {
	RespondWithData(c, http.StatusCreated, data)
}

// RespondNoContent sends a 204 No Content response
func RespondNoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// RespondBadRequest sends a 400 Bad Request response with an error
func RespondBadRequest(c *gin.Context, message string) {
	RespondWithError(c, http.StatusBadRequest, string(shared.KindInvalidRequest), message)
}

// RespondUnauthorized sends a 401 Unauthorized response with an error
func RespondUnauthorized(c *gin.Context) {
	RespondWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "A valid bearer token is required")
}

// RespondInternalError sends a 500 Internal Server Error response with an error
func RespondInternalError(c *gin.Context) {
	RespondWithError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal server error occurred")
}

// RespondError maps err to its kind's status and code. Errors without a kind are
// logged and reported as a bare 500 so no internal detail leaks.
func RespondError(c *gin.Context, logger *slog.Logger, operation string, err error) {
	kind := shared.KindOf(err)
	if kind == "" {
		logger.Error("Request failed",
			"operation", operation,
			"correlation_id", middleware.GetCorrelationID(c),
			"error", err,
		)
		_ = c.Error(err)
		RespondInternalError(c)
		return
	}

	status := StatusForKind(kind)
	if status >= http.StatusInternalServerError {
		logger.Warn("Request failed", "operation", operation, "kind", string(kind), "error", err)
	}
	RespondWithError(c, status, string(kind), kindMessage(err))
}

func kindMessage(err error) string {
	var e *shared.Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return err.Error()
}
