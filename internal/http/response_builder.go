package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"homebudget/internal/core"
	"homebudget/internal/ledger"
)

// ResponseBuilder assembles a JSON response: status, headers and body.
type ResponseBuilder struct {
	statusCode int
	headers    map[string]string
	body       any
}

// NewResponse creates a new response builder with default 200 status.
func NewResponse() *ResponseBuilder {
	return &ResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *ResponseBuilder) Status(code int) *ResponseBuilder {
	b.statusCode = code
	return b
}

func (b *ResponseBuilder) Header(name, value string) *ResponseBuilder {
	b.headers[name] = value
	return b
}

// Revision exposes the ledger revision the response reflects.
func (b *ResponseBuilder) Revision(rev uint64) *ResponseBuilder {
	return b.Header("X-Ledger-Revision", strconv.FormatUint(rev, 10))
}

// JSON sets the value encoded as the response body.
func (b *ResponseBuilder) JSON(v any) *ResponseBuilder {
	b.body = v
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *ResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if b.body == nil {
		w.WriteHeader(b.statusCode)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	_ = json.NewEncoder(w).Encode(b.body)
}

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// ErrorResponse creates a standard error response.
func ErrorResponse(statusCode int, code, message string) *ResponseBuilder {
	return NewResponse().Status(statusCode).JSON(errorBody{Error: code, Message: message})
}

func BadRequestError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, "bad_request", message)
}

// LedgerError maps a ledger operation error to its response: validation
// 400, declined 409, notices 422, anything else 500.
func LedgerError(err error) *ResponseBuilder {
	msg := ledger.Notice(err)

	var ve *core.ValidationError
	switch {
	case errors.As(err, &ve):
		return NewResponse().Status(http.StatusBadRequest).
			JSON(errorBody{Error: "validation", Message: msg, Field: ve.Field})
	case errors.Is(err, ledger.ErrDeclined):
		return ErrorResponse(http.StatusConflict, "confirmation_required", msg)
	case errors.Is(err, ledger.ErrNoPriorMonth), errors.Is(err, ledger.ErrNoBillsToDuplicate):
		return ErrorResponse(http.StatusUnprocessableEntity, "notice", msg)
	case errors.Is(err, ledger.ErrPersist):
		return ErrorResponse(http.StatusInternalServerError, "persist_failed", msg)
	default:
		return ErrorResponse(http.StatusInternalServerError, "internal", "Error interno.")
	}
}
