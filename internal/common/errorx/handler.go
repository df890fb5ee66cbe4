package errorx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/amoylab/nextcrm/internal/common/cnst"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Translator localizes a message id, returning the id itself when unknown
type Translator interface {
	Translate(msgID string, lang string, templateData map[string]any) string
}

// ErrorHandler provides unified error handling capabilities
type ErrorHandler struct {
	logger     *zap.Logger
	translator Translator
}

// NewErrorHandler creates a new error handler. translator may be nil.
func NewErrorHandler(logger *zap.Logger, translator Translator) *ErrorHandler {
	return &ErrorHandler{
		logger:     logger,
		translator: translator,
	}
}

// HandleError converts any error to APIError and writes the JSON response
func (h *ErrorHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	apiErr := h.ConvertToAPIError(err)
	apiErr.TraceID = ExtractTraceID(c)
	apiErr.Timestamp = time.Now().UTC().Format(time.RFC3339)
	apiErr.Message = h.localize(c, apiErr)

	h.logError(c, apiErr, err)

	c.AbortWithStatusJSON(apiErr.HTTPStatus, gin.H{
		"error": apiErr,
	})
}

// ConvertToAPIError converts any error to a fresh APIError
func (h *ErrorHandler) ConvertToAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Clone()
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := ErrInvalidInput.Clone()
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		return out.WithDetail("fields", fields)
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) || errors.Is(err, io.EOF) {
		return ErrInvalidInput.Clone().WithDetail("reason", err.Error())
	}

	return ErrInternalServer.Clone().WithDetail("original_error", err.Error())
}

func (h *ErrorHandler) localize(c *gin.Context, apiErr *APIError) string {
	if h.translator == nil {
		return apiErr.Message
	}
	key := "error." + apiErr.Code
	if msg := h.translator.Translate(key, requestLang(c), nil); msg != "" && msg != key {
		return msg
	}
	return apiErr.Message
}

// requestLang prefers X-Lang over the first Accept-Language tag
func requestLang(c *gin.Context) string {
	if lang := c.GetHeader(cnst.XLang); lang != "" {
		return lang
	}
	if accept := c.GetHeader("Accept-Language"); accept != "" {
		first := strings.Split(accept, ",")[0]
		return strings.TrimSpace(strings.Split(first, ";")[0])
	}
	return cnst.LangDefault
}

func (h *ErrorHandler) logError(c *gin.Context, apiErr *APIError, originalErr error) {
	fields := []zap.Field{
		zap.String("trace_id", apiErr.TraceID),
		zap.String("error_code", apiErr.Code),
		zap.String("category", string(apiErr.Category)),
		zap.Int("http_status", apiErr.HTTPStatus),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
		zap.String("client_ip", c.ClientIP()),
	}
	if originalErr != nil && originalErr.Error() != apiErr.Message {
		fields = append(fields, zap.Error(originalErr))
	}
	if len(apiErr.Details) > 0 {
		detailsJSON, _ := json.Marshal(apiErr.Details)
		fields = append(fields, zap.String("details", string(detailsJSON)))
	}

	switch apiErr.Severity {
	case SeverityInfo:
		h.logger.Info(apiErr.Message, fields...)
	case SeverityWarning:
		h.logger.Warn(apiErr.Message, fields...)
	case SeverityCritical:
		buf := make([]byte, 4096)
		n := runtime.Stack(buf, false)
		fields = append(fields, zap.String("stack_trace", string(buf[:n])))
		h.logger.Error(apiErr.Message, fields...)
	default:
		h.logger.Error(apiErr.Message, fields...)
	}
}

// ErrorMiddleware renders the last error attached with c.Error
func (h *ErrorHandler) ErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if len(c.Errors) > 0 && !c.Writer.Written() {
			h.HandleError(c, c.Errors.Last().Err)
		}
	}
}

// RecoveryMiddleware turns panics into 500 responses
func (h *ErrorHandler) RecoveryMiddleware() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, recovered any) {
		panicErr := ErrInternalServer.Clone().
			WithMessage("Server panic occurred").
			WithDetail("panic", fmt.Sprintf("%v", recovered))
		h.HandleError(c, panicErr)
	})
}

// ExtractTraceID returns the request trace id, creating one when absent
func ExtractTraceID(c *gin.Context) string {
	if traceID := c.GetString("trace_id"); traceID != "" {
		return traceID
	}
	if traceID := c.GetHeader("X-Trace-Id"); traceID != "" {
		c.Set("trace_id", traceID)
		return traceID
	}
	traceID := uuid.NewString()
	c.Set("trace_id", traceID)
	return traceID
}

// StatusOf returns the HTTP status an error renders with
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatus
	}
	return http.StatusInternalServerError
}
