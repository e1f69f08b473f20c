package handlers

import (
	"net/http"

	"dealerdir/internal/caching"
	"dealerdir/internal/jobs"
	"dealerdir/internal/repositories"
	"dealerdir/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error     string            `json:"error"`
	Detail    string            `json:"detail,omitempty"`
	Code      string            `json:"code,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"requestId"`
}

// ErrorHandler renders errors returned by handlers as ErrorResponse
type ErrorHandler struct {
	logger *zap.Logger
}

func NewErrorHandler(logger *zap.Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger.Named("errors")}
}

// Handle is installed as echo's HTTPErrorHandler
func (h *ErrorHandler) Handle(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, body := h.classify(err)
	body.RequestID = requestID(c)

	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("method", c.Request().Method),
			zap.String("path", c.Request().URL.Path),
			zap.String("request_id", body.RequestID),
			zap.Error(err))
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(status)
	} else {
		writeErr = c.JSON(status, body)
	}
	if writeErr != nil {
		h.logger.Warn("failed to write error response", zap.Error(writeErr))
	}
}

func (h *ErrorHandler) classify(err error) (int, ErrorResponse) {
	var (
		validationErr *services.ValidationError
		storageErr    *repositories.StorageError
		httpErr       *echo.HTTPError
	)

	switch {
	case errors.Is(err, repositories.ErrDealerNotFound):
		return http.StatusNotFound, ErrorResponse{Error: "Dealer not found", Detail: err.Error()}
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, ErrorResponse{Error: "Invalid request", Detail: validationErr.Message, Fields: validationErr.Fields}
	case errors.Is(err, caching.ErrImportInProgress):
		return http.StatusConflict, ErrorResponse{Error: "Import already running", Detail: err.Error()}
	case errors.Is(err, jobs.ErrNoImportSource):
		return http.StatusBadRequest, ErrorResponse{Error: "No import source", Detail: "upload a CSV file or configure a sheet or object export"}
	case errors.As(err, &storageErr):
		// The driver message and SQLSTATE are returned for diagnosis.
		return http.StatusInternalServerError, ErrorResponse{Error: "Database error", Detail: storageErr.Error(), Code: storageErr.Code}
	case errors.As(err, &httpErr):
		msg := http.StatusText(httpErr.Code)
		detail := ""
		if m, ok := httpErr.Message.(string); ok {
			detail = m
		}
		if httpErr.Internal != nil {
			detail = httpErr.Internal.Error()
		}
		return httpErr.Code, ErrorResponse{Error: msg, Detail: detail}
	default:
		return http.StatusInternalServerError, ErrorResponse{Error: "Internal server error", Detail: err.Error()}
	}
}

func requestID(c echo.Context) string {
	if id := c.Response().Header().Get(echo.HeaderXRequestID); id != "" {
		return id
	}
	if id := c.Request().Header.Get(echo.HeaderXRequestID); id != "" {
		return id
	}
	id := uuid.NewString()
	c.Response().Header().Set(echo.HeaderXRequestID, id)
	return id
}
