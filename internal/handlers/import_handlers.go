package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"dealerdir/internal/caching"
	"dealerdir/internal/models"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Importer is what the import endpoint needs from the dealer importer
type Importer interface {
	RunDefault(ctx context.Context) (*models.ImportResult, error)
	RunUpload(ctx context.Context, filename string, data []byte) (*models.ImportResult, error)
}

// ImportResponse is returned by POST /api/import
type ImportResponse struct {
	Message       string    `json:"message"`
	RowsProcessed int       `json:"rowsProcessed"`
	Skipped       int       `json:"skipped"`
	RunID         uuid.UUID `json:"runId"`
	Source        string    `json:"source"`
}

// ImportHandlers triggers dealer imports and reports the last run
type ImportHandlers struct {
	importer       Importer
	tracker        caching.ImportTracker
	maxUploadBytes int64
}

func NewImportHandlers(importer Importer, tracker caching.ImportTracker, maxUploadBytes int64) *ImportHandlers {
	return &ImportHandlers{
		importer:       importer,
		tracker:        tracker,
		maxUploadBytes: maxUploadBytes,
	}
}

// RunImport godoc
// @Summary      Import dealers
// @Description  Upserts dealer, address and contact rows from a spreadsheet. With a multipart "file" field the uploaded CSV is used, otherwise the configured sheet or object export. Product lines are not touched.
// @Tags         Import
// @Accept       mpfd
// @Produce      json
// @Param        file         formData  file  false  "CSV export, header row first"
// @Success      200          {object}  ImportResponse
// @Failure      400,409,413  {object}  ErrorResponse
// @Failure      429,500      {object}  ErrorResponse
// @Router       /api/import [post]
func (h *ImportHandlers) RunImport(c echo.Context) error {
	ctx := c.Request().Context()

	var (
		result *models.ImportResult
		err    error
	)
	if isMultipart(c.Request()) {
		filename, data, readErr := h.readUpload(c)
		if readErr != nil {
			return readErr
		}
		if data != nil {
			result, err = h.importer.RunUpload(ctx, filename, data)
		} else {
			result, err = h.importer.RunDefault(ctx)
		}
	} else {
		result, err = h.importer.RunDefault(ctx)
	}
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, ImportResponse{
		Message:       fmt.Sprintf("Import completed: %d rows processed", result.RowsProcessed),
		RowsProcessed: result.RowsProcessed,
		Skipped:       result.Skipped,
		RunID:         result.RunID,
		Source:        result.Source,
	})
}

// LastImport godoc
// @Summary      Last import run
// @Tags         Import
// @Produce      json
// @Success      200      {object}  models.ImportResult
// @Failure      404,500  {object}  ErrorResponse
// @Router       /api/import/last [get]
func (h *ImportHandlers) LastImport(c echo.Context) error {
	result, err := h.tracker.LastResult(c.Request().Context())
	if err != nil {
		return err
	}
	if result == nil {
		return echo.NewHTTPError(http.StatusNotFound, "No import has run yet")
	}
	return c.JSON(http.StatusOK, result)
}

// readUpload returns nil data when the form carries no "file" field
func (h *ImportHandlers) readUpload(c echo.Context) (string, []byte, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		if err == http.ErrMissingFile {
			return "", nil, nil
		}
		return "", nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid multipart form").SetInternal(err)
	}
	if h.maxUploadBytes > 0 && fh.Size > h.maxUploadBytes {
		return "", nil, echo.NewHTTPError(http.StatusRequestEntityTooLarge,
			fmt.Sprintf("Upload exceeds %d bytes", h.maxUploadBytes))
	}

	f, err := fh.Open()
	if err != nil {
		return "", nil, echo.NewHTTPError(http.StatusBadRequest, "Unreadable upload").SetInternal(err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", nil, echo.NewHTTPError(http.StatusBadRequest, "Unreadable upload").SetInternal(err)
	}
	return fh.Filename, data, nil
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm)
}
