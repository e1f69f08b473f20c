package handlers

import (
	"net/http"

	"dealerdir/internal/metrics"
	"dealerdir/internal/models"
	"dealerdir/internal/repositories"
	"dealerdir/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// DealerHandlers serves the dealer directory read and edit endpoints
type DealerHandlers struct {
	dealerService services.DealerService
	metrics       *metrics.Registry
}

// NewDealerHandlers creates a new dealer handlers instance
func NewDealerHandlers(dealerService services.DealerService, m *metrics.Registry) *DealerHandlers {
	return &DealerHandlers{
		dealerService: dealerService,
		metrics:       m,
	}
}

// ListDealers godoc
// @Summary      List dealers
// @Description  Returns dealer summaries ordered by name. q filters number, name and DBA; salesman filters by salesman code.
// @Tags         Dealers
// @Produce      json
// @Param        q         query    string  false  "Case-insensitive search"
// @Param        salesman  query    string  false  "Salesman code"
// @Success      200       {array}  models.DealerSummary
// @Failure      500       {object} ErrorResponse
// @Router       /api/dealers [get]
func (h *DealerHandlers) ListDealers(c echo.Context) error {
	var filter models.DealerListFilter
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &filter); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}

	dealers, err := h.dealerService.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dealers)
}

// DealerCoordinates godoc
// @Summary      Dealer locations for the map
// @Description  Returns dealers with a street and city. City, state and zip are cleaned; rows that cannot be placed are left out.
// @Tags         Dealers
// @Produce      json
// @Success      200  {array}  models.DealerLocation
// @Failure      500  {object} ErrorResponse
// @Router       /api/dealers/coordinates [get]
func (h *DealerHandlers) DealerCoordinates(c echo.Context) error {
	locations, err := h.dealerService.Coordinates(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, locations)
}

// GetDealer godoc
// @Summary      Get dealer detail
// @Tags         Dealers
// @Produce      json
// @Param        dealerNumber  path      string  true  "Dealer number"
// @Success      200           {object}  models.DealerDetail
// @Failure      404,500       {object}  ErrorResponse
// @Router       /api/dealers/{dealerNumber} [get]
func (h *DealerHandlers) GetDealer(c echo.Context) error {
	detail, err := h.dealerService.Get(c.Request().Context(), c.Param("dealerNumber"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, detail)
}

// UpdateDealer godoc
// @Summary      Replace dealer detail
// @Description  Overwrites name, DBA, address, contact and product lines, and reassigns the salesman when a code is given. Lines are replaced as a whole.
// @Tags         Dealers
// @Accept       json
// @Produce      json
// @Param        dealerNumber  path      string               true  "Dealer number"
// @Param        dealer        body      models.DealerDetail  true  "Full dealer detail"
// @Success      200           {object}  models.DealerDetail
// @Failure      400,404,500   {object}  ErrorResponse
// @Router       /api/dealers/{dealerNumber} [put]
func (h *DealerHandlers) UpdateDealer(c echo.Context) error {
	var payload models.DealerDetail
	if err := c.Bind(&payload); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format").SetInternal(err)
	}

	updated, err := h.dealerService.Update(c.Request().Context(), c.Param("dealerNumber"), &payload)
	if err != nil {
		h.metrics.DealerUpdatesTotal.WithLabelValues(updateOutcome(err)).Inc()
		return err
	}
	h.metrics.DealerUpdatesTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusOK, updated)
}

// ListSalesmen godoc
// @Summary      List salesmen
// @Tags         Dealers
// @Produce      json
// @Success      200  {array}   models.Salesman
// @Failure      500  {object}  ErrorResponse
// @Router       /api/salesmen [get]
func (h *DealerHandlers) ListSalesmen(c echo.Context) error {
	salesmen, err := h.dealerService.Salesmen(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, salesmen)
}

func updateOutcome(err error) string {
	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return "invalid"
	case errors.Is(err, repositories.ErrDealerNotFound):
		return "not_found"
	default:
		return "error"
	}
}
