package routes

import (
	"net/http"
	"strconv"

	"dealerdir/internal/config"
	"dealerdir/internal/handlers"
	"dealerdir/internal/metrics"
	"dealerdir/internal/middleware"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"
)

// Dependencies holds everything the HTTP surface is built from
type Dependencies struct {
	Config   *config.Config
	Logger   *zap.Logger
	Metrics  *metrics.Registry
	Gatherer prometheus.Gatherer
	Version  middleware.APIVersion

	Dealers *handlers.DealerHandlers
	Imports *handlers.ImportHandlers
	Health  *handlers.HealthHandlers
}

// NewRouter builds the echo instance with global middleware and all routes
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handlers.NewErrorHandler(deps.Logger).Handle

	e.Pre(echoMiddleware.RemoveTrailingSlash())

	e.Use(echoMiddleware.RequestIDWithConfig(echoMiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORSWithConfig(echoMiddleware.CORSConfig{
		AllowOrigins:  deps.Config.CORS.AllowedOrigins,
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowHeaders:  []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderXRequestID},
		ExposeHeaders: []string{echo.HeaderXRequestID, "X-API-Version"},
		MaxAge:        300,
	}))
	e.Use(middleware.RequestLogger(deps.Logger))
	e.Use(middleware.Metrics(deps.Metrics))

	e.GET("/", deps.Health.Root)
	e.GET("/health", deps.Health.HealthCheck)
	e.GET("/health/ready", deps.Health.ReadinessCheck)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")
	api.Use(middleware.VersionHeader(deps.Version))

	api.GET("/dealers", deps.Dealers.ListDealers)
	api.GET("/dealers/coordinates", deps.Dealers.DealerCoordinates)
	api.GET("/dealers/:dealerNumber", deps.Dealers.GetDealer)
	api.PUT("/dealers/:dealerNumber", deps.Dealers.UpdateDealer)
	api.GET("/salesmen", deps.Dealers.ListSalesmen)

	limiter := middleware.NewIPRateLimiter(deps.Config.Import.RequestsPerMinute, deps.Config.Import.Burst)
	api.POST("/import", deps.Imports.RunImport,
		limiter.Middleware(),
		echoMiddleware.BodyLimit(bodyLimit(deps.Config.HTTP.MaxUploadBytes)))
	api.GET("/import/last", deps.Imports.LastImport)

	return e
}

// bodyLimit leaves room for multipart framing around the file itself
func bodyLimit(maxUploadBytes int64) string {
	const framing = 64 << 10
	return strconv.FormatInt(maxUploadBytes+framing, 10)
}
