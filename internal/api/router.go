package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	_ "github.com/storefront/ecommerce-api/docs"
	"github.com/storefront/ecommerce-api/internal/api/handler"
	"github.com/storefront/ecommerce-api/internal/api/metrics"
	"github.com/storefront/ecommerce-api/internal/api/middleware"
	"github.com/storefront/ecommerce-api/internal/core/auth"
	"github.com/storefront/ecommerce-api/internal/core/ports"
	"github.com/storefront/ecommerce-api/internal/infrastructure/http/handlers"
)

// formOverhead is the room left for the text fields of a multipart form on
// top of the image itself.
const formOverhead = 1 << 20

// Options tunes the HTTP surface.
type Options struct {
	// LegacyAuthHeader accepts "<scheme> <x> <token>" Authorization headers
	// and restores the historical 404 for a missing token.
	LegacyAuthHeader bool
	AllowedOrigins   []string
	// RateLimitRPS of zero disables per-IP rate limiting.
	RateLimitRPS   float64
	RateLimitBurst int
	MaxImageBytes  int64
	// UploadDir is served under /uploads when set.
	UploadDir string
}

// Deps carries everything the router needs.
type Deps struct {
	Auth   ports.AuthService
	Users  ports.UserService
	Stores ports.StoreService
	Gate   *auth.SessionGate
	Checks []handlers.Checker
	Log    zerolog.Logger
	Opts   Options
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log, d.Opts.LegacyAuthHeader)

	maxImage := d.Opts.MaxImageBytes
	if maxImage <= 0 {
		maxImage = handler.DefaultMaxImageBytes
	}

	// HTTP metrics get their own registry per router so several routers can
	// live in one process; /metrics serves it together with the custom ones.
	httpRegistry := prometheus.NewRegistry()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	// Outside the request logger, which resolves errors into their final
	// status before the metrics middleware reads it.
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "storefront",
		Subsystem:  "http",
		Registerer: httpRegistry,
		Skipper:    skipProbes,
	}))
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: allowedOrigins(d.Opts.AllowedOrigins),
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(echomiddleware.BodyLimit(fmt.Sprintf("%dK", (maxImage+formOverhead)/1024)))
	if d.Opts.RateLimitRPS > 0 {
		e.Use(echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
			Skipper: skipProbes,
			Store: echomiddleware.NewRateLimiterMemoryStoreWithConfig(echomiddleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(d.Opts.RateLimitRPS),
				Burst:     d.Opts.RateLimitBurst,
				ExpiresIn: 3 * time.Minute,
			}),
		}))
	}

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(d.Auth, maxImage)
	userHandler := handler.NewUserHandler(d.Users)
	storeHandler := handler.NewStoreHandler(d.Stores, maxImage)
	authn := middleware.Auth(d.Gate, d.Opts.LegacyAuthHeader)

	e.GET("/", handler.Index)

	// --- Auth routes ---
	e.POST("/register", authHandler.Register)
	e.POST("/login", authHandler.Login)

	// --- Users ---
	e.GET("/users", userHandler.List)
	e.GET("/users/:id", userHandler.Get)
	e.PATCH("/users/:id", userHandler.Update,
		authn, middleware.Authorize(auth.UserProfileMutation, middleware.ParamOwner("id")))
	e.DELETE("/users/:id", userHandler.Delete,
		authn, middleware.Authorize(auth.AccountDeletion, middleware.ParamOwner("id")))

	// --- Store items ---
	e.GET("/stores", storeHandler.List)
	e.GET("/stores/:id", storeHandler.Get)
	e.POST("/stores", storeHandler.Create,
		authn, middleware.Authorize(auth.StoreItemMutation, middleware.NoOwner))
	e.PATCH("/stores/:id", storeHandler.Update,
		authn, middleware.Authorize(auth.StoreItemMutation, middleware.NoOwner))
	e.DELETE("/stores/:id", storeHandler.Delete,
		authn, middleware.Authorize(auth.StoreItemMutation, middleware.NoOwner))

	if d.Opts.UploadDir != "" {
		e.Static("/uploads", d.Opts.UploadDir)
	}

	// --- Health checks (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(d.Checks...)

	e.GET("/health", healthHandler.Liveness)            // liveness: is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness: are dependencies up?

	// --- Operations ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: prometheus.Gatherers{metrics.Registry, httpRegistry},
	}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func allowedOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

func skipProbes(c echo.Context) bool {
	switch c.Path() {
	case "/metrics", "/health", "/health/ready":
		return true
	}
	return false
}
