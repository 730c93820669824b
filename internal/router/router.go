package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/pageza/alchemorsel-import/backend/internal/api"
	"github.com/pageza/alchemorsel-import/backend/internal/middleware"
	"github.com/pageza/alchemorsel-import/backend/internal/service"
)

// Dependencies are the collaborators the routes are built from.
// Ledger, RateLimiter and HealthChecks are optional.
type Dependencies struct {
	APIKey       string
	CORSOrigins  []string
	Log          logrus.FieldLogger
	Importer     service.IRecipeImporter
	Images       service.IImageService
	Tokens       service.TokenVerifier
	Ledger       service.IUploadLedger
	RateLimiter  *middleware.RateLimiter
	HealthChecks map[string]api.HealthCheck
}

// SetupRouter configures the application routes
func SetupRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(
		middleware.RequestLogger(deps.Log),
		middleware.Recovery(deps.Log),
		middleware.Metrics(),
		middleware.CORS(deps.CORSOrigins),
	)

	// Unauthenticated operational routes
	router.GET("/health", api.NewHealthHandler(deps.HealthChecks).Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Everything else requires the shared API key before any other processing
	protected := router.Group("")
	protected.Use(middleware.APIKey(deps.APIKey))

	imports := protected.Group("")
	if deps.RateLimiter != nil {
		imports.Use(deps.RateLimiter.RateLimitMiddleware())
	}
	api.NewRecipeHandler(deps.Importer).RegisterRoutes(imports)

	api.NewImageHandler(deps.Images, deps.Tokens, deps.Log).RegisterRoutes(protected)

	if deps.Ledger != nil {
		api.NewUploadsHandler(deps.Ledger).RegisterRoutes(protected)
	}

	return router
}
