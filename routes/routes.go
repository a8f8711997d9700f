package routes

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rescueradar/config"
	"rescueradar/controllers"
	"rescueradar/metrics"
	"rescueradar/middleware"
	"rescueradar/repositories"
	"rescueradar/services"
	"rescueradar/utils"
	"rescueradar/websocket"
)

// Endpoints is the public endpoint list reported by health
var Endpoints = []string{
	"POST /api/report",
	"POST /api/save-report",
	"POST /api/ai-analysis",
	"POST /api/email-notify",
	"POST /api/whatsapp-notify",
	"GET /api/generate-qr",
	"GET /api/reports/active",
	"POST /api/upload-image",
	"GET /api/organizations/nearby",
	"POST /api/organizations/alert",
	"GET /api/health",
	"GET /ws",
}

// Dependencies are the long-lived collaborators built by main
type Dependencies struct {
	Config    *config.Config
	Reports   repositories.ReportRepository
	Redis     *redis.Client
	Hub       *websocket.Hub
	Storage   services.ImageStorage
	Publisher services.EventPublisher
	Email     services.EmailService
}

type Services struct {
	Submissions   *services.ReportSubmissionService
	AI            *services.AIService
	Notifications *services.NotificationService
	WhatsApp      *services.WhatsAppService
	QR            *services.QRService
	Feed          *services.FeedService
	Places        *services.PlaceService
	Uploads       *services.UploadService
	Health        *services.HealthService
	Cache         *services.Cache
	JWT           *utils.JWTService
}

func InitializeServices(deps Dependencies) *Services {
	cfg := deps.Config
	cache := services.NewCache(deps.Redis)

	email := deps.Email
	if email == nil {
		email = cfg.InitEmailService()
	}

	ai := cfg.InitAIService()
	notifications := services.NewNotificationService(email, cfg.BaseURL)
	whatsapp := cfg.InitWhatsAppService()
	qr := services.NewQRService(cfg.BaseURL)

	var broadcaster services.ReportBroadcaster
	if deps.Hub != nil {
		broadcaster = deps.Hub
	}

	submissions := services.NewReportSubmissionService(services.ReportSubmissionDeps{
		Repository:    deps.Reports,
		AI:            ai,
		Notifications: notifications,
		WhatsApp:      whatsapp,
		QR:            qr,
		Publisher:     deps.Publisher,
		Broadcaster:   broadcaster,
		Cache:         cache,
		RescuePhone:   cfg.DefaultRescuePhone,
		Development:   cfg.IsDevelopment(),
	})

	connectivity := map[string]func(ctx context.Context) error{
		"store": func(ctx context.Context) error { return deps.Reports.Ping(ctx) },
	}
	if deps.Redis != nil {
		connectivity["redis"] = cache.Ping
	}
	if deps.Publisher != nil {
		connectivity["broker"] = func(context.Context) error { return deps.Publisher.HealthCheck() }
	}

	return &Services{
		Submissions:   submissions,
		AI:            ai,
		Notifications: notifications,
		WhatsApp:      whatsapp,
		QR:            qr,
		Feed:          services.NewFeedService(deps.Reports, cache),
		Places:        cfg.InitPlaceService(cache),
		Uploads:       services.NewUploadService(deps.Storage),
		Health:        services.NewHealthService(cfg.Version, cfg.HealthChecks(deps.Storage), connectivity, Endpoints),
		Cache:         cache,
		JWT:           utils.NewJWTService(cfg.JWTSecret),
	}
}

type Controllers struct {
	Report       *controllers.ReportController
	AI           *controllers.AIController
	Notification *controllers.NotificationController
	QR           *controllers.QRController
	Map          *controllers.MapController
	Upload       *controllers.UploadController
	Health       *controllers.HealthController
	Admin        *controllers.AdminController
	WebSocket    *controllers.WebSocketController
}

func initializeControllers(cfg *config.Config, svc *Services, hub *websocket.Hub) *Controllers {
	dev := cfg.IsDevelopment()
	return &Controllers{
		Report:       controllers.NewReportController(svc.Submissions, dev),
		AI:           controllers.NewAIController(svc.AI, dev),
		Notification: controllers.NewNotificationController(svc.Notifications, svc.WhatsApp, cfg.DefaultRescuePhone, dev),
		QR:           controllers.NewQRController(svc.QR, dev),
		Map:          controllers.NewMapController(svc.Feed, svc.Places, svc.Submissions, svc.Notifications, dev),
		Upload:       controllers.NewUploadController(svc.Uploads, dev),
		Health:       controllers.NewHealthController(svc.Health),
		Admin:        controllers.NewAdminController(svc.Submissions, hub, dev),
		WebSocket:    controllers.NewWebSocketController(hub, cfg.CORSOrigins),
	}
}

// SetupRoutes builds the HTTP router
func SetupRoutes(cfg *config.Config, svc *Services, rdb *redis.Client, hub *websocket.Hub) *gin.Engine {
	router := gin.New()
	router.HandleMethodNotAllowed = true

	ctrl := initializeControllers(cfg, svc, hub)

	setupGlobalMiddleware(router, cfg, rdb)
	setupAPIRoutes(router, ctrl, rdb)
	setupAdminRoutes(router, ctrl, middleware.NewAuthMiddleware(svc.JWT))

	router.GET("/health", ctrl.Health.Health)
	router.GET("/ws", ctrl.WebSocket.HandleWebSocket)

	metrics.Register()
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if local, ok := svc.Uploads.Storage().(*services.LocalStorage); ok {
		router.Static(config.UploadURLPrefix, local.Root())
	}

	router.NoMethod(utils.MethodNotAllowedResponse)
	router.NoRoute(func(c *gin.Context) {
		utils.NotFoundResponse(c, "Endpoint")
	})

	return router
}

func setupGlobalMiddleware(router *gin.Engine, cfg *config.Config, rdb *redis.Client) {
	router.Use(middleware.DefaultLoggerMiddleware())
	router.Use(middleware.NewErrorHandler(cfg.Environment, nil).Handle())
	router.Use(middleware.CORSMiddleware(cfg.CORSOrigins))
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.APIRateLimit(rdb, cfg.RateLimitRequest, cfg.RateLimitPeriod()))
}

func setupAPIRoutes(router *gin.Engine, ctrl *Controllers, rdb *redis.Client) {
	api := router.Group("/api")

	submit := middleware.SubmissionRateLimit(rdb)
	api.POST("/report", submit, ctrl.Report.SubmitReport)
	api.POST("/save-report", submit, ctrl.Report.SaveReport)

	api.POST("/ai-analysis", ctrl.AI.Analyze)
	api.POST("/email-notify", ctrl.Notification.EmailNotify)
	api.POST("/whatsapp-notify", ctrl.Notification.WhatsAppNotify)
	api.GET("/generate-qr", ctrl.QR.GenerateQR)
	api.POST("/upload-image", middleware.UploadRateLimit(rdb), ctrl.Upload.UploadImage)

	api.GET("/reports/active", ctrl.Map.ActiveReports)
	api.GET("/organizations/nearby", ctrl.Map.NearbyOrganizations)
	api.POST("/organizations/alert", ctrl.Map.AlertOrganization)

	api.GET("/health", ctrl.Health.Health)
}

func setupAdminRoutes(router *gin.Engine, ctrl *Controllers, auth *middleware.AuthMiddleware) {
	admin := router.Group("/api/admin", auth.RequireAdmin()...)
	admin.GET("/reports/:id", ctrl.Admin.GetReport)
	admin.GET("/ws/stats", ctrl.Admin.WebSocketStats)
}
