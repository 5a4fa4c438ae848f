package bootstrap

import (
	"strings"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"automail_server/adapter/in/http"
	"automail_server/config"
	"automail_server/infra/middleware"
	"automail_server/pkg/logger"
)

func NewAPI(cfg *config.Config) (*fiber.App, func(), error) {
	logLevel := logger.LevelInfo
	if cfg.IsDevelopment() {
		logLevel = logger.LevelDebug
	}
	logger.Init(logger.Config{
		Level:   logLevel,
		Service: "automail-api",
	})

	deps, cleanup, err := NewDependencies(cfg)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize dependencies")
		return nil, nil, err
	}

	app := fiber.New(fiber.Config{
		ErrorHandler:          middleware.ErrorHandler(),
		DisableStartupMessage: cfg.IsProduction(),
		ReadBufferSize:        16384,
		WriteBufferSize:       16384,
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		BodyLimit:             10 * 1024 * 1024,
	})

	app.Use(middleware.Recover())
	app.Use(middleware.RequestID())
	app.Use(middleware.SecurityHeaders())
	app.Use(middleware.RequestLogger())

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	allowOrigins := strings.Join(cfg.AllowedOrigins, ",")
	app.Use(cors.New(cors.Config{
		AllowOrigins: allowOrigins,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,X-Request-ID",
		MaxAge:       86400,
	}))

	if cfg.WebhookAudience != "" {
		app.Use("/emails/webhook", middleware.WebhookAuth(cfg.WebhookAudience))
	}

	healthHandler := http.NewHealthHandler(deps.DB, deps.Redis, deps.MongoDB)
	healthHandler.Register(app)

	orchestratorHandler := http.NewOrchestratorHandler(deps.Orchestrator, cfg.SaveToDB, cfg.CreateDrafts, cfg.ProcessTimeout)
	orchestratorHandler.Register(app)

	financeHandler := http.NewFinanceHandler(deps.Finance)
	financeHandler.Register(app)

	remindersHandler := http.NewRemindersHandler(deps.Reminders)
	remindersHandler.Register(app)

	analyticsHandler := http.NewAnalyticsHandler(deps.Analytics)
	analyticsHandler.Register(app)

	replyHandler := http.NewReplyHandler(deps.Reply)
	replyHandler.Register(app)

	if deps.Tagging != nil {
		taggingHandler := http.NewTaggingHandler(deps.Tagging)
		taggingHandler.Register(app)
	} else {
		logger.Warn("tagging endpoints disabled, no label repository")
	}

	logger.Info("API server initialized successfully")
	return app, cleanup, nil
}
