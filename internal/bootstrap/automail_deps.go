package bootstrap

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver for database/sql
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/oauth2"

	"automail_server/adapter/out/cache"
	"automail_server/adapter/out/mongodb"
	"automail_server/adapter/out/persistence"
	"automail_server/adapter/out/provider/gmail"
	"automail_server/config"
	"automail_server/core/agent/llm"
	"automail_server/core/port/out"
	"automail_server/core/service/analytics"
	"automail_server/core/service/finance"
	"automail_server/core/service/orchestrator"
	"automail_server/core/service/reminders"
	"automail_server/core/service/reply"
	"automail_server/core/service/tagging"
	"automail_server/infra/database"
	"automail_server/pkg/logger"
)

type Dependencies struct {
	Config  *config.Config
	DB      *pgxpool.Pool
	SQLDB   *sqlx.DB
	Redis   *redis.Client
	MongoDB *mongo.Client

	// Repositories
	TransactionRepo out.TransactionRepository
	ReminderRepo    out.ReminderRepository
	LabelRepo       out.LabelRepository
	RunRepo         out.RunRepository
	SnapshotRepo    out.SnapshotRepository
	Deduper         out.Deduper

	// Providers
	Mail out.MailProvider
	LLM  *llm.Client

	// Services
	Orchestrator *orchestrator.Service
	Tagging      *tagging.Service
	Finance      *finance.Service
	Reminders    *reminders.Service
	Analytics    *analytics.Service
	Reply        *reply.Service
}

func NewDependencies(cfg *config.Config) (*Dependencies, func(), error) {
	deps := &Dependencies{Config: cfg}
	var cleanups []func()

	// Database (pgxpool + sqlx). Optional unless persistence is on.
	if cfg.DatabaseURL != "" {
		db, err := database.NewPostgres(cfg.DatabaseURL)
		if err != nil {
			if cfg.SaveToDB {
				return nil, nil, err
			}
			logger.WithError(err).Warn("Postgres connection failed, persistence disabled")
		} else {
			deps.DB = db
			cleanups = append(cleanups, func() { db.Close() })
		}

		sqlDB, err := database.NewSQLX(cfg.DatabaseURL)
		if err != nil {
			if cfg.SaveToDB {
				return nil, nil, err
			}
			logger.WithError(err).Warn("sqlx connection failed, persistence disabled")
		} else {
			deps.SQLDB = sqlDB
			cleanups = append(cleanups, func() { sqlDB.Close() })
		}
	}

	// Redis (webhook dedupe)
	if cfg.RedisURL != "" {
		redisClient, err := database.NewRedis(cfg.RedisURL)
		if err != nil {
			logger.WithError(err).Warn("Redis connection failed, webhook dedupe disabled")
		} else {
			deps.Redis = redisClient
			cleanups = append(cleanups, func() { redisClient.Close() })
			deps.Deduper = cache.NewDedupeAdapter(redisClient)
		}
	}

	// MongoDB (analytics snapshots)
	if cfg.MongoDBURL != "" {
		mongoClient, err := mongodb.NewClient(cfg.MongoDBURL, cfg.MongoDBName)
		if err != nil {
			logger.WithError(err).Warn("MongoDB connection failed, snapshots disabled")
		} else {
			deps.MongoDB = mongoClient
			cleanups = append(cleanups, func() {
				mongoClient.Disconnect(context.Background())
			})

			snapshotRepo := mongodb.NewSnapshotAdapter(mongoClient.Database(cfg.MongoDBName), cfg.SnapshotTTL)
			if err := snapshotRepo.EnsureIndexes(context.Background()); err != nil {
				logger.WithError(err).Warn("failed to ensure snapshot indexes")
			}
			deps.SnapshotRepo = snapshotRepo
		}
	}

	// Repositories
	if deps.SQLDB != nil {
		deps.TransactionRepo = persistence.NewTransactionAdapter(deps.SQLDB)
		deps.ReminderRepo = persistence.NewReminderAdapter(deps.SQLDB)
		deps.LabelRepo = persistence.NewLabelAdapter(deps.SQLDB)
		deps.RunRepo = persistence.NewRunAdapter(deps.SQLDB)
	}

	// Gmail provider
	token, err := gmail.LoadToken(cfg.GoogleTokenPath)
	if err != nil {
		return nil, nil, err
	}
	oauthConfig := &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
		Scopes:       []string{"https://www.googleapis.com/auth/gmail.modify"},
		Endpoint: oauth2.Endpoint{
			AuthURL:  "https://accounts.google.com/o/oauth2/auth",
			TokenURL: "https://oauth2.googleapis.com/token",
		},
	}
	mailProvider, err := gmail.NewProvider(context.Background(), oauthConfig, token, cfg.FetchConcurrency)
	if err != nil {
		return nil, nil, err
	}
	deps.Mail = mailProvider

	// LLM client
	deps.LLM = llm.NewClient(llm.ClientConfig{
		APIKey:            cfg.OpenAIAPIKey,
		Model:             cfg.LLMModel,
		MaxTokens:         cfg.LLMMaxTokens,
		Temperature:       cfg.LLMTemperature,
		MaxRetries:        cfg.LLMMaxRetries,
		BodyPreviewLength: cfg.BodyPreviewLength,
		Timeout:           time.Duration(cfg.LLMTimeoutSec) * time.Second,
	})

	// Services
	if deps.LabelRepo != nil {
		deps.Tagging = tagging.NewService(deps.Mail, deps.LLM, deps.LabelRepo, cfg.BatchMaxMessages)
	} else {
		logger.Warn("label repository unavailable, batch tagging disabled")
	}
	deps.Finance = finance.NewService(deps.Mail, deps.LLM, deps.TransactionRepo)
	deps.Reminders = reminders.NewService(deps.Mail, deps.LLM, deps.ReminderRepo)
	deps.Analytics = analytics.NewService(deps.Mail, deps.LLM, deps.SnapshotRepo)
	deps.Reply = reply.NewService(deps.Mail, deps.LLM)
	deps.Orchestrator = orchestrator.NewService(
		deps.Mail,
		deps.LLM,
		deps.TransactionRepo,
		deps.ReminderRepo,
		deps.RunRepo,
		deps.Deduper,
		deps.Tagging,
		cfg.WebhookDedupeTTL,
	)

	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}
	return deps, cleanup, nil
}

func (d *Dependencies) HealthCheck(ctx context.Context) error {
	if d.DB != nil {
		if err := d.DB.Ping(ctx); err != nil {
			return err
		}
	}
	if d.Redis != nil {
		if err := d.Redis.Ping(ctx).Err(); err != nil {
			return err
		}
	}
	return nil
}
