package app

import (
	"context"
	"net/http"
	"time"

	"Gin_postgres_redis_library_api/auth"
	"Gin_postgres_redis_library_api/config"
	"Gin_postgres_redis_library_api/db"
	"Gin_postgres_redis_library_api/events"
	"Gin_postgres_redis_library_api/session"
	"Gin_postgres_redis_library_api/upload"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// 简化别名，便于 handlers 调用
type Ctx = gin.Context
type H = gin.H

// App 聚合各依赖
type App struct {
	Router *gin.Engine
	DB     *gorm.DB
	RDB    *redis.Client
	Repo   *db.Repo
	Log    zerolog.Logger
	Config config.Config

	Issuer *auth.Issuer
	Tokens *session.TokenStore
	Resets *session.ResetStore
	Photos *upload.PhotoStore
	Events events.Publisher
}

// New wires an App from already opened connections. Tests pass SQLite and
// miniredis here; MustNew passes Postgres and Redis.
func New(cfg config.Config, dbConn *gorm.DB, rdb *redis.Client, pub events.Publisher, logger zerolog.Logger) *App {
	if pub == nil {
		pub = events.Nop{}
	}
	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.MaxMultipartMemory = cfg.MaxPhotoBytes + 1<<20
	r.Use(RequestLogger(logger), Recovery(logger))
	useCORS(r, cfg.WebOrigins)
	r.NoRoute(func(c *Ctx) { Fail(c, http.StatusNotFound, "API endpoint not found") })

	return &App{
		Router: r,
		DB:     dbConn,
		RDB:    rdb,
		Repo:   db.NewRepo(dbConn, logger.With().Str("component", "repo").Logger(), pub),
		Log:    logger,
		Config: cfg,

		Issuer: auth.NewIssuer(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL),
		Tokens: session.NewTokenStore(rdb),
		Resets: session.NewResetStore(rdb, cfg.ResetTTL),
		Photos: upload.NewPhotoStore(cfg.UploadDir, cfg.MaxPhotoBytes),
		Events: pub,
	}
}

// MustNew connects Postgres, Redis and the event broker or exits.
func MustNew(cfg config.Config) *App {
	logger := NewLogger(cfg)

	// --- DB: Postgres ---
	dbConn, err := db.ConnectDB(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("database")
	}

	// --- Redis ---
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPwd, DB: cfg.RedisDB})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("redis")
	}

	// --- RabbitMQ: optional ---
	pub, err := events.New(cfg.RabbitURL, cfg.BorrowQueue)
	if err != nil {
		logger.Warn().Err(err).Msg("event broker unavailable, borrow events disabled")
		pub = events.Nop{}
	}

	return New(cfg, dbConn, rdb, pub, logger)
}

func (a *App) Close() {
	_ = a.Events.Close()
	_ = a.RDB.Close()
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
