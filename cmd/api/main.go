package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/libvisit-api/api/swagger"
	"github.com/noah-isme/libvisit-api/internal/handler"
	"github.com/noah-isme/libvisit-api/internal/middleware"
	"github.com/noah-isme/libvisit-api/internal/models"
	"github.com/noah-isme/libvisit-api/internal/repository"
	"github.com/noah-isme/libvisit-api/internal/service"
	"github.com/noah-isme/libvisit-api/pkg/cache"
	"github.com/noah-isme/libvisit-api/pkg/clock"
	"github.com/noah-isme/libvisit-api/pkg/config"
	"github.com/noah-isme/libvisit-api/pkg/database"
	"github.com/noah-isme/libvisit-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/libvisit-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/libvisit-api/pkg/middleware/requestid"
	"github.com/noah-isme/libvisit-api/pkg/middleware/secure"
	"github.com/noah-isme/libvisit-api/pkg/postgrest"
)

// @title Library Visitor API
// @version 1.0.0
// @description Library entry/exit tracking with an authenticated admin console
// @BasePath /api/v1
// @schemes http https

type adminStore interface {
	FindByUsername(ctx context.Context, username string) (*models.AdminCredential, error)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if err := run(cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logr *zap.Logger) error {
	calendar, err := clock.NewCalendar(clock.System, cfg.Timezone)
	if err != nil {
		return fmt.Errorf("load timezone: %w", err)
	}

	metrics := service.NewMetricsService()

	visitorStore, admins, closeStore, err := openStore(cfg, calendar)
	if err != nil {
		return err
	}
	defer closeStore()
	store := service.InstrumentStore(visitorStore, metrics)
	pinger, _ := store.(service.Pinger)

	var redisClient *redis.Client
	if cfg.Analytics.CacheEnabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, analytics cache disabled", zap.Error(err))
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	var cacheSvc *service.CacheService
	if redisClient != nil {
		cacheSvc = service.NewCacheService(repository.NewCacheRepository(redisClient, logr), metrics, cfg.Analytics.CacheTTL, logr, true)
	}

	verifier, err := service.NewCredentialVerifier(cfg.Session.CredentialScheme)
	if err != nil {
		return err
	}
	sessions, err := service.NewSessionService(service.SessionConfig{Secret: cfg.Session.Secret, TTL: cfg.Session.TTL}, clock.System)
	if err != nil {
		return err
	}

	validate := service.NewValidator()
	visitors := service.NewVisitorService(store, calendar, cacheSvc, metrics, validate, logr)
	analytics := service.NewAnalyticsService(store, calendar, cacheSvc, cfg.Analytics.CacheTTL, logr)
	auth := service.NewAuthService(service.NewCredentialStore(admins, verifier), sessions, metrics, validate, logr)

	var limiter middleware.Limiter = middleware.NewTokenBucket(cfg.RateLimit.PerMinute, cfg.RateLimit.PerMinute)
	if redisClient != nil {
		limiter = middleware.NewRedisWindow(redisClient, cfg.RateLimit.PerMinute, time.Minute)
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return fmt.Errorf("trusted proxies: %w", err)
	}
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(secure.Headers(cfg.Env == config.EnvProduction))
	r.Use(middleware.Metrics(metrics))
	r.Use(middleware.WithResponseMeta())

	handler.Routes{
		Student:   handler.NewStudentHandler(visitors),
		Auth:      handler.NewAuthHandler(auth, handler.CookieOptions{Name: cfg.Session.CookieName, Secure: cfg.Session.CookieSecure}),
		Visitors:  handler.NewVisitorHandler(visitors),
		Analytics: handler.NewAnalyticsHandler(analytics),
		Transfer:  handler.NewTransferHandler(service.NewImportService(visitors, logr), service.NewExportService(visitors, logr), cfg.Transfer.ImportMaxBytes),
		Metrics:   handler.NewMetricsHandler(metrics, pinger),
		Session:   middleware.Session(auth, cfg.Session.CookieName),
		RateLimit: middleware.RateLimit(limiter, cfg.RateLimit.PerMinute, logr),
		Logger:    logr,
	}.Register(r, cfg.APIPrefix)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.Env),
			zap.String("store", cfg.Store.Backend),
			zap.String("credential_scheme", verifier.Scheme()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	logr.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

// openStore builds the visitor and admin stores for the configured backend.
func openStore(cfg *config.Config, calendar *clock.Calendar) (service.VisitorStore, adminStore, func(), error) {
	switch cfg.Store.Backend {
	case config.StoreBackendREST:
		client := postgrest.New(postgrest.Options{
			BaseURL:    cfg.REST.URL,
			APIKey:     cfg.REST.APIKey,
			ServiceKey: cfg.REST.ServiceKey,
			Timeout:    cfg.REST.Timeout,
		})
		return repository.NewVisitorRESTRepository(client, calendar), repository.NewAdminRESTRepository(client), func() {}, nil
	default:
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("connect database: %w", err)
		}
		return repository.NewVisitorRepository(db, calendar), repository.NewAdminRepository(db), func() { _ = db.Close() }, nil
	}
}
