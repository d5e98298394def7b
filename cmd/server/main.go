package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	redisv9 "github.com/redis/go-redis/v9"

	"portfolio_backend/internal/app/di"
	"portfolio_backend/internal/app/router"
	authadapters "portfolio_backend/internal/feature/auth/adapters"
	authhandler "portfolio_backend/internal/feature/auth/transport/handler"
	authusecase "portfolio_backend/internal/feature/auth/usecase"
	profilehandler "portfolio_backend/internal/feature/profile/transport/handler"
	profileusecase "portfolio_backend/internal/feature/profile/usecase"
	"portfolio_backend/internal/platform/config"
	platformdb "portfolio_backend/internal/platform/db"
	platformhandler "portfolio_backend/internal/platform/http/handler"
	"portfolio_backend/internal/platform/http/middleware"
	jwtmw "portfolio_backend/internal/platform/jwt"
	"portfolio_backend/internal/platform/logger"
	"portfolio_backend/internal/platform/mail"
	platformredis "portfolio_backend/internal/platform/redis"
)

const maxMultipartMemory = 8 << 20

func main() {
	envFile := flag.String("env", ".env", "dotenv file to load before reading the environment")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	log := logger.New("portfolio_backend", cfg.Env)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// db
	gdb, err := platformdb.Open(ctx, cfg.DB)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	if sqlDB, err := gdb.DB(); err == nil {
		defer func() { _ = sqlDB.Close() }()
	}

	// Redis
	var rdb *redisv9.Client
	if cfg.Redis.Enabled() {
		if tmp, err := platformredis.NewRedisClient(ctx, cfg.Redis); err != nil {
			log.Warn("redis unavailable; running without cache and revocation", "error", err)
		} else {
			rdb = tmp
			defer func() {
				if err := rdb.Close(); err != nil {
					log.Error("failed to close redis client", "error", err)
				}
			}()
		}
	}

	// storage and mail
	avatars, err := di.NewAvatarStore(ctx, cfg.Avatar)
	if err != nil {
		log.Error("failed to configure avatar storage", "error", err)
		os.Exit(1)
	}
	resumes, err := di.NewResumeStore(ctx, cfg.Resume)
	if err != nil {
		log.Error("failed to configure resume storage", "error", err)
		os.Exit(1)
	}
	mailer, err := mail.NewSMTPMailer(cfg.Mail)
	if err != nil {
		log.Error("failed to configure mailer", "error", err)
		os.Exit(1)
	}
	if cfg.Mail.From == "" {
		log.Warn("SMTP_MAIL is not set; password reset mail will fail")
	}

	// Repository
	userRepo := authadapters.NewUserGorm(gdb)
	profileRepo := di.NewProfileRepository(rdb, cfg.Portfolio.CacheTTL, userRepo)

	// Usecase
	authUC := authusecase.NewAuthUsecase(authusecase.Deps{
		Users:        userRepo,
		Tokens:       jwtmw.NewGenerator(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL),
		Revocations:  di.NewRevocationStore(rdb),
		Avatars:      avatars,
		Resumes:      resumes,
		Mailer:       mailer,
		DashboardURL: cfg.HTTP.DashboardURL,
		ResetSecret:  cfg.Auth.ResetTokenSecret,
	})
	profileUC := profileusecase.NewProfileUsecase(profileRepo, avatars, resumes, cfg.Portfolio.OwnerID)

	// Handler
	pingers := map[string]platformhandler.Pinger{
		"postgres": platformhandler.PingFunc(func(ctx context.Context) error { return platformdb.Ping(ctx, gdb) }),
	}
	if rdb != nil {
		pingers["redis"] = platformhandler.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	limiter := di.NewRateLimiter(rdb)
	defer limiter.Close()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := router.NewRouter(router.Config{
		AllowedOrigins:     cfg.HTTP.AllowedOrigins(),
		LoginLimit:         cfg.RateLimit.Login,
		ForgotLimit:        cfg.RateLimit.Forgot,
		RateWindow:         cfg.RateLimit.Window,
		MaxMultipartMemory: maxMultipartMemory,
		MaxUploadBytes:     cfg.HTTP.MaxUploadBytes,
	}, router.Deps{
		Auth:     authhandler.NewAuthHandler(authUC),
		Profile:  profilehandler.NewProfileHandler(profileUC),
		Health:   platformhandler.NewHealthHandler(pingers),
		Sessions: authUC,
		Limiter:  limiter,
		Metrics:  middleware.NewMetrics(reg),
		Gatherer: reg,
		Logger:   log,
	})

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
	}

	errorCh := make(chan error, 1)
	go func() {
		log.Info("server starting", "addr", cfg.HTTP.Addr, "env", cfg.Env)
		errorCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
		log.Info("server stopped")
	case err := <-errorCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}
}
