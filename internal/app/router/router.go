// Package router builds the gin engine and its route table.
package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	authhandler "portfolio_backend/internal/feature/auth/transport/handler"
	profilehandler "portfolio_backend/internal/feature/profile/transport/handler"
	platformhandler "portfolio_backend/internal/platform/http/handler"
	"portfolio_backend/internal/platform/http/middleware"
	"portfolio_backend/internal/platform/http/ratelimit"
	"portfolio_backend/internal/platform/http/upload"
	jwtmw "portfolio_backend/internal/platform/jwt"
)

// Config holds the HTTP-level settings of the router.
type Config struct {
	AllowedOrigins []string
	LoginLimit     int
	ForgotLimit    int
	RateWindow     time.Duration
	// MaxMultipartMemory bounds the in-memory part of multipart uploads.
	MaxMultipartMemory int64
	// MaxUploadBytes caps the body of the routes that accept files.
	MaxUploadBytes int64
}

// Deps are the handlers and middleware collaborators the router mounts.
type Deps struct {
	Auth     *authhandler.AuthHandler
	Profile  *profilehandler.ProfileHandler
	Health   *platformhandler.HealthHandler
	Sessions jwtmw.SessionVerifier
	Limiter  ratelimit.Limiter
	Metrics  *middleware.Metrics
	Gatherer prometheus.Gatherer
	Logger   *slog.Logger
}

// NewRouter mounts the public, rate limited and session-protected routes.
func NewRouter(cfg Config, d Deps) *gin.Engine {
	r := gin.New()
	if cfg.MaxMultipartMemory > 0 {
		r.MaxMultipartMemory = cfg.MaxMultipartMemory
	}

	r.Use(gin.Recovery())
	if d.Logger != nil {
		r.Use(middleware.AccessLog(d.Logger))
	}
	if d.Metrics != nil {
		r.Use(d.Metrics.Handler())
	}
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.AllowedOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	// public
	r.GET("/healthz", d.Health.Health)
	r.HEAD("/healthz", d.Health.Health)
	r.OPTIONS("/healthz", d.Health.Health)
	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	var rec ratelimit.Recorder
	if d.Metrics != nil {
		rec = d.Metrics
	}

	user := r.Group("/api/v1/user")
	limitBody := upload.Limit(cfg.MaxUploadBytes)

	user.POST("/register", limitBody, d.Auth.Register)
	user.POST("/login",
		ratelimit.PerIP(d.Limiter, "login", cfg.LoginLimit, cfg.RateWindow, rec),
		d.Auth.Login)
	user.GET("/me/portfolio", d.Profile.GetPortfolio)
	user.POST("/password/forgot",
		ratelimit.PerIP(d.Limiter, "forgot", cfg.ForgotLimit, cfg.RateWindow, rec),
		d.Auth.ForgotPassword)
	user.PUT("/password/reset/:token", d.Auth.ResetPassword)

	// session required
	auth := user.Group("")
	auth.Use(jwtmw.AuthRequired(d.Sessions))
	{
		auth.GET("/logout", d.Auth.Logout)
		auth.GET("/me", d.Profile.GetMe)
		auth.PUT("/update/me", limitBody, d.Profile.UpdateProfile)
		auth.PUT("/update/password", d.Auth.UpdatePassword)
	}

	return r
}
