package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/talaria-app/talaria/internal/config"
	"github.com/talaria-app/talaria/internal/handler"
	"github.com/talaria-app/talaria/internal/repository"
	"github.com/talaria-app/talaria/internal/service"
	"github.com/talaria-app/talaria/internal/strava"
	"github.com/talaria-app/talaria/internal/utils"
	"github.com/talaria-app/talaria/pkg/observability"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	infra  Infrastructure
	config *config.Config
	router *gin.Engine
	server *http.Server
}

func NewApp(infra Infrastructure, cfg *config.Config) (*App, error) {
	repos := repository.NewRepositories(infra.Postgres())

	sessions := utils.NewSessionManager(cfg.Session.Secret, cfg.Session.TokenExpiry.Duration)

	stravaClient := strava.NewClient(
		cfg.Strava.ClientID,
		cfg.Strava.ClientSecret,
		infra.Logger(),
		strava.WithBaseURLs(cfg.Strava.BaseURL, cfg.Strava.TokenURL, cfg.Strava.AuthorizeURL),
		strava.WithTimeout(cfg.Strava.RequestTimeout.Duration),
	)
	retry := strava.RetryPolicy{
		MaxAttempts:       cfg.Strava.MaxRetries,
		InitialDelay:      cfg.Strava.RetryInitialDelay.Duration,
		Factor:            cfg.Strava.RetryFactor,
		RateLimitCooldown: cfg.Strava.RateLimitCooldown.Duration,
	}

	metrics, err := service.NewSyncMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to create sync metrics: %w", err)
	}

	syncLock := service.NewSyncLock(infra.Redis(), cfg.Sync.LockTTL.Duration)
	rateLimiter := service.NewRateLimiter(infra.Redis())
	healthChecker := NewHealthChecker(infra)

	tokenService := service.NewTokenService(repos.Athlete, stravaClient, retry, metrics, infra.Logger())
	authService := service.NewAuthService(
		repos.Athlete,
		repos.Settings,
		stravaClient,
		sessions,
		cfg.Strava.RedirectURI,
		infra.Logger(),
	)
	settingsService := service.NewSettingsService(repos.Settings, infra.Logger())
	activityService := service.NewActivityService(repos.Activity, settingsService, infra.Logger())
	syncService := service.NewSyncService(
		repos.Athlete,
		repos.Activity,
		tokenService,
		stravaClient,
		retry,
		cfg.Sync.PageSize,
		cfg.Sync.BootstrapWindow.Duration,
		metrics,
		infra.Logger(),
	)

	authHandler := handler.NewAuthHandler(authService)
	activityHandler := handler.NewActivityHandler(activityService)
	settingsHandler := handler.NewSettingsHandler(settingsService)
	syncHandler := handler.NewSyncHandler(syncService, syncLock)

	router := gin.Default()
	router.Use(otelgin.Middleware("talaria"))
	router.Use(handler.LoggerMiddleware(infra.Logger()))
	router.Use(handler.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.CORS.AllowedMethods, cfg.CORS.AllowedHeaders))

	setupRoutes(router, cfg, sessions, rateLimiter, healthChecker, infra.MetricsHandler(),
		authHandler, activityHandler, settingsHandler, syncHandler)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
	}

	return &App{
		infra:  infra,
		config: cfg,
		router: router,
		server: srv,
	}, nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func setupRoutes(
	router *gin.Engine,
	cfg *config.Config,
	sessions *utils.SessionManager,
	rateLimiter *service.RateLimiter,
	healthChecker *HealthChecker,
	metricsHandler http.Handler,
	authHandler *handler.AuthHandler,
	activityHandler *handler.ActivityHandler,
	settingsHandler *handler.SettingsHandler,
	syncHandler *handler.SyncHandler,
) {
	router.GET("/metrics", observability.PrometheusHandler(metricsHandler))
	router.GET("/health", healthChecker.Handler)

	api := router.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.GET("/strava/url", authHandler.GetAuthorizeURL)
			auth.POST("/strava/callback", authHandler.Callback)
			auth.GET("/me", handler.SessionMiddleware(sessions), authHandler.GetMe)
		}

		activities := api.Group("/activities", handler.SessionMiddleware(sessions))
		{
			activities.GET("/:athleteID", activityHandler.List)
			activities.GET("/:athleteID/calendar", activityHandler.Calendar)
			activities.GET("/:athleteID/:activityID", activityHandler.Detail)
			activities.POST("/sync/:athleteID",
				handler.RateLimitMiddleware(rateLimiter, cfg.Sync.RateLimitRequests, cfg.Sync.RateLimitWindow.Duration),
				syncHandler.Sync,
			)
		}

		settings := api.Group("/settings", handler.SessionMiddleware(sessions))
		{
			settings.GET("/:athleteID", settingsHandler.Get)
			settings.PATCH("/:athleteID", settingsHandler.Update)
			settings.POST("/:athleteID/reset", settingsHandler.Reset)
			settings.POST("/:athleteID/zone-model", settingsHandler.ChangeZoneModel)
			settings.GET("/:athleteID/zones", settingsHandler.Zones)
		}
	}
}

func (a *App) Run(ctx context.Context) error {
	errChan := make(chan error, 1)

	go func() {
		a.infra.Logger().Info("Application starting",
			zap.String("host", a.config.Server.Host),
			zap.String("port", a.config.Server.Port),
		)

		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.infra.Logger().Error("Server error", zap.Error(err))
			errChan <- err
		}
	}()

	var serverErr error
	select {
	case err := <-errChan:
		a.infra.Logger().Error("Application failed to start", zap.Error(err))
		serverErr = err
	case <-ctx.Done():
		a.infra.Logger().Info("Application stopped by context")
	}

	if err := a.Shutdown(); err != nil {
		a.infra.Logger().Error("Shutdown error", zap.Error(err))
		if serverErr != nil {
			return errors.Join(serverErr, err)
		}
		return err
	}

	return serverErr
}

func (a *App) Shutdown() error {
	a.infra.Logger().Info("Application shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	errs := make(chan error, 2)

	go func() {
		errs <- a.server.Shutdown(ctx)
	}()

	go func() {
		errs <- a.infra.Shutdown(ctx)
	}()

	err := errors.Join(<-errs, <-errs)
	if err != nil {
		a.infra.Logger().Error("Shutdown failed", zap.Error(err))
		return err
	}

	a.infra.Logger().Info("Application exited successfully")
	return nil
}
