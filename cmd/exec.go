package cmd

import (
	"context"
	"log"
	"log/slog"
	"net/http"

	"evnt/config"
	"evnt/internal/flash"
	"evnt/internal/handlers"
	"evnt/internal/render"
	"evnt/internal/services"
	"evnt/internal/slug"
	"evnt/internal/store"
	"evnt/internal/store/pbstore"
	_ "evnt/migrations"
	"evnt/monitoring"
	"evnt/security"
	"evnt/utils"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/plugins/migratecmd"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

func Start() error {
	app := pocketbase.New()

	// Load configuration
	cfg := config.LoadConfig()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis backs flash messages and rate limiting; both are optional
	var redisClient *redis.Client
	flashStore := flash.Discard
	if cfg.RedisURL != "" {
		client, err := utils.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer client.Close()

		redisClient = client
		flashStore = flash.NewRedisStore(client, cfg.FlashTTL)
	} else {
		slog.Warn("REDIS_URL not set, flash messages and rate limiting are disabled")
	}

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	monitor := monitoring.NewMonitor(registry)

	limiter := security.NewRateLimiter(redisClient, cfg.WriteRateLimit, cfg.WriteRateWindow)
	limiter.OnReject = monitor.TrackRateLimited

	// Initialize services
	eventService := services.NewEventService(pbstore.New(app), cfg.RelatedLimit)

	// Initialize handlers
	deps := handlers.Deps{
		Views:   render.New(),
		Flash:   flashStore,
		Monitor: monitor,
	}
	categoryHandler := handlers.NewCategoryHandler(deps, eventService)
	eventHandler := handlers.NewEventHandler(deps, eventService)
	manageHandler := handlers.NewManageHandler(deps, eventService)
	searchHandler := handlers.NewSearchHandler(deps, eventService)
	authHandler := handlers.NewAuthHandler(deps, cfg.AuthCookieName, cfg.AuthCookieSecure)

	// Enable migrations
	migratecmd.MustRegister(app, app.RootCmd, migratecmd.Config{
		Automigrate: cfg.IsDevelopment(),
	})
	app.RootCmd.AddCommand(newSeedCategoriesCommand(app))

	app.OnServe().BindFunc(func(e *core.ServeEvent) error {
		e.Router.BindFunc(security.LoadAuthCookie(cfg.AuthCookieName))
		e.Router.BindFunc(handlers.ErrorPages(deps))

		// Browse
		e.Router.GET("/{$}", categoryHandler.Home)
		e.Router.GET("/categories", categoryHandler.List)
		e.Router.GET("/categories/{slug}", categoryHandler.Detail)
		e.Router.GET("/events", eventHandler.List)
		e.Router.GET("/events/{slug}", eventHandler.Detail)
		e.Router.POST("/events/{slug}", eventHandler.Act).
			BindFunc(security.RequireLogin).
			BindFunc(limiter.Limit("event_action"))
		e.Router.GET("/tags/{slug}", eventHandler.Tag)
		e.Router.GET("/search", searchHandler.Search)

		// Manage
		manage := e.Router.Group("/manage")
		manage.BindFunc(security.RequireLogin)
		manage.GET("", manageHandler.Dashboard)
		manage.GET("/private", manageHandler.PrivateList)
		manage.GET("/private/{slug}", manageHandler.PrivateDetail)
		manage.GET("/attending", manageHandler.AttendList)
		manage.GET("/add", manageHandler.AddForm)
		manage.POST("/add", manageHandler.Add).BindFunc(limiter.Limit("event_write"))
		manage.GET("/edit/{slug}", manageHandler.EditForm)
		manage.POST("/edit/{slug}", manageHandler.Edit).BindFunc(limiter.Limit("event_write"))
		manage.GET("/delete/{slug}", manageHandler.DeleteConfirm)
		manage.POST("/delete/{slug}", manageHandler.Delete).BindFunc(limiter.Limit("event_write"))

		// Session
		e.Router.GET("/login", authHandler.LoginForm)
		e.Router.POST("/login", authHandler.Login).BindFunc(limiter.Limit("login"))
		e.Router.POST("/logout", authHandler.Logout)

		// Health check
		e.Router.GET("/health", func(e *core.RequestEvent) error {
			if redisClient != nil {
				if err := utils.RedisHealthCheck(e.Request.Context(), redisClient); err != nil {
					return e.JSON(http.StatusServiceUnavailable, map[string]string{
						"status": "unhealthy",
						"error":  err.Error(),
					})
				}
			}
			return e.JSON(http.StatusOK, map[string]string{"status": "healthy"})
		})

		if cfg.EnableMetrics {
			e.Router.GET("/metrics", apis.WrapStdHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
		}

		log.Println("Server routes registered")

		return e.Next()
	})

	setupEventHooks(app)

	// Start server
	return app.Start()
}

// setupEventHooks keeps records written through the PocketBase API and
// dashboard consistent with the ones the site writes.
func setupEventHooks(app *pocketbase.PocketBase) {
	app.OnRecordCreate(store.CollectionEvents, store.CollectionCategories, store.CollectionTags).BindFunc(func(e *core.RecordEvent) error {
		if e.Record.GetString("slug") == "" {
			e.Record.Set("slug", slug.Make(e.Record.GetString("name")))
		}
		return e.Next()
	})

	app.OnRecordCreateRequest(store.CollectionEvents).BindFunc(func(e *core.RecordRequestEvent) error {
		// API clients create events for themselves only
		if e.Auth != nil && !e.HasSuperuserAuth() {
			e.Record.Set("owner", e.Auth.Id)
		}
		return e.Next()
	})

	app.OnRecordAfterDeleteSuccess(store.CollectionEvents).BindFunc(func(e *core.RecordEvent) error {
		slog.Info("event deleted", "eventID", e.Record.Id, "slug", e.Record.GetString("slug"))
		return e.Next()
	})
}
