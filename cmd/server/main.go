package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appdatasource "github.com/resolvd/backend/internal/application/datasource"
	appresolver "github.com/resolvd/backend/internal/application/resolver"
	"github.com/resolvd/backend/internal/domain/shared"
	"github.com/resolvd/backend/internal/infrastructure/auth"
	"github.com/resolvd/backend/internal/infrastructure/cache"
	"github.com/resolvd/backend/internal/infrastructure/config"
	infradatasource "github.com/resolvd/backend/internal/infrastructure/datasource"
	"github.com/resolvd/backend/internal/infrastructure/logger"
	"github.com/resolvd/backend/internal/infrastructure/persistence"
	"github.com/resolvd/backend/internal/interfaces/http/handler"
	"github.com/resolvd/backend/internal/interfaces/http/middleware"
	"github.com/resolvd/backend/internal/interfaces/http/router"
)

const version = "1.0.0"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting resolver gateway",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", version),
	)

	// Definition store
	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close database", zap.Error(err))
		}
	}()

	// Result cache: Redis when reachable, in-memory fallback when allowed
	var cacheStore = buildCacheStore(cfg, log)
	if cacheStore != nil {
		defer func() {
			_ = cacheStore.Close()
		}()
	}

	// Datasource registry bootstrapped from DATASOURCE_<NAME> entries
	registry, err := infradatasource.BootstrapRegistry(os.Environ())
	if err != nil {
		log.Fatal("Failed to bootstrap datasource registry", zap.Error(err))
	}
	log.Info("Datasource registry bootstrapped", zap.Int("profiles", len(registry.List())))

	invoker := infradatasource.NewInvoker(
		infradatasource.NewHTTPTransport(),
		infradatasource.WithLogger(log),
	)

	// Application services
	executorOpts := []appresolver.ExecutorOption{
		appresolver.WithExecutorLogger(log),
		appresolver.WithCacheTTL(cfg.Cache.DefaultTTL),
	}
	if cacheStore != nil {
		executorOpts = append(executorOpts, appresolver.WithCache(cacheStore))
	}
	executor := appresolver.NewExecutor(registry, invoker, executorOpts...)

	definitionRepo := persistence.NewGormDefinitionRepository(db.DB)
	definitionService := appresolver.NewDefinitionService(definitionRepo, executor, log)
	datasourceService := appdatasource.NewService(registry, log)

	// Auth
	jwtService := auth.NewJWTService(cfg.JWT)
	verifier := auth.NewCredentialVerifier(cfg.Auth)

	// HTTP engine
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Invalid trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsCfg))

	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(limiter))
	}

	jwtCfg := middleware.DefaultJWTConfig(jwtService)
	jwtCfg.Logger = log
	engine.Use(middleware.JWTAuthMiddlewareWithConfig(jwtCfg))

	// Routes
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(handler.NewHealthHandler(version, db))
	r.Register(handler.NewAuthHandler(jwtService, verifier, log))
	r.Register(handler.NewResolverHandler(executor, log))
	r.Register(handler.NewDefinitionHandler(definitionService, log))
	r.Register(handler.NewDatasourceHandler(datasourceService, log))
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// buildCacheStore wires the resolver result cache per configuration. A nil
// return disables caching entirely.
func buildCacheStore(cfg *config.Config, log *zap.Logger) shared.CacheStore {
	if !cfg.Cache.Enabled {
		log.Info("Resolver cache disabled")
		return nil
	}

	factory := cache.NewStoreFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithKeyPrefix(cfg.Cache.KeyPrefix),
		cache.WithInMemoryFallback(cfg.Cache.AllowInMemoryFallback),
	)
	store, err := factory.CreateStore()
	if err != nil {
		log.Fatal("Failed to create cache store", zap.Error(err))
	}
	return store
}
