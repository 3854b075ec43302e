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

	"todo-service/internal/cache"
	"todo-service/internal/config"
	"todo-service/internal/database"
	"todo-service/internal/handlers"
	"todo-service/internal/middleware"
	"todo-service/internal/monitoring"
	"todo-service/internal/repositories"
	"todo-service/internal/router"
	"todo-service/internal/services"

	"github.com/gin-gonic/gin"
)

type application struct {
	config  *config.Config
	pool    *database.DatabasePool
	cache   *cache.MultiLevelCache
	limiter *middleware.IPRateLimiter
	engine  *gin.Engine
}

// newApplication opens and migrates the database and wires every layer. The
// caller owns the returned application and must call close.
func newApplication(cfg *config.Config) (*application, error) {
	pool, err := database.NewDatabasePool(&database.PoolConfig{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.GetDatabaseDSN(),
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
		LogLevel:        database.ParseLogLevel(cfg.Database.LogLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := pool.Migrate(); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	app := &application{config: cfg, pool: pool}

	monitor := monitoring.NewMonitor(5 * time.Second)
	monitor.RegisterCheck("database", true, pool.Ping)
	monitor.RegisterStats("database", pool.Stats)

	var todoService services.TodoService = services.NewTodoService(repositories.NewTodoRepository(pool.DB))

	if cfg.Cache.Enabled {
		redisCache := cache.NewRedisCache(&cache.RedisConfig{
			Addr:         cfg.GetRedisAddr(),
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			MaxRetries:   cfg.Redis.MaxRetries,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
			OpTimeout:    cfg.Redis.ReadTimeout,
		})
		app.cache = cache.NewMultiLevelCache(redisCache)

		if err := app.cache.Health(context.Background()); err != nil {
			log.Printf("Redis at %s is not reachable, serving from the local cache level: %v", cfg.GetRedisAddr(), err)
		}

		cachedService := services.NewCachedTodoService(todoService, app.cache, cfg.Cache.TodoTTL, cfg.Cache.ListTTL)
		todoService = cachedService
		monitor.RegisterCheck("cache", false, app.cache.Health)
		monitor.RegisterStats("cache", cachedService.GetCacheStats)
	}

	if cfg.RateLimit.Enabled {
		app.limiter = middleware.NewIPRateLimiter(middleware.RateLimitConfig{
			RequestsPerMinute: cfg.RateLimit.RequestsPerMin,
			Burst:             cfg.RateLimit.BurstSize,
			CleanupInterval:   cfg.RateLimit.CleanupInterval,
		})
	}

	app.engine = router.New(router.Dependencies{
		CORS:        cfg.CORS,
		TodoHandler: handlers.NewTodoHandler(todoService),
		Monitor:     monitor,
		RateLimiter: app.limiter,
		AccessLog:   gin.Mode() != gin.TestMode,
	})

	return app, nil
}

func (a *application) close() {
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			log.Printf("Error closing cache: %v", err)
		}
	}
	if err := a.pool.Close(); err != nil {
		log.Printf("Error closing database: %v", err)
	}
}

func (a *application) run(ctx context.Context) error {
	if a.limiter != nil {
		go a.limiter.Run(ctx)
	}
	if a.cache != nil {
		go a.cache.RunJanitor(ctx, time.Minute)
	}

	server := &http.Server{
		Addr:         a.config.GetServerAddr(),
		Handler:      a.engine,
		ReadTimeout:  a.config.Server.ReadTimeout,
		WriteTimeout: a.config.Server.WriteTimeout,
		IdleTimeout:  a.config.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server Listening at http://localhost:%s", a.config.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Println("Server exited")
	return nil
}

func main() {
	if err := config.LoadENV(); err != nil {
		log.Fatalf("Failed to load environment: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	app, err := newApplication(cfg)
	if err != nil {
		log.Fatalf("DB Error: %v", err)
	}
	defer app.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.run(ctx); err != nil {
		log.Printf("Server error: %v", err)
		app.close()
		os.Exit(1)
	}
}
