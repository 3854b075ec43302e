// Package router assembles the gin engine: middleware chain, todo routes and
// the operational endpoints.
package router

import (
	"net/http"
	"time"

	"todo-service/internal/config"
	"todo-service/internal/handlers"
	"todo-service/internal/middleware"
	"todo-service/internal/monitoring"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Dependencies struct {
	CORS        config.CORSConfig
	TodoHandler *handlers.TodoHandler
	Monitor     *monitoring.Monitor
	// RateLimiter is optional; nil disables rate limiting.
	RateLimiter *middleware.IPRateLimiter
	// AccessLog enables gin's request logger.
	AccessLog bool
}

func corsConfig(cfg config.CORSConfig) cors.Config {
	c := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           12 * time.Hour,
	}

	for _, origin := range cfg.AllowedOrigins {
		if origin == "*" {
			c.AllowAllOrigins = true
			return c
		}
	}
	c.AllowOrigins = cfg.AllowedOrigins
	if len(c.AllowOrigins) == 0 {
		c.AllowAllOrigins = true
	}
	return c
}

func New(deps Dependencies) *gin.Engine {
	engine := gin.New()

	engine.Use(middleware.RequestID())
	if deps.AccessLog {
		engine.Use(gin.Logger())
	}
	engine.Use(middleware.RecoveryWithLog())
	engine.Use(cors.New(corsConfig(deps.CORS)))
	if deps.Monitor != nil {
		engine.Use(deps.Monitor.Middleware())
	}

	api := engine.Group("/")
	if deps.RateLimiter != nil {
		api.Use(middleware.RateLimit(deps.RateLimiter))
	}

	h := deps.TodoHandler
	api.GET("/todos", h.ListTodos)
	api.GET("/todos/:todoId", h.GetTodo)
	api.POST("/todos", h.CreateTodo)
	api.PUT("/todos/:todoId", h.UpdateTodo)
	api.DELETE("/todos/:todoId", h.DeleteTodo)
	api.GET("/agenda", h.GetAgenda)

	if deps.Monitor != nil {
		engine.GET("/health", deps.Monitor.HealthHandler())
		engine.GET("/health/ready", deps.Monitor.ReadinessHandler())
		engine.GET("/health/live", deps.Monitor.LivenessHandler())
		engine.GET("/metrics", deps.Monitor.MetricsHandler())
	}

	return engine
}
