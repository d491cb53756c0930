package httpapi

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/reeferwatch/backend/internal/config"
	"github.com/reeferwatch/backend/internal/http/handlers"
	"github.com/reeferwatch/backend/internal/http/middleware"
	"github.com/reeferwatch/backend/internal/service"

	_ "github.com/reeferwatch/backend/docs"
)

func Router(cfg config.Config, store handlers.ReadStore, scheduler *service.SchedulerService, registry *prometheus.Registry, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Admin-Key", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if cfg.CORSAllowed == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = []string{cfg.CORSAllowed}
	}
	r.Use(cors.New(corsCfg))

	h := &handlers.Handler{
		Store:     store,
		Scheduler: scheduler,
		Validator: validator.New(),
		Logger:    logger,
	}

	r.GET("/healthz", h.Healthz)

	api := r.Group("/api")
	{
		api.GET("/service-requests", h.ServiceRequestsList)
		api.GET("/service-requests/:id", h.ServiceRequestDetails)
		api.GET("/technicians", h.TechniciansList)
		api.GET("/technicians/:id/schedule", h.TechnicianSchedule)
	}

	admin := api.Group("")
	admin.Use(middleware.AdminKey(cfg.AdminKey))
	{
		admin.POST("/service-requests/:id/assign", h.AssignOne)
		admin.POST("/assignments/distribute", h.Distribute)
		admin.POST("/assignments/schedule", h.BucketSchedule)
	}

	if registry != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	}
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}
