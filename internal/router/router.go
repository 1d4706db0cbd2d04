package router

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/clinic-booking/internal/handler"
	"github.com/jwalitptl/clinic-booking/internal/handler/appointment"
	"github.com/jwalitptl/clinic-booking/internal/handler/communication"
	"github.com/jwalitptl/clinic-booking/internal/handler/intake"
	"github.com/jwalitptl/clinic-booking/internal/handler/patient"
	"github.com/jwalitptl/clinic-booking/internal/middleware"
)

type Router struct {
	engine         *gin.Engine
	h              *handler.Handler
	intakeH        *intake.Handler
	appointmentH   *appointment.Handler
	patientH       *patient.Handler
	communicationH *communication.Handler
	limiter        *middleware.RateLimiter
	metricsPath    string
	metrics        *routerMetrics
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	errorTotal      *prometheus.CounterVec
}

type RouterConfig struct {
	Mode             string
	RateLimitEnabled bool
	RateLimit        rate.Limit
	RateBurst        int
	MetricsPrefix    string
	// MetricsPath is where the registry is exposed; empty disables it.
	MetricsPath string
	Registerer  prometheus.Registerer
}

func NewRouter(
	h *handler.Handler,
	intakeH *intake.Handler,
	appointmentH *appointment.Handler,
	patientH *patient.Handler,
	communicationH *communication.Handler,
	config RouterConfig,
) *Router {
	if config.Mode != "" {
		gin.SetMode(config.Mode)
	}
	engine := gin.New()
	engine.SetHTMLTemplate(intake.Templates())

	r := &Router{
		engine:         engine,
		h:              h,
		intakeH:        intakeH,
		appointmentH:   appointmentH,
		patientH:       patientH,
		communicationH: communicationH,
		metricsPath:    config.MetricsPath,
		metrics:        initRouterMetrics(config.MetricsPrefix, config.Registerer),
	}
	if config.RateLimitEnabled {
		r.limiter = middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  config.RateLimit,
			Burst: config.RateBurst,
		})
	}

	engine.Use(
		middleware.RequestID(),
		middleware.Recovery(),
		middleware.Logger(),
		r.metricsMiddleware(),
		middleware.ErrorHandler(),
		middleware.SecurityHeaders(middleware.DefaultSecurityConfig()),
	)

	return r
}

func (r *Router) Setup() {
	r.setupHealthCheck(r.engine.Group(""))

	pages := r.engine.Group("")
	pages.Use(middleware.Cache(middleware.NoStoreCacheConfig()))
	r.intakeH.RegisterRoutes(pages, r.writeLimit()...)

	api := r.engine.Group("/api/v1")
	api.Use(
		func(c *gin.Context) {
			c.Header("X-API-Version", "1.0")
			c.Next()
		},
		middleware.Cache(middleware.NoStoreCacheConfig()),
		middleware.Validation(),
	)
	r.appointmentH.RegisterRoutes(api, r.writeLimit()...)
	r.patientH.RegisterRoutes(api, r.writeLimit()...)
	r.communicationH.RegisterRoutes(api)
}

func (r *Router) setupHealthCheck(rg *gin.RouterGroup) {
	health := rg.Group("/health")
	{
		health.GET("/live", r.h.LivenessCheck)
		health.GET("/ready", r.h.ReadinessCheck)
	}
	if r.metricsPath != "" {
		rg.GET(r.metricsPath, r.h.MetricsHandler())
	}
}

func (r *Router) writeLimit() []gin.HandlerFunc {
	if r.limiter == nil {
		return nil
	}
	return []gin.HandlerFunc{r.limiter.RateLimit()}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func initRouterMetrics(prefix string, reg prometheus.Registerer) *routerMetrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)
	return &routerMetrics{
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: prefix + "_request_duration_seconds",
				Help: "Duration of HTTP requests in seconds",
			},
			[]string{"method", "path", "status"},
		),
		requestTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		errorTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_errors_total",
				Help: "Total number of HTTP errors",
			},
			[]string{"method", "path", "type"},
		),
	}
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := fmt.Sprintf("%d", c.Writer.Status())
		duration := time.Since(start).Seconds()

		r.metrics.requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(duration)
		r.metrics.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()

		if c.Writer.Status() >= 500 {
			r.metrics.errorTotal.WithLabelValues(c.Request.Method, path, "server").Inc()
		} else if c.Writer.Status() >= 400 {
			r.metrics.errorTotal.WithLabelValues(c.Request.Method, path, "client").Inc()
		}
	}
}
