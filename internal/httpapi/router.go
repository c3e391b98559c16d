package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mmynk/timecard/internal/auth"
	"github.com/mmynk/timecard/internal/metrics"
	"github.com/mmynk/timecard/internal/middleware"
)

// RouterConfig holds everything NewRouter wires together.
type RouterConfig struct {
	Handlers    *Handlers
	JWTManager  *auth.JWTManager
	Metrics     *metrics.Metrics
	CORSOrigins []string
}

// NewRouter builds the gin engine with health, metrics and the authenticated API.
func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.RequestLogger())
	r.Use(middleware.Metrics(cfg.Metrics))

	r.GET("/healthcheck", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	h := cfg.Handlers
	api := r.Group("/api")
	api.Use(middleware.RequireAuth(cfg.JWTManager))
	{
		api.POST("/employments/:id/clock_in", h.ClockIn)
		api.POST("/employments/:id/clock_out", h.ClockOut)
		api.GET("/employments/:id/shifts", h.ListShifts)
		api.POST("/employments/:id/shifts", h.CreateShift)

		api.GET("/shifts/:id", h.GetShift)
		api.PATCH("/shifts/:id", h.UpdateShift)
		api.DELETE("/shifts/:id", h.DeleteShift)

		api.GET("/dashboard", h.Dashboard)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, ErrorResponse{Errors: []string{"route not found"}})
	})

	return r
}
