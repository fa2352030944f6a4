package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/johnquangdev/transcript-intel/errors"
	"github.com/johnquangdev/transcript-intel/pkg/config"
)

// ReadinessCheck reports whether a backing dependency is reachable
type ReadinessCheck func(ctx context.Context) error

// Router holds all handlers
type Router struct {
	cfg                 *config.Config
	transcriptHandler   *Transcript
	organizationHandler *Organization
	webhookHandler      *AssemblyAIWebhook
	gatherer            prometheus.Gatherer
	ready               ReadinessCheck
	logger              *zap.Logger
}

// NewRouter creates a new router with all handlers. webhookHandler, gatherer
// and ready may be nil.
func NewRouter(
	cfg *config.Config,
	transcriptHandler *Transcript,
	organizationHandler *Organization,
	webhookHandler *AssemblyAIWebhook,
	gatherer prometheus.Gatherer,
	ready ReadinessCheck,
	logger *zap.Logger,
) *Router {
	return &Router{
		cfg:                 cfg,
		transcriptHandler:   transcriptHandler,
		organizationHandler: organizationHandler,
		webhookHandler:      webhookHandler,
		gatherer:            gatherer,
		ready:               ready,
		logger:              logger,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	e.GET("/health", rt.healthCheck)
	e.GET("/ready", rt.readinessCheck)
	if rt.gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(rt.gatherer, promhttp.HandlerOpts{})))
	}

	v1 := e.Group("/v1")
	rt.setupMeetingRoutes(v1)
	rt.setupOrganizationRoutes(v1)
	if rt.webhookHandler != nil {
		v1.POST("/webhooks/assemblyai", rt.webhookHandler.Handle)
	}
}

func (rt *Router) setupMeetingRoutes(g *echo.Group) {
	if rt.transcriptHandler == nil {
		return
	}
	meetings := g.Group("/meetings")
	meetings.POST("/:id/transcript", rt.transcriptHandler.ProcessTranscript)
	meetings.GET("/:id/transcript", rt.transcriptHandler.GetTranscript)
	meetings.POST("/:id/transcript/assemblyai", rt.transcriptHandler.ProcessAssemblyAI)
	meetings.POST("/:id/speakers/reprocess", rt.transcriptHandler.ReprocessSpeakers)
}

func (rt *Router) setupOrganizationRoutes(g *echo.Group) {
	if rt.organizationHandler == nil {
		return
	}
	orgs := g.Group("/organizations")
	orgs.PUT("/:id/name-patterns", rt.organizationHandler.ReplaceNamePatterns)
	orgs.POST("/:id/voice-profiles/merge", rt.organizationHandler.MergeVoiceProfiles)
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	env := ""
	if rt.cfg != nil {
		env = rt.cfg.Server.Environment
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"environment": env,
		"time":        time.Now().UTC().Format(time.RFC3339),
	})
}

// readinessCheck pings the database before reporting ready
func (rt *Router) readinessCheck(c echo.Context) error {
	if rt.ready != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := rt.ready(ctx); err != nil {
			return HandleError(rt.logger, c, errors.ErrDBConnectionFailed(err))
		}
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ready"})
}
