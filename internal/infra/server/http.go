package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/elnvault/eln-core/internal/adapters/primary/http/controller"
	"github.com/elnvault/eln-core/internal/adapters/primary/http/middleware"
	"github.com/elnvault/eln-core/internal/core/service/authvalidator"
	"github.com/elnvault/eln-core/internal/core/service/configresolver"
	"github.com/elnvault/eln-core/internal/infra/config"
)

// HTTPServer represents the HTTP server instance.
type HTTPServer struct {
	engine *gin.Engine
	config *config.ServerConfig
}

// NewHTTPServer creates a new HTTP server with all routes and middleware
// configured (spec §6).
func NewHTTPServer(
	cfg *config.Config,
	resolver *configresolver.Resolver,
	providers *authvalidator.ProviderCache,
	health *controller.HealthController,
	configController *controller.ConfigController,
	sopController *controller.SOPController,
	draftController *controller.DraftController,
	fileController *controller.FileController,
	submissionController *controller.SubmissionController,
) *HTTPServer {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(gin.Logger())
	engine.Use(corsMiddleware())

	engine.GET("/health", health.Health)
	engine.GET("/ready", health.Ready)

	api := engine.Group("/api")
	api.Use(middleware.Operation())
	api.Use(middleware.Tenant(resolver, cfg.Environment))
	{
		// Pre-auth: a client needs this to know where to obtain a token in
		// the first place (spec §4.1, §6).
		api.GET("/config/runtime", configController.Runtime)

		authed := api.Group("")
		authed.Use(middleware.JWTAuth(providers))
		{
			authed.GET("/config", configController.Private)

			// Registered at the literal spec section-6 path rather than
			// nested under /sops like the rest of this controller's
			// routes, since that is the path clients are specified to call.
			authed.GET("/v1/sops/list", sopController.List)

			authed.GET("/sops/:sopId", sopController.Get)

			authed.POST("/sops/:sopId/drafts", draftController.Save)
			authed.GET("/sops/:sopId/drafts", draftController.List)
			authed.GET("/sops/:sopId/drafts/:draftId", draftController.Get)
			authed.DELETE("/sops/:sopId/drafts/:draftId", draftController.Delete)

			authed.POST("/sops/:sopId/drafts/:draftId/files", fileController.Upload)
			authed.DELETE("/sops/:sopId/drafts/:draftId/files/:tempId", fileController.Delete)

			authed.POST("/sops/:sopId/drafts/:draftId/submit", submissionController.Submit)
			authed.POST("/sops/:sopId/drafts/:draftId/submit/retry", submissionController.AttachRetry)
		}
	}

	return &HTTPServer{
		engine: engine,
		config: &cfg.Server,
	}
}

// Start starts the HTTP server.
func (s *HTTPServer) Start(ctx context.Context) error {
	addr := fmt.Sprintf(":%s", s.config.Port)

	srv := &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  s.config.ReadTimeoutDuration(),
		WriteTimeout: s.config.WriteTimeoutDuration(),
	}

	errChan := make(chan error, 1)

	go func() {
		slog.Info("starting HTTP server", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeoutDuration())
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		slog.Info("HTTP server stopped gracefully")
		return nil

	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}
}

// Engine returns the underlying Gin engine. Useful for testing.
func (s *HTTPServer) Engine() *gin.Engine {
	return s.engine
}

// corsMiddleware configures CORS for the API. X-Tenant-ID is exposed here
// because it is a request header every authenticated call carries, not a
// response header — browsers refuse to send custom headers cross-origin
// unless the preflight allow-list names them.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, "+middleware.TenantHeader)
		c.Header("Access-Control-Expose-Headers", "Content-Length")
		c.Header("Access-Control-Allow-Credentials", "true")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
