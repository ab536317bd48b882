package httpserver

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"repo-autobot/internal/model"
	"repo-autobot/internal/webhook"
)

func (srv HTTPServer) mapHandlers() {
	srv.registerMiddlewares()
	srv.registerSystemRoutes()
	srv.registerDomainRoutes()
}

func (srv HTTPServer) registerMiddlewares() {
	srv.gin.Use(gin.Recovery())
	srv.gin.Use(srv.requestLogger())

	// In production ClientIP must be the peer address: the webhook IP
	// allowlist and rate limiter key on it.
	ctx := context.Background()
	if srv.environment == string(model.EnvironmentProduction) {
		if err := srv.gin.SetTrustedProxies(nil); err != nil {
			srv.l.Warnf(ctx, "HTTP trusted proxies: %v", err)
		}
	}
	srv.l.Infof(ctx, "HTTP environment: %s", srv.environment)
}

// requestLogger logs one line per request through the service logger.
func (srv HTTPServer) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		ctx := c.Request.Context()
		status := c.Writer.Status()
		latency := time.Since(start).Round(time.Microsecond)
		switch {
		case status >= 500:
			srv.l.Errorf(ctx, "%s %s %d %s %v", c.Request.Method, c.Request.URL.Path, status, latency, c.Errors.ByType(gin.ErrorTypeAny))
		case status >= 400:
			srv.l.Warnf(ctx, "%s %s %d %s", c.Request.Method, c.Request.URL.Path, status, latency)
		default:
			srv.l.Debugf(ctx, "%s %s %d %s", c.Request.Method, c.Request.URL.Path, status, latency)
		}
	}
}

func (srv HTTPServer) registerSystemRoutes() {
	srv.gin.GET("/health", srv.healthCheck)
	srv.gin.GET("/ready", srv.readyCheck)
	srv.gin.GET("/live", srv.liveCheck)
}

// registerDomainRoutes registers all domain routes.
func (srv HTTPServer) registerDomainRoutes() {
	ctx := context.Background()

	if srv.webhookHandler != nil {
		webhook.RegisterRoutes(srv.gin, srv.webhookHandler)
		srv.l.Infof(ctx, "GitHub webhook route registered at POST /webhook/github")
	} else {
		srv.l.Infof(ctx, "Webhook handler not configured, skipping GitHub webhook route")
	}
}
