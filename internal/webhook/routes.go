package webhook

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the GitHub webhook endpoint on r.
func RegisterRoutes(r gin.IRouter, h *Handler) {
	r.POST("/webhook/github", h.HandleGitHubWebhook)
}
