package webhook

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"repo-autobot/internal/ledger/repository"
	"repo-autobot/internal/model"
	pkgLog "repo-autobot/pkg/log"
	pkgResponse "repo-autobot/pkg/response"
)

// HandleGitHubWebhook verifies a GitHub delivery, classifies it and
// acknowledges with the classification. The workflow itself runs after the
// response is written.
func (h *Handler) HandleGitHubWebhook(c *gin.Context) {
	deliveryID := c.GetHeader(HeaderDelivery)
	ctx := pkgLog.WithDeliveryID(c.Request.Context(), deliveryID)

	ip := c.ClientIP()
	if err := h.security.ValidateIPAddress(ip); err != nil {
		h.l.Warnf(ctx, "webhook.HandleGitHubWebhook: %v", err)
		pkgResponse.Forbidden(c)
		return
	}
	if err := h.security.CheckRateLimit(ip); err != nil {
		h.l.Warnf(ctx, "webhook.HandleGitHubWebhook: %v", err)
		pkgResponse.TooManyRequests(c)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxPayloadBytes))
	if err != nil {
		h.l.Errorf(ctx, "webhook.HandleGitHubWebhook: read body: %v", err)
		pkgResponse.Error(c, err)
		return
	}

	if err := h.security.ValidateGitHubSignature(body, c.GetHeader(HeaderSignature)); err != nil {
		h.l.Errorf(ctx, "webhook.HandleGitHubWebhook: signature verification failed: %v", err)
		pkgResponse.Unauthorized(c)
		return
	}

	header := c.GetHeader(HeaderEvent)
	if header == "ping" {
		pkgResponse.OK(c, Result{Action: actionNoOp, Reason: ReasonPing, DeliveryID: deliveryID})
		return
	}

	event := model.WebhookEvent{
		Kind:       model.EventKindFromHeader(header),
		Header:     header,
		DeliveryID: deliveryID,
		Payload:    body,
		ReceivedAt: h.now(),
	}

	if !h.recordDelivery(ctx, event) {
		h.l.Infof(ctx, "webhook.HandleGitHubWebhook: duplicate delivery %s", deliveryID)
		pkgResponse.OK(c, Result{Action: actionNoOp, Reason: ReasonDuplicateDelivery, DeliveryID: deliveryID})
		return
	}

	action := h.classifier.Classify(ctx, event)
	if action.IsNoOp() {
		h.l.Infof(ctx, "webhook.HandleGitHubWebhook: %s ignored: %s", header, action.Reason)
		h.updateStatus(ctx, repository.UpdateStatusOptions{
			ID:     deliveryID,
			Status: model.DeliverySkipped,
			Action: string(action.Kind),
			Reason: action.Reason,
		})
		pkgResponse.OK(c, Result{Action: string(action.Kind), Reason: action.Reason, DeliveryID: deliveryID})
		return
	}

	workflow, _, err := h.dispatcher.Dispatch(ctx, deliveryID, action)
	if err != nil {
		h.l.Errorf(ctx, "webhook.HandleGitHubWebhook: dispatch %s: %v", action.Kind, err)
		h.updateStatus(ctx, repository.UpdateStatusOptions{
			ID:     deliveryID,
			Status: model.DeliveryFailed,
			Action: string(action.Kind),
			Error:  err.Error(),
		})
		pkgResponse.ServiceUnavailable(c, err)
		return
	}

	pkgResponse.OK(c, Result{
		Action:     string(action.Kind),
		Workflow:   string(workflow),
		DeliveryID: deliveryID,
	})
}

// recordDelivery stores the delivery and reports whether it is new or a
// retry of a failed attempt. Ledger failures let the delivery through.
func (h *Handler) recordDelivery(ctx context.Context, event model.WebhookEvent) bool {
	if h.deliveries == nil || event.DeliveryID == "" {
		return true
	}
	isNew, err := h.deliveries.Record(ctx, model.Delivery{
		ID:         event.DeliveryID,
		Event:      event.Kind,
		Repo:       repositoryName(event.Payload),
		Status:     model.DeliveryReceived,
		ReceivedAt: event.ReceivedAt,
		UpdatedAt:  event.ReceivedAt,
	})
	if err != nil {
		h.l.Errorf(ctx, "webhook.recordDelivery: %v", err)
		return true
	}
	return isNew
}

func (h *Handler) updateStatus(ctx context.Context, opt repository.UpdateStatusOptions) {
	if h.deliveries == nil || opt.ID == "" {
		return
	}
	if err := h.deliveries.UpdateStatus(ctx, opt); err != nil && !errors.Is(err, repository.ErrDeliveryNotFound) {
		h.l.Errorf(ctx, "webhook.updateStatus: %v", err)
	}
}
