package webhook

import (
	"context"
	"time"

	"repo-autobot/internal/classifier"
	"repo-autobot/internal/ledger/repository"
	"repo-autobot/internal/model"
	pkgLog "repo-autobot/pkg/log"
)

// Dispatcher starts the workflow for a classified action.
type Dispatcher interface {
	Dispatch(ctx context.Context, deliveryID string, action classifier.Action) (model.WorkflowKind, bool, error)
}

// Deliveries is the ledger surface used to drop repeated deliveries.
type Deliveries interface {
	Record(ctx context.Context, d model.Delivery) (bool, error)
	UpdateStatus(ctx context.Context, opt repository.UpdateStatusOptions) error
}

type Handler struct {
	classifier classifier.Classifier
	dispatcher Dispatcher
	deliveries Deliveries
	security   *SecurityValidator
	now        func() time.Time
	l          pkgLog.Logger
}

// NewHandler builds the GitHub webhook handler. deliveries may be nil, in
// which case repeated deliveries are not detected.
func NewHandler(
	cls classifier.Classifier,
	dispatcher Dispatcher,
	deliveries Deliveries,
	securityConfig SecurityConfig,
	l pkgLog.Logger,
) *Handler {
	return &Handler{
		classifier: cls,
		dispatcher: dispatcher,
		deliveries: deliveries,
		security:   NewSecurityValidator(securityConfig),
		now:        time.Now,
		l:          l,
	}
}
