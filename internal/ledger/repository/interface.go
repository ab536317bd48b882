package repository

import (
	"context"
	"errors"

	"repo-autobot/internal/model"
)

var ErrDeliveryNotFound = errors.New("delivery not found")

// DeliveryRepository records webhook deliveries so repeats can be detected.
type DeliveryRepository interface {
	// Record stores d and reports whether it was new. A delivery id seen
	// before returns false and leaves the stored row untouched.
	Record(ctx context.Context, d model.Delivery) (bool, error)
	UpdateStatus(ctx context.Context, opt UpdateStatusOptions) error
	Get(ctx context.Context, id string) (model.Delivery, error)
	ListRecent(ctx context.Context, limit int) ([]model.Delivery, error)
}

type UpdateStatusOptions struct {
	ID     string
	Status model.DeliveryStatus
	Action string
	Reason string
	Error  string
}
