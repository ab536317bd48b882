package model

import "time"

type DeliveryStatus string

const (
	DeliveryReceived   DeliveryStatus = "received"
	DeliverySkipped    DeliveryStatus = "skipped"
	DeliveryDispatched DeliveryStatus = "dispatched"
	DeliverySucceeded  DeliveryStatus = "succeeded"
	DeliveryFailed     DeliveryStatus = "failed"
)

// Terminal reports whether no further transition is expected.
func (s DeliveryStatus) Terminal() bool {
	return s == DeliverySkipped || s == DeliverySucceeded || s == DeliveryFailed
}

// Delivery is one processed webhook delivery, keyed by X-GitHub-Delivery.
type Delivery struct {
	ID         string
	Event      EventKind
	Repo       string
	Action     string
	Reason     string
	Status     DeliveryStatus
	Error      string
	ReceivedAt time.Time
	UpdatedAt  time.Time
}
