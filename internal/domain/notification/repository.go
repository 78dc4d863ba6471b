package notification

import (
	"context"
)

type Repository interface {
	Create(ctx context.Context, notification *Notification) error
	CreateBatch(ctx context.Context, notifications []*Notification) error
	// IsNotificationEnabled defaults to true when the recipient has no preference row.
	IsNotificationEnabled(ctx context.Context, recipientID string, notifType NotificationType) (bool, error)
}

// Deliverer pushes a stored notification to an external channel.
type Deliverer interface {
	Deliver(ctx context.Context, n *Notification) error
}
