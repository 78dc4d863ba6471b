package notification

import (
	"context"
)

type Service interface {
	// QueueNotification hands the request to background workers. It falls back to a direct insert when the queue is full.
	QueueNotification(ctx context.Context, req CreateNotificationRequest) error
	Subscribe(ctx context.Context, recipientID string) (<-chan SSEEvent, func())
	Stop()
}
