package notification

import (
	"context"

	"github.com/cmlabs-hris/hris-payroll/internal/domain/notification"
	"github.com/cmlabs-hris/hris-payroll/internal/pkg/webhook"
)

// WebhookDeliverer forwards notifications to the configured HTTP function.
type WebhookDeliverer struct {
	client *webhook.Client
}

// NewWebhookDeliverer returns nil when the client has no URL, so the service skips delivery.
func NewWebhookDeliverer(client *webhook.Client) notification.Deliverer {
	if !client.Enabled() {
		return nil
	}
	return &WebhookDeliverer{client: client}
}

func (d *WebhookDeliverer) Deliver(ctx context.Context, n *notification.Notification) error {
	return d.client.Send(ctx, webhook.Payload{
		ID:          n.ID,
		Type:        string(n.Type),
		RecipientID: n.RecipientID,
		Title:       n.Title,
		Message:     n.Message,
		Data:        n.Data,
		CreatedAt:   n.CreatedAt,
	})
}
