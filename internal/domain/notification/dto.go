package notification

import (
	"time"
)

// CreateNotificationRequest carries message IDs and template data; text is rendered in Locale.
type CreateNotificationRequest struct {
	RecipientID  string
	SenderID     *string
	Type         NotificationType
	TitleID      string
	MessageID    string
	TemplateData map[string]any
	Data         map[string]any
	Locale       string
}

func (r CreateNotificationRequest) Validate() error {
	if r.RecipientID == "" {
		return ErrMissingRecipient
	}
	if r.Type == "" {
		return ErrInvalidNotificationType
	}
	return nil
}

type NotificationResponse struct {
	ID        string           `json:"id"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Data      map[string]any   `json:"data,omitempty"`
	IsRead    bool             `json:"is_read"`
	ReadAt    *time.Time       `json:"read_at,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

// SSEEvent represents a Server-Sent Event
type SSEEvent struct {
	Event string               `json:"event"`
	Data  NotificationResponse `json:"data"`
}
