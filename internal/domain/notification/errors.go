package notification

import "errors"

var (
	ErrInvalidNotificationType = errors.New("invalid notification type")
	ErrMissingRecipient        = errors.New("notification recipient is required")
	ErrServiceStopped          = errors.New("notification service is stopped")
)
