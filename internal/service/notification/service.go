package notification

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-payroll/internal/domain/notification"
	"github.com/cmlabs-hris/hris-payroll/internal/pkg/i18n"
	"github.com/cmlabs-hris/hris-payroll/internal/pkg/sse"
	"github.com/google/uuid"
)

// Config holds notification service configuration
type Config struct {
	BatchSize     int           // default: 100
	FlushInterval time.Duration // default: 5 seconds
	WorkerCount   int           // default: 2
	QueueSize     int           // default: 1000
}

type service struct {
	repo       notification.Repository
	hub        *sse.Hub
	translator *i18n.Translator
	deliverer  notification.Deliverer
	config     Config

	queue   chan *notification.Notification
	wg      sync.WaitGroup
	mu      sync.RWMutex
	stopped bool
	stopCh  chan struct{}
}

// NewNotificationService starts the background workers. deliverer may be nil.
func NewNotificationService(
	repo notification.Repository,
	hub *sse.Hub,
	translator *i18n.Translator,
	deliverer notification.Deliverer,
	cfg Config,
) notification.Service {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 5 * time.Second
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1000
	}

	s := &service{
		repo:       repo,
		hub:        hub,
		translator: translator,
		deliverer:  deliverer,
		config:     cfg,
		queue:      make(chan *notification.Notification, cfg.QueueSize),
		stopCh:     make(chan struct{}),
	}

	for i := 0; i < cfg.WorkerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	slog.Info("Notification service started",
		"workers", cfg.WorkerCount, "batch_size", cfg.BatchSize, "flush_interval", cfg.FlushInterval.String())

	return s
}

func (s *service) worker(id int) {
	defer s.wg.Done()

	batch := make([]*notification.Notification, 0, s.config.BatchSize)
	ticker := time.NewTicker(s.config.FlushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := s.repo.CreateBatch(ctx, batch); err != nil {
			slog.Error("Failed to batch insert notifications", "worker", id, "count", len(batch), "error", err)
		} else {
			for _, n := range batch {
				s.dispatch(ctx, n)
			}
		}

		batch = make([]*notification.Notification, 0, s.config.BatchSize)
	}

	for {
		select {
		case n := <-s.queue:
			batch = append(batch, n)
			if len(batch) >= s.config.BatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-s.stopCh:
			// Drain what is still queued before exiting.
			for {
				select {
				case n := <-s.queue:
					batch = append(batch, n)
					if len(batch) >= s.config.BatchSize {
						flush()
					}
				default:
					flush()
					return
				}
			}
		}
	}
}

// dispatch pushes a stored notification to open streams and the webhook.
func (s *service) dispatch(ctx context.Context, n *notification.Notification) {
	if s.hub != nil {
		s.hub.Publish(sse.Event{
			RecipientID: n.RecipientID,
			Event:       "notification",
			Data:        toResponse(n),
		})
	}
	if s.deliverer != nil {
		if err := s.deliverer.Deliver(ctx, n); err != nil {
			slog.Warn("Failed to deliver notification", "notification_id", n.ID, "recipient_id", n.RecipientID, "error", err)
		}
	}
}

func (s *service) QueueNotification(ctx context.Context, req notification.CreateNotificationRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	enabled, err := s.repo.IsNotificationEnabled(ctx, req.RecipientID, req.Type)
	if err != nil {
		return err
	}
	if !enabled {
		return nil
	}

	n := s.render(req)

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.stopped {
		return notification.ErrServiceStopped
	}

	select {
	case s.queue <- n:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return s.directInsert(ctx, n)
	}
}

// directInsert stores a notification synchronously when the queue is full.
func (s *service) directInsert(ctx context.Context, n *notification.Notification) error {
	if err := s.repo.Create(ctx, n); err != nil {
		return err
	}
	s.dispatch(ctx, n)
	return nil
}

func (s *service) render(req notification.CreateNotificationRequest) *notification.Notification {
	title, message := req.TitleID, req.MessageID
	if s.translator != nil {
		locale := req.Locale
		if locale == "" {
			locale = s.translator.DefaultLocale()
		}
		title = s.translator.Localize(locale, req.TitleID, req.TemplateData)
		message = s.translator.Localize(locale, req.MessageID, req.TemplateData)
	}

	return &notification.Notification{
		ID:          uuid.New().String(),
		RecipientID: req.RecipientID,
		SenderID:    req.SenderID,
		Type:        req.Type,
		Title:       title,
		Message:     message,
		Data:        req.Data,
		IsRead:      false,
		CreatedAt:   time.Now().UTC(),
	}
}

func toResponse(n *notification.Notification) notification.NotificationResponse {
	return notification.NotificationResponse{
		ID:        n.ID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		Data:      n.Data,
		IsRead:    n.IsRead,
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
}

// Subscribe creates an SSE subscription for a recipient
func (s *service) Subscribe(ctx context.Context, recipientID string) (<-chan notification.SSEEvent, func()) {
	ch, cleanup := s.hub.Subscribe(recipientID)

	out := make(chan notification.SSEEvent, 10)

	go func() {
		defer close(out)
		for {
			select {
			case event, ok := <-ch:
				if !ok {
					return
				}
				resp, ok := event.Data.(notification.NotificationResponse)
				if !ok {
					continue
				}
				select {
				case out <- notification.SSEEvent{Event: event.Event, Data: resp}:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, cleanup
}

// Stop flushes queued notifications and waits for the workers to exit.
func (s *service) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	slog.Info("Notification service stopped")
}
