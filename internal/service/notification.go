package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"pethotel/internal/config"
	"pethotel/internal/domain"
	"pethotel/internal/metrics"
	"pethotel/internal/notify"
)

// DefaultNotificationTimeout bounds a publish when no timeout is configured.
const DefaultNotificationTimeout = 5 * time.Second

// Notifier tells customers about their bookings. Both calls are best-effort:
// the error is for logging only.
type Notifier interface {
	SendConfirmation(ctx context.Context, identity domain.Identity, summary BookingSummary) error
	SendInvoice(ctx context.Context, identity domain.Identity, invoice InvoiceDocument) error
}

// EventPublisher hands a notification to the delivery pipeline.
type EventPublisher interface {
	Publish(ctx context.Context, topic, key string, payload interface{}) error
}

// BookingSummary is what a confirmation message reports.
type BookingSummary struct {
	OrderID    string
	Total      domain.Money
	Items      []string
	BookingIDs []string
}

// NotificationService turns booking events into notify.Events and publishes them.
type NotificationService struct {
	publisher EventPublisher
	topic     string
	cfg       config.IntegrationConfig
	metrics   *metrics.Recorder
	logger    *slog.Logger
}

// NewNotificationService creates a new NotificationService. A publish never
// waits longer than cfg.NotificationTimeout, or DefaultNotificationTimeout when
// that is not positive.
func NewNotificationService(
	publisher EventPublisher,
	topic string,
	cfg config.IntegrationConfig,
	m *metrics.Recorder,
	logger *slog.Logger,
) *NotificationService {
	if cfg.NotificationTimeout <= 0 {
		cfg.NotificationTimeout = DefaultNotificationTimeout
	}
	return &NotificationService{
		publisher: publisher,
		topic:     topic,
		cfg:       cfg,
		metrics:   m,
		logger:    logger,
	}
}

var _ Notifier = (*NotificationService)(nil)

// SendConfirmation publishes the booking confirmation.
func (s *NotificationService) SendConfirmation(ctx context.Context, identity domain.Identity, summary BookingSummary) error {
	var body strings.Builder
	fmt.Fprintf(&body, "Hello %s,\n\nYour booking %s is confirmed.\n\n", identity.ContactName(), summary.OrderID)
	for _, item := range summary.Items {
		fmt.Fprintf(&body, "- %s\n", item)
	}
	fmt.Fprintf(&body, "\nTotal paid: %s\n", summary.Total.String())

	return s.send(ctx, notify.Event{
		Type:    notify.TypeBookingConfirmed,
		Subject: fmt.Sprintf("%s: booking %s confirmed", s.cfg.MerchantName, summary.OrderID),
		Body:    body.String(),
		OrderID: summary.OrderID,
	}, identity)
}

// SendInvoice publishes the invoice. Invoices go by email only.
func (s *NotificationService) SendInvoice(ctx context.Context, identity domain.Identity, invoice InvoiceDocument) error {
	return s.send(ctx, notify.Event{
		Type:          notify.TypeInvoiceIssued,
		Channels:      []notify.Channel{notify.ChannelEmail},
		Subject:       fmt.Sprintf("%s: invoice %s", s.cfg.MerchantName, invoice.Number),
		Body:          FormatInvoice(invoice),
		InvoiceNumber: invoice.Number,
	}, identity)
}

// SendCancellation publishes a booking cancellation notice.
func (s *NotificationService) SendCancellation(ctx context.Context, identity domain.Identity, booking *domain.Booking) error {
	return s.send(ctx, notify.Event{
		Type:    notify.TypeBookingCancelled,
		Subject: fmt.Sprintf("%s: booking cancelled", s.cfg.MerchantName),
		Body:    fmt.Sprintf("Hello %s,\n\nYour booking %s has been cancelled.\n", identity.ContactName(), booking.ID),
		OrderID: booking.OrderID,
	}, identity)
}

// channels lists the channels enabled in the integration settings.
func (s *NotificationService) channels() []notify.Channel {
	var channels []notify.Channel
	if s.cfg.EmailEnabled {
		channels = append(channels, notify.ChannelEmail)
	}
	if s.cfg.SMSEnabled {
		channels = append(channels, notify.ChannelSMS)
	}
	if s.cfg.WhatsAppEnabled {
		channels = append(channels, notify.ChannelWhatsApp)
	}
	return channels
}

func (s *NotificationService) send(ctx context.Context, event notify.Event, identity domain.Identity) error {
	event.ID = uuid.New().String()
	event.RecipientName = identity.ContactName()
	event.Email = identity.ContactEmail()
	event.Phone = identity.ContactPhone()
	event.CreatedAt = time.Now()

	if event.Channels == nil {
		event.Channels = s.channels()
	} else if !s.cfg.EmailEnabled {
		event.Channels = nil
	}

	if len(event.Channels) == 0 {
		s.logger.Debug("notification skipped, no channel enabled", "type", event.Type)
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.NotificationTimeout)
	defer cancel()

	// Keyed by recipient so one customer's messages stay ordered.
	if err := s.publisher.Publish(ctx, s.topic, identity.OwnerKey(), event); err != nil {
		s.metrics.NotificationFailed(string(event.Type))
		return fmt.Errorf("publish %s notification: %w", event.Type, err)
	}

	s.logger.Info("notification published",
		"type", event.Type,
		"event_id", event.ID,
		"channels", event.Channels)

	return nil
}
