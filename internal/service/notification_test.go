package service

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pethotel/internal/config"
	"pethotel/internal/domain"
	"pethotel/internal/metrics"
	"pethotel/internal/notify"
)

func notificationConfig() config.IntegrationConfig {
	return config.IntegrationConfig{
		EmailEnabled: true,
		SMSEnabled:   true,
		MerchantName: "Pet Hotel",
	}
}

func TestNotificationService_SendConfirmation(t *testing.T) {
	publisher := &recordingPublisher{}
	svc := NewNotificationService(publisher, "notifications", notificationConfig(), nil, discardLogger())
	guest := domain.GuestInfo{Name: "Ada", Email: "ada@example.com", Phone: "5551234567"}

	err := svc.SendConfirmation(context.Background(), guest, BookingSummary{
		OrderID: "o1",
		Total:   domain.Major(450),
		Items:   []string{"Hotel room room-std"},
	})
	require.NoError(t, err)

	require.Len(t, publisher.payloads, 1)
	assert.Equal(t, "notifications", publisher.topics[0])
	assert.Equal(t, guest.OwnerKey(), publisher.keys[0])

	event, ok := publisher.payloads[0].(notify.Event)
	require.True(t, ok)
	assert.NotEmpty(t, event.ID)
	assert.Equal(t, notify.TypeBookingConfirmed, event.Type)
	assert.Equal(t, []notify.Channel{notify.ChannelEmail, notify.ChannelSMS}, event.Channels)
	assert.Equal(t, "ada@example.com", event.Email)
	assert.Equal(t, "5551234567", event.Phone)
	assert.Contains(t, event.Body, "Total paid: 450.00")
	assert.Equal(t, "o1", event.OrderID)
}

func TestNotificationService_InvoiceGoesByEmailOnly(t *testing.T) {
	publisher := &recordingPublisher{}
	svc := NewNotificationService(publisher, "notifications", notificationConfig(), nil, discardLogger())

	err := svc.SendInvoice(context.Background(), domain.UserRef{ID: "u1", Email: "u@example.com"}, InvoiceDocument{Number: "INV-1"})
	require.NoError(t, err)

	event := publisher.payloads[0].(notify.Event)
	assert.Equal(t, []notify.Channel{notify.ChannelEmail}, event.Channels)
	assert.Equal(t, "INV-1", event.InvoiceNumber)
	assert.Contains(t, event.Body, "INVOICE")
}

func TestNotificationService_SkipsWhenNoChannelEnabled(t *testing.T) {
	publisher := &recordingPublisher{}
	svc := NewNotificationService(publisher, "notifications", config.IntegrationConfig{}, nil, discardLogger())
	user := domain.UserRef{ID: "u1", Email: "u@example.com"}

	require.NoError(t, svc.SendConfirmation(context.Background(), user, BookingSummary{OrderID: "o1"}))
	require.NoError(t, svc.SendInvoice(context.Background(), user, InvoiceDocument{Number: "INV-1"}))
	assert.Empty(t, publisher.payloads)
}

func TestNotificationService_CountsPublishFailures(t *testing.T) {
	registry := prometheus.NewRegistry()
	recorder := metrics.New(registry)
	publisher := &recordingPublisher{err: errStoreDown}
	svc := NewNotificationService(publisher, "notifications", notificationConfig(), recorder, discardLogger())

	err := svc.SendCancellation(context.Background(), domain.UserRef{ID: "u1"}, &domain.Booking{ID: "b1", OrderID: "o1"})

	assert.ErrorIs(t, err, errStoreDown)
	count, err := testutil.GatherAndCount(registry, "pethotel_notification_failures_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

// blockingPublisher never returns until the context is done.
type blockingPublisher struct{}

func (blockingPublisher) Publish(ctx context.Context, _, _ string, _ interface{}) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestNotificationService_HungPublisherTimesOut(t *testing.T) {
	registry := prometheus.NewRegistry()
	cfg := notificationConfig()
	cfg.NotificationTimeout = 20 * time.Millisecond
	svc := NewNotificationService(blockingPublisher{}, "notifications", cfg, metrics.New(registry), discardLogger())

	start := time.Now()
	err := svc.SendConfirmation(context.Background(), domain.UserRef{ID: "u1", Email: "u@example.com"}, BookingSummary{OrderID: "o1"})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
	count, err := testutil.GatherAndCount(registry, "pethotel_notification_failures_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNewNotificationService_DefaultsTimeout(t *testing.T) {
	cfg := notificationConfig()
	cfg.NotificationTimeout = 0

	svc := NewNotificationService(&recordingPublisher{}, "notifications", cfg, nil, discardLogger())
	assert.Equal(t, DefaultNotificationTimeout, svc.cfg.NotificationTimeout)
}
