package kafka

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pethotel/internal/notify"
)

type captureSender struct {
	events []notify.Event
}

func (s *captureSender) Send(_ context.Context, event notify.Event) error {
	s.events = append(s.events, event)
	return nil
}

func TestDecodeEvent(t *testing.T) {
	event := notify.Event{
		ID:        "evt-1",
		Type:      notify.TypeBookingConfirmed,
		Channels:  []notify.Channel{notify.ChannelEmail},
		Email:     "ada@example.com",
		Subject:   "Booking confirmed",
		CreatedAt: time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC),
	}
	data, err := json.Marshal(event)
	require.NoError(t, err)

	decoded, err := DecodeEvent(data)
	require.NoError(t, err)
	assert.Equal(t, event, decoded)

	_, err = DecodeEvent([]byte(`{"type":"BOOKING_CONFIRMED"}`))
	assert.Error(t, err, "id is required")

	_, err = DecodeEvent([]byte(`not json`))
	assert.Error(t, err)
}

func TestNotificationHandler_SkipsBadMessages(t *testing.T) {
	sender := &captureSender{}
	dispatcher := notify.NewDispatcher(
		map[notify.Channel]notify.Sender{notify.ChannelEmail: sender},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	handler := NotificationHandler(dispatcher)

	err := handler(context.Background(), kafka.Message{Value: []byte("garbage")})
	assert.NoError(t, err)
	assert.Empty(t, sender.events)

	payload, _ := json.Marshal(notify.Event{ID: "evt-2", Channels: []notify.Channel{notify.ChannelEmail}, Email: "a@b.co"})
	err = handler(context.Background(), kafka.Message{Value: payload})
	assert.NoError(t, err)
	assert.Len(t, sender.events, 1)
}
