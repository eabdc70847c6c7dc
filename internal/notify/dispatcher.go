package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Dispatcher routes an event to the sender of each of its channels.
type Dispatcher struct {
	senders map[Channel]Sender
	logger  *slog.Logger
}

// NewDispatcher creates a Dispatcher. Channels without a sender are skipped.
func NewDispatcher(senders map[Channel]Sender, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{senders: senders, logger: logger}
}

// Dispatch sends the event on every channel it names and joins the failures.
func (d *Dispatcher) Dispatch(ctx context.Context, event Event) error {
	var errs []error
	for _, ch := range event.Channels {
		sender, ok := d.senders[ch]
		if !ok {
			d.logger.Warn("no sender for channel", "channel", ch, "event_id", event.ID)
			continue
		}
		if err := sender.Send(ctx, event); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", ch, err))
		}
	}
	return errors.Join(errs...)
}

// DirectPublisher delivers events in-process instead of through a broker.
type DirectPublisher struct {
	dispatcher *Dispatcher
}

// NewDirectPublisher creates a new DirectPublisher.
func NewDirectPublisher(dispatcher *Dispatcher) *DirectPublisher {
	return &DirectPublisher{dispatcher: dispatcher}
}

// Publish dispatches the payload, which must be an Event.
func (p *DirectPublisher) Publish(ctx context.Context, _, _ string, payload interface{}) error {
	event, ok := payload.(Event)
	if !ok {
		return fmt.Errorf("unsupported notification payload %T", payload)
	}
	return p.dispatcher.Dispatch(ctx, event)
}
