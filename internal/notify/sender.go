package notify

import (
	"context"
	"errors"
	"log/slog"
)

// ErrNoAddress is returned when an event lacks the address a channel needs.
var ErrNoAddress = errors.New("recipient has no address for channel")

// Sender delivers an event over one channel.
type Sender interface {
	Send(ctx context.Context, event Event) error
}

// EmailSender writes outgoing mail to the log. Real SMTP delivery is
// handled by the mail relay that tails these records.
type EmailSender struct {
	from   string
	logger *slog.Logger
}

// NewEmailSender creates a new EmailSender.
func NewEmailSender(from string, logger *slog.Logger) *EmailSender {
	return &EmailSender{from: from, logger: logger}
}

func (s *EmailSender) Send(ctx context.Context, event Event) error {
	if event.Email == "" {
		return ErrNoAddress
	}
	s.logger.InfoContext(ctx, "email sent",
		"from", s.from,
		"to", event.Email,
		"type", event.Type,
		"subject", event.Subject)
	return nil
}

// SMSSender logs outgoing text messages.
type SMSSender struct {
	sender string
	logger *slog.Logger
}

// NewSMSSender creates a new SMSSender.
func NewSMSSender(sender string, logger *slog.Logger) *SMSSender {
	return &SMSSender{sender: sender, logger: logger}
}

func (s *SMSSender) Send(ctx context.Context, event Event) error {
	if event.Phone == "" {
		return ErrNoAddress
	}
	s.logger.InfoContext(ctx, "sms sent",
		"sender", s.sender,
		"to", event.Phone,
		"type", event.Type)
	return nil
}

// WhatsAppSender logs outgoing WhatsApp messages.
type WhatsAppSender struct {
	number string
	logger *slog.Logger
}

// NewWhatsAppSender creates a new WhatsAppSender.
func NewWhatsAppSender(number string, logger *slog.Logger) *WhatsAppSender {
	return &WhatsAppSender{number: number, logger: logger}
}

func (s *WhatsAppSender) Send(ctx context.Context, event Event) error {
	if event.Phone == "" {
		return ErrNoAddress
	}
	s.logger.InfoContext(ctx, "whatsapp message sent",
		"from", s.number,
		"to", event.Phone,
		"type", event.Type)
	return nil
}
