package app

import (
	"log/slog"

	"pethotel/internal/config"
	"pethotel/internal/notify"
)

// NewDispatcher builds the channel senders enabled in the integration settings.
func NewDispatcher(cfg config.IntegrationConfig, logger *slog.Logger) *notify.Dispatcher {
	senders := make(map[notify.Channel]notify.Sender)

	if cfg.EmailEnabled {
		senders[notify.ChannelEmail] = notify.NewEmailSender(cfg.EmailFrom, logger)
	}
	if cfg.SMSEnabled {
		senders[notify.ChannelSMS] = notify.NewSMSSender(cfg.SMSSender, logger)
	}
	if cfg.WhatsAppEnabled {
		senders[notify.ChannelWhatsApp] = notify.NewWhatsAppSender(cfg.WhatsAppNumber, logger)
	}

	return notify.NewDispatcher(senders, logger)
}
