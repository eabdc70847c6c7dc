// Package notify delivers customer notifications over email, SMS and WhatsApp.
package notify

import "time"

// Type identifies what a notification is about.
type Type string

const (
	TypeBookingConfirmed Type = "BOOKING_CONFIRMED"
	TypeInvoiceIssued    Type = "INVOICE_ISSUED"
	TypeBookingCancelled Type = "BOOKING_CANCELLED"
)

// Channel is a delivery medium.
type Channel string

const (
	ChannelEmail    Channel = "email"
	ChannelSMS      Channel = "sms"
	ChannelWhatsApp Channel = "whatsapp"
)

// Event is one notification addressed to one customer. It is the payload
// published to the notifications topic.
type Event struct {
	ID            string    `json:"id"`
	Type          Type      `json:"type"`
	Channels      []Channel `json:"channels"`
	RecipientName string    `json:"recipient_name"`
	Email         string    `json:"email,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	Subject       string    `json:"subject"`
	Body          string    `json:"body"`
	OrderID       string    `json:"order_id,omitempty"`
	InvoiceNumber string    `json:"invoice_number,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
