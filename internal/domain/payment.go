package domain

import "time"

// PaymentStatus represents the outcome of a single charge attempt.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "PENDING"
	PaymentStatusSuccess  PaymentStatus = "SUCCESS"
	PaymentStatusDeclined PaymentStatus = "DECLINED"
	PaymentStatusFailed   PaymentStatus = "FAILED"
)

// PaymentMethod represents how an order was paid.
type PaymentMethod string

const (
	PaymentMethodCard PaymentMethod = "CARD"
)

// PaymentAttempt is the audit record of one gateway charge.
// Only the last four card digits are kept.
type PaymentAttempt struct {
	ID             string
	CheckoutID     string
	Amount         Money
	Status         PaymentStatus
	TransactionID  string
	Reason         string
	CardLast4      string
	IdempotencyKey string
	CreatedAt      time.Time
}
