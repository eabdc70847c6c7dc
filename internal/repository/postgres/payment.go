package postgres

import (
	"context"
	"database/sql"
	"errors"

	"pethotel/internal/domain"
	"pethotel/internal/repository"
)

// PaymentAttemptRepository is a PostgreSQL implementation of repository.PaymentAttemptRepository.
type PaymentAttemptRepository struct {
	q Querier
}

// NewPaymentAttemptRepository creates a new PostgreSQL payment attempt repository.
func NewPaymentAttemptRepository(db *sql.DB) *PaymentAttemptRepository {
	return &PaymentAttemptRepository{q: db}
}

// NewPaymentAttemptRepositoryWithTx creates a payment attempt repository using a transaction.
func NewPaymentAttemptRepositoryWithTx(tx *sql.Tx) *PaymentAttemptRepository {
	return &PaymentAttemptRepository{q: tx}
}

var _ repository.PaymentAttemptRepository = (*PaymentAttemptRepository)(nil)

const paymentAttemptColumns = `id, checkout_id, amount, status, transaction_id, reason, card_last4, idempotency_key, created_at`

// Create persists a new attempt.
func (r *PaymentAttemptRepository) Create(ctx context.Context, attempt *domain.PaymentAttempt) error {
	query := `
		INSERT INTO payment_attempts (` + paymentAttemptColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.q.ExecContext(ctx, query,
		attempt.ID,
		attempt.CheckoutID,
		int64(attempt.Amount),
		attempt.Status,
		nullString(attempt.TransactionID),
		nullString(attempt.Reason),
		nullString(attempt.CardLast4),
		attempt.IdempotencyKey,
		attempt.CreatedAt,
	)

	return err
}

// GetByID retrieves an attempt by ID.
func (r *PaymentAttemptRepository) GetByID(ctx context.Context, id string) (*domain.PaymentAttempt, error) {
	query := `SELECT ` + paymentAttemptColumns + ` FROM payment_attempts WHERE id = $1`

	attempt, err := scanPaymentAttempt(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return attempt, nil
}

// GetByIdempotencyKey retrieves an attempt by its idempotency key.
// Returns nil if no attempt exists with the given key.
func (r *PaymentAttemptRepository) GetByIdempotencyKey(ctx context.Context, key string) (*domain.PaymentAttempt, error) {
	query := `SELECT ` + paymentAttemptColumns + ` FROM payment_attempts WHERE idempotency_key = $1`

	attempt, err := scanPaymentAttempt(r.q.QueryRowContext(ctx, query, key))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return attempt, nil
}

// ListByCheckout returns all attempts of a checkout, oldest first.
func (r *PaymentAttemptRepository) ListByCheckout(ctx context.Context, checkoutID string) ([]*domain.PaymentAttempt, error) {
	query := `SELECT ` + paymentAttemptColumns + ` FROM payment_attempts WHERE checkout_id = $1 ORDER BY created_at, idempotency_key`

	rows, err := r.q.QueryContext(ctx, query, checkoutID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attempts []*domain.PaymentAttempt
	for rows.Next() {
		attempt, err := scanPaymentAttempt(rows)
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, attempt)
	}

	return attempts, rows.Err()
}

// UpdateResult records the outcome of an attempt.
func (r *PaymentAttemptRepository) UpdateResult(ctx context.Context, id string, status domain.PaymentStatus, transactionID, reason string) error {
	query := `UPDATE payment_attempts SET status = $1, transaction_id = $2, reason = $3 WHERE id = $4`

	result, err := r.q.ExecContext(ctx, query, status, nullString(transactionID), nullString(reason), id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPaymentAttempt(row rowScanner) (*domain.PaymentAttempt, error) {
	var (
		attempt       domain.PaymentAttempt
		amount        int64
		transactionID sql.NullString
		reason        sql.NullString
		cardLast4     sql.NullString
	)

	err := row.Scan(
		&attempt.ID,
		&attempt.CheckoutID,
		&amount,
		&attempt.Status,
		&transactionID,
		&reason,
		&cardLast4,
		&attempt.IdempotencyKey,
		&attempt.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	attempt.Amount = domain.Money(amount)
	attempt.TransactionID = transactionID.String
	attempt.Reason = reason.String
	attempt.CardLast4 = cardLast4.String

	return &attempt, nil
}
