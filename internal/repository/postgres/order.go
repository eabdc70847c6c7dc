package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"pethotel/internal/domain"
	"pethotel/internal/repository"
	"pethotel/internal/repository/record"
)

// OrderRepository is a PostgreSQL implementation of repository.OrderRepository.
type OrderRepository struct {
	db *sql.DB // nil when bound to an outer transaction
	q  Querier
}

// NewOrderRepository creates a new PostgreSQL order repository.
func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db, q: db}
}

// NewOrderRepositoryWithTx creates an order repository using a transaction.
func NewOrderRepositoryWithTx(tx *sql.Tx) *OrderRepository {
	return &OrderRepository{q: tx}
}

var _ repository.OrderRepository = (*OrderRepository)(nil)

const orderColumns = `id, checkout_id, identity, items, total_price, status, payment_method, transaction_id, invoice_number, invoice, needs_refund, failure_reason, created_at, updated_at`

const bookingColumns = `id, order_id, type, reference_id, check_in, check_out, scheduled_date, schedule_id, seat_count, total_price, status, special_requests, created_at`

// CreateWithBookings persists an order together with its bookings in one transaction.
func (r *OrderRepository) CreateWithBookings(ctx context.Context, order *domain.Order, bookings []*domain.Booking) (err error) {
	if r.db == nil {
		return r.insertOrderAndBookings(ctx, r.q, order, bookings)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = r.insertOrderAndBookings(ctx, tx, order, bookings); err != nil {
		return err
	}

	return tx.Commit()
}

// Create persists an order without bookings.
func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	return r.insertOrder(ctx, r.q, order)
}

func (r *OrderRepository) insertOrderAndBookings(ctx context.Context, q Querier, order *domain.Order, bookings []*domain.Booking) error {
	if err := r.insertOrder(ctx, q, order); err != nil {
		return err
	}

	query := `INSERT INTO bookings (` + bookingColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	for _, b := range bookings {
		_, err := q.ExecContext(ctx, query,
			b.ID,
			b.OrderID,
			b.Type,
			b.ReferenceID,
			nullTime(b.CheckIn),
			nullTime(b.CheckOut),
			nullTime(b.ScheduledDate),
			nullString(b.ScheduleID),
			b.SeatCount,
			int64(b.TotalPrice),
			b.Status,
			nullString(b.SpecialRequests),
			b.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert booking %s: %w", b.ID, err)
		}
	}

	return nil
}

func (r *OrderRepository) insertOrder(ctx context.Context, q Querier, order *domain.Order) error {
	identity, err := record.FromIdentity(order.Identity)
	if err != nil {
		return err
	}
	identityJSON, err := json.Marshal(identity)
	if err != nil {
		return err
	}

	items, err := record.FromCartItems(order.Items)
	if err != nil {
		return err
	}
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return err
	}

	var invoiceJSON []byte
	if order.Invoice != nil {
		invoice, err := record.FromInvoice(order.Invoice)
		if err != nil {
			return err
		}
		if invoiceJSON, err = json.Marshal(invoice); err != nil {
			return err
		}
	}

	query := `INSERT INTO orders (` + orderColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err = q.ExecContext(ctx, query,
		order.ID,
		order.CheckoutID,
		identityJSON,
		itemsJSON,
		int64(order.TotalPrice),
		order.Status,
		order.PaymentMethod,
		nullString(order.TransactionID),
		nullString(order.InvoiceNumber),
		invoiceJSON,
		order.NeedsRefund,
		nullString(order.FailureReason),
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order %s: %w", order.ID, err)
	}

	return nil
}

// GetByID retrieves an order by ID.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return order, nil
}

// GetBookings retrieves the bookings of an order.
func (r *OrderRepository) GetBookings(ctx context.Context, orderID string) ([]*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE order_id = $1 ORDER BY created_at, id`

	rows, err := r.q.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []*domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}

	return bookings, rows.Err()
}

// GetBooking retrieves a booking by ID.
func (r *OrderRepository) GetBooking(ctx context.Context, id string) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	b, err := scanBooking(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return b, nil
}

// UpdateBookingStatus updates the status of a booking.
func (r *OrderRepository) UpdateBookingStatus(ctx context.Context, id string, status domain.BookingStatus) error {
	result, err := r.q.ExecContext(ctx, `UPDATE bookings SET status = $1 WHERE id = $2`, status, id)
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

// ListNeedingRefund retrieves failed orders whose payment was captured.
func (r *OrderRepository) ListNeedingRefund(ctx context.Context) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE status = 'failed' AND needs_refund ORDER BY created_at`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}

	return orders, rows.Err()
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var (
		order         domain.Order
		identityJSON  []byte
		itemsJSON     []byte
		invoiceJSON   []byte
		total         int64
		transactionID sql.NullString
		invoiceNumber sql.NullString
		failureReason sql.NullString
	)

	err := row.Scan(
		&order.ID,
		&order.CheckoutID,
		&identityJSON,
		&itemsJSON,
		&total,
		&order.Status,
		&order.PaymentMethod,
		&transactionID,
		&invoiceNumber,
		&invoiceJSON,
		&order.NeedsRefund,
		&failureReason,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	var identity record.Identity
	if err := json.Unmarshal(identityJSON, &identity); err != nil {
		return nil, fmt.Errorf("decode identity of order %s: %w", order.ID, err)
	}
	if order.Identity, err = identity.ToIdentity(); err != nil {
		return nil, err
	}

	var items []record.CartItem
	if err := json.Unmarshal(itemsJSON, &items); err != nil {
		return nil, fmt.Errorf("decode items of order %s: %w", order.ID, err)
	}
	if order.Items, err = record.ToCartItems(items); err != nil {
		return nil, err
	}

	if len(invoiceJSON) > 0 {
		var invoice record.Invoice
		if err := json.Unmarshal(invoiceJSON, &invoice); err != nil {
			return nil, fmt.Errorf("decode invoice of order %s: %w", order.ID, err)
		}
		if order.Invoice, err = invoice.ToInvoice(); err != nil {
			return nil, err
		}
	}

	order.TotalPrice = domain.Money(total)
	order.TransactionID = transactionID.String
	order.InvoiceNumber = invoiceNumber.String
	order.FailureReason = failureReason.String

	return &order, nil
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var (
		b               domain.Booking
		checkIn         sql.NullTime
		checkOut        sql.NullTime
		scheduledDate   sql.NullTime
		scheduleID      sql.NullString
		total           int64
		specialRequests sql.NullString
	)

	err := row.Scan(
		&b.ID,
		&b.OrderID,
		&b.Type,
		&b.ReferenceID,
		&checkIn,
		&checkOut,
		&scheduledDate,
		&scheduleID,
		&b.SeatCount,
		&total,
		&b.Status,
		&specialRequests,
		&b.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	b.CheckIn = checkIn.Time
	b.CheckOut = checkOut.Time
	b.ScheduledDate = scheduledDate.Time
	b.ScheduleID = scheduleID.String
	b.TotalPrice = domain.Money(total)
	b.SpecialRequests = specialRequests.String

	return &b, nil
}
