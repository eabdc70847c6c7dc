package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"pethotel/internal/domain"
	"pethotel/internal/repository"
)

// ScheduleRepository is a PostgreSQL implementation of repository.ScheduleRepository.
type ScheduleRepository struct {
	q Querier
}

// NewScheduleRepository creates a new PostgreSQL schedule repository.
func NewScheduleRepository(db *sql.DB) *ScheduleRepository {
	return &ScheduleRepository{q: db}
}

// NewScheduleRepositoryWithTx creates a schedule repository using a transaction.
func NewScheduleRepositoryWithTx(tx *sql.Tx) *ScheduleRepository {
	return &ScheduleRepository{q: tx}
}

var _ repository.ScheduleRepository = (*ScheduleRepository)(nil)

const scheduleColumns = `id, taxi_service_id, from_city, to_city, travel_date, departure_time, price_per_seat, max_capacity, booked_count, status`

// Create persists a new schedule.
func (r *ScheduleRepository) Create(ctx context.Context, s *domain.SharedTaxiSchedule) error {
	query := `
		INSERT INTO shared_taxi_schedules (` + scheduleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO NOTHING
	`

	result, err := r.q.ExecContext(ctx, query,
		s.ID,
		s.TaxiServiceID,
		s.FromCity,
		s.ToCity,
		s.TravelDate,
		s.DepartureTime,
		int64(s.PricePerSeat),
		s.MaxCapacity,
		s.BookedCount,
		s.Status,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return repository.ErrAlreadyExists
	}

	return nil
}

// GetByID retrieves a schedule by ID.
func (r *ScheduleRepository) GetByID(ctx context.Context, id string) (*domain.SharedTaxiSchedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM shared_taxi_schedules WHERE id = $1`

	schedule, err := scanSchedule(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return schedule, nil
}

// ListByService retrieves all schedules of a taxi service.
func (r *ScheduleRepository) ListByService(ctx context.Context, serviceID string) ([]*domain.SharedTaxiSchedule, error) {
	query := `
		SELECT ` + scheduleColumns + `
		FROM shared_taxi_schedules
		WHERE taxi_service_id = $1
		ORDER BY travel_date, departure_time
	`

	rows, err := r.q.QueryContext(ctx, query, serviceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var schedules []*domain.SharedTaxiSchedule
	for rows.Next() {
		schedule, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, schedule)
	}

	return schedules, rows.Err()
}

// IncrementBooked adds seats in a single conditional UPDATE so the capacity
// check and the write cannot interleave with another booking.
func (r *ScheduleRepository) IncrementBooked(ctx context.Context, id string, seats int, earliest time.Time) (*domain.SharedTaxiSchedule, error) {
	query := `
		UPDATE shared_taxi_schedules
		SET booked_count = booked_count + $2
		WHERE id = $1 AND status = 'active' AND travel_date >= $3 AND booked_count + $2 <= max_capacity
		RETURNING ` + scheduleColumns

	schedule, err := scanSchedule(r.q.QueryRowContext(ctx, query, id, seats, earliest))
	if err == nil {
		return schedule, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	// Either the schedule does not exist or the condition failed.
	current, getErr := r.GetByID(ctx, id)
	if getErr != nil {
		return nil, getErr
	}

	return current, repository.ErrInsufficientSeats
}

// DecrementBooked subtracts seats, never going below zero.
func (r *ScheduleRepository) DecrementBooked(ctx context.Context, id string, seats int) (*domain.SharedTaxiSchedule, error) {
	query := `
		UPDATE shared_taxi_schedules
		SET booked_count = GREATEST(booked_count - $2, 0)
		WHERE id = $1
		RETURNING ` + scheduleColumns

	schedule, err := scanSchedule(r.q.QueryRowContext(ctx, query, id, seats))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return schedule, nil
}

// UpdateStatus updates the status of a schedule.
func (r *ScheduleRepository) UpdateStatus(ctx context.Context, id string, status domain.ScheduleStatus) error {
	query := `UPDATE shared_taxi_schedules SET status = $1 WHERE id = $2`

	result, err := r.q.ExecContext(ctx, query, status, id)
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

func scanSchedule(row rowScanner) (*domain.SharedTaxiSchedule, error) {
	var (
		s     domain.SharedTaxiSchedule
		price int64
	)

	err := row.Scan(
		&s.ID,
		&s.TaxiServiceID,
		&s.FromCity,
		&s.ToCity,
		&s.TravelDate,
		&s.DepartureTime,
		&price,
		&s.MaxCapacity,
		&s.BookedCount,
		&s.Status,
	)
	if err != nil {
		return nil, err
	}

	s.PricePerSeat = domain.Money(price)
	s.TravelDate = domain.StartOfDay(s.TravelDate)

	return &s, nil
}
