package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"pethotel/internal/domain"
	"pethotel/internal/metrics"
	"pethotel/internal/redis"
	"pethotel/internal/repository"
)

// AvailabilityLedger is the only writer of shared taxi seat counts.
type AvailabilityLedger struct {
	scheduleRepo repository.ScheduleRepository
	cache        redis.ScheduleCacheInterface // Optional
	metrics      *metrics.Recorder
	logger       *slog.Logger
	now          func() time.Time
}

// LedgerOption configures an AvailabilityLedger.
type LedgerOption func(*AvailabilityLedger)

// WithScheduleCache caches route listings.
func WithScheduleCache(cache redis.ScheduleCacheInterface) LedgerOption {
	return func(l *AvailabilityLedger) { l.cache = cache }
}

// WithLedgerClock overrides the clock used to decide what is in the past.
func WithLedgerClock(now func() time.Time) LedgerOption {
	return func(l *AvailabilityLedger) { l.now = now }
}

// WithLedgerMetrics records reservation outcomes.
func WithLedgerMetrics(m *metrics.Recorder) LedgerOption {
	return func(l *AvailabilityLedger) { l.metrics = m }
}

// NewAvailabilityLedger creates a new AvailabilityLedger.
func NewAvailabilityLedger(scheduleRepo repository.ScheduleRepository, logger *slog.Logger, opts ...LedgerOption) *AvailabilityLedger {
	l := &AvailabilityLedger{
		scheduleRepo: scheduleRepo,
		logger:       logger,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// FindBookableSchedules lists the runs of a service between two cities, in
// either direction, that still have seats and have not departed.
func (l *AvailabilityLedger) FindBookableSchedules(ctx context.Context, serviceID, from, to string) ([]*domain.SharedTaxiSchedule, error) {
	routeRuns, err := l.routeSchedules(ctx, serviceID, from, to)
	if err != nil {
		return nil, err
	}

	now := l.now()
	bookable := make([]*domain.SharedTaxiSchedule, 0, len(routeRuns))
	for _, s := range routeRuns {
		if s.IsBookable(now) {
			bookable = append(bookable, s)
		}
	}

	return bookable, nil
}

// AvailableDates returns the distinct travel dates with bookable runs, ascending.
func (l *AvailabilityLedger) AvailableDates(ctx context.Context, serviceID, from, to string) ([]time.Time, error) {
	schedules, err := l.FindBookableSchedules(ctx, serviceID, from, to)
	if err != nil {
		return nil, err
	}

	var dates []time.Time
	seen := make(map[time.Time]bool)
	for _, s := range schedules {
		day := domain.StartOfDay(s.TravelDate)
		if seen[day] {
			continue
		}
		seen[day] = true
		dates = append(dates, day)
	}

	return dates, nil
}

// GetSchedule retrieves a run by ID.
func (l *AvailabilityLedger) GetSchedule(ctx context.Context, scheduleID string) (*domain.SharedTaxiSchedule, error) {
	return l.scheduleRepo.GetByID(ctx, scheduleID)
}

// ReserveSeats atomically takes seats on a run. On failure nothing changes:
// a run that is cancelled or has departed yields ErrScheduleNotBookable,
// otherwise a *CapacityError reports what is left.
func (l *AvailabilityLedger) ReserveSeats(ctx context.Context, scheduleID string, seats int) (*domain.SharedTaxiSchedule, error) {
	if seats < 1 {
		return nil, &SeatCountError{Requested: seats}
	}

	earliest := domain.StartOfDay(l.now())
	schedule, err := l.scheduleRepo.IncrementBooked(ctx, scheduleID, seats, earliest)
	if errors.Is(err, repository.ErrInsufficientSeats) {
		l.metrics.SeatReservation(seats, false)
		if schedule.Status != domain.ScheduleStatusActive || schedule.TravelDate.Before(earliest) {
			return nil, fmt.Errorf("schedule %s: %w", scheduleID, ErrScheduleNotBookable)
		}
		return nil, newCapacityError(schedule, seats)
	}
	if err != nil {
		return nil, err
	}

	l.metrics.SeatReservation(seats, true)
	l.invalidate(ctx, schedule)

	l.logger.Info("seats reserved",
		"schedule_id", scheduleID,
		"seats", seats,
		"booked", schedule.BookedCount,
		"max", schedule.MaxCapacity)

	return schedule, nil
}

// ReleaseSeats gives seats back. The count never drops below zero.
func (l *AvailabilityLedger) ReleaseSeats(ctx context.Context, scheduleID string, seats int) error {
	if seats < 1 {
		return nil
	}

	schedule, err := l.scheduleRepo.DecrementBooked(ctx, scheduleID, seats)
	if err != nil {
		return err
	}

	l.invalidate(ctx, schedule)

	l.logger.Info("seats released",
		"schedule_id", scheduleID,
		"seats", seats,
		"booked", schedule.BookedCount)

	return nil
}

// CancelSchedule takes a run off sale. Existing bookings are left untouched.
func (l *AvailabilityLedger) CancelSchedule(ctx context.Context, scheduleID string) error {
	schedule, err := l.scheduleRepo.GetByID(ctx, scheduleID)
	if err != nil {
		return err
	}

	if err := l.scheduleRepo.UpdateStatus(ctx, scheduleID, domain.ScheduleStatusCancelled); err != nil {
		return err
	}

	l.invalidate(ctx, schedule)
	l.logger.Info("schedule cancelled", "schedule_id", scheduleID)

	return nil
}

func (l *AvailabilityLedger) routeSchedules(ctx context.Context, serviceID, from, to string) ([]*domain.SharedTaxiSchedule, error) {
	if l.cache != nil {
		cached, ok, err := l.cache.GetRouteSchedules(ctx, serviceID, from, to)
		if err != nil {
			l.logger.Warn("schedule cache read failed", "service_id", serviceID, "error", err)
		} else if ok {
			return cached, nil
		}
	}

	all, err := l.scheduleRepo.ListByService(ctx, serviceID)
	if err != nil {
		return nil, err
	}

	routeRuns := make([]*domain.SharedTaxiSchedule, 0, len(all))
	for _, s := range all {
		if s.ServesRoute(from, to) {
			routeRuns = append(routeRuns, s)
		}
	}

	if l.cache != nil {
		if err := l.cache.SetRouteSchedules(ctx, serviceID, from, to, routeRuns); err != nil {
			l.logger.Warn("schedule cache write failed", "service_id", serviceID, "error", err)
		}
	}

	return routeRuns, nil
}

func (l *AvailabilityLedger) invalidate(ctx context.Context, schedule *domain.SharedTaxiSchedule) {
	if l.cache == nil || schedule == nil {
		return
	}
	if err := l.cache.InvalidateRoute(ctx, schedule.TaxiServiceID, schedule.FromCity, schedule.ToCity); err != nil {
		l.logger.Warn("schedule cache invalidation failed", "schedule_id", schedule.ID, "error", err)
	}
}
