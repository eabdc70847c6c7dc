package domain

import "time"

// ScheduleStatus represents the state of a shared taxi run.
type ScheduleStatus string

const (
	ScheduleStatusActive    ScheduleStatus = "active"
	ScheduleStatusCancelled ScheduleStatus = "cancelled"
)

// SharedTaxiSchedule is a scheduled shared taxi run with finite seats.
// Invariant: 0 <= BookedCount <= MaxCapacity.
type SharedTaxiSchedule struct {
	ID            string
	TaxiServiceID string
	FromCity      string
	ToCity        string
	TravelDate    time.Time // Calendar date, UTC midnight
	DepartureTime string    // "HH:MM"
	PricePerSeat  Money
	MaxCapacity   int
	BookedCount   int
	Status        ScheduleStatus
}

// RemainingSeats returns the number of seats still available.
func (s *SharedTaxiSchedule) RemainingSeats() int {
	remaining := s.MaxCapacity - s.BookedCount
	if remaining < 0 {
		return 0
	}
	return remaining
}

// IsBookable reports whether seats can still be sold on this run as of now.
func (s *SharedTaxiSchedule) IsBookable(now time.Time) bool {
	return s.Status == ScheduleStatusActive &&
		s.BookedCount < s.MaxCapacity &&
		!s.TravelDate.Before(StartOfDay(now))
}

// ServesRoute reports whether the run connects the two cities in either direction.
func (s *SharedTaxiSchedule) ServesRoute(from, to string) bool {
	x, y := NormalizeCity(from), NormalizeCity(to)
	a, b := NormalizeCity(s.FromCity), NormalizeCity(s.ToCity)
	return (a == x && b == y) || (a == y && b == x)
}

// StartOfDay truncates t to midnight UTC of its calendar day.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
