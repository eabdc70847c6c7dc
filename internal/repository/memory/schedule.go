package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"pethotel/internal/domain"
	"pethotel/internal/repository"
)

// ScheduleStore is an in-memory repository.ScheduleRepository.
// The check and the increment of IncrementBooked happen under one lock.
type ScheduleStore struct {
	mu        sync.Mutex
	schedules map[string]domain.SharedTaxiSchedule
}

// NewScheduleStore creates an empty schedule store.
func NewScheduleStore() *ScheduleStore {
	return &ScheduleStore{schedules: make(map[string]domain.SharedTaxiSchedule)}
}

var _ repository.ScheduleRepository = (*ScheduleStore)(nil)

func (s *ScheduleStore) Create(ctx context.Context, schedule *domain.SharedTaxiSchedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.schedules[schedule.ID]; exists {
		return repository.ErrAlreadyExists
	}
	s.schedules[schedule.ID] = *schedule
	return nil
}

func (s *ScheduleStore) GetByID(ctx context.Context, id string) (*domain.SharedTaxiSchedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	schedule, ok := s.schedules[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &schedule, nil
}

func (s *ScheduleStore) ListByService(ctx context.Context, serviceID string) ([]*domain.SharedTaxiSchedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []*domain.SharedTaxiSchedule
	for _, v := range s.schedules {
		if v.TaxiServiceID != serviceID {
			continue
		}
		schedule := v
		result = append(result, &schedule)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].TravelDate.Equal(result[j].TravelDate) {
			return result[i].DepartureTime < result[j].DepartureTime
		}
		return result[i].TravelDate.Before(result[j].TravelDate)
	})
	return result, nil
}

func (s *ScheduleStore) IncrementBooked(ctx context.Context, id string, seats int, earliest time.Time) (*domain.SharedTaxiSchedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	schedule, ok := s.schedules[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if schedule.Status != domain.ScheduleStatusActive ||
		schedule.TravelDate.Before(earliest) ||
		schedule.BookedCount+seats > schedule.MaxCapacity {
		return &schedule, repository.ErrInsufficientSeats
	}
	schedule.BookedCount += seats
	s.schedules[id] = schedule
	return &schedule, nil
}

func (s *ScheduleStore) DecrementBooked(ctx context.Context, id string, seats int) (*domain.SharedTaxiSchedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	schedule, ok := s.schedules[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	schedule.BookedCount -= seats
	if schedule.BookedCount < 0 {
		schedule.BookedCount = 0
	}
	s.schedules[id] = schedule
	return &schedule, nil
}

func (s *ScheduleStore) UpdateStatus(ctx context.Context, id string, status domain.ScheduleStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	schedule, ok := s.schedules[id]
	if !ok {
		return repository.ErrNotFound
	}
	schedule.Status = status
	s.schedules[id] = schedule
	return nil
}
