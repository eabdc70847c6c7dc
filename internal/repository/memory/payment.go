package memory

import (
	"context"
	"sort"
	"sync"

	"pethotel/internal/domain"
	"pethotel/internal/repository"
)

// PaymentAttemptStore is an in-memory repository.PaymentAttemptRepository.
type PaymentAttemptStore struct {
	mu       sync.RWMutex
	attempts map[string]domain.PaymentAttempt
}

// NewPaymentAttemptStore creates an empty attempt store.
func NewPaymentAttemptStore() *PaymentAttemptStore {
	return &PaymentAttemptStore{attempts: make(map[string]domain.PaymentAttempt)}
}

var _ repository.PaymentAttemptRepository = (*PaymentAttemptStore)(nil)

func (s *PaymentAttemptStore) Create(ctx context.Context, attempt *domain.PaymentAttempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.attempts[attempt.ID]; exists {
		return repository.ErrAlreadyExists
	}
	s.attempts[attempt.ID] = *attempt
	return nil
}

func (s *PaymentAttemptStore) GetByID(ctx context.Context, id string) (*domain.PaymentAttempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	attempt, ok := s.attempts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &attempt, nil
}

func (s *PaymentAttemptStore) GetByIdempotencyKey(ctx context.Context, key string) (*domain.PaymentAttempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, attempt := range s.attempts {
		if attempt.IdempotencyKey == key {
			a := attempt
			return &a, nil
		}
	}
	return nil, nil
}

func (s *PaymentAttemptStore) ListByCheckout(ctx context.Context, checkoutID string) ([]*domain.PaymentAttempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []*domain.PaymentAttempt
	for _, attempt := range s.attempts {
		if attempt.CheckoutID != checkoutID {
			continue
		}
		a := attempt
		result = append(result, &a)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].IdempotencyKey < result[j].IdempotencyKey
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (s *PaymentAttemptStore) UpdateResult(ctx context.Context, id string, status domain.PaymentStatus, transactionID, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	attempt, ok := s.attempts[id]
	if !ok {
		return repository.ErrNotFound
	}
	attempt.Status = status
	attempt.TransactionID = transactionID
	attempt.Reason = reason
	s.attempts[id] = attempt
	return nil
}
