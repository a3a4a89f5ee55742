// Package memory is an in-process repository.Store. Scopes lock the rows they
// touch (bookings and accounts) until commit or rollback, mirroring SELECT ...
// FOR UPDATE, and buffer their writes so a failed scope leaves nothing behind.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/baharkarakas/booking-ledger/internal/models"
	repo "github.com/baharkarakas/booking-ledger/internal/repository"
	"github.com/google/uuid"
)

type Store struct {
	locksMu sync.Mutex
	locks   map[string]chan struct{}

	mu       sync.RWMutex
	bookings map[uuid.UUID]models.Booking
	accounts map[uuid.UUID]models.Account
	entries  map[uuid.UUID][]models.LedgerEntry
}

var _ repo.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{
		locks:    make(map[string]chan struct{}),
		bookings: make(map[uuid.UUID]models.Booking),
		accounts: make(map[uuid.UUID]models.Account),
		entries:  make(map[uuid.UUID][]models.LedgerEntry),
	}
}

func (s *Store) lockFor(key string) chan struct{} {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	l, ok := s.locks[key]
	if !ok {
		l = make(chan struct{}, 1)
		s.locks[key] = l
	}
	return l
}

func (s *Store) WithTx(ctx context.Context, fn func(repo.Tx) error) error {
	tx := &memTx{
		s:        s,
		held:     make(map[string]chan struct{}),
		bookings: make(map[uuid.UUID]models.Booking),
		accounts: make(map[uuid.UUID]models.Account),
	}
	defer tx.release()

	if err := fn(tx); err != nil {
		return err
	}
	tx.commit()
	return nil
}

func (s *Store) GetBooking(_ context.Context, id uuid.UUID) (models.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bookings[id]
	if !ok {
		return models.Booking{}, &models.NotFoundError{Entity: "booking", ID: id.String()}
	}
	return b, nil
}

func (s *Store) ListBookingsByAccount(_ context.Context, accountID uuid.UUID, limit, offset int) ([]models.Booking, error) {
	s.mu.RLock()
	var out []models.Booking
	for _, b := range s.bookings {
		if b.Party(accountID) {
			out = append(out, b)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return page(out, limit, offset), nil
}

func (s *Store) GetAccount(_ context.Context, id uuid.UUID) (models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[id]
	if !ok {
		return models.Account{}, &models.NotFoundError{Entity: "account", ID: id.String()}
	}
	return a, nil
}

func (s *Store) ListEntries(_ context.Context, accountID uuid.UUID, limit, offset int) ([]models.LedgerEntry, error) {
	s.mu.RLock()
	all := s.entries[accountID]
	out := make([]models.LedgerEntry, len(all))
	copy(out, all)
	s.mu.RUnlock()
	return page(out, limit, offset), nil
}

func page[T any](in []T, limit, offset int) []T {
	if offset >= len(in) {
		return nil
	}
	in = in[offset:]
	if limit > 0 && limit < len(in) {
		in = in[:limit]
	}
	return in
}
