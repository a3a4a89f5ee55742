package memory

import (
	"context"

	"github.com/baharkarakas/booking-ledger/internal/models"
	"github.com/google/uuid"
)

type memTx struct {
	s    *Store
	held map[string]chan struct{}

	bookings map[uuid.UUID]models.Booking
	accounts map[uuid.UUID]models.Account
	entries  []models.LedgerEntry
}

// lock blocks until the row lock for key is free or ctx is done.
func (t *memTx) lock(ctx context.Context, key string) error {
	if _, ok := t.held[key]; ok {
		return nil
	}
	l := t.s.lockFor(key)
	select {
	case l <- struct{}{}:
		t.held[key] = l
		return nil
	case <-ctx.Done():
		return &models.ConcurrencyConflictError{Op: "lock " + key, Err: ctx.Err()}
	}
}

func (t *memTx) release() {
	for k, l := range t.held {
		<-l
		delete(t.held, k)
	}
}

func (t *memTx) commit() {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	for id, b := range t.bookings {
		t.s.bookings[id] = b
	}
	for id, a := range t.accounts {
		t.s.accounts[id] = a
	}
	for _, e := range t.entries {
		t.s.entries[e.AccountID] = append(t.s.entries[e.AccountID], e)
	}
}

func bookingKey(id uuid.UUID) string { return "booking:" + id.String() }
func accountKey(id uuid.UUID) string { return "account:" + id.String() }

func (t *memTx) GetBookingForUpdate(ctx context.Context, id uuid.UUID) (models.Booking, error) {
	if err := t.lock(ctx, bookingKey(id)); err != nil {
		return models.Booking{}, err
	}
	if b, ok := t.bookings[id]; ok {
		return b, nil
	}
	return t.s.GetBooking(ctx, id)
}

func (t *memTx) InsertBooking(ctx context.Context, b models.Booking) error {
	if err := t.lock(ctx, bookingKey(b.ID)); err != nil {
		return err
	}
	if _, err := t.s.GetBooking(ctx, b.ID); err == nil {
		return &models.ConcurrencyConflictError{Op: "insert booking " + b.ID.String()}
	}
	t.bookings[b.ID] = b
	return nil
}

func (t *memTx) UpdateBooking(ctx context.Context, b models.Booking) error {
	if _, ok := t.held[bookingKey(b.ID)]; !ok {
		return &models.ConcurrencyConflictError{Op: "update unlocked booking " + b.ID.String()}
	}
	cur, err := t.GetBookingForUpdate(ctx, b.ID)
	if err != nil {
		return err
	}
	if cur.Version != b.Version-1 {
		return &models.ConcurrencyConflictError{Op: "update booking " + b.ID.String()}
	}
	t.bookings[b.ID] = b
	return nil
}

func (t *memTx) GetAccountForUpdate(ctx context.Context, id uuid.UUID, role models.Role) (models.Account, error) {
	if err := t.lock(ctx, accountKey(id)); err != nil {
		return models.Account{}, err
	}
	if a, ok := t.accounts[id]; ok {
		return a, nil
	}
	a, err := t.s.GetAccount(ctx, id)
	if err != nil {
		a = models.Account{ID: id, Role: role, Available: true}
		t.accounts[id] = a
	}
	return a, nil
}

func (t *memTx) UpdateAccount(_ context.Context, a models.Account) error {
	if _, ok := t.held[accountKey(a.ID)]; !ok {
		return &models.ConcurrencyConflictError{Op: "update unlocked account " + a.ID.String()}
	}
	t.accounts[a.ID] = a
	return nil
}

func (t *memTx) FindEntryByReference(_ context.Context, accountID uuid.UUID, reference string) (models.LedgerEntry, error) {
	if _, ok := t.held[accountKey(accountID)]; !ok {
		return models.LedgerEntry{}, &models.ConcurrencyConflictError{Op: "read unlocked account " + accountID.String()}
	}
	for _, e := range t.entries {
		if e.AccountID == accountID && e.Reference == reference {
			return e, nil
		}
	}
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	for _, e := range t.s.entries[accountID] {
		if e.Reference == reference {
			return e, nil
		}
	}
	return models.LedgerEntry{}, &models.NotFoundError{Entity: "ledger entry", ID: reference}
}

func (t *memTx) AppendEntry(_ context.Context, e models.LedgerEntry) error {
	if _, ok := t.held[accountKey(e.AccountID)]; !ok {
		return &models.ConcurrencyConflictError{Op: "append to unlocked account " + e.AccountID.String()}
	}
	t.entries = append(t.entries, e)
	return nil
}
