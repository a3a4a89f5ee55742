package services

import (
	"context"
	"sort"
	"time"

	"github.com/baharkarakas/booking-ledger/internal/metrics"
	"github.com/baharkarakas/booking-ledger/internal/models"
	repo "github.com/baharkarakas/booking-ledger/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ledger holds the accounts locked by one atomic scope. Postings are only
// reachable through it, and it only exists inside Store.WithTx callbacks.
type ledger struct {
	tx       repo.Tx
	now      time.Time
	accounts map[uuid.UUID]*models.Account
}

type lockRequest struct {
	id   uuid.UUID
	role models.Role
}

// openLedger locks the requested accounts in ascending id order so scopes that
// share an account cannot deadlock.
func openLedger(ctx context.Context, tx repo.Tx, now time.Time, reqs ...lockRequest) (*ledger, error) {
	sort.Slice(reqs, func(i, j int) bool { return reqs[i].id.String() < reqs[j].id.String() })
	l := &ledger{tx: tx, now: now, accounts: make(map[uuid.UUID]*models.Account, len(reqs))}
	for _, r := range reqs {
		if _, ok := l.accounts[r.id]; ok {
			continue
		}
		a, err := tx.GetAccountForUpdate(ctx, r.id, r.role)
		if err != nil {
			return nil, err
		}
		l.accounts[r.id] = &a
	}
	return l, nil
}

func (l *ledger) account(id uuid.UUID) (*models.Account, error) {
	a, ok := l.accounts[id]
	if !ok {
		return nil, &models.NotFoundError{Entity: "account", ID: id.String()}
	}
	return a, nil
}

func (l *ledger) post(ctx context.Context, accountID uuid.UUID, bucket models.Bucket, dir models.Direction,
	amount decimal.Decimal, reason string, bookingRef *uuid.UUID, reference string) (decimal.Decimal, error) {
	a, err := l.account(accountID)
	if err != nil {
		return decimal.Zero, err
	}
	next := *a
	e, err := next.Post(bucket, dir, amount, reason, bookingRef, l.now)
	if err != nil {
		return decimal.Zero, err
	}
	e.Reference = reference
	if err := l.tx.AppendEntry(ctx, e); err != nil {
		return decimal.Zero, err
	}
	if err := l.tx.UpdateAccount(ctx, next); err != nil {
		return decimal.Zero, err
	}
	*a = next
	metrics.LedgerPostings.WithLabelValues(string(bucket), string(dir)).Inc()
	return e.BalanceAfter, nil
}

func (l *ledger) debit(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal, reason string, bookingRef *uuid.UUID) (decimal.Decimal, error) {
	return l.post(ctx, accountID, models.BucketBalance, models.Debit, amount, reason, bookingRef, "")
}

func (l *ledger) setAvailable(ctx context.Context, accountID uuid.UUID, v bool) error {
	a, err := l.account(accountID)
	if err != nil {
		return err
	}
	if a.Available == v {
		return nil
	}
	next := *a
	next.Available = v
	next.UpdatedAt = l.now
	if err := l.tx.UpdateAccount(ctx, next); err != nil {
		return err
	}
	*a = next
	return nil
}
