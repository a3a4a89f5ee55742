package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/baharkarakas/booking-ledger/internal/models"
	repo "github.com/baharkarakas/booking-ledger/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BalanceService serves wallet top-ups, payouts and the read-only balance
// views. Top-ups and payouts go through the same atomic scope as bookings.
type BalanceService struct {
	store repo.Store
	log   *slog.Logger
	nowFn func() time.Time
}

func NewBalanceService(store repo.Store, log *slog.Logger) *BalanceService {
	if log == nil {
		log = slog.Default()
	}
	return &BalanceService{store: store, log: log, nowFn: func() time.Time { return time.Now().UTC() }}
}

// Deposit credits the actor's own wallet. A non-empty reference makes the call
// idempotent per account: repeating it returns the current balance without
// posting again.
func (s *BalanceService) Deposit(ctx context.Context, actor models.Actor, amount decimal.Decimal, reference string) (models.BalanceView, error) {
	return s.move(ctx, actor, models.Credit, amount, models.ReasonWalletDeposit, reference)
}

// Withdraw debits the actor's own spendable balance. Escrowed earnings are
// never withdrawable.
func (s *BalanceService) Withdraw(ctx context.Context, actor models.Actor, amount decimal.Decimal, reference string) (models.BalanceView, error) {
	return s.move(ctx, actor, models.Debit, amount, models.ReasonWalletWithdrawal, reference)
}

func (s *BalanceService) move(ctx context.Context, actor models.Actor, dir models.Direction, amount decimal.Decimal, reason, reference string) (models.BalanceView, error) {
	if err := actor.Validate(); err != nil {
		return models.BalanceView{}, err
	}
	if !amount.IsPositive() || !amount.Equal(amount.Round(2)) {
		return models.BalanceView{}, models.ErrInvalidAmount
	}
	if amount.GreaterThan(models.MaxAmount) {
		return models.BalanceView{}, models.ErrAmountTooLarge
	}
	reference = strings.TrimSpace(reference)
	var (
		view   models.BalanceView
		replay bool
	)
	err := s.store.WithTx(ctx, func(tx repo.Tx) error {
		l, err := openLedger(ctx, tx, s.nowFn(), lockRequest{actor.ID, actor.Role})
		if err != nil {
			return err
		}
		if reference != "" {
			prev, err := tx.FindEntryByReference(ctx, actor.ID, reference)
			switch {
			case err == nil:
				if prev.Reason != reason || prev.Direction != dir || !prev.Amount.Equal(amount) {
					return &models.ConcurrencyConflictError{Op: "reference " + reference + " reused with a different movement"}
				}
				replay = true
			case !errors.Is(err, models.ErrNotFound):
				return err
			}
		}
		if !replay {
			if _, err := l.post(ctx, actor.ID, models.BucketBalance, dir, amount, reason, nil, reference); err != nil {
				return err
			}
		}
		a, _ := l.account(actor.ID)
		view = a.View()
		return nil
	})
	if err != nil {
		s.log.Warn("wallet movement rejected", "account_id", actor.ID, "direction", dir, "class", errorClass(err), "err", err)
		return models.BalanceView{}, err
	}
	if replay {
		s.log.Info("wallet movement replayed", "account_id", actor.ID, "reference", reference)
		return view, nil
	}
	s.log.Info("wallet movement committed", "account_id", actor.ID, "direction", dir, "amount", amount.StringFixed(2))
	return view, nil
}

// GetAccountBalance is the dashboard read. It never opens a scope.
func (s *BalanceService) GetAccountBalance(ctx context.Context, accountID uuid.UUID) (models.BalanceView, error) {
	a, err := s.store.GetAccount(ctx, accountID)
	if err != nil {
		return models.BalanceView{}, err
	}
	return a.View(), nil
}

func (s *BalanceService) History(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]models.LedgerEntry, error) {
	if _, err := s.store.GetAccount(ctx, accountID); err != nil {
		return nil, err
	}
	return s.store.ListEntries(ctx, accountID, limit, offset)
}

type VerifyReport struct {
	AccountID               uuid.UUID       `json:"account_id"`
	Entries                 int             `json:"entries"`
	Balance                 decimal.Decimal `json:"balance"`
	ReplayedBalance         decimal.Decimal `json:"replayed_balance"`
	PendingEarnings         decimal.Decimal `json:"pending_earnings"`
	ReplayedPendingEarnings decimal.Decimal `json:"replayed_pending_earnings"`
	Consistent              bool            `json:"consistent"`
}

// Verify replays the full history of an account and compares it with the
// stored projections. It reads outside any scope, so it can race with a
// concurrent commit; a mismatch should be re-checked before acting on it.
func (s *BalanceService) Verify(ctx context.Context, accountID uuid.UUID) (VerifyReport, error) {
	a, err := s.store.GetAccount(ctx, accountID)
	if err != nil {
		return VerifyReport{}, err
	}
	entries, err := s.store.ListEntries(ctx, accountID, 0, 0)
	if err != nil {
		return VerifyReport{}, err
	}
	bal, esc := models.Replay(entries)
	r := VerifyReport{
		AccountID:               accountID,
		Entries:                 len(entries),
		Balance:                 a.Balance,
		ReplayedBalance:         bal,
		PendingEarnings:         a.PendingEarnings,
		ReplayedPendingEarnings: esc,
	}
	r.Consistent = bal.Equal(a.Balance) && esc.Equal(a.PendingEarnings)
	if !r.Consistent {
		s.log.Error("ledger drift detected", "account_id", accountID,
			"balance", a.Balance.String(), "replayed", bal.String(),
			"pending", a.PendingEarnings.String(), "replayed_pending", esc.String())
	}
	return r, nil
}
