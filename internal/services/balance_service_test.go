package services

import (
	"context"
	"errors"
	"testing"

	"github.com/baharkarakas/booking-ledger/internal/models"
	"github.com/google/uuid"
)

func TestDepositAndWithdraw(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	v, err := f.wallets.Deposit(ctx, f.requester, dec("50.25"), "")
	if err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if !v.Balance.Equal(dec("50.25")) || v.PendingEarnings != nil {
		t.Fatalf("unexpected view after deposit: %+v", v)
	}

	v, err = f.wallets.Withdraw(ctx, f.requester, dec("20"), "")
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if !v.Balance.Equal(dec("30.25")) {
		t.Fatalf("unexpected balance after withdraw: %s", v.Balance)
	}

	if _, err := f.wallets.Withdraw(ctx, f.requester, dec("30.26"), ""); !errors.Is(err, models.ErrInsufficientFunds) {
		t.Fatalf("overdraft: expected ErrInsufficientFunds, got %v", err)
	}
	for _, bad := range []string{"0", "-1", "1.001", "1000000000000"} {
		if _, err := f.wallets.Deposit(ctx, f.requester, dec(bad), ""); !errors.Is(err, models.ErrInvalidAmount) {
			t.Fatalf("deposit %s: expected ErrInvalidAmount, got %v", bad, err)
		}
	}

	hist, err := f.wallets.History(ctx, f.requester.ID, 0, 0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(hist) != 2 || hist[0].Reason != models.ReasonWalletDeposit || hist[1].Reason != models.ReasonWalletWithdrawal {
		t.Fatalf("unexpected history: %+v", hist)
	}
	f.expectConsistentAccount(t, f.requester.ID)
}

func TestEscrowIsNotWithdrawable(t *testing.T) {
	f := newFixture(t)
	f.fund(t, "100")
	b := f.book(t, "100")
	f.move(t, b.ID, models.StatusAccepted, f.worker)

	v, err := f.wallets.GetAccountBalance(context.Background(), f.worker.ID)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if !v.Balance.IsZero() || v.PendingEarnings == nil || !v.PendingEarnings.Equal(dec("90")) {
		t.Fatalf("unexpected worker view: %+v", v)
	}
	if _, err := f.wallets.Withdraw(context.Background(), f.worker, dec("1"), ""); !errors.Is(err, models.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
}

func TestReferenceMakesMovementIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		v, err := f.wallets.Deposit(ctx, f.requester, dec("10"), "topup-1")
		if err != nil {
			t.Fatalf("deposit #%d: %v", i, err)
		}
		if !v.Balance.Equal(dec("10")) {
			t.Fatalf("deposit #%d: balance %s, want 10", i, v.Balance)
		}
	}
	if _, err := f.wallets.Deposit(ctx, f.requester, dec("11"), "topup-1"); !errors.Is(err, models.ErrConcurrencyConflict) {
		t.Fatalf("reused reference: expected ErrConcurrencyConflict, got %v", err)
	}
	if _, err := f.wallets.Withdraw(ctx, f.requester, dec("10"), "topup-1"); !errors.Is(err, models.ErrConcurrencyConflict) {
		t.Fatalf("reused reference: expected ErrConcurrencyConflict, got %v", err)
	}

	// references are per account
	other := models.Actor{ID: uuid.New(), Role: models.RoleRequester}
	if _, err := f.wallets.Deposit(ctx, other, dec("10"), "topup-1"); err != nil {
		t.Fatalf("other account, same reference: %v", err)
	}

	hist, _ := f.wallets.History(ctx, f.requester.ID, 0, 0)
	if len(hist) != 1 || hist[0].Reference != "topup-1" {
		t.Fatalf("unexpected history: %+v", hist)
	}
}

func TestBalanceOfUnknownAccount(t *testing.T) {
	f := newFixture(t)
	if _, err := f.wallets.GetAccountBalance(context.Background(), uuid.New()); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := f.wallets.Verify(context.Background(), uuid.New()); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestHistoryPaging(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 5; i++ {
		f.fund(t, "1")
	}
	page, err := f.wallets.History(context.Background(), f.requester.ID, 2, 3)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(page) != 2 || !page[1].BalanceAfter.Equal(dec("5")) {
		t.Fatalf("unexpected page: %+v", page)
	}
}

func (f *fixture) expectConsistentAccount(t *testing.T, id uuid.UUID) {
	t.Helper()
	rep, err := f.wallets.Verify(context.Background(), id)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !rep.Consistent || rep.Entries == 0 {
		t.Fatalf("unexpected report: %+v", rep)
	}
}
