package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Direction string

const (
	Credit Direction = "credit"
	Debit  Direction = "debit"
)

// Bucket names which projection of an account an entry moves.
type Bucket string

const (
	BucketBalance Bucket = "balance"
	BucketEscrow  Bucket = "escrow"
)

// Entry reasons.
const (
	ReasonBookingCharge    = "booking_charge"
	ReasonBookingRefund    = "booking_refund"
	ReasonEscrowHold       = "escrow_hold"
	ReasonEscrowReversal   = "escrow_reversal"
	ReasonEscrowRelease    = "escrow_release"
	ReasonEarningRealized  = "earning_realized"
	ReasonWalletDeposit    = "wallet_deposit"
	ReasonWalletWithdrawal = "wallet_withdrawal"
)

// LedgerEntry is one append-only history row.
type LedgerEntry struct {
	ID           uuid.UUID       `json:"id"`
	AccountID    uuid.UUID       `json:"account_id"`
	BookingID    *uuid.UUID      `json:"booking_id,omitempty"`
	Bucket       Bucket          `json:"bucket"`
	Direction    Direction       `json:"direction"`
	Amount       decimal.Decimal `json:"amount"`
	Reason       string          `json:"reason"`
	Reference    string          `json:"reference,omitempty"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Signed returns the entry amount with its direction applied.
func (e LedgerEntry) Signed() decimal.Decimal {
	if e.Direction == Debit {
		return e.Amount.Neg()
	}
	return e.Amount
}

// Post moves amount in the given bucket and returns the matching entry. The
// account is left untouched on error.
func (a *Account) Post(bucket Bucket, dir Direction, amount decimal.Decimal, reason string, bookingID *uuid.UUID, now time.Time) (LedgerEntry, error) {
	if !amount.IsPositive() {
		return LedgerEntry{}, ErrInvalidAmount
	}
	if amount.GreaterThan(MaxAmount) {
		return LedgerEntry{}, ErrAmountTooLarge
	}
	cur := a.Bucket(bucket)
	next := cur.Add(amount)
	if dir == Credit && next.GreaterThan(MaxAmount) {
		return LedgerEntry{}, ErrAmountTooLarge
	}
	if dir == Debit {
		if cur.LessThan(amount) {
			return LedgerEntry{}, &InsufficientFundsError{AccountID: a.ID, Bucket: bucket, Have: cur, Need: amount}
		}
		next = cur.Sub(amount)
	}
	a.setBucket(bucket, next)
	a.UpdatedAt = now
	return LedgerEntry{
		ID:           uuid.New(),
		AccountID:    a.ID,
		BookingID:    bookingID,
		Bucket:       bucket,
		Direction:    dir,
		Amount:       amount,
		Reason:       reason,
		BalanceAfter: next,
		CreatedAt:    now,
	}, nil
}

// Replay folds history into (balance, pendingEarnings).
func Replay(entries []LedgerEntry) (decimal.Decimal, decimal.Decimal) {
	bal, esc := decimal.Zero, decimal.Zero
	for _, e := range entries {
		if e.Bucket == BucketEscrow {
			esc = esc.Add(e.Signed())
			continue
		}
		bal = bal.Add(e.Signed())
	}
	return bal, esc
}
