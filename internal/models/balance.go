package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleRequester Role = "requester"
	RoleWorker    Role = "worker"
)

func (r Role) Valid() bool { return r == RoleRequester || r == RoleWorker }

// Account is a wallet. PendingEarnings is the worker escrow bucket and stays
// zero for requesters.
type Account struct {
	ID              uuid.UUID       `json:"id"`
	Role            Role            `json:"role"`
	Balance         decimal.Decimal `json:"balance"`
	PendingEarnings decimal.Decimal `json:"pending_earnings"`
	Available       bool            `json:"available"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// BalanceView is the read-only dashboard projection of an account.
type BalanceView struct {
	AccountID       uuid.UUID        `json:"account_id"`
	Role            Role             `json:"role"`
	Balance         decimal.Decimal  `json:"balance"`
	PendingEarnings *decimal.Decimal `json:"pending_earnings,omitempty"`
}

func (a Account) View() BalanceView {
	v := BalanceView{AccountID: a.ID, Role: a.Role, Balance: a.Balance}
	if a.Role == RoleWorker {
		p := a.PendingEarnings
		v.PendingEarnings = &p
	}
	return v
}

// Bucket returns the current value of the given bucket.
func (a Account) Bucket(b Bucket) decimal.Decimal {
	if b == BucketEscrow {
		return a.PendingEarnings
	}
	return a.Balance
}

func (a *Account) setBucket(b Bucket, v decimal.Decimal) {
	if b == BucketEscrow {
		a.PendingEarnings = v
		return
	}
	a.Balance = v
}
