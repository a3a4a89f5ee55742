package postgres

import (
	"context"

	"github.com/baharkarakas/booking-ledger/internal/models"
	"github.com/google/uuid"
)

const accountCols = `id, role, balance, pending_earnings, available, updated_at`

type rowScanner interface{ Scan(dest ...any) error }

func scanAccount(row rowScanner) (models.Account, error) {
	var a models.Account
	err := row.Scan(&a.ID, &a.Role, &a.Balance, &a.PendingEarnings, &a.Available, &a.UpdatedAt)
	return a, err
}

func (t *pgTx) GetAccountForUpdate(ctx context.Context, id uuid.UUID, role models.Role) (models.Account, error) {
	_, err := t.tx.Exec(ctx,
		`INSERT INTO accounts(id, role, balance, pending_earnings, available, updated_at)
		 VALUES($1, $2, 0, 0, true, now())
		 ON CONFLICT (id) DO NOTHING`,
		id, role,
	)
	if err != nil {
		return models.Account{}, err
	}
	a, err := scanAccount(t.tx.QueryRow(ctx,
		`SELECT `+accountCols+` FROM accounts WHERE id=$1 FOR UPDATE`, id))
	return a, notFound("account", id.String(), err)
}

func (t *pgTx) UpdateAccount(ctx context.Context, a models.Account) error {
	tag, err := t.tx.Exec(ctx,
		`UPDATE accounts
		    SET balance = $2,
		        pending_earnings = $3,
		        available = $4,
		        updated_at = $5
		  WHERE id = $1`,
		a.ID, a.Balance, a.PendingEarnings, a.Available, a.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return &models.NotFoundError{Entity: "account", ID: a.ID.String()}
	}
	return nil
}

func (s *Store) GetAccount(ctx context.Context, id uuid.UUID) (models.Account, error) {
	a, err := scanAccount(s.pool.QueryRow(ctx,
		`SELECT `+accountCols+` FROM accounts WHERE id=$1`, id))
	return a, notFound("account", id.String(), err)
}
