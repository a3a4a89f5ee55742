package postgres

import (
	"context"

	"github.com/baharkarakas/booking-ledger/internal/models"
	"github.com/google/uuid"
)

func (t *pgTx) AppendEntry(ctx context.Context, e models.LedgerEntry) error {
	_, err := t.tx.Exec(ctx,
		`INSERT INTO ledger_entries (
		   id, account_id, booking_id, bucket, direction, amount, reason, reference, balance_after, created_at
		 ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		e.ID, e.AccountID, e.BookingID, e.Bucket, e.Direction, e.Amount, e.Reason, e.Reference, e.BalanceAfter, e.CreatedAt,
	)
	return err
}

func (t *pgTx) FindEntryByReference(ctx context.Context, accountID uuid.UUID, reference string) (models.LedgerEntry, error) {
	var e models.LedgerEntry
	err := t.tx.QueryRow(ctx,
		`SELECT id, account_id, booking_id, bucket, direction, amount, reason, reference, balance_after, created_at
		   FROM ledger_entries
		  WHERE account_id = $1 AND reference = $2`,
		accountID, reference,
	).Scan(&e.ID, &e.AccountID, &e.BookingID, &e.Bucket, &e.Direction, &e.Amount,
		&e.Reason, &e.Reference, &e.BalanceAfter, &e.CreatedAt)
	if err != nil {
		return models.LedgerEntry{}, notFound("ledger entry", reference, err)
	}
	return e, nil
}

func (s *Store) ListEntries(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]models.LedgerEntry, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, account_id, booking_id, bucket, direction, amount, reason, reference, balance_after, created_at
		   FROM ledger_entries
		  WHERE account_id = $1
		  ORDER BY seq ASC
		  LIMIT $2 OFFSET $3`,
		accountID, limitArg(limit), offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.LedgerEntry
	for rows.Next() {
		var e models.LedgerEntry
		if err := rows.Scan(&e.ID, &e.AccountID, &e.BookingID, &e.Bucket, &e.Direction, &e.Amount,
			&e.Reason, &e.Reference, &e.BalanceAfter, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
