package postgres

import (
	"context"

	"github.com/baharkarakas/booking-ledger/internal/models"
	"github.com/google/uuid"
)

const bookingCols = `id, requester_id, worker_id, status, service_description, scheduled_at,
	total_price, platform_fee, worker_earning, start_time, end_time, actual_duration,
	cancellation_reason, rejection_reason, version, created_at, updated_at`

func scanBooking(row rowScanner) (models.Booking, error) {
	var b models.Booking
	err := row.Scan(&b.ID, &b.RequesterID, &b.WorkerID, &b.Status, &b.ServiceDescription, &b.ScheduledAt,
		&b.TotalPrice, &b.PlatformFee, &b.WorkerEarning, &b.StartTime, &b.EndTime, &b.ActualDuration,
		&b.CancellationReason, &b.RejectionReason, &b.Version, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

func (t *pgTx) GetBookingForUpdate(ctx context.Context, id uuid.UUID) (models.Booking, error) {
	b, err := scanBooking(t.tx.QueryRow(ctx,
		`SELECT `+bookingCols+` FROM bookings WHERE id=$1 FOR UPDATE`, id))
	return b, notFound("booking", id.String(), err)
}

func (t *pgTx) InsertBooking(ctx context.Context, b models.Booking) error {
	_, err := t.tx.Exec(ctx,
		`INSERT INTO bookings (`+bookingCols+`)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`,
		b.ID, b.RequesterID, b.WorkerID, b.Status, b.ServiceDescription, b.ScheduledAt,
		b.TotalPrice, b.PlatformFee, b.WorkerEarning, b.StartTime, b.EndTime, b.ActualDuration,
		b.CancellationReason, b.RejectionReason, b.Version, b.CreatedAt, b.UpdatedAt,
	)
	return err
}

// UpdateBooking only touches lifecycle columns; ids and amounts are immutable.
func (t *pgTx) UpdateBooking(ctx context.Context, b models.Booking) error {
	tag, err := t.tx.Exec(ctx,
		`UPDATE bookings
		    SET status = $2, start_time = $3, end_time = $4, actual_duration = $5,
		        cancellation_reason = $6, rejection_reason = $7,
		        version = $8, updated_at = $9
		  WHERE id = $1 AND version = $8 - 1`,
		b.ID, b.Status, b.StartTime, b.EndTime, b.ActualDuration,
		b.CancellationReason, b.RejectionReason, b.Version, b.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return &models.ConcurrencyConflictError{Op: "update booking " + b.ID.String()}
	}
	return nil
}

func (s *Store) GetBooking(ctx context.Context, id uuid.UUID) (models.Booking, error) {
	b, err := scanBooking(s.pool.QueryRow(ctx,
		`SELECT `+bookingCols+` FROM bookings WHERE id=$1`, id))
	return b, notFound("booking", id.String(), err)
}

func (s *Store) ListBookingsByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]models.Booking, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+bookingCols+`
		   FROM bookings
		  WHERE requester_id = $1 OR worker_id = $1
		  ORDER BY created_at DESC
		  LIMIT $2 OFFSET $3`,
		accountID, limitArg(limit), offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
