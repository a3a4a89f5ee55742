package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/baharkarakas/booking-ledger/internal/metrics"
	"github.com/baharkarakas/booking-ledger/internal/models"
	repo "github.com/baharkarakas/booking-ledger/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EventSink receives committed transitions. It must not block.
type EventSink interface {
	Dispatch(ev models.TransitionEvent)
}

type nopSink struct{}

func (nopSink) Dispatch(models.TransitionEvent) {}

// BookingService is the transaction coordinator: every booking status change
// and the ledger postings it implies run in one atomic scope.
type BookingService struct {
	store   repo.Store
	feeRate decimal.Decimal
	events  EventSink
	log     *slog.Logger
	nowFn   func() time.Time
}

func NewBookingService(store repo.Store, feeRate decimal.Decimal, events EventSink, log *slog.Logger) *BookingService {
	if events == nil {
		events = nopSink{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &BookingService{
		store:   store,
		feeRate: feeRate,
		events:  events,
		log:     log,
		nowFn:   func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the time source.
func (s *BookingService) SetClock(fn func() time.Time) { s.nowFn = fn }

type CreateBookingInput struct {
	WorkerID           uuid.UUID
	TotalPrice         decimal.Decimal
	ServiceDescription string
	ScheduledAt        *time.Time
}

// CreateBooking is the requester-facing creation flow: it fixes the fee split
// and charges the requester's wallet together with the booking insert.
func (s *BookingService) CreateBooking(ctx context.Context, actor models.Actor, in CreateBookingInput) (models.Booking, error) {
	if err := actor.Validate(); err != nil {
		return models.Booking{}, err
	}
	if actor.Role != models.RoleRequester {
		return models.Booking{}, &models.UnauthorizedTransitionError{ActorID: actor.ID, Role: actor.Role, To: models.StatusPending}
	}
	now := s.nowFn()
	b, err := models.NewBooking(actor.ID, in.WorkerID, in.TotalPrice, s.feeRate, now)
	if err != nil {
		return models.Booking{}, err
	}
	b.ServiceDescription = strings.TrimSpace(in.ServiceDescription)
	b.ScheduledAt = in.ScheduledAt

	err = s.store.WithTx(ctx, func(tx repo.Tx) error {
		l, err := openLedger(ctx, tx, now,
			lockRequest{b.RequesterID, models.RoleRequester},
			lockRequest{b.WorkerID, models.RoleWorker},
		)
		if err != nil {
			return err
		}
		if r, _ := l.account(b.RequesterID); r.Role != models.RoleRequester {
			return &models.NotFoundError{Entity: "requester", ID: b.RequesterID.String()}
		}
		if w, _ := l.account(b.WorkerID); w.Role != models.RoleWorker {
			return &models.NotFoundError{Entity: "worker", ID: b.WorkerID.String()}
		}
		if err := tx.InsertBooking(ctx, b); err != nil {
			return err
		}
		_, err = l.debit(ctx, b.RequesterID, b.TotalPrice, models.ReasonBookingCharge, &b.ID)
		return err
	})
	if err != nil {
		s.fail("create", err, "requester_id", actor.ID)
		return models.Booking{}, err
	}
	s.log.Info("booking created",
		"booking_id", b.ID, "requester_id", b.RequesterID, "worker_id", b.WorkerID,
		"total_price", b.TotalPrice.StringFixed(2), "platform_fee", b.PlatformFee.StringFixed(2))
	return b, nil
}

// ApplyTransition moves bookingID to requested on behalf of actor. The status
// write and all ledger effects commit together or not at all; errors are
// returned typed and never retried here.
func (s *BookingService) ApplyTransition(ctx context.Context, bookingID uuid.UUID, requested models.BookingStatus, actor models.Actor, meta models.Metadata) (models.Booking, error) {
	if err := actor.Validate(); err != nil {
		return models.Booking{}, err
	}

	var (
		out models.Booking
		ev  models.TransitionEvent
	)
	err := s.store.WithTx(ctx, func(tx repo.Tx) error {
		b, err := tx.GetBookingForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if err := authorizeTransition(actor, b, requested); err != nil {
			return err
		}
		rule, err := LookupTransition(b.Status, requested)
		if err != nil {
			return err
		}

		now := s.nowFn()
		var locks []lockRequest
		for _, p := range rule.parties() {
			locks = append(locks, lockRequest{p.of(b), p.role()})
		}
		l, err := openLedger(ctx, tx, now, locks...)
		if err != nil {
			return err
		}

		amounts := models.TransitionAmounts{
			TotalPrice:    b.TotalPrice,
			PlatformFee:   b.PlatformFee,
			WorkerEarning: b.WorkerEarning,
			Refunded:      decimal.Zero,
			EscrowDelta:   decimal.Zero,
			Released:      decimal.Zero,
		}
		for _, eff := range rule.Effects {
			amt := eff.Amount.of(b)
			if _, err := l.post(ctx, eff.Party.of(b), eff.Bucket, eff.Direction, amt, eff.Reason, &b.ID, ""); err != nil {
				return err
			}
			switch {
			case eff.Bucket == models.BucketEscrow && eff.Direction == models.Credit:
				amounts.EscrowDelta = amounts.EscrowDelta.Add(amt)
			case eff.Bucket == models.BucketEscrow:
				amounts.EscrowDelta = amounts.EscrowDelta.Sub(amt)
			case eff.Party == partyRequester:
				amounts.Refunded = amounts.Refunded.Add(amt)
			default:
				amounts.Released = amounts.Released.Add(amt)
			}
		}
		if rule.WorkerAvailable != nil {
			if err := l.setAvailable(ctx, b.WorkerID, *rule.WorkerAvailable); err != nil {
				return err
			}
		}

		next := applyRule(b, rule, meta, now)
		if err := tx.UpdateBooking(ctx, next); err != nil {
			return err
		}
		out = next
		ev = models.TransitionEvent{
			ID:          uuid.New(),
			BookingID:   b.ID,
			RequesterID: b.RequesterID,
			WorkerID:    b.WorkerID,
			ActorID:     actor.ID,
			From:        b.Status,
			To:          next.Status,
			Amounts:     amounts,
			OccurredAt:  now,
		}
		return nil
	})
	if err != nil {
		s.fail("transition", err, "booking_id", bookingID, "to", requested, "actor_id", actor.ID)
		return models.Booking{}, err
	}

	metrics.TransitionsTotal.WithLabelValues(string(ev.From), string(ev.To)).Inc()
	s.log.Info("booking transition committed",
		"booking_id", out.ID, "from", ev.From, "to", ev.To, "actor_id", actor.ID,
		"refunded", ev.Amounts.Refunded.StringFixed(2),
		"escrow_delta", ev.Amounts.EscrowDelta.StringFixed(2),
		"released", ev.Amounts.Released.StringFixed(2))
	s.events.Dispatch(ev)
	return out, nil
}

// applyRule returns b after the non-monetary part of rule.
func applyRule(b models.Booking, rule Rule, meta models.Metadata, now time.Time) models.Booking {
	next := b
	next.Status = rule.To
	next.Version = b.Version + 1
	next.UpdatedAt = now
	if rule.StartClock {
		t := now
		next.StartTime = &t
	}
	if rule.StopClock {
		t := now
		next.EndTime = &t
		if next.StartTime != nil {
			mins := int64(t.Sub(*next.StartTime) / time.Minute)
			next.ActualDuration = &mins
		}
	}
	switch rule.To {
	case models.StatusCancelled:
		next.CancellationReason = meta.ReasonPtr()
	case models.StatusRejected:
		next.RejectionReason = meta.ReasonPtr()
	}
	return next
}

// Get returns a booking visible to actor.
func (s *BookingService) Get(ctx context.Context, actor models.Actor, id uuid.UUID) (models.Booking, error) {
	b, err := s.store.GetBooking(ctx, id)
	if err != nil {
		return models.Booking{}, err
	}
	if !b.Party(actor.ID) {
		return models.Booking{}, &models.NotFoundError{Entity: "booking", ID: id.String()}
	}
	return b, nil
}

func (s *BookingService) ListForActor(ctx context.Context, actor models.Actor, limit, offset int) ([]models.Booking, error) {
	return s.store.ListBookingsByAccount(ctx, actor.ID, limit, offset)
}

func (s *BookingService) fail(op string, err error, attrs ...any) {
	reason := errorClass(err)
	metrics.TransitionsFailed.WithLabelValues(reason).Inc()
	attrs = append(attrs, "op", op, "class", reason, "err", err)
	if reason == "internal" {
		s.log.Error("booking operation aborted", attrs...)
		return
	}
	s.log.Warn("booking operation rejected", attrs...)
}

// errorClass names the error taxonomy bucket of err.
func errorClass(err error) string {
	switch {
	case errors.Is(err, models.ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, models.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, models.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, models.ErrNotFound):
		return "not_found"
	case errors.Is(err, models.ErrConcurrencyConflict):
		return "concurrency_conflict"
	case errors.Is(err, models.ErrInvalidAmount), errors.Is(err, models.ErrSameParty):
		return "invalid_input"
	default:
		return "internal"
	}
}
