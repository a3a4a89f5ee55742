// Package notify forwards committed booking transitions to the notification
// layer. Delivery is best-effort: a lost event never touches ledger state.
package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/baharkarakas/booking-ledger/internal/metrics"
	"github.com/baharkarakas/booking-ledger/internal/models"
	"github.com/baharkarakas/booking-ledger/internal/worker"
)

type Notifier interface {
	Notify(ctx context.Context, ev models.TransitionEvent) error
}

// LogNotifier writes events to the structured log.
type LogNotifier struct{ Log *slog.Logger }

func (n LogNotifier) Notify(_ context.Context, ev models.TransitionEvent) error {
	log := n.Log
	if log == nil {
		log = slog.Default()
	}
	log.Info("booking event",
		"event_id", ev.ID, "booking_id", ev.BookingID,
		"from", ev.From, "to", ev.To,
		"requester_id", ev.RequesterID, "worker_id", ev.WorkerID)
	return nil
}

func encode(ev models.TransitionEvent) ([]byte, error) { return json.Marshal(ev) }

// Dispatcher hands events to a worker pool so the request that committed the
// transition never waits on delivery.
type Dispatcher struct {
	n       Notifier
	pool    *worker.Pool
	timeout time.Duration
	log     *slog.Logger
}

func NewDispatcher(n Notifier, pool *worker.Pool, timeout time.Duration, log *slog.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{n: n, pool: pool, timeout: timeout, log: log}
}

func (d *Dispatcher) Dispatch(ev models.TransitionEvent) {
	ok := d.pool.TrySubmit(func() {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		if err := d.n.Notify(ctx, ev); err != nil {
			metrics.NotificationsTotal.WithLabelValues("failed").Inc()
			d.log.Warn("booking event not delivered", "event_id", ev.ID, "booking_id", ev.BookingID, "err", err)
			return
		}
		metrics.NotificationsTotal.WithLabelValues("sent").Inc()
	})
	if !ok {
		metrics.NotificationsTotal.WithLabelValues("dropped").Inc()
		d.log.Warn("booking event dropped, queue full", "event_id", ev.ID, "booking_id", ev.BookingID)
	}
}
