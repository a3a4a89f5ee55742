package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransitionAmounts lists the money moved by one committed transition.
type TransitionAmounts struct {
	TotalPrice    decimal.Decimal `json:"total_price"`
	PlatformFee   decimal.Decimal `json:"platform_fee"`
	WorkerEarning decimal.Decimal `json:"worker_earning"`
	Refunded      decimal.Decimal `json:"refunded"`
	EscrowDelta   decimal.Decimal `json:"escrow_delta"`
	Released      decimal.Decimal `json:"released"`
}

// TransitionEvent is emitted once per committed status change.
type TransitionEvent struct {
	ID          uuid.UUID         `json:"id"`
	BookingID   uuid.UUID         `json:"booking_id"`
	RequesterID uuid.UUID         `json:"requester_id"`
	WorkerID    uuid.UUID         `json:"worker_id"`
	ActorID     uuid.UUID         `json:"actor_id"`
	From        BookingStatus     `json:"from_status"`
	To          BookingStatus     `json:"to_status"`
	Amounts     TransitionAmounts `json:"amounts"`
	OccurredAt  time.Time         `json:"occurred_at"`
}
