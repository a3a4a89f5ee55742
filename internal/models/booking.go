package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	StatusPending    BookingStatus = "pending"
	StatusAccepted   BookingStatus = "accepted"
	StatusRejected   BookingStatus = "rejected"
	StatusOnTheWay   BookingStatus = "on-the-way"
	StatusInProgress BookingStatus = "in-progress"
	StatusCompleted  BookingStatus = "completed"
	StatusCancelled  BookingStatus = "cancelled"
)

var AllStatuses = []BookingStatus{
	StatusPending, StatusAccepted, StatusRejected, StatusOnTheWay,
	StatusInProgress, StatusCompleted, StatusCancelled,
}

func (s BookingStatus) Valid() bool {
	for _, v := range AllStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition may leave s.
func (s BookingStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusRejected || s == StatusCancelled
}

type Booking struct {
	ID                 uuid.UUID       `json:"id"`
	RequesterID        uuid.UUID       `json:"requester_id"`
	WorkerID           uuid.UUID       `json:"worker_id"`
	Status             BookingStatus   `json:"status"`
	ServiceDescription string          `json:"service_description,omitempty"`
	ScheduledAt        *time.Time      `json:"scheduled_at,omitempty"`
	TotalPrice         decimal.Decimal `json:"total_price"`
	PlatformFee        decimal.Decimal `json:"platform_fee"`
	WorkerEarning      decimal.Decimal `json:"worker_earning"`
	StartTime          *time.Time      `json:"start_time,omitempty"`
	EndTime            *time.Time      `json:"end_time,omitempty"`
	ActualDuration     *int64          `json:"actual_duration_minutes,omitempty"`
	CancellationReason *string         `json:"cancellation_reason,omitempty"`
	RejectionReason    *string         `json:"rejection_reason,omitempty"`
	Version            int64           `json:"version"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// NewBooking builds a pending booking and fixes the fee split. The split is
// rounded to cents once here and never recomputed.
func NewBooking(requesterID, workerID uuid.UUID, totalPrice, feeRate decimal.Decimal, now time.Time) (Booking, error) {
	if requesterID == uuid.Nil || workerID == uuid.Nil {
		return Booking{}, &NotFoundError{Entity: "account", ID: uuid.Nil.String()}
	}
	if requesterID == workerID {
		return Booking{}, ErrSameParty
	}
	if !totalPrice.IsPositive() {
		return Booking{}, ErrInvalidAmount
	}
	total := totalPrice.Round(2)
	if total.GreaterThan(MaxAmount) {
		return Booking{}, ErrAmountTooLarge
	}
	fee, earning := SplitFee(total, feeRate)
	return Booking{
		ID:            uuid.New(),
		RequesterID:   requesterID,
		WorkerID:      workerID,
		Status:        StatusPending,
		TotalPrice:    total,
		PlatformFee:   fee,
		WorkerEarning: earning,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// SplitFee returns (platformFee, workerEarning) with fee+earning == total.
func SplitFee(total, feeRate decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	fee := total.Mul(feeRate).Round(2)
	return fee, total.Sub(fee)
}

// Party reports whether accountID is the requester or the worker of b.
func (b Booking) Party(accountID uuid.UUID) bool {
	return accountID == b.RequesterID || accountID == b.WorkerID
}
