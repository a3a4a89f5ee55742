package models

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidTransition   = errors.New("invalid transition")
	ErrUnauthorized        = errors.New("unauthorized transition")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrNotFound            = errors.New("not found")
	ErrConcurrencyConflict = errors.New("concurrency conflict")
	ErrInvalidAmount       = errors.New("amount must be > 0")
	ErrSameParty           = errors.New("requester and worker must differ")

	// ErrAmountTooLarge matches ErrInvalidAmount as well.
	ErrAmountTooLarge = fmt.Errorf("%w: exceeds %s", ErrInvalidAmount, MaxAmount.StringFixed(2))
)

// MaxAmount is the largest value a price, movement or bucket may hold; the
// schema stores money as numeric(14,2).
var MaxAmount = decimal.RequireFromString("999999999999.99")

type InvalidTransitionError struct {
	From BookingStatus
	To   BookingStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition %s -> %s", e.From, e.To)
}

func (e *InvalidTransitionError) Is(target error) bool { return target == ErrInvalidTransition }

type UnauthorizedTransitionError struct {
	ActorID uuid.UUID
	Role    Role
	To      BookingStatus
}

func (e *UnauthorizedTransitionError) Error() string {
	return fmt.Sprintf("actor %s (%s) may not request %s", e.ActorID, e.Role, e.To)
}

func (e *UnauthorizedTransitionError) Is(target error) bool { return target == ErrUnauthorized }

type InsufficientFundsError struct {
	AccountID uuid.UUID
	Bucket    Bucket
	Have      decimal.Decimal
	Need      decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds in %s of %s: have %s, need %s",
		e.Bucket, e.AccountID, e.Have.StringFixed(2), e.Need.StringFixed(2))
}

func (e *InsufficientFundsError) Is(target error) bool { return target == ErrInsufficientFunds }

type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("%s %s not found", e.Entity, e.ID) }

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ConcurrencyConflictError wraps a store-level serialization failure. It is
// never retried inside the engine.
type ConcurrencyConflictError struct {
	Op  string
	Err error
}

func (e *ConcurrencyConflictError) Error() string {
	if e.Err == nil {
		return "concurrency conflict: " + e.Op
	}
	return fmt.Sprintf("concurrency conflict: %s: %v", e.Op, e.Err)
}

func (e *ConcurrencyConflictError) Is(target error) bool { return target == ErrConcurrencyConflict }

func (e *ConcurrencyConflictError) Unwrap() error { return e.Err }
