package validate

import (
	"strings"

	"github.com/baharkarakas/booking-ledger/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ErrField struct {
	Field string `json:"field"`
	Msg   string `json:"msg"`
}

type Errs []ErrField

func (e Errs) Error() string { // error interface
	var b strings.Builder
	for i, ef := range e {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(ef.Field + ": " + ef.Msg)
	}
	return b.String()
}

// Add appends every non-nil field error.
func (e *Errs) Add(fs ...*ErrField) {
	for _, f := range fs {
		if f != nil {
			*e = append(*e, *f)
		}
	}
}

// Helpers
func Required(field, value string) *ErrField {
	if strings.TrimSpace(value) == "" {
		return &ErrField{Field: field, Msg: "required"}
	}
	return nil
}

func UUID(field, value string) (uuid.UUID, *ErrField) {
	if f := Required(field, value); f != nil {
		return uuid.Nil, f
	}
	id, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, &ErrField{Field: field, Msg: "must be a uuid"}
	}
	return id, nil
}

// Amount checks a money value: positive, at most two decimals and within
// models.MaxAmount.
func Amount(field string, d decimal.Decimal) *ErrField {
	if !d.IsPositive() {
		return &ErrField{Field: field, Msg: "must be > 0"}
	}
	if d.GreaterThan(models.MaxAmount) {
		return &ErrField{Field: field, Msg: "must be <= " + models.MaxAmount.StringFixed(2)}
	}
	if !d.Equal(d.Round(2)) {
		return &ErrField{Field: field, Msg: "at most 2 decimals"}
	}
	return nil
}

func Status(field, value string) (models.BookingStatus, *ErrField) {
	s := models.BookingStatus(strings.TrimSpace(value))
	if !s.Valid() {
		return "", &ErrField{Field: field, Msg: "unknown status"}
	}
	return s, nil
}

func MaxLen(field, value string, n int) *ErrField {
	if len(value) > n {
		return &ErrField{Field: field, Msg: "too long"}
	}
	return nil
}
