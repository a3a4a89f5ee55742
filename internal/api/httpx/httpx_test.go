package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/baharkarakas/booking-ledger/internal/models"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{&models.NotFoundError{Entity: "booking"}, http.StatusNotFound, "not_found"},
		{&models.UnauthorizedTransitionError{}, http.StatusForbidden, "forbidden"},
		{&models.InvalidTransitionError{}, http.StatusConflict, "invalid_transition"},
		{fmt.Errorf("commit: %w", &models.ConcurrencyConflictError{Op: "x"}), http.StatusConflict, "concurrency_conflict"},
		{&models.InsufficientFundsError{}, http.StatusUnprocessableEntity, "insufficient_funds"},
		{models.ErrSameParty, http.StatusBadRequest, "invalid_input"},
		{errors.New("db down"), http.StatusInternalServerError, "internal_error"},
	}
	for _, c := range cases {
		status, code := StatusFor(c.err)
		if status != c.status || code != c.code {
			t.Fatalf("StatusFor(%v) = %d/%s, want %d/%s", c.err, status, code, c.status, c.code)
		}
	}
}

func TestWriteServiceErrorHidesInternals(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteServiceError(rec, errors.New("password=hunter2"))
	var body APIError
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusInternalServerError || body.Error != "internal error" {
		t.Fatalf("leaked internal error: %d %+v", rec.Code, body)
	}
}
