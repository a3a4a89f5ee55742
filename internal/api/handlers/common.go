package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/baharkarakas/booking-ledger/internal/api/httpx"
	"github.com/baharkarakas/booking-ledger/internal/api/validate"
	"github.com/baharkarakas/booking-ledger/internal/middleware"
	"github.com/baharkarakas/booking-ledger/internal/models"
)

const maxBody = 1 << 20

func actorOr401(w http.ResponseWriter, r *http.Request) (models.Actor, bool) {
	a, ok := middleware.ActorFrom(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthenticated", "missing credentials", nil)
	}
	return a, ok
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid json body", nil)
		return false
	}
	return true
}

func writeInvalid(w http.ResponseWriter, errs validate.Errs) {
	httpx.WriteError(w, http.StatusBadRequest, "validation_error", errs.Error(), errs)
}

func pageParams(r *http.Request) (limit, offset int) {
	limit, offset = 50, 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}
