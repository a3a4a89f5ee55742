package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/baharkarakas/booking-ledger/internal/api/httpx"
	"github.com/baharkarakas/booking-ledger/internal/api/validate"
	"github.com/baharkarakas/booking-ledger/internal/models"
	"github.com/baharkarakas/booking-ledger/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type BookingHandler struct {
	Svc *services.BookingService
}

func NewBookingHandler(svc *services.BookingService) *BookingHandler {
	return &BookingHandler{Svc: svc}
}

type createBookingReq struct {
	WorkerID           string          `json:"worker_id"`
	TotalPrice         decimal.Decimal `json:"total_price"`
	ServiceDescription string          `json:"service_description"`
	ScheduledAt        *time.Time      `json:"scheduled_at,omitempty"`
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOr401(w, r)
	if !ok {
		return
	}
	var req createBookingReq
	if !decode(w, r, &req) {
		return
	}
	var errs validate.Errs
	workerID, f := validate.UUID("worker_id", req.WorkerID)
	errs.Add(f,
		validate.Amount("total_price", req.TotalPrice),
		validate.MaxLen("service_description", req.ServiceDescription, 2000))
	if len(errs) > 0 {
		writeInvalid(w, errs)
		return
	}
	b, err := h.Svc.CreateBooking(r.Context(), actor, services.CreateBookingInput{
		WorkerID:           workerID,
		TotalPrice:         req.TotalPrice,
		ServiceDescription: req.ServiceDescription,
		ScheduledAt:        req.ScheduledAt,
	})
	if err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, b)
}

func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOr401(w, r)
	if !ok {
		return
	}
	limit, offset := pageParams(r)
	out, err := h.Svc.ListForActor(r.Context(), actor, limit, offset)
	if err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	if out == nil {
		out = []models.Booking{}
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOr401(w, r)
	if !ok {
		return
	}
	id, f := validate.UUID("id", chi.URLParam(r, "id"))
	if f != nil {
		writeInvalid(w, validate.Errs{*f})
		return
	}
	b, err := h.Svc.Get(r.Context(), actor, id)
	if err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, b)
}

type transitionReq struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// Transition is the single entry point for status changes.
func (h *BookingHandler) Transition(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOr401(w, r)
	if !ok {
		return
	}
	var errs validate.Errs
	id, f := validate.UUID("id", chi.URLParam(r, "id"))
	errs.Add(f)
	var req transitionReq
	if !decode(w, r, &req) {
		return
	}
	to, f := validate.Status("status", req.Status)
	errs.Add(f, validate.MaxLen("reason", req.Reason, 1000))
	if len(errs) > 0 {
		writeInvalid(w, errs)
		return
	}
	b, err := h.Svc.ApplyTransition(r.Context(), id, to, actor, models.Metadata{Reason: req.Reason})
	var ite *models.InvalidTransitionError
	if errors.As(err, &ite) {
		// tell the client where the booking can go from here
		httpx.WriteError(w, http.StatusConflict, "invalid_transition", err.Error(),
			map[string]any{"from": ite.From, "allowed": services.AllowedTargets(ite.From)})
		return
	}
	if err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, b)
}
