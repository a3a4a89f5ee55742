package handlers

import (
	"context"
	"net/http"

	"github.com/baharkarakas/booking-ledger/internal/api/httpx"
	"github.com/baharkarakas/booking-ledger/internal/api/validate"
	"github.com/baharkarakas/booking-ledger/internal/models"
	"github.com/baharkarakas/booking-ledger/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type AccountHandler struct {
	Svc *services.BalanceService
}

func NewAccountHandler(svc *services.BalanceService) *AccountHandler {
	return &AccountHandler{Svc: svc}
}

func (h *AccountHandler) MyBalance(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOr401(w, r)
	if !ok {
		return
	}
	h.writeBalance(w, r, actor)
}

// Balance serves /accounts/{id}/balance. Callers may only read their own.
func (h *AccountHandler) Balance(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOr401(w, r)
	if !ok {
		return
	}
	id, f := validate.UUID("id", chi.URLParam(r, "id"))
	if f != nil {
		writeInvalid(w, validate.Errs{*f})
		return
	}
	if id != actor.ID {
		httpx.WriteError(w, http.StatusForbidden, "forbidden", "not your account", nil)
		return
	}
	h.writeBalance(w, r, actor)
}

func (h *AccountHandler) writeBalance(w http.ResponseWriter, r *http.Request, actor models.Actor) {
	v, err := h.Svc.GetAccountBalance(r.Context(), actor.ID)
	if err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, v)
}

func (h *AccountHandler) History(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOr401(w, r)
	if !ok {
		return
	}
	limit, offset := pageParams(r)
	out, err := h.Svc.History(r.Context(), actor.ID, limit, offset)
	if err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	if out == nil {
		out = []models.LedgerEntry{}
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *AccountHandler) Verify(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOr401(w, r)
	if !ok {
		return
	}
	rep, err := h.Svc.Verify(r.Context(), actor.ID)
	if err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, rep)
}

type movementReq struct {
	Amount    decimal.Decimal `json:"amount"`
	Reference string          `json:"reference,omitempty"`
}

func (h *AccountHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	h.movement(w, r, h.Svc.Deposit)
}

func (h *AccountHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.movement(w, r, h.Svc.Withdraw)
}

type movementFn func(ctx context.Context, actor models.Actor, amount decimal.Decimal, reference string) (models.BalanceView, error)

func (h *AccountHandler) movement(w http.ResponseWriter, r *http.Request, fn movementFn) {
	actor, ok := actorOr401(w, r)
	if !ok {
		return
	}
	var req movementReq
	if !decode(w, r, &req) {
		return
	}
	var errs validate.Errs
	errs.Add(validate.Amount("amount", req.Amount), validate.MaxLen("reference", req.Reference, 200), validate.MaxLen("Idempotency-Key", r.Header.Get("Idempotency-Key"), 200))
	if len(errs) > 0 {
		writeInvalid(w, errs)
		return
	}
	ref := req.Reference
	if ref == "" {
		ref = r.Header.Get("Idempotency-Key")
	}
	v, err := fn(r.Context(), actor, req.Amount, ref)
	if err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, v)
}
