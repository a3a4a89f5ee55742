package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/baharkarakas/booking-ledger/internal/auth"
	"github.com/baharkarakas/booking-ledger/internal/config"
	"github.com/baharkarakas/booking-ledger/internal/models"
	"github.com/baharkarakas/booking-ledger/internal/repository/memory"
	"github.com/baharkarakas/booking-ledger/internal/services"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type testAPI struct {
	t         *testing.T
	h         http.Handler
	requester string
	worker    string
	reqID     uuid.UUID
	wrkID     uuid.UUID
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	return newTestAPIFor(t, "dev")
}

func newTestAPIFor(t *testing.T, env string) *testAPI {
	t.Helper()
	store := memory.NewStore()
	cfg := config.Config{Env: env}
	tm := auth.NewTokenManager("a", "r", "booking-ledger", time.Minute, time.Hour)
	h := NewRouter(cfg,
		services.NewBookingService(store, decimal.RequireFromString("0.10"), nil, nil),
		services.NewBalanceService(store, nil),
		tm)
	reqID, wrkID := uuid.New(), uuid.New()
	return &testAPI{
		t:         t,
		h:         h,
		requester: "dev-requester-" + reqID.String(),
		worker:    "dev-worker-" + wrkID.String(),
		reqID:     reqID,
		wrkID:     wrkID,
	}
}

func (a *testAPI) do(method, path, token string, body any, out any) int {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			a.t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.h.ServeHTTP(rec, req)
	if out != nil && rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			a.t.Fatalf("%s %s: decode %q: %v", method, path, rec.Body.String(), err)
		}
	}
	return rec.Code
}

type apiErr struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details struct {
		From    models.BookingStatus   `json:"from"`
		Allowed []models.BookingStatus `json:"allowed"`
	} `json:"details"`
}

func TestBookingFlowOverHTTP(t *testing.T) {
	a := newTestAPI(t)

	if code := a.do(http.MethodPost, "/api/v1/accounts/me/deposits", a.requester, map[string]any{"amount": "1000"}, nil); code != http.StatusOK {
		t.Fatalf("deposit: %d", code)
	}

	var b models.Booking
	code := a.do(http.MethodPost, "/api/v1/bookings", a.requester, map[string]any{
		"worker_id":           a.wrkID.String(),
		"total_price":         "200",
		"service_description": "fix the sink",
	}, &b)
	if code != http.StatusCreated || b.Status != models.StatusPending {
		t.Fatalf("create: %d %+v", code, b)
	}

	path := "/api/v1/bookings/" + b.ID.String() + "/transitions"
	if code := a.do(http.MethodPost, path, a.worker, map[string]any{"status": "accepted"}, &b); code != http.StatusOK || b.Status != models.StatusAccepted {
		t.Fatalf("accept: %d %+v", code, b)
	}

	var e apiErr
	if code := a.do(http.MethodPost, path, a.worker, map[string]any{"status": "accepted"}, &e); code != http.StatusConflict || e.Code != "invalid_transition" {
		t.Fatalf("double accept: %d %+v", code, e)
	}
	if e.Details.From != models.StatusAccepted || len(e.Details.Allowed) != 3 {
		t.Fatalf("expected allowed targets from accepted, got %+v", e.Details)
	}
	if code := a.do(http.MethodPost, path, a.worker, map[string]any{"status": "cancelled"}, &e); code != http.StatusForbidden {
		t.Fatalf("worker cancel: %d %+v", code, e)
	}

	var v models.BalanceView
	if code := a.do(http.MethodGet, "/api/v1/accounts/me/balance", a.worker, nil, &v); code != http.StatusOK {
		t.Fatalf("worker balance: %d", code)
	}
	if v.PendingEarnings == nil || !v.PendingEarnings.Equal(decimal.NewFromInt(180)) {
		t.Fatalf("unexpected worker view: %+v", v)
	}

	var list []models.Booking
	if code := a.do(http.MethodGet, "/api/v1/bookings", a.worker, nil, &list); code != http.StatusOK || len(list) != 1 {
		t.Fatalf("list: %d %d", code, len(list))
	}

	var rep services.VerifyReport
	if code := a.do(http.MethodGet, "/api/v1/accounts/me/verify", a.requester, nil, &rep); code != http.StatusOK || !rep.Consistent {
		t.Fatalf("verify: %d %+v", code, rep)
	}
}

func TestErrorMapping(t *testing.T) {
	a := newTestAPI(t)
	var e apiErr

	if code := a.do(http.MethodGet, "/api/v1/bookings", "", nil, &e); code != http.StatusUnauthorized {
		t.Fatalf("no token: %d", code)
	}
	if code := a.do(http.MethodPost, "/api/v1/bookings", a.worker, map[string]any{"worker_id": uuid.NewString(), "total_price": "10"}, &e); code != http.StatusForbidden {
		t.Fatalf("worker creating: %d", code)
	}
	if code := a.do(http.MethodPost, "/api/v1/bookings", a.requester, map[string]any{"worker_id": a.wrkID.String(), "total_price": "10"}, &e); code != http.StatusUnprocessableEntity || e.Code != "insufficient_funds" {
		t.Fatalf("unfunded: %d %+v", code, e)
	}
	if code := a.do(http.MethodPost, "/api/v1/bookings", a.requester, map[string]any{"worker_id": "x", "total_price": "-1"}, &e); code != http.StatusBadRequest {
		t.Fatalf("bad input: %d", code)
	}
	if code := a.do(http.MethodGet, "/api/v1/bookings/"+uuid.NewString(), a.requester, nil, &e); code != http.StatusNotFound {
		t.Fatalf("missing booking: %d", code)
	}
	if code := a.do(http.MethodPost, "/api/v1/bookings/"+uuid.NewString()+"/transitions", a.worker, map[string]any{"status": "done"}, &e); code != http.StatusBadRequest {
		t.Fatalf("unknown status: %d", code)
	}
	if code := a.do(http.MethodGet, "/api/v1/accounts/"+uuid.NewString()+"/balance", a.requester, nil, &e); code != http.StatusForbidden {
		t.Fatalf("foreign balance: %d", code)
	}
	if code := a.do(http.MethodGet, "/api/v1/accounts/"+a.reqID.String()+"/balance", a.requester, nil, &e); code != http.StatusNotFound {
		t.Fatalf("own balance before any movement: %d", code)
	}
	if code := a.do(http.MethodPost, "/api/v1/accounts/me/withdrawals", a.requester, map[string]any{"amount": "1"}, &e); code != http.StatusUnprocessableEntity {
		t.Fatalf("overdraft: %d", code)
	}
	if code := a.do(http.MethodPost, "/api/v1/accounts/me/deposits", a.requester, map[string]any{"amount": "1000000000000"}, &e); code != http.StatusBadRequest {
		t.Fatalf("deposit past the money column: %d", code)
	}
}

func TestIdempotencyKeyHeader(t *testing.T) {
	a := newTestAPI(t)
	send := func(amount string) int {
		var buf bytes.Buffer
		_ = json.NewEncoder(&buf).Encode(map[string]any{"amount": amount})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts/me/deposits", &buf)
		req.Header.Set("Authorization", "Bearer "+a.requester)
		req.Header.Set("Idempotency-Key", "k-1")
		rec := httptest.NewRecorder()
		a.h.ServeHTTP(rec, req)
		return rec.Code
	}
	if send("25") != http.StatusOK || send("25") != http.StatusOK {
		t.Fatal("replayed deposit should succeed")
	}
	if code := send("30"); code != http.StatusConflict {
		t.Fatalf("reused key with a different amount: %d", code)
	}
	var v models.BalanceView
	a.do(http.MethodGet, "/api/v1/accounts/me/balance", a.requester, nil, &v)
	if !v.Balance.Equal(decimal.NewFromInt(25)) {
		t.Fatalf("balance %s, want 25", v.Balance)
	}
}

func TestDevLoginIssuesUsableTokens(t *testing.T) {
	a := newTestAPI(t)
	var tok struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	if code := a.do(http.MethodPost, "/api/v1/auth/login", "", map[string]any{"user_id": a.reqID.String(), "role": "requester"}, &tok); code != http.StatusOK {
		t.Fatalf("login: %d", code)
	}
	if code := a.do(http.MethodPost, "/api/v1/accounts/me/deposits", tok.AccessToken, map[string]any{"amount": "5"}, nil); code != http.StatusOK {
		t.Fatalf("deposit with issued token: %d", code)
	}
	if code := a.do(http.MethodPost, "/api/v1/auth/refresh", "", map[string]any{"refresh_token": tok.RefreshToken}, &tok); code != http.StatusOK || tok.AccessToken == "" {
		t.Fatalf("refresh: %d", code)
	}
	if code := a.do(http.MethodPost, "/api/v1/auth/login", "", map[string]any{"user_id": a.reqID.String(), "role": "admin"}, nil); code != http.StatusBadRequest {
		t.Fatalf("bad role: %d", code)
	}
}

func TestProdRejectsDevIdentities(t *testing.T) {
	a := newTestAPIFor(t, "prod")
	var e apiErr
	if code := a.do(http.MethodPost, "/api/v1/auth/login", "", map[string]any{"user_id": a.reqID.String(), "role": "requester"}, &e); code != http.StatusNotImplemented {
		t.Fatalf("login outside dev: %d %+v", code, e)
	}
	if code := a.do(http.MethodPost, "/api/v1/accounts/me/deposits", a.requester, map[string]any{"amount": "1000000"}, &e); code != http.StatusUnauthorized {
		t.Fatalf("dev token outside dev: %d %+v", code, e)
	}
}

func TestHealth(t *testing.T) {
	a := newTestAPI(t)
	rec := httptest.NewRecorder()
	a.h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("health: %d %q", rec.Code, rec.Body.String())
	}
}
