package handlers

import (
	"net/http"
	"time"

	"github.com/baharkarakas/booking-ledger/internal/api/httpx"
	"github.com/baharkarakas/booking-ledger/internal/api/validate"
	"github.com/baharkarakas/booking-ledger/internal/auth"
	"github.com/baharkarakas/booking-ledger/internal/models"
)

// AuthHandler issues tokens. Identity lives elsewhere, so Login only works in
// dev where it signs whatever user id and role it is given.
type AuthHandler struct {
	TM     *auth.TokenManager
	AppEnv string
}

func NewAuthHandler(tm *auth.TokenManager, appEnv string) *AuthHandler {
	return &AuthHandler{TM: tm, AppEnv: appEnv}
}

type loginReq struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

type tokenResp struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"` // seconds
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if h.AppEnv != "dev" {
		httpx.WriteError(w, http.StatusNotImplemented, "not_implemented", "login is handled by the identity service", nil)
		return
	}
	var req loginReq
	if !decode(w, r, &req) {
		return
	}
	var errs validate.Errs
	id, f := validate.UUID("user_id", req.UserID)
	errs.Add(f)
	role := models.Role(req.Role)
	if !role.Valid() {
		errs.Add(&validate.ErrField{Field: "role", Msg: "must be requester or worker"})
	}
	if len(errs) > 0 {
		writeInvalid(w, errs)
		return
	}
	h.issue(w, id.String(), role)
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshReq
	if !decode(w, r, &req) {
		return
	}
	if f := validate.Required("refresh_token", req.RefreshToken); f != nil {
		writeInvalid(w, validate.Errs{*f})
		return
	}
	claims, err := h.TM.ParseRefresh(req.RefreshToken)
	if err != nil {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthenticated", "invalid refresh token", nil)
		return
	}
	h.issue(w, claims.UserID, claims.Role)
}

func (h *AuthHandler) issue(w http.ResponseWriter, userID string, role models.Role) {
	access, refresh, exp, err := h.TM.GeneratePair(userID, role)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "token generation failed", nil)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tokenResp{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(time.Until(exp).Truncate(time.Second) / time.Second),
	})
}
