package http

import (
	"encoding/json"
	"net/http"
	"time"

	"bookcatalog/internal/auth"
)

type AuthHandler struct {
	creds  auth.Credentials
	secret string
	ttl    time.Duration
}

func NewAuthHandler(creds auth.Credentials, secret string, ttl time.Duration) *AuthHandler {
	return &AuthHandler{creds: creds, secret: secret, ttl: ttl}
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResp struct {
	Token string `json:"token"`
}

// Login issues a token on exact match of the configured admin login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !h.creds.Match(req.Username, req.Password) {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	token, err := auth.GenerateToken(h.secret, req.Username, h.ttl)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, loginResp{Token: token})
}
