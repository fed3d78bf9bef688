package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/wolfman30/inmobiliaria-premium/internal/http/middleware"
	"github.com/wolfman30/inmobiliaria-premium/pkg/logging"
)

const adminSubject = "admin"

// AdminLoginConfig configures the shared-secret admin login.
type AdminLoginConfig struct {
	// PasswordHash is a bcrypt hash. When empty, Password is hashed at startup.
	PasswordHash string
	Password     string
	JWTSecret    string
	TokenTTL     time.Duration
	SecureCookie bool
}

// AdminLoginHandler exchanges the admin password for a signed session token.
type AdminLoginHandler struct {
	hash         []byte
	secret       []byte
	ttl          time.Duration
	secureCookie bool
	logger       *logging.Logger
	now          func() time.Time
}

// NewAdminLoginHandler creates the login handler. A handler without a
// password or signing secret rejects every login with 503.
func NewAdminLoginHandler(cfg AdminLoginConfig, logger *logging.Logger) (*AdminLoginHandler, error) {
	if logger == nil {
		logger = logging.Default()
	}
	h := &AdminLoginHandler{
		secret:       []byte(cfg.JWTSecret),
		ttl:          cfg.TokenTTL,
		secureCookie: cfg.SecureCookie,
		logger:       logger,
		now:          time.Now,
	}
	if h.ttl <= 0 {
		h.ttl = 12 * time.Hour
	}

	switch {
	case strings.TrimSpace(cfg.PasswordHash) != "":
		if _, err := bcrypt.Cost([]byte(cfg.PasswordHash)); err != nil {
			return nil, errors.New("handlers: ADMIN_PASSWORD_HASH is not a bcrypt hash")
		}
		h.hash = []byte(cfg.PasswordHash)
	case cfg.Password != "":
		hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		h.hash = hash
	}
	return h, nil
}

// Enabled reports whether logins can succeed.
func (h *AdminLoginHandler) Enabled() bool {
	return len(h.hash) > 0 && len(h.secret) > 0
}

type adminLoginRequest struct {
	Password string `json:"password"`
}

type adminLoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Login handles POST /api/admin/login.
func (h *AdminLoginHandler) Login(w http.ResponseWriter, r *http.Request) {
	if !h.Enabled() {
		jsonError(w, "admin login disabled", http.StatusServiceUnavailable)
		return
	}

	var req adminLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := bcrypt.CompareHashAndPassword(h.hash, []byte(req.Password)); err != nil {
		h.logger.Warn("admin login rejected", "remote_ip", r.RemoteAddr)
		jsonError(w, "invalid password", http.StatusUnauthorized)
		return
	}

	now := h.now()
	expires := now.Add(h.ttl)
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   adminSubject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.secret)
	if err != nil {
		h.logger.Error("failed to sign admin token", "error", err)
		jsonError(w, "failed to issue token", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AdminCookieName,
		Value:    signed,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	h.logger.Info("admin login succeeded", "token_id", claims.ID)
	writeJSON(w, http.StatusOK, adminLoginResponse{Token: signed, ExpiresAt: expires.UTC()})
}

// Logout handles POST /api/admin/logout by expiring the cookie. Bearer tokens
// stay valid until they expire.
func (h *AdminLoginHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AdminCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func jsonError(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, status, map[string]string{"error": msg})
}
