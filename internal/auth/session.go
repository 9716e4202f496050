package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/JustinTDCT/mediacat/internal/apperr"
	"github.com/JustinTDCT/mediacat/internal/metrics"
	"github.com/JustinTDCT/mediacat/internal/models"
)

// Identity is the verified session subject attached to a request.
type Identity struct {
	UserID    int64
	Username  string
	Role      models.UserRole
	TokenID   string
	ExpiresAt time.Time
}

type Claims struct {
	UserID   int64           `json:"uid"`
	Username string          `json:"username"`
	Role     models.UserRole `json:"role"`
	jwt.RegisteredClaims
}

type SessionConfig struct {
	Secret     []byte
	TTL        time.Duration
	CookieName string
	// SecureCookie sets Secure on every cookie; otherwise only TLS requests get it.
	SecureCookie bool
}

// Sessions issues and verifies signed session tokens carried in a cookie.
type Sessions struct {
	cfg     SessionConfig
	revoker Revoker
	now     func() time.Time
}

func NewSessions(cfg SessionConfig, revoker Revoker) *Sessions {
	if revoker == nil {
		revoker = NoopRevoker{}
	}
	return &Sessions{cfg: cfg, revoker: revoker, now: time.Now}
}

func (s *Sessions) CookieName() string {
	return s.cfg.CookieName
}

// Issue signs a token for user.
func (s *Sessions) Issue(user *models.User) (string, *Identity, error) {
	now := s.now()
	exp := now.Add(s.cfg.TTL)
	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.cfg.Secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign session: %w", err)
	}
	return token, claims.identity(), nil
}

func (c *Claims) identity() *Identity {
	id := &Identity{
		UserID:   c.UserID,
		Username: c.Username,
		Role:     c.Role,
		TokenID:  c.ID,
	}
	if c.ExpiresAt != nil {
		id.ExpiresAt = c.ExpiresAt.Time
	}
	return id
}

// Verify checks signature, algorithm, validity window and revocation.
func (s *Sessions) Verify(ctx context.Context, token string) (*Identity, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (interface{}, error) { return s.cfg.Secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, &apperr.Error{Kind: apperr.KindUnauthenticated, Message: "Invalid session", Err: err}
	}
	if claims.UserID < 1 || !claims.Role.Valid() || claims.ID == "" {
		return nil, apperr.Unauthenticated("Invalid session")
	}

	revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, apperr.Unexpected(fmt.Errorf("check revocation: %w", err))
	}
	if revoked {
		return nil, apperr.Unauthenticated("Invalid session")
	}
	return claims.identity(), nil
}

// Authenticate reads and verifies the session cookie on r.
func (s *Sessions) Authenticate(r *http.Request) (*Identity, error) {
	c, err := r.Cookie(s.cfg.CookieName)
	if errors.Is(err, http.ErrNoCookie) || (err == nil && c.Value == "") {
		return nil, apperr.Unauthenticated("Authentication required")
	}
	if err != nil {
		return nil, apperr.Unauthenticated("Invalid session")
	}
	return s.Verify(r.Context(), c.Value)
}

// Revoke makes id unusable before its expiry when a revocation store is configured.
func (s *Sessions) Revoke(ctx context.Context, id *Identity) error {
	if id == nil || id.TokenID == "" {
		return nil
	}
	if err := s.revoker.Revoke(ctx, id.TokenID, id.ExpiresAt); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	if _, noop := s.revoker.(NoopRevoker); !noop {
		metrics.SessionsRevoked.Inc()
	}
	return nil
}

func (s *Sessions) SetCookie(w http.ResponseWriter, r *http.Request, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(s.cfg.TTL.Seconds()),
		HttpOnly: true,
		Secure:   s.cfg.SecureCookie || r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Sessions) ClearCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cfg.SecureCookie || r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}
