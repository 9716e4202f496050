package auth

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JustinTDCT/mediacat/internal/apperr"
	"github.com/JustinTDCT/mediacat/internal/httputil"
	"github.com/JustinTDCT/mediacat/internal/logging"
	"github.com/JustinTDCT/mediacat/internal/metrics"
	"github.com/JustinTDCT/mediacat/internal/models"
	"github.com/JustinTDCT/mediacat/internal/validation"
)

// UserStore is the account lookup the login flow needs. Missing users are
// reported as apperr NotFound.
type UserStore interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

type Handler struct {
	users    UserStore
	sessions *Sessions
}

func NewHandler(users UserStore, sessions *Sessions) *Handler {
	return &Handler{users: users, sessions: sessions}
}

func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Post("/login", h.login)
	r.Group(func(r chi.Router) {
		r.Use(RequireAuth(h.sessions))
		r.Post("/logout", h.logout)
		r.Get("/me", h.me)
	})
	return r
}

type loginRequest struct {
	Username string `json:"username" validate:"min=1,max=100"`
	Password string `json:"password" validate:"min=1,max=200"`
}

type sessionUser struct {
	ID       int64           `json:"id"`
	Username string          `json:"username"`
	Role     models.UserRole `json:"role"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httputil.ReadJSON(w, r, &req); err != nil {
		httputil.Error(w, r, err)
		return
	}
	if err := validation.Struct(&req); err != nil {
		httputil.Error(w, r, err)
		return
	}

	user, err := h.authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	token, id, err := h.sessions.Issue(user)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("error").Inc()
		httputil.Error(w, r, apperr.Unexpected(err))
		return
	}
	h.sessions.SetCookie(w, r, token, id.ExpiresAt)
	metrics.AuthAttempts.WithLabelValues("success").Inc()
	logging.Ctx(r.Context()).Info().Int64("user_id", user.ID).Msg("login")

	httputil.WriteJSON(w, http.StatusOK, sessionUser{ID: user.ID, Username: user.Username, Role: user.Role})
}

// authenticate returns the same error for an unknown user, an inactive
// account and a wrong password.
func (h *Handler) authenticate(ctx context.Context, username, password string) (*models.User, error) {
	invalid := apperr.Unauthenticated("Invalid credentials")

	user, err := h.users.GetByUsername(ctx, username)
	if apperr.Is(err, apperr.KindNotFound) {
		burnPasswordCheck(password)
		metrics.AuthAttempts.WithLabelValues("invalid").Inc()
		return nil, invalid
	}
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("error").Inc()
		return nil, err
	}

	if !CheckPassword(user.PasswordHash, password) {
		metrics.AuthAttempts.WithLabelValues("invalid").Inc()
		return nil, invalid
	}
	if !user.IsActive {
		metrics.AuthAttempts.WithLabelValues("inactive").Inc()
		return nil, invalid
	}
	return user, nil
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Revoke(r.Context(), UserFromContext(r.Context())); err != nil {
		httputil.Error(w, r, apperr.Unexpected(err))
		return
	}
	h.sessions.ClearCookie(w, r)
	httputil.WriteStatus(w, http.StatusOK)
}

// me re-reads the account so a deactivated or deleted user loses access
// before the token expires.
func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	id := UserFromContext(r.Context())
	user, err := h.users.GetByID(r.Context(), id.UserID)
	if apperr.Is(err, apperr.KindNotFound) || (err == nil && !user.IsActive) {
		httputil.Error(w, r, apperr.Unauthenticated("Invalid session"))
		return
	}
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, sessionUser{ID: user.ID, Username: user.Username, Role: user.Role})
}
