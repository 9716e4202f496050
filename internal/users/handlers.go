package users

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JustinTDCT/mediacat/internal/apperr"
	"github.com/JustinTDCT/mediacat/internal/auth"
	"github.com/JustinTDCT/mediacat/internal/httputil"
	"github.com/JustinTDCT/mediacat/internal/logging"
	"github.com/JustinTDCT/mediacat/internal/models"
	"github.com/JustinTDCT/mediacat/internal/validation"
)

type Store interface {
	List(ctx context.Context) ([]*models.User, error)
	Create(ctx context.Context, u *models.User) error
	Update(ctx context.Context, id int64, p Patch) (*models.User, error)
}

type Handler struct {
	repo Store
}

func NewHandler(repo Store) *Handler {
	return &Handler{repo: repo}
}

// Router serves the account administration API. Callers gate it on the
// admin role.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Patch("/{id}", h.update)
	return r
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	users, err := h.repo.List(r.Context())
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, users)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := httputil.ReadJSON(w, r, &req); err != nil {
		httputil.Error(w, r, err)
		return
	}
	if err := validation.Struct(&req); err != nil {
		httputil.Error(w, r, err)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		httputil.Error(w, r, apperr.Unexpected(err))
		return
	}
	user := &models.User{
		Username:     req.Username,
		PasswordHash: hash,
		Role:         req.Role,
		IsActive:     true,
	}
	if err := h.repo.Create(r.Context(), user); err != nil {
		httputil.Error(w, r, err)
		return
	}
	logging.Ctx(r.Context()).Info().Int64("created_user_id", user.ID).Str("role", string(user.Role)).Msg("user created")
	httputil.WriteJSON(w, http.StatusCreated, user)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id")
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	var req PatchRequest
	if err := httputil.ReadJSON(w, r, &req); err != nil {
		httputil.Error(w, r, err)
		return
	}
	if err := validation.Struct(&req); err != nil {
		httputil.Error(w, r, err)
		return
	}
	patch, err := req.toPatch()
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	user, err := h.repo.Update(r.Context(), id, patch)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	logging.Ctx(r.Context()).Info().Int64("updated_user_id", id).Msg("user updated")
	httputil.WriteJSON(w, http.StatusOK, user)
}

// toPatch rejects empty and null-valued updates and hashes a new password.
func (req PatchRequest) toPatch() (Patch, error) {
	var p Patch
	if req.IsActive.Null || req.Role.Null || req.Password.Null {
		return p, apperr.InvalidRequest("Fields cannot be null")
	}
	p.IsActive = req.IsActive
	p.Role = req.Role
	if req.Password.Set {
		hash, err := auth.HashPassword(req.Password.Value)
		if err != nil {
			return p, apperr.Unexpected(err)
		}
		p.PasswordHash = models.Some(hash)
	}
	if p.Empty() {
		return p, apperr.InvalidRequest("No updates provided")
	}
	return p, nil
}
