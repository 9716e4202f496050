package watchhistory

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JustinTDCT/mediacat/internal/apperr"
	"github.com/JustinTDCT/mediacat/internal/auth"
	"github.com/JustinTDCT/mediacat/internal/authz"
	"github.com/JustinTDCT/mediacat/internal/httputil"
	"github.com/JustinTDCT/mediacat/internal/validation"
)

type Store interface {
	History(ctx context.Context, userID int64) ([]*Entry, error)
	SetPosition(ctx context.Context, userID, mediaID int64, position float64) (*Entry, error)
	Later(ctx context.Context, userID int64) ([]*LaterEntry, error)
	AddLater(ctx context.Context, userID, mediaID int64) error
	RemoveLater(ctx context.Context, userID, mediaID int64) error
}

type Access interface {
	Require(obj, act string) func(http.Handler) http.Handler
}

type Handler struct {
	repo Store
}

func NewHandler(repo Store) *Handler {
	return &Handler{repo: repo}
}

// Register mounts the watch-state routes on the media router r.
func (h *Handler) Register(r chi.Router, access Access) {
	r.With(access.Require(authz.ObjWatchState, authz.ActRead)).Get("/me/watch-history", h.history)
	r.With(access.Require(authz.ObjWatchState, authz.ActRead)).Get("/me/watch-later", h.later)

	r.Group(func(r chi.Router) {
		r.Use(access.Require(authz.ObjWatchState, authz.ActWrite))
		r.Put("/{id}/watch-history", h.setPosition)
		r.Post("/{id}/watch-later", h.addLater)
		r.Delete("/{id}/watch-later", h.removeLater)
	})
}

func sessionUser(r *http.Request) (int64, error) {
	id := auth.UserFromContext(r.Context())
	if id == nil {
		return 0, apperr.Unauthenticated("Authentication required")
	}
	return id.UserID, nil
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	userID, err := sessionUser(r)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	entries, err := h.repo.History(r.Context(), userID)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, entries)
}

func (h *Handler) setPosition(w http.ResponseWriter, r *http.Request) {
	userID, err := sessionUser(r)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	mediaID, err := httputil.IDParam(r, "id")
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	var req PositionRequest
	if err := httputil.ReadJSON(w, r, &req); err != nil {
		httputil.Error(w, r, err)
		return
	}
	if err := validation.Struct(&req); err != nil {
		httputil.Error(w, r, err)
		return
	}

	entry, err := h.repo.SetPosition(r.Context(), userID, mediaID, *req.PositionSeconds)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, entry)
}

func (h *Handler) later(w http.ResponseWriter, r *http.Request) {
	userID, err := sessionUser(r)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	entries, err := h.repo.Later(r.Context(), userID)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, entries)
}

func (h *Handler) addLater(w http.ResponseWriter, r *http.Request) {
	userID, err := sessionUser(r)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	mediaID, err := httputil.IDParam(r, "id")
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	if err := h.repo.AddLater(r.Context(), userID, mediaID); err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.WriteStatus(w, http.StatusCreated)
}

func (h *Handler) removeLater(w http.ResponseWriter, r *http.Request) {
	userID, err := sessionUser(r)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	mediaID, err := httputil.IDParam(r, "id")
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	if err := h.repo.RemoveLater(r.Context(), userID, mediaID); err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.WriteStatus(w, http.StatusOK)
}
