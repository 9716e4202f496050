package media

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/JustinTDCT/mediacat/internal/apperr"
	"github.com/JustinTDCT/mediacat/internal/authz"
	"github.com/JustinTDCT/mediacat/internal/httputil"
	"github.com/JustinTDCT/mediacat/internal/logging"
	"github.com/JustinTDCT/mediacat/internal/models"
	"github.com/JustinTDCT/mediacat/internal/validation"
)

type Store interface {
	List(ctx context.Context, f Filter) ([]*Media, error)
	GetByID(ctx context.Context, id int64) (*Media, error)
	Create(ctx context.Context, m *Media) (*Media, error)
	Update(ctx context.Context, id int64, p MediaPatch) (*Media, error)
	Delete(ctx context.Context, id int64) error
}

type StreamStore interface {
	ListByMedia(ctx context.Context, mediaID int64) ([]*Stream, error)
	Create(ctx context.Context, s *Stream) (*Stream, error)
	Update(ctx context.Context, id int64, p StreamPatch) (*Stream, error)
	Delete(ctx context.Context, id int64) error
}

type SubtitleStore interface {
	ListByMedia(ctx context.Context, mediaID int64) ([]*Subtitle, error)
	Create(ctx context.Context, s *Subtitle) (*Subtitle, error)
	Update(ctx context.Context, id int64, p SubtitlePatch) (*Subtitle, error)
	Delete(ctx context.Context, id int64) error
}

// Access gates a route on a policy object and action.
type Access interface {
	Require(obj, act string) func(http.Handler) http.Handler
}

type Handler struct {
	media     Store
	streams   StreamStore
	subtitles SubtitleStore
}

func NewHandler(media Store, streams StreamStore, subtitles SubtitleStore) *Handler {
	return &Handler{media: media, streams: streams, subtitles: subtitles}
}

// Register mounts the catalog routes on r, which must already require a
// session. Mutating routes additionally pass through writeLimit.
func (h *Handler) Register(r chi.Router, access Access, writeLimit func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(access.Require(authz.ObjCatalog, authz.ActRead))
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
		r.Get("/{id}/streams", h.listStreams)
		r.Get("/{id}/subtitles", h.listSubtitles)
	})

	r.Group(func(r chi.Router) {
		r.Use(writeLimit)

		r.With(access.Require(authz.ObjMedia, authz.ActWrite)).Post("/", h.create)
		r.With(access.Require(authz.ObjMedia, authz.ActWrite)).Patch("/{id}", h.update)
		r.With(access.Require(authz.ObjMedia, authz.ActWrite)).Delete("/{id}", h.delete)

		r.With(access.Require(authz.ObjStreams, authz.ActWrite)).Post("/{id}/streams", h.createStream)
		r.With(access.Require(authz.ObjStreams, authz.ActWrite)).Patch("/streams/{id}", h.updateStream)
		r.With(access.Require(authz.ObjStreams, authz.ActWrite)).Delete("/streams/{id}", h.deleteStream)

		r.With(access.Require(authz.ObjSubtitles, authz.ActWrite)).Post("/{id}/subtitles", h.createSubtitle)
		r.With(access.Require(authz.ObjSubtitles, authz.ActWrite)).Patch("/subtitles/{id}", h.updateSubtitle)
		r.With(access.Require(authz.ObjSubtitles, authz.ActWrite)).Delete("/subtitles/{id}", h.deleteSubtitle)
	})
}

// parseFilter reads ?category, ?type and ?parent_id. Empty values do not filter.
func parseFilter(r *http.Request) (Filter, error) {
	var f Filter
	q := r.URL.Query()
	fields := map[string]string{}

	if v := q.Get("category"); v != "" {
		c := models.MediaCategory(v)
		if !c.Valid() {
			fields["category"] = "must be one of movie, anime, tv"
		}
		f.Category = &c
	}
	if v := q.Get("type"); v != "" {
		t := models.MediaType(v)
		if !t.Valid() {
			fields["type"] = "must be one of movie, show, season, episode"
		}
		f.Type = &t
	}
	if v := q.Get("parent_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			fields["parent_id"] = "must be a positive integer"
		}
		f.ParentID = &id
	}
	if len(fields) > 0 {
		e := apperr.InvalidRequest("Invalid query")
		e.Fields = fields
		return Filter{}, e
	}
	return f, nil
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	items, err := h.media.List(r.Context(), f)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id")
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	m, err := h.media.GetByID(r.Context(), id)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, m)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateMediaRequest
	if err := httputil.ReadJSON(w, r, &req); err != nil {
		httputil.Error(w, r, err)
		return
	}
	if err := validation.Struct(&req); err != nil {
		httputil.Error(w, r, err)
		return
	}
	m, err := h.media.Create(r.Context(), req.toMedia())
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	logging.Ctx(r.Context()).Info().Int64("media_id", m.ID).Str("type", string(m.Type)).Msg("media created")
	httputil.WriteJSON(w, http.StatusCreated, m)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id")
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	var p MediaPatch
	if err := decodePatch(w, r, &p); err != nil {
		httputil.Error(w, r, err)
		return
	}
	if err := p.check(); err != nil {
		httputil.Error(w, r, err)
		return
	}
	m, err := h.media.Update(r.Context(), id, p)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, m)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id")
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	if err := h.media.Delete(r.Context(), id); err != nil {
		httputil.Error(w, r, err)
		return
	}
	logging.Ctx(r.Context()).Info().Int64("media_id", id).Msg("media deleted")
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listStreams(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id")
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	streams, err := h.streams.ListByMedia(r.Context(), id)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, streams)
}

func (h *Handler) createStream(w http.ResponseWriter, r *http.Request) {
	mediaID, err := httputil.IDParam(r, "id")
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	var req CreateStreamRequest
	if err := httputil.ReadJSON(w, r, &req); err != nil {
		httputil.Error(w, r, err)
		return
	}
	if err := validation.Struct(&req); err != nil {
		httputil.Error(w, r, err)
		return
	}
	s, err := h.streams.Create(r.Context(), &Stream{
		MediaID:      mediaID,
		SourceURL:    req.SourceURL,
		Format:       req.Format,
		QualityLabel: req.QualityLabel,
		Resolution:   req.Resolution,
		Language:     req.Language,
	})
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, s)
}

func (h *Handler) updateStream(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id")
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	var p StreamPatch
	if err := decodePatch(w, r, &p); err != nil {
		httputil.Error(w, r, err)
		return
	}
	if err := p.check(); err != nil {
		httputil.Error(w, r, err)
		return
	}
	s, err := h.streams.Update(r.Context(), id, p)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, s)
}

func (h *Handler) deleteStream(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id")
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	if err := h.streams.Delete(r.Context(), id); err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.WriteStatus(w, http.StatusOK)
}

func (h *Handler) listSubtitles(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id")
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	subs, err := h.subtitles.ListByMedia(r.Context(), id)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, subs)
}

func (h *Handler) createSubtitle(w http.ResponseWriter, r *http.Request) {
	mediaID, err := httputil.IDParam(r, "id")
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	var req CreateSubtitleRequest
	if err := httputil.ReadJSON(w, r, &req); err != nil {
		httputil.Error(w, r, err)
		return
	}
	if err := validation.Struct(&req); err != nil {
		httputil.Error(w, r, err)
		return
	}
	s, err := h.subtitles.Create(r.Context(), &Subtitle{
		MediaID:   mediaID,
		SourceURL: req.SourceURL,
		Format:    req.Format,
		Label:     req.Label,
		Language:  req.Language,
		IsDefault: req.IsDefault,
	})
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, s)
}

func (h *Handler) updateSubtitle(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id")
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	var p SubtitlePatch
	if err := decodePatch(w, r, &p); err != nil {
		httputil.Error(w, r, err)
		return
	}
	if err := p.check(); err != nil {
		httputil.Error(w, r, err)
		return
	}
	s, err := h.subtitles.Update(r.Context(), id, p)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, s)
}

func (h *Handler) deleteSubtitle(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id")
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	if err := h.subtitles.Delete(r.Context(), id); err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.WriteStatus(w, http.StatusOK)
}

func decodePatch(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	if err := httputil.ReadJSON(w, r, dst); err != nil {
		return err
	}
	return validation.Struct(dst)
}
