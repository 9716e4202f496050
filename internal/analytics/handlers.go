package analytics

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JustinTDCT/mediacat/internal/httputil"
)

type Handler struct {
	counter Counter
}

func NewHandler(counter Counter) *Handler {
	return &Handler{counter: counter}
}

// Router serves GET / with the current totals. Callers gate it on the
// admin role.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.stats)
	return r
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	counts, err := h.counter.Counts(r.Context())
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	record(counts)
	httputil.WriteJSON(w, http.StatusOK, counts)
}
