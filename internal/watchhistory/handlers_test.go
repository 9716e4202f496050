package watchhistory

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/JustinTDCT/mediacat/internal/apperr"
	"github.com/JustinTDCT/mediacat/internal/auth"
	"github.com/JustinTDCT/mediacat/internal/authz"
	"github.com/JustinTDCT/mediacat/internal/models"
)

type pair struct{ user, media int64 }

type memStore struct {
	mu      sync.Mutex
	media   map[int64]bool
	history map[pair]*Entry
	later   map[pair]time.Time
	clock   time.Time
}

func newMemStore(mediaIDs ...int64) *memStore {
	s := &memStore{
		media:   map[int64]bool{},
		history: map[pair]*Entry{},
		later:   map[pair]time.Time{},
		clock:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	for _, id := range mediaIDs {
		s.media[id] = true
	}
	return s
}

func (s *memStore) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *memStore) History(_ context.Context, userID int64) ([]*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*Entry{}
	for k, e := range s.history {
		if k.user == userID {
			cp := *e
			cp.Title = "Title " + strconv.FormatInt(k.media, 10)
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *memStore) SetPosition(_ context.Context, userID, mediaID int64, position float64) (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.media[mediaID] {
		return nil, apperr.NotFound("Media not found")
	}
	e := &Entry{MediaID: mediaID, PositionSeconds: position, UpdatedAt: s.tick()}
	s.history[pair{userID, mediaID}] = e
	cp := *e
	return &cp, nil
}

func (s *memStore) Later(_ context.Context, userID int64) ([]*LaterEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*LaterEntry{}
	for k, at := range s.later {
		if k.user == userID {
			out = append(out, &LaterEntry{MediaID: k.media, CreatedAt: at})
		}
	}
	return out, nil
}

func (s *memStore) AddLater(_ context.Context, userID, mediaID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.media[mediaID] {
		return apperr.NotFound("Media not found")
	}
	k := pair{userID, mediaID}
	if _, ok := s.later[k]; !ok {
		s.later[k] = s.tick()
	}
	return nil
}

func (s *memStore) RemoveLater(_ context.Context, userID, mediaID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.later, pair{userID, mediaID})
	return nil
}

func newRouter(t *testing.T, store Store) http.Handler {
	t.Helper()
	enforcer, err := authz.NewEnforcer("")
	if err != nil {
		t.Fatal(err)
	}
	r := chi.NewRouter()
	r.Route("/api/media", func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				uid, _ := strconv.ParseInt(r.Header.Get("X-Test-User"), 10, 64)
				if uid == 0 {
					next.ServeHTTP(w, r)
					return
				}
				id := &auth.Identity{UserID: uid, Username: "u", Role: models.RoleUser}
				next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
			})
		})
		NewHandler(store).Register(r, enforcer)
	})
	return r
}

func do(h http.Handler, user int64, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if user != 0 {
		req.Header.Set("X-Test-User", strconv.FormatInt(user, 10))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestSetPositionUpserts(t *testing.T) {
	store := newMemStore(7)
	h := newRouter(t, store)

	first := do(h, 1, http.MethodPut, "/api/media/7/watch-history", `{"position_seconds":30}`)
	if first.Code != http.StatusOK {
		t.Fatalf("first = %d %s", first.Code, first.Body)
	}
	second := do(h, 1, http.MethodPut, "/api/media/7/watch-history", `{"position_seconds":95.5}`)
	if second.Code != http.StatusOK {
		t.Fatalf("second = %d %s", second.Code, second.Body)
	}

	var a, b Entry
	_ = json.Unmarshal(first.Body.Bytes(), &a)
	_ = json.Unmarshal(second.Body.Bytes(), &b)
	if !b.UpdatedAt.After(a.UpdatedAt) {
		t.Errorf("timestamp not refreshed: %v then %v", a.UpdatedAt, b.UpdatedAt)
	}
	if len(store.history) != 1 || store.history[pair{1, 7}].PositionSeconds != 95.5 {
		t.Errorf("history = %+v", store.history)
	}
}

func TestSetPositionValidation(t *testing.T) {
	h := newRouter(t, newMemStore(7))
	tests := []struct {
		name, path, body string
		status           int
	}{
		{"negative", "/api/media/7/watch-history", `{"position_seconds":-1}`, http.StatusBadRequest},
		{"missing", "/api/media/7/watch-history", `{}`, http.StatusBadRequest},
		{"string", "/api/media/7/watch-history", `{"position_seconds":"10"}`, http.StatusBadRequest},
		{"zero", "/api/media/7/watch-history", `{"position_seconds":0}`, http.StatusOK},
		{"bad id", "/api/media/x/watch-history", `{"position_seconds":1}`, http.StatusBadRequest},
		{"unknown media", "/api/media/8/watch-history", `{"position_seconds":1}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := do(h, 1, http.MethodPut, tt.path, tt.body); rec.Code != tt.status {
				t.Errorf("status = %d, want %d body=%s", rec.Code, tt.status, rec.Body)
			}
		})
	}
}

func TestWatchLaterIdempotent(t *testing.T) {
	store := newMemStore(3)
	h := newRouter(t, store)

	for i := 0; i < 2; i++ {
		if rec := do(h, 1, http.MethodPost, "/api/media/3/watch-later", ""); rec.Code != http.StatusCreated {
			t.Fatalf("add #%d = %d", i, rec.Code)
		}
	}
	if len(store.later) != 1 {
		t.Errorf("rows = %d, want 1", len(store.later))
	}

	for i := 0; i < 2; i++ {
		rec := do(h, 1, http.MethodDelete, "/api/media/3/watch-later", "")
		if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok"`) {
			t.Fatalf("remove #%d = %d %s", i, rec.Code, rec.Body)
		}
	}
	if len(store.later) != 0 {
		t.Errorf("rows = %d, want 0", len(store.later))
	}
}

func TestWatchStateScopedToSessionUser(t *testing.T) {
	store := newMemStore(1, 2)
	h := newRouter(t, store)

	do(h, 10, http.MethodPut, "/api/media/1/watch-history", `{"position_seconds":12}`)
	do(h, 10, http.MethodPost, "/api/media/2/watch-later", "")
	do(h, 20, http.MethodPut, "/api/media/2/watch-history", `{"position_seconds":40}`)

	var history []Entry
	rec := do(h, 20, http.MethodGet, "/api/media/me/watch-history", "")
	if err := json.Unmarshal(rec.Body.Bytes(), &history); err != nil {
		t.Fatal(err)
	}
	if len(history) != 1 || history[0].MediaID != 2 {
		t.Errorf("user 20 history = %+v", history)
	}

	var later []LaterEntry
	rec = do(h, 20, http.MethodGet, "/api/media/me/watch-later", "")
	if err := json.Unmarshal(rec.Body.Bytes(), &later); err != nil {
		t.Fatal(err)
	}
	if len(later) != 0 {
		t.Errorf("user 20 sees another user's watch-later: %+v", later)
	}

	do(h, 20, http.MethodDelete, "/api/media/2/watch-later", "")
	if _, ok := store.later[pair{10, 2}]; !ok {
		t.Error("user 20 removed user 10's entry")
	}
}

func TestWatchRoutesRequireSession(t *testing.T) {
	h := newRouter(t, newMemStore(1))
	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/media/me/watch-history"},
		{http.MethodGet, "/api/media/me/watch-later"},
		{http.MethodPut, "/api/media/1/watch-history"},
		{http.MethodPost, "/api/media/1/watch-later"},
		{http.MethodDelete, "/api/media/1/watch-later"},
	} {
		if rec := do(h, 0, tc.method, tc.path, `{"position_seconds":1}`); rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s = %d, want 401", tc.method, tc.path, rec.Code)
		}
	}
}
