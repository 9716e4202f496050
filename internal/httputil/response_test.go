package httputil

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/JustinTDCT/mediacat/internal/apperr"
)

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorBody {
	t.Helper()
	var body ErrorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return body
}

func TestErrorMapsKinds(t *testing.T) {
	tests := []struct {
		err     error
		status  int
		code    string
		message string
	}{
		{apperr.InvalidRequest("No updates provided"), 400, "INVALID_REQUEST", "No updates provided"},
		{apperr.Unauthenticated("Invalid credentials"), 401, "UNAUTHORIZED", "Invalid credentials"},
		{apperr.Forbidden("Forbidden"), 403, "FORBIDDEN", "Forbidden"},
		{apperr.NotFound("Media not found"), 404, "NOT_FOUND", "Media not found"},
		{apperr.Conflict("Username already exists"), 409, "CONFLICT", "Username already exists"},
		{errors.New("pq: relation does not exist"), 500, "INTERNAL", "Unexpected error"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			Error(rec, req, tt.err)

			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			body := decodeError(t, rec)
			if body.Code != tt.code || body.Message != tt.message {
				t.Errorf("body = %+v", body)
			}
			if strings.Contains(rec.Body.String(), "pq:") {
				t.Error("internal detail leaked")
			}
		})
	}
}

func TestReadJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"ok", `{"name":"a","extra":1}`, ""},
		{"malformed", `{"name":`, "Invalid payload"},
		{"trailing document", `{"name":"a"} {"name":"b"}`, "Invalid payload"},
		{"too large", `{"name":"` + strings.Repeat("a", MaxBodyBytes) + `"}`, "*"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var dst struct {
				Name string `json:"name"`
			}
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			err := ReadJSON(rec, req, &dst)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if dst.Name != "a" {
					t.Errorf("name = %q", dst.Name)
				}
				return
			}
			if apperr.KindOf(err) != apperr.KindInvalidRequest {
				t.Fatalf("err = %v, want InvalidRequest", err)
			}
			if tt.wantErr != "*" && apperr.PublicMessage(err) != tt.wantErr {
				t.Fatalf("err = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestIDParam(t *testing.T) {
	for raw, ok := range map[string]bool{"1": true, "42": true, "0": false, "-3": false, "abc": false, "1.5": false} {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", raw)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

		_, err := IDParam(req, "id")
		if ok && err != nil {
			t.Errorf("IDParam(%q) error: %v", raw, err)
		}
		if !ok && apperr.KindOf(err) != apperr.KindInvalidRequest {
			t.Errorf("IDParam(%q) = %v, want InvalidRequest", raw, err)
		}
	}
}

func TestWriteStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteStatus(rec, http.StatusCreated)
	if rec.Code != http.StatusCreated || strings.TrimSpace(rec.Body.String()) != `{"status":"ok"}` {
		t.Errorf("got %d %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}
}
