package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		kind   Kind
		status int
	}{
		{"invalid", InvalidRequest("bad"), KindInvalidRequest, http.StatusBadRequest},
		{"unauthenticated", Unauthenticated("no"), KindUnauthenticated, http.StatusUnauthorized},
		{"forbidden", Forbidden("no"), KindForbidden, http.StatusForbidden},
		{"not found", NotFound("gone"), KindNotFound, http.StatusNotFound},
		{"conflict", Conflict("dup"), KindConflict, http.StatusConflict},
		{"wrapped", fmt.Errorf("update media: %w", NotFound("gone")), KindNotFound, http.StatusNotFound},
		{"plain", errors.New("boom"), KindUnexpected, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := KindOf(tt.err)
			if got != tt.kind {
				t.Fatalf("KindOf = %v, want %v", got, tt.kind)
			}
			if got.Status() != tt.status {
				t.Errorf("Status = %d, want %d", got.Status(), tt.status)
			}
		})
	}
}

func TestPublicMessageHidesUnexpected(t *testing.T) {
	cause := errors.New("pq: connection refused")
	if got := PublicMessage(Unexpected(cause)); got != "Unexpected error" {
		t.Errorf("PublicMessage(Unexpected) = %q", got)
	}
	if got := PublicMessage(cause); got != "Unexpected error" {
		t.Errorf("PublicMessage(plain) = %q", got)
	}
	if got := PublicMessage(Conflict("Username already exists")); got != "Username already exists" {
		t.Errorf("PublicMessage(Conflict) = %q", got)
	}
	if !errors.Is(Unexpected(cause), cause) {
		t.Error("Unexpected should unwrap to its cause")
	}
}
