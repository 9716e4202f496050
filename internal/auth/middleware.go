package auth

import (
	"context"
	"net/http"

	"github.com/JustinTDCT/mediacat/internal/httputil"
	"github.com/JustinTDCT/mediacat/internal/logging"
)

type contextKey string

const ContextUser contextKey = "user"

func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, ContextUser, id)
}

// UserFromContext returns the verified identity, or nil outside RequireAuth.
func UserFromContext(ctx context.Context) *Identity {
	if v, ok := ctx.Value(ContextUser).(*Identity); ok {
		return v
	}
	return nil
}

// RequireAuth rejects requests without a valid session with 401.
func RequireAuth(s *Sessions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := s.Authenticate(r)
			if err != nil {
				httputil.Error(w, r, err)
				return
			}
			ctx := WithIdentity(r.Context(), id)
			ctx = logging.ContextWithLogger(ctx, logging.Ctx(ctx).With().Int64("user_id", id.UserID).Logger())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
