//go:build integration

package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/JustinTDCT/mediacat/internal/auth"
	"github.com/JustinTDCT/mediacat/internal/testinfra"
)

func TestRedisRevoker(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: testinfra.Redis(t)})
	t.Cleanup(func() { client.Close() })
	ctx := context.Background()
	r := auth.NewRedisRevoker(client)

	if revoked, err := r.IsRevoked(ctx, "tok-1"); err != nil || revoked {
		t.Fatalf("fresh token = %v, %v", revoked, err)
	}
	if err := r.Revoke(ctx, "tok-1", time.Now().Add(time.Minute)); err != nil {
		t.Fatal(err)
	}
	if revoked, err := r.IsRevoked(ctx, "tok-1"); err != nil || !revoked {
		t.Errorf("revoked token = %v, %v", revoked, err)
	}

	if err := r.Revoke(ctx, "tok-2", time.Now().Add(-time.Second)); err != nil {
		t.Fatal(err)
	}
	if revoked, _ := r.IsRevoked(ctx, "tok-2"); revoked {
		t.Error("already-expired token stored")
	}
}
