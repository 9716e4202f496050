//go:build integration

package users_test

import (
	"context"
	"testing"

	"github.com/JustinTDCT/mediacat/internal/apperr"
	"github.com/JustinTDCT/mediacat/internal/models"
	"github.com/JustinTDCT/mediacat/internal/testinfra"
	"github.com/JustinTDCT/mediacat/internal/users"
)

func TestRepositoryLifecycle(t *testing.T) {
	repo := users.NewRepository(testinfra.Postgres(t))
	ctx := context.Background()

	u := &models.User{Username: "alice", PasswordHash: "h1", Role: models.RoleUser, IsActive: true}
	if err := repo.Create(ctx, u); err != nil {
		t.Fatal(err)
	}
	if u.ID == 0 || u.CreatedAt.IsZero() {
		t.Fatalf("create did not fill id/created_at: %+v", u)
	}

	dup := &models.User{Username: "alice", PasswordHash: "h2", Role: models.RoleUser, IsActive: true}
	if err := repo.Create(ctx, dup); !apperr.Is(err, apperr.KindConflict) {
		t.Errorf("duplicate = %v, want conflict", err)
	}

	got, err := repo.GetByUsername(ctx, "alice")
	if err != nil || got.ID != u.ID {
		t.Fatalf("by username = %+v, %v", got, err)
	}

	updated, err := repo.Update(ctx, u.ID, users.Patch{
		IsActive: models.Some(false),
		Role:     models.Some(models.RoleAdmin),
	})
	if err != nil {
		t.Fatal(err)
	}
	if updated.IsActive || updated.Role != models.RoleAdmin || updated.PasswordHash != "h1" {
		t.Errorf("partial update = %+v", updated)
	}

	if err := repo.SetPassword(ctx, "alice", "h3"); err != nil {
		t.Fatal(err)
	}
	got, _ = repo.GetByID(ctx, u.ID)
	if got.PasswordHash != "h3" {
		t.Errorf("password hash = %q", got.PasswordHash)
	}

	if _, err := repo.GetByID(ctx, 9999); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("missing = %v", err)
	}
	if _, err := repo.Update(ctx, 9999, users.Patch{IsActive: models.Some(true)}); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("update missing = %v", err)
	}

	list, err := repo.List(ctx)
	if err != nil || len(list) != 1 {
		t.Errorf("list = %d, %v", len(list), err)
	}
}
