package sqlstore

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/portfolio/internal/apperror"
	"github.com/sakif/portfolio/internal/model"
)

func createTestUser(t *testing.T, u *UserDB, email string) *model.User {
	t.Helper()
	user := &model.User{Email: email, Name: "Admin", PasswordHash: "hash-v1"}
	if err := u.Upsert(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// =========================================================================
// UPSERT TESTS
// =========================================================================

func TestUserUpsert_Creates(t *testing.T) {
	db := newTestDB(t)

	user := createTestUser(t, db.Users(), "admin@example.com")

	if user.ID == "" {
		t.Error("Upsert() did not set user.ID")
	}
	if user.Role != model.RoleAdmin {
		t.Errorf("Role = %q, want %q", user.Role, model.RoleAdmin)
	}
	if user.CreatedAt.IsZero() {
		t.Error("Upsert() did not set user.CreatedAt")
	}
}

func TestUserUpsert_UpdatesExistingEmail(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	users := db.Users()

	first := createTestUser(t, users, "admin@example.com")

	again := &model.User{Email: "admin@example.com", Name: "Renamed", PasswordHash: "hash-v2"}
	if err := users.Upsert(ctx, again); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	if again.ID != first.ID {
		t.Errorf("ID = %s, want existing %s", again.ID, first.ID)
	}
	found, err := users.GetByEmail(ctx, "admin@example.com")
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	if found.Name != "Renamed" || found.PasswordHash != "hash-v2" {
		t.Errorf("GetByEmail() = %+v, want updated name and hash", found)
	}
}

// =========================================================================
// GET / PASSWORD TESTS
// =========================================================================

func TestUserGet_NotFound(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if _, err := db.Users().GetByID(ctx, "nope"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
	if _, err := db.Users().GetByEmail(ctx, "nobody@example.com"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByEmail() error = %v, want ErrNotFound", err)
	}
}

func TestUserUpdatePassword(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db.Users(), "admin@example.com")

	if err := db.Users().UpdatePassword(ctx, user.ID, "hash-v3"); err != nil {
		t.Fatalf("UpdatePassword() error = %v", err)
	}
	found, err := db.Users().GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if found.PasswordHash != "hash-v3" {
		t.Errorf("PasswordHash = %q, want hash-v3", found.PasswordHash)
	}

	if err := db.Users().UpdatePassword(ctx, "nope", "x"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("UpdatePassword() error = %v, want ErrNotFound", err)
	}
}
