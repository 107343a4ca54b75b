package db

import (
	"testing"

	"readshelf/internal/models"
	"readshelf/internal/testutil"
	"readshelf/internal/utils"

	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn := testutil.OpenDB(t)
	if err := Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func TestEnsureAdminCreatesUser(t *testing.T) {
	conn := openTestDB(t)

	if err := EnsureAdmin(conn, "root", "hunter22"); err != nil {
		t.Fatalf("EnsureAdmin failed: %v", err)
	}

	var user models.User
	if err := conn.Where("username = ?", "root").First(&user).Error; err != nil {
		t.Fatalf("admin not created: %v", err)
	}
	if user.Role != models.RoleAdmin {
		t.Errorf("expected role admin, got %s", user.Role)
	}
	if !utils.CheckPasswordHash("hunter22", user.Password) {
		t.Error("stored password hash does not match")
	}

	// Second call is a no-op
	if err := EnsureAdmin(conn, "root", "other-password"); err != nil {
		t.Fatalf("second EnsureAdmin failed: %v", err)
	}
	var count int64
	conn.Model(&models.User{}).Count(&count)
	if count != 1 {
		t.Errorf("expected 1 user, got %d", count)
	}
}

func TestEnsureAdminPromotesExisting(t *testing.T) {
	conn := openTestDB(t)
	conn.Create(&models.User{Username: "alice", Password: "x", Role: models.RoleUser})

	if err := EnsureAdmin(conn, "alice", "whatever"); err != nil {
		t.Fatalf("EnsureAdmin failed: %v", err)
	}

	var user models.User
	conn.Where("username = ?", "alice").First(&user)
	if user.Role != models.RoleAdmin {
		t.Errorf("expected alice to be promoted, role is %s", user.Role)
	}
	if user.Password != "x" {
		t.Error("existing password must not change")
	}
}

func TestEnsureAdminSkipsWithoutCredentials(t *testing.T) {
	conn := openTestDB(t)
	if err := EnsureAdmin(conn, "", ""); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	var count int64
	conn.Model(&models.User{}).Count(&count)
	if count != 0 {
		t.Errorf("expected no users, got %d", count)
	}
}
