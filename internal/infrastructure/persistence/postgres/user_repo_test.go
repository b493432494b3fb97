package postgres

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	authDomain "trade-signals/internal/domain/auth"
)

func TestUserRepo_FindByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %s", err)
	}
	defer db.Close()

	cols := []string{"id", "email", "name", "role", "status", "password_hash"}
	mock.ExpectQuery("SELECT (.+) FROM users WHERE email").
		WithArgs("admin@example.com").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("u-1", "admin@example.com", "Admin", "admin", "active", "hash"))

	repo := NewUserRepo(db)
	u, err := repo.FindByEmail(context.Background(), "admin@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.ID != "u-1" || u.Role != authDomain.RoleAdmin || u.Status != authDomain.StatusActive {
		t.Fatalf("unexpected user: %+v", u)
	}
}

func TestUserRepo_FindByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %s", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM users WHERE id").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	repo := NewUserRepo(db)
	if _, err := repo.FindByID(context.Background(), "missing"); err == nil {
		t.Fatal("expected error for missing user")
	}
}
