package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/primeshop/account-service/internal/core/domain"
	"github.com/primeshop/account-service/internal/core/ports"
	"github.com/primeshop/account-service/internal/core/token"
)

func seedUsers(t *testing.T, repo *stubUserRepo, usernames ...string) {
	t.Helper()
	issuer, _ := token.NewIssuer(testSecret, "iss", "aud", time.Hour)
	svc := NewAccountService(repo, issuer, nil, nil, zerolog.Nop())
	for _, name := range usernames {
		if _, err := svc.RegisterUser(context.Background(), ports.RegisterUserInput{
			Username: name,
			Email:    name + "@x.com",
			Password: "P@ss1",
			FullName: "Full " + name,
		}); err != nil {
			t.Fatalf("seed %s: %v", name, err)
		}
	}
}

func TestUserService_LockUnlock(t *testing.T) {
	repo := newStubUserRepo()
	seedUsers(t, repo, "alice")
	svc := NewUserService(repo, zerolog.Nop())
	id := repo.users["alice"].ID

	if err := svc.LockUser(context.Background(), id, false); err != nil {
		t.Fatalf("LockUser: %v", err)
	}
	if !repo.users["alice"].Locked() {
		t.Fatalf("expected account to be locked after enabled=false")
	}

	if err := svc.LockUser(context.Background(), id, true); err != nil {
		t.Fatalf("LockUser: %v", err)
	}
	if repo.users["alice"].Locked() {
		t.Fatalf("expected account to be unlocked after enabled=true")
	}

	if err := svc.LockUser(context.Background(), "missing", false); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserService_ChangePassword(t *testing.T) {
	repo := newStubUserRepo()
	seedUsers(t, repo, "alice")
	svc := NewUserService(repo, zerolog.Nop())
	id := repo.users["alice"].ID

	if err := svc.ChangePassword(context.Background(), id, "nope", "NewP@ss"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong current password, got %v", err)
	}
	if repo.passwords[id] != "P@ss1" {
		t.Fatalf("password must not change on a failed verification")
	}

	if err := svc.ChangePassword(context.Background(), id, "P@ss1", "NewP@ss"); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	if repo.passwords[id] != "NewP@ss" {
		t.Fatalf("expected stored password to be replaced")
	}
}

func TestUserService_ListUsers_Paging(t *testing.T) {
	repo := newStubUserRepo()
	seedUsers(t, repo, "alice", "bob", "carol")
	svc := NewUserService(repo, zerolog.Nop())

	page1, err := svc.ListUsers(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(page1) != 2 {
		t.Fatalf("expected 2 users on page 1, got %d", len(page1))
	}

	page2, err := svc.ListUsers(context.Background(), 2, 2)
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(page2) != 1 {
		t.Fatalf("expected 1 user on page 2, got %d", len(page2))
	}

	// Out-of-range inputs are clamped, not rejected.
	if _, err := svc.ListUsers(context.Background(), 0, -5); err != nil {
		t.Fatalf("expected clamped paging to succeed, got %v", err)
	}
}

func TestUserService_Search(t *testing.T) {
	repo := newStubUserRepo()
	seedUsers(t, repo, "alice", "bob")
	svc := NewUserService(repo, zerolog.Nop())

	found, err := svc.SearchUsers(context.Background(), "alice")
	if err != nil {
		t.Fatalf("SearchUsers: %v", err)
	}
	if len(found) != 1 || found[0].Username != "alice" {
		t.Fatalf("expected alice, got %+v", found)
	}

	if _, err := svc.SearchUsers(context.Background(), ""); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for empty query, got %v", err)
	}
}

func TestUserService_UpdateUser(t *testing.T) {
	repo := newStubUserRepo()
	seedUsers(t, repo, "alice")
	svc := NewUserService(repo, zerolog.Nop())
	id := repo.users["alice"].ID

	phone := "555-0199"
	updated, err := svc.UpdateUser(context.Background(), id, ports.UserUpdate{Phone: &phone})
	if err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	if updated.Phone != phone {
		t.Fatalf("expected phone %q, got %q", phone, updated.Phone)
	}
	if updated.FullName != "Full alice" {
		t.Fatalf("untouched fields must survive a partial update, got %q", updated.FullName)
	}
}
