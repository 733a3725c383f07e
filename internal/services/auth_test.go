package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"dispatch-service/internal/adapters/memory"
	"dispatch-service/internal/domain"
	"dispatch-service/internal/ports"
)

func newAuth(now time.Time) *AuthService {
	return &AuthService{
		Users:  memory.NewStore(),
		Secret: []byte("test-secret"),
		Now:    func() time.Time { return now },
	}
}

func TestAuthRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	auth := newAuth(time.Now())

	user, err := auth.Register(ctx, " Priya ", "Priya@Example.com", "s3cret-pass", "")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Email != "priya@example.com" || user.Role != domain.RoleManager || user.Name != "Priya" {
		t.Fatalf("unexpected user: %+v", user)
	}
	if user.PasswordHash == "s3cret-pass" {
		t.Fatal("password stored in clear text")
	}

	token, got, err := auth.Login(ctx, "PRIYA@example.com ", "s3cret-pass")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if got.ID != user.ID {
		t.Fatalf("expected user %q, got %q", user.ID, got.ID)
	}

	claims, err := auth.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != user.ID || claims.Email != user.Email || claims.Role != domain.RoleManager {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	if _, err := auth.Register(ctx, "Dup", "priya@example.com", "other-pass", ""); !errors.Is(err, ports.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestAuthLoginRejectsBadCredentials(t *testing.T) {
	ctx := context.Background()
	auth := newAuth(time.Now())
	if _, err := auth.Register(ctx, "Ravi", "ravi@example.com", "right-pass", ""); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, _, err := auth.Login(ctx, "ravi@example.com", "wrong-pass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for bad password, got %v", err)
	}
	if _, _, err := auth.Login(ctx, "nobody@example.com", "right-pass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestAuthParseRejectsExpiredAndForeignTokens(t *testing.T) {
	issued := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	auth := newAuth(issued)
	user := domain.User{ID: "u1", Email: "a@example.com", Role: domain.RoleAdmin}

	token, err := auth.Issue(user)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	later := newAuth(issued.Add(DefaultTokenTTL + time.Minute))
	if _, err := later.Parse(token); err == nil {
		t.Fatal("expected expired token to be rejected")
	}

	other := newAuth(issued)
	other.Secret = []byte("another-secret")
	if _, err := other.Parse(token); err == nil {
		t.Fatal("expected token signed with another secret to be rejected")
	}

	if _, err := (&AuthService{}).Issue(user); err == nil {
		t.Fatal("expected error for empty secret")
	}
}
