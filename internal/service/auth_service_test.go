package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yourorg/estatehub/internal/domain"
	"github.com/yourorg/estatehub/internal/security/auth"
)

type memUserRepo struct {
	byID    map[string]*domain.User
	byEmail map[string]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byID: map[string]*domain.User{}, byEmail: map[string]*domain.User{}}
}

func (m *memUserRepo) Create(_ context.Context, u *domain.User) error {
	if _, exists := m.byEmail[u.Email]; exists {
		return domain.ErrDuplicate
	}
	if u.ID == "" {
		u.ID = domain.NewID()
	}
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	m.byID[u.ID] = u
	m.byEmail[u.Email] = u
	return nil
}
func (m *memUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	if u, ok := m.byID[id]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}
func (m *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	if u, ok := m.byEmail[email]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}
func (m *memUserRepo) Update(_ context.Context, u *domain.User) error {
	if _, ok := m.byID[u.ID]; !ok {
		return domain.ErrNotFound
	}
	u.UpdatedAt = time.Now()
	m.byID[u.ID] = u
	m.byEmail[u.Email] = u
	return nil
}

func testTokenManager() *auth.TokenManager {
	return auth.NewTokenManager("test-secret", "estatehub-test", time.Hour)
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	repo := newMemUserRepo()
	s := NewAuthService(repo, testTokenManager(), nil)

	// Register
	r, err := s.Register(ctx, RegisterInput{Name: "Alice", Email: "alice@example.com", Password: "Password123"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if r.User.ID == "" || r.Token == "" {
		t.Fatalf("expected user id and token")
	}

	// Duplicate email
	if _, err := s.Register(ctx, RegisterInput{Name: "Alice2", Email: "alice@example.com", Password: "Password123"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected duplicate email error, got %v", err)
	}

	// Short password
	if _, err := s.Register(ctx, RegisterInput{Name: "Bob", Email: "bob@example.com", Password: "short"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected short password error, got %v", err)
	}

	// Login ok
	lr, err := s.Login(ctx, "alice@example.com", "Password123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if lr.Token == "" {
		t.Fatalf("expected token on login")
	}

	// Login wrong password
	if _, err := s.Login(ctx, "alice@example.com", "Wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}

	// Login unknown email gets the same error as a wrong password
	if _, err := s.Login(ctx, "nobody@example.com", "Password123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials for unknown email, got %v", err)
	}
}

func TestProfileHidesPasswordHash(t *testing.T) {
	ctx := context.Background()
	repo := newMemUserRepo()
	s := NewAuthService(repo, testTokenManager(), nil)

	r, err := s.Register(ctx, RegisterInput{Name: "Carol", Email: "carol@example.com", Password: "Password123", City: "Chennai"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	u, err := s.Profile(ctx, r.User.ID)
	if err != nil {
		t.Fatalf("profile failed: %v", err)
	}
	if u.PasswordHash != "" {
		t.Fatalf("profile must not expose the password hash")
	}
	if u.City != "Chennai" {
		t.Fatalf("expected city Chennai, got %q", u.City)
	}
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	repo := newMemUserRepo()
	s := NewAuthService(repo, testTokenManager(), nil)
	reg, err := s.Register(ctx, RegisterInput{Name: "Bob", Email: "bob@example.com", Password: "OldPass123"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	// Wrong old password
	if err := s.ChangePassword(ctx, reg.User.ID, "bad", "NewPass123"); err == nil {
		t.Fatalf("expected wrong old password error")
	}
	// Good change
	if err := s.ChangePassword(ctx, reg.User.ID, "OldPass123", "NewPass123"); err != nil {
		t.Fatalf("change password failed: %v", err)
	}
	// Old password should no longer work
	if _, err := s.Login(ctx, "bob@example.com", "OldPass123"); err == nil {
		t.Fatalf("expected old password to fail after change")
	}
	// New password works
	if _, err := s.Login(ctx, "bob@example.com", "NewPass123"); err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}
}
