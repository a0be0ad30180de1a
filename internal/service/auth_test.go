package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sakif/dailylog/internal/apperror"
	"github.com/sakif/dailylog/internal/auth"
)

// newTestAuthService returns an AuthService wired with fake dependencies.
func newTestAuthService(t *testing.T, repo *fakeUserRepo) *AuthService {
	t.Helper()

	ts, err := auth.NewTokenService("test-secret-at-least-16-chars!!", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}

	// Cost 4 is bcrypt minimum: makes tests fast
	ps := auth.NewPasswordService(4)

	return NewAuthService(repo, ts, ps, discardLogger())
}

// =========================================================================
// REGISTER / LOGIN TESTS
// =========================================================================

func TestRegister_ThenLogin(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo)

	reg, err := svc.Register(context.Background(), "Ada@Example.com", "correct-horse", "")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if reg.Token == "" {
		t.Fatal("Register() returned empty token")
	}
	if reg.User.Email != "ada@example.com" {
		t.Errorf("Email = %q, want lowercased", reg.User.Email)
	}
	if reg.User.Name != "ada" {
		t.Errorf("Name = %q, want local part of the email", reg.User.Name)
	}
	if reg.User.PasswordHash == "correct-horse" {
		t.Error("password stored in plain text")
	}

	login, err := svc.Login(context.Background(), "ada@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if login.User.ID != reg.User.ID {
		t.Errorf("Login() user = %q, want %q", login.User.ID, reg.User.ID)
	}
}

func TestRegister_Validation(t *testing.T) {
	svc := newTestAuthService(t, newFakeUserRepo())

	cases := []struct {
		name, email, password string
	}{
		{"bad email", "not-an-email", "long-enough"},
		{"short password", "a@example.com", "short"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tc.email, tc.password, "")
			if !errors.Is(err, apperror.ErrValidation) {
				t.Errorf("Register() error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc := newTestAuthService(t, newFakeUserRepo())

	if _, err := svc.Register(context.Background(), "a@example.com", "password1", "A"); err != nil {
		t.Fatalf("first Register() error = %v", err)
	}
	_, err := svc.Register(context.Background(), "a@example.com", "password2", "B")
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("second Register() error = %v, want ErrConflict", err)
	}
}

func TestLogin_Failures(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo)

	if _, err := svc.Register(context.Background(), "a@example.com", "password1", "A"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if _, err := svc.LoginOrRegisterGitHub(context.Background(), &auth.GitHubUser{ID: 7, Login: "gh", Email: "gh@example.com"}); err != nil {
		t.Fatalf("LoginOrRegisterGitHub() error = %v", err)
	}

	cases := []struct {
		name, email, password string
	}{
		{"wrong password", "a@example.com", "password2"},
		{"unknown email", "nobody@example.com", "password1"},
		{"github-only account", "gh@example.com", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), tc.email, tc.password)
			if !errors.Is(err, apperror.ErrUnauthorized) {
				t.Errorf("Login() error = %v, want ErrUnauthorized", err)
			}
		})
	}
}

// =========================================================================
// LoginOrRegisterGitHub TESTS
// =========================================================================

func TestLoginOrRegisterGitHub_NewUser(t *testing.T) {
	svc := newTestAuthService(t, newFakeUserRepo())

	result, err := svc.LoginOrRegisterGitHub(context.Background(), &auth.GitHubUser{
		ID:        42,
		Login:     "octocat",
		Email:     "octocat@github.com",
		AvatarURL: "https://avatars.githubusercontent.com/u/42",
	})
	if err != nil {
		t.Fatalf("LoginOrRegisterGitHub() error = %v", err)
	}
	if result.Token == "" {
		t.Fatal("LoginOrRegisterGitHub() returned empty Token")
	}
	if result.User.Name != "octocat" {
		t.Errorf("User.Name = %q, want login fallback %q", result.User.Name, "octocat")
	}
}

func TestLoginOrRegisterGitHub_ReturningUserKeepsID(t *testing.T) {
	svc := newTestAuthService(t, newFakeUserRepo())

	first, err := svc.LoginOrRegisterGitHub(context.Background(), &auth.GitHubUser{ID: 42, Login: "octocat"})
	if err != nil {
		t.Fatalf("first login: %v", err)
	}
	second, err := svc.LoginOrRegisterGitHub(context.Background(), &auth.GitHubUser{ID: 42, Login: "octocat", Name: "Mona"})
	if err != nil {
		t.Fatalf("second login: %v", err)
	}

	if first.User.ID != second.User.ID {
		t.Errorf("user ID changed across logins: %q → %q", first.User.ID, second.User.ID)
	}
	if second.User.Name != "Mona" {
		t.Errorf("Name = %q, want refreshed %q", second.User.Name, "Mona")
	}
}

func TestLoginOrRegisterGitHub_NilUser(t *testing.T) {
	svc := newTestAuthService(t, newFakeUserRepo())

	if _, err := svc.LoginOrRegisterGitHub(context.Background(), nil); err == nil {
		t.Fatal("LoginOrRegisterGitHub(nil) should return an error")
	}
}

func TestLoginOrRegisterGitHub_TokenIsValid(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo)

	result, err := svc.LoginOrRegisterGitHub(context.Background(), &auth.GitHubUser{ID: 1, Login: "x"})
	if err != nil {
		t.Fatalf("LoginOrRegisterGitHub() error = %v", err)
	}

	userID, err := svc.tokens.Validate(result.Token)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if userID != result.User.ID {
		t.Errorf("token subject = %q, want %q", userID, result.User.ID)
	}
}

// =========================================================================
// GetUserByID TESTS
// =========================================================================

func TestGetUserByID(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo)

	reg, err := svc.Register(context.Background(), "me@example.com", "password1", "Me")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	got, err := svc.GetUserByID(context.Background(), reg.User.ID)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if got.Name != "Me" {
		t.Errorf("Name = %q, want Me", got.Name)
	}

	if _, err := svc.GetUserByID(context.Background(), ""); !errors.Is(err, apperror.ErrUnauthorized) {
		t.Errorf("GetUserByID(\"\") error = %v, want ErrUnauthorized", err)
	}
	if _, err := svc.GetUserByID(context.Background(), "ghost"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetUserByID(ghost) error = %v, want ErrNotFound", err)
	}
}
