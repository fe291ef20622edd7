package auth

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"budgetcalc/internal/storage"
)

// fakeStore is an in-memory UserStore for authenticator tests.
type fakeStore struct {
	users map[string]*storage.User // keyed by id
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: make(map[string]*storage.User)}
}

func (s *fakeStore) CreateUser(_ context.Context, user *storage.User) error {
	if user.ID == "" {
		user.ID = "user-" + user.Username
	}
	s.users[user.ID] = user
	return nil
}

func (s *fakeStore) GetUserByEmail(_ context.Context, email string) (*storage.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *fakeStore) GetUserByUsername(_ context.Context, username string) (*storage.User, error) {
	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *fakeStore) UpdateUserPassword(_ context.Context, id, passwordHash string) error {
	u, ok := s.users[id]
	if !ok {
		return storage.ErrNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

const validPassword = "Str0ng!pass"

func TestRegister(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		username string
		password string
		wantErr  error
	}{
		{"valid", "alice@example.com", "alice1", validPassword, nil},
		{"blank email", "", "alice1", validPassword, ErrMissingFields},
		{"blank username", "alice@example.com", "", validPassword, ErrMissingFields},
		{"blank password", "alice@example.com", "alice1", "", ErrMissingFields},
		{"bad email", "not-an-email", "alice1", validPassword, ErrInvalidEmail},
		{"bad email no tld", "alice@example", "alice1", validPassword, ErrInvalidEmail},
		{"short username", "alice@example.com", "ali", validPassword, ErrUsernameTooShort},
		{"short password", "alice@example.com", "alice1", "Ab1!", ErrWeakPassword},
		{"no uppercase", "alice@example.com", "alice1", "weak1pass!", ErrWeakPassword},
		{"no digit", "alice@example.com", "alice1", "Weakpass!", ErrWeakPassword},
		{"no special", "alice@example.com", "alice1", "Weakpass1", ErrWeakPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAuthenticator(newFakeStore())
			user, err := a.Register(ctx, tt.email, tt.username, tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Register() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil {
				if user == nil || user.ID == "" {
					t.Fatal("expected a created user with an id")
				}
				if user.PasswordHash == tt.password {
					t.Error("password must be stored hashed")
				}
				if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(tt.password)) != nil {
					t.Error("stored hash does not verify against the password")
				}
			}
		})
	}
}

func TestRegister_Duplicates(t *testing.T) {
	ctx := context.Background()
	a := NewAuthenticator(newFakeStore())

	if _, err := a.Register(ctx, "alice@example.com", "alice1", validPassword); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if _, err := a.Register(ctx, "alice@example.com", "other1", validPassword); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("duplicate email error = %v, want ErrEmailTaken", err)
	}
	if _, err := a.Register(ctx, "other@example.com", "alice1", validPassword); !errors.Is(err, ErrUsernameTaken) {
		t.Errorf("duplicate username error = %v, want ErrUsernameTaken", err)
	}

	// Both taken: email check wins
	if _, err := a.Register(ctx, "alice@example.com", "alice1", validPassword); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("both taken error = %v, want ErrEmailTaken", err)
	}
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	a := NewAuthenticator(newFakeStore())

	if _, err := a.Register(ctx, "alice@example.com", "alice1", validPassword); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	t.Run("by email", func(t *testing.T) {
		user, err := a.Login(ctx, "alice@example.com", validPassword)
		if err != nil {
			t.Fatalf("Login() error = %v", err)
		}
		if user.Username != "alice1" {
			t.Errorf("Username = %q, want alice1", user.Username)
		}
	})

	t.Run("by username", func(t *testing.T) {
		if _, err := a.Login(ctx, "alice1", validPassword); err != nil {
			t.Fatalf("Login() error = %v", err)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		if _, err := a.Login(ctx, "nobody", validPassword); !errors.Is(err, ErrUserNotFound) {
			t.Errorf("error = %v, want ErrUserNotFound", err)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		if _, err := a.Login(ctx, "alice1", "Wrong1pass!"); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("error = %v, want ErrInvalidCredentials", err)
		}
	})
}

func TestResetPassword(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) *Authenticator {
		t.Helper()
		a := NewAuthenticator(newFakeStore())
		if _, err := a.Register(ctx, "alice@example.com", "alice1", validPassword); err != nil {
			t.Fatalf("Register() error = %v", err)
		}
		return a
	}

	t.Run("success", func(t *testing.T) {
		a := setup(t)
		next := "N3w!password"
		if err := a.ResetPassword(ctx, "alice1", validPassword, next); err != nil {
			t.Fatalf("ResetPassword() error = %v", err)
		}
		if _, err := a.Login(ctx, "alice1", next); err != nil {
			t.Errorf("login with new password failed: %v", err)
		}
		if _, err := a.Login(ctx, "alice1", validPassword); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("old password still accepted: %v", err)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		a := setup(t)
		if err := a.ResetPassword(ctx, "nobody", validPassword, "N3w!password"); !errors.Is(err, ErrUserNotFound) {
			t.Errorf("error = %v, want ErrUserNotFound", err)
		}
	})

	t.Run("wrong current password", func(t *testing.T) {
		a := setup(t)
		if err := a.ResetPassword(ctx, "alice1", "Wrong1pass!", "N3w!password"); !errors.Is(err, ErrWrongPassword) {
			t.Errorf("error = %v, want ErrWrongPassword", err)
		}
	})

	t.Run("same password", func(t *testing.T) {
		a := setup(t)
		if err := a.ResetPassword(ctx, "alice1", validPassword, validPassword); !errors.Is(err, ErrSamePassword) {
			t.Errorf("error = %v, want ErrSamePassword", err)
		}
	})

	t.Run("weak new password", func(t *testing.T) {
		a := setup(t)
		if err := a.ResetPassword(ctx, "alice1", validPassword, "weak"); !errors.Is(err, ErrWeakPassword) {
			t.Errorf("error = %v, want ErrWeakPassword", err)
		}
	})
}
