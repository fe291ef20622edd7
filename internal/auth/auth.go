// Package auth implements account registration, login and password reset.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"

	"budgetcalc/internal/storage"
)

var (
	// ErrMissingFields is returned when a required field is blank.
	ErrMissingFields = errors.New("all fields are required")
	// ErrInvalidEmail is returned when the email does not look like one.
	ErrInvalidEmail = errors.New("invalid email format")
	// ErrEmailTaken is returned when the email is already registered.
	ErrEmailTaken = errors.New("email already exists")
	// ErrUsernameTaken is returned when the username is already registered.
	ErrUsernameTaken = errors.New("username already exists")
	// ErrUsernameTooShort is returned when the username has fewer than 5 characters.
	ErrUsernameTooShort = errors.New("username must be at least 5 characters long")
	// ErrWeakPassword is returned when the password fails the strength rules.
	ErrWeakPassword = errors.New("password must be at least 8 characters long and contain an uppercase letter, a number and a special character")
	// ErrUserNotFound is returned when no account matches the login identifier.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials is returned when the password does not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrWrongPassword is returned when the current password check fails on reset.
	ErrWrongPassword = errors.New("current password is incorrect")
	// ErrSamePassword is returned when the new password equals the current one.
	ErrSamePassword = errors.New("new password cannot be the same as the current password")
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// UserStore is the persistence surface the authenticator needs.
type UserStore interface {
	CreateUser(ctx context.Context, user *storage.User) error
	GetUserByEmail(ctx context.Context, email string) (*storage.User, error)
	GetUserByUsername(ctx context.Context, username string) (*storage.User, error)
	UpdateUserPassword(ctx context.Context, id, passwordHash string) error
}

// Authenticator handles account lifecycle against a user store.
type Authenticator struct {
	store UserStore
}

// NewAuthenticator creates an authenticator backed by the given store.
func NewAuthenticator(store UserStore) *Authenticator {
	return &Authenticator{store: store}
}

// Register validates the input, hashes the password and creates the account.
// Email uniqueness is checked before username uniqueness.
func (a *Authenticator) Register(ctx context.Context, email, username, password string) (*storage.User, error) {
	email = strings.TrimSpace(email)
	username = strings.TrimSpace(username)

	if email == "" || username == "" || password == "" {
		return nil, ErrMissingFields
	}
	if !emailPattern.MatchString(email) {
		return nil, ErrInvalidEmail
	}
	if len(username) < 5 {
		return nil, ErrUsernameTooShort
	}
	if !strongPassword(password) {
		return nil, ErrWeakPassword
	}

	if _, err := a.store.GetUserByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}

	if _, err := a.store.GetUserByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("check username: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &storage.User{
		Email:        email,
		Username:     username,
		PasswordHash: string(hash),
	}
	if err := a.store.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	slog.InfoContext(ctx, "User registered", "username", username)
	return user, nil
}

// Login resolves the identifier as email when it contains '@', otherwise as
// username, and verifies the password.
func (a *Authenticator) Login(ctx context.Context, identifier, password string) (*storage.User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, ErrMissingFields
	}

	var (
		user *storage.User
		err  error
	)
	if strings.Contains(identifier, "@") {
		user, err = a.store.GetUserByEmail(ctx, identifier)
	} else {
		user, err = a.store.GetUserByUsername(ctx, identifier)
	}
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	slog.InfoContext(ctx, "User logged in", "username", user.Username)
	return user, nil
}

// ResetPassword verifies the current password and replaces it with a new one.
// The identifier is resolved the same way as Login.
func (a *Authenticator) ResetPassword(ctx context.Context, identifier, current, next string) error {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || current == "" || next == "" {
		return ErrMissingFields
	}

	var (
		user *storage.User
		err  error
	)
	if strings.Contains(identifier, "@") {
		user, err = a.store.GetUserByEmail(ctx, identifier)
	} else {
		user, err = a.store.GetUserByUsername(ctx, identifier)
	}
	if errors.Is(err, storage.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("lookup user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)) != nil {
		return ErrWrongPassword
	}
	if next == current {
		return ErrSamePassword
	}
	if !strongPassword(next) {
		return ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := a.store.UpdateUserPassword(ctx, user.ID, string(hash)); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	slog.InfoContext(ctx, "Password updated", "username", user.Username)
	return nil
}

// strongPassword requires at least 8 characters including an uppercase
// letter, a digit and a special character.
func strongPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	var hasUpper, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSpecial = true
		}
	}
	return hasUpper && hasDigit && hasSpecial
}
