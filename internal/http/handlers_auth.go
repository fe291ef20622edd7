package http

import (
	"errors"
	"net/http"

	"budgetcalc/internal/auth"
	applog "budgetcalc/internal/log"
	"budgetcalc/internal/storage"
)

type registerRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginRequest struct {
	LoginInput string `json:"loginInput"`
	Password   string `json:"password"`
}

type loginResponse struct {
	Msg  string        `json:"msg"`
	User *storage.User `json:"user"`
}

type resetPasswordRequest struct {
	Email           string `json:"email"`
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	_, err := s.auth.Register(r.Context(), req.Email, req.Username, req.Password)
	if err != nil {
		s.respondAuthError(w, r, err)
		return
	}

	respondMsg(w, http.StatusOK, "User registered successfully")
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := s.auth.Login(r.Context(), req.LoginInput, req.Password)
	if err != nil {
		s.respondAuthError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, loginResponse{Msg: "Login successful", User: user})
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	err := s.auth.ResetPassword(r.Context(), req.Email, req.CurrentPassword, req.NewPassword)
	if err != nil {
		s.respondAuthError(w, r, err)
		return
	}

	respondMsg(w, http.StatusOK, "Password updated successfully")
}

// respondAuthError translates authentication errors to their wire message and
// status. Unknown errors become an opaque 500.
func (s *Server) respondAuthError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, auth.ErrMissingFields):
		respondMsg(w, http.StatusBadRequest, "All fields are required")
	case errors.Is(err, auth.ErrInvalidEmail):
		respondMsg(w, http.StatusBadRequest, "Invalid email format")
	case errors.Is(err, auth.ErrEmailTaken):
		respondMsg(w, http.StatusBadRequest, "Email already exists")
	case errors.Is(err, auth.ErrUsernameTaken):
		respondMsg(w, http.StatusBadRequest, "Username already exists")
	case errors.Is(err, auth.ErrUsernameTooShort):
		respondMsg(w, http.StatusBadRequest, "Username must be at least 5 characters long")
	case errors.Is(err, auth.ErrWeakPassword):
		respondMsg(w, http.StatusBadRequest, "Password must be at least 8 characters long and contain an uppercase letter, a number and a special character")
	case errors.Is(err, auth.ErrUserNotFound):
		// Login reports 400, reset-password 404, matching the two flows'
		// client expectations.
		if r.URL.Path == "/api/auth/reset-password" {
			respondMsg(w, http.StatusNotFound, "User not found")
		} else {
			respondMsg(w, http.StatusBadRequest, "User not found")
		}
	case errors.Is(err, auth.ErrInvalidCredentials):
		respondMsg(w, http.StatusBadRequest, "Invalid credentials")
	case errors.Is(err, auth.ErrWrongPassword):
		respondMsg(w, http.StatusUnauthorized, "Current password is incorrect")
	case errors.Is(err, auth.ErrSamePassword):
		respondMsg(w, http.StatusUnauthorized, "New password can't be the same as current password.")
	default:
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Auth request failed",
			applog.FieldPath, r.URL.Path,
			applog.FieldError, err,
		)
		if r.URL.Path == "/api/auth/reset-password" {
			respondMsg(w, http.StatusInternalServerError, "Failed to reset password")
		} else {
			respondMsg(w, http.StatusInternalServerError, "Internal server error")
		}
	}
}
