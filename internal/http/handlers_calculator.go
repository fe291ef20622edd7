package http

import (
	"errors"
	"net/http"
	"strings"

	"budgetcalc/internal/core"
	applog "budgetcalc/internal/log"
	"budgetcalc/internal/storage"
)

type createCalculatorRequest struct {
	UserID string        `json:"userId"`
	Name   string        `json:"name"`
	Data   core.Document `json:"data"`
}

type updateCalculatorRequest struct {
	Name string        `json:"name"`
	Data core.Document `json:"data"`
}

func (s *Server) handleCreateCalculator(w http.ResponseWriter, r *http.Request) {
	var req createCalculatorRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.UserID) == "" || strings.TrimSpace(req.Name) == "" {
		respondMsg(w, http.StatusBadRequest, "Invalid input data")
		return
	}

	calc, err := s.calculators.Create(r.Context(), req.UserID, req.Name, req.Data)
	if err != nil {
		if isValidationError(err) {
			respondMsg(w, http.StatusBadRequest, "Invalid input data")
			return
		}
		s.logCalculatorError(r, "Failed to create calculator", err, "")
		respondMsg(w, http.StatusInternalServerError, "Failed to save calculator")
		return
	}

	s.invalidateList(calc.OwnerID)
	respondJSON(w, http.StatusCreated, calc)
}

func (s *Server) handleListCalculators(w http.ResponseWriter, r *http.Request) {
	ownerID := r.PathValue("userId")

	if list, ok := s.listCache.Get(ownerID); ok {
		respondJSON(w, http.StatusOK, list)
		return
	}

	list, err := s.calculators.List(r.Context(), ownerID)
	if err != nil {
		s.logCalculatorError(r, "Failed to list calculators", err, "")
		respondMsg(w, http.StatusInternalServerError, "Failed to fetch calculators")
		return
	}

	s.listCache.Set(ownerID, list)
	respondJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetCalculator(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	calc, err := s.calculators.Get(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		respondMsg(w, http.StatusNotFound, "Calculator not found")
		return
	}
	if err != nil {
		s.logCalculatorError(r, "Failed to fetch calculator", err, id)
		respondMsg(w, http.StatusInternalServerError, "Failed to fetch calculator")
		return
	}

	respondJSON(w, http.StatusOK, calc)
}

func (s *Server) handleUpdateCalculator(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req updateCalculatorRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		respondMsg(w, http.StatusBadRequest, "Invalid input data")
		return
	}

	calc, err := s.calculators.Update(r.Context(), id, req.Name, req.Data)
	if errors.Is(err, storage.ErrNotFound) {
		respondMsg(w, http.StatusNotFound, "Calculator not found")
		return
	}
	if err != nil {
		if isValidationError(err) {
			respondMsg(w, http.StatusBadRequest, "Invalid input data")
			return
		}
		s.logCalculatorError(r, "Failed to update calculator", err, id)
		respondMsg(w, http.StatusInternalServerError, "Failed to update calculator")
		return
	}

	s.invalidateList(calc.OwnerID)
	respondJSON(w, http.StatusOK, calc)
}

func (s *Server) handleDeleteCalculator(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	// Fetched first so the owner's cached list can be invalidated.
	calc, err := s.calculators.Get(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		respondMsg(w, http.StatusNotFound, "Calculator not found")
		return
	}
	if err != nil {
		s.logCalculatorError(r, "Failed to fetch calculator for delete", err, id)
		respondMsg(w, http.StatusInternalServerError, "Failed to delete")
		return
	}

	if err := s.calculators.Delete(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondMsg(w, http.StatusNotFound, "Calculator not found")
			return
		}
		s.logCalculatorError(r, "Failed to delete calculator", err, id)
		respondMsg(w, http.StatusInternalServerError, "Failed to delete")
		return
	}

	s.invalidateList(calc.OwnerID)
	respondMsg(w, http.StatusOK, "Deleted successfully")
}

// isValidationError reports whether the error comes from document validation
// rather than from storage.
func isValidationError(err error) bool {
	return errors.Is(err, core.ErrInvalidAmount) ||
		errors.Is(err, core.ErrInvalidPercent) ||
		errors.Is(err, core.ErrInvalidSpendType) ||
		errors.Is(err, core.ErrBlankName)
}

func (s *Server) logCalculatorError(r *http.Request, msg string, err error, id string) {
	args := []any{
		applog.FieldMethod, r.Method,
		applog.FieldPath, r.URL.Path,
		applog.FieldError, err,
	}
	if id != "" {
		args = append(args, applog.FieldCalculatorID, id)
	}
	applog.FromContext(r.Context()).ErrorContext(r.Context(), msg, args...)
}
