package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"dayspend-server/src/budget"
)

// requestLocation resolves the user-local timezone for calendar-day math. Web
// and mobile clients send their IANA zone in X-Timezone; otherwise the
// server-configured zone applies.
func requestLocation(r *http.Request, fallback *time.Location) *time.Location {
	if tz := r.Header.Get("X-Timezone"); tz != "" {
		if loc, err := time.LoadLocation(tz); err == nil {
			return loc
		}
		log.Printf("ERROR: Invalid X-Timezone header %q, falling back to server zone", r.Header.Get("X-Timezone"))
	}
	return fallback
}

func writeBudgetError(w http.ResponseWriter, userID int64, op string, err error) {
	var allocErr *budget.GoalAllocationError
	switch {
	case errors.Is(err, budget.ErrNotAuthenticated):
		log.Printf("ERROR: %s without resolved user: %v", op, err)
		http.Error(w, "not authenticated", http.StatusUnauthorized)
	case errors.Is(err, budget.ErrInvalidPercent):
		log.Printf("ERROR: %s for user %d: %v", op, userID, err)
		http.Error(w, "percent must be between 0 and 100", http.StatusBadRequest)
	case errors.As(err, &allocErr):
		log.Printf("ERROR: %s for user %d: %v", op, userID, err)
		http.Error(w, "goal allocation failed", http.StatusInternalServerError)
	default:
		log.Printf("ERROR: %s for user %d: %v", op, userID, err)
		http.Error(w, "failed to compute daily budget", http.StatusInternalServerError)
	}
}

func GetTodayBudget(engine *budget.Engine, loc *time.Location) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		info, err := engine.EnsureAndGetTodayBudget(r.Context(), int(userID), requestLocation(r, loc))
		if err != nil {
			writeBudgetError(w, userID, "Failed to get today's budget", err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(info)
	}
}

func RefreshBudget(engine *budget.Engine, loc *time.Location) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		info, err := engine.RefreshTodayBudget(r.Context(), int(userID), requestLocation(r, loc))
		if err != nil {
			writeBudgetError(w, userID, "Failed to refresh today's budget", err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(info)
	}
}

func RecalculateBudget(engine *budget.Engine, loc *time.Location) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		var req struct {
			Amount float64 `json:"amount"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode recalculate request body for user %d: %v", userID, err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		if err := engine.RecalculateForVariableIncome(r.Context(), int(userID), requestLocation(r, loc), req.Amount); err != nil {
			writeBudgetError(w, userID, "Failed to recalculate budget", err)
			return
		}
		log.Printf("INFO: Recalculated budget for user %d after variable income %.2f", userID, req.Amount)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "budget recalculated"})
	}
}

func UpdateAutoPercents(engine *budget.Engine, loc *time.Location) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		var req struct {
			AutoSavingsPercent float64 `json:"auto_savings_percent"`
			AutoGoalsPercent   float64 `json:"auto_goals_percent"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode auto percents request body for user %d: %v", userID, err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		info, err := engine.SetAutoPercents(r.Context(), int(userID), requestLocation(r, loc), req.AutoSavingsPercent, req.AutoGoalsPercent)
		if err != nil {
			writeBudgetError(w, userID, "Failed to update auto percents", err)
			return
		}
		log.Printf("INFO: Updated auto percents for user %d: savings %.1f%%, goals %.1f%%", userID, req.AutoSavingsPercent, req.AutoGoalsPercent)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(info)
	}
}
