package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"dayspend-server/src/budget"
	db "dayspend-server/src/db/sql"
	"dayspend-server/src/models"
)

func goalIDParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	idStr := chi.URLParam(r, "goal_id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		log.Printf("ERROR: Invalid goal id param: %s", idStr)
		http.Error(w, "invalid goal id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func CreateGoal(store *db.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		var req struct {
			Name                string  `json:"name"`
			TargetAmount        float64 `json:"target_amount"`
			AutoSavingsPercent  float64 `json:"auto_savings_percent"`
			IsCurrentlySelected bool    `json:"is_currently_selected"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode create goal request body for user %d: %v", userID, err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		if req.Name == "" || req.TargetAmount <= 0 {
			http.Error(w, "name and a positive target amount are required", http.StatusBadRequest)
			return
		}
		if req.AutoSavingsPercent < 0 || req.AutoSavingsPercent > 100 {
			http.Error(w, "auto_savings_percent must be between 0 and 100", http.StatusBadRequest)
			return
		}
		goal := &models.Goal{
			UserID:              int(userID),
			Name:                req.Name,
			TargetAmount:        req.TargetAmount,
			AutoSavingsPercent:  req.AutoSavingsPercent,
			IsCurrentlySelected: req.IsCurrentlySelected,
		}
		if err := store.CreateGoal(r.Context(), goal); err != nil {
			log.Printf("ERROR: Failed to create goal for user %d: %v", userID, err)
			http.Error(w, "failed to create goal", http.StatusInternalServerError)
			return
		}
		log.Printf("INFO: Created goal id %d for user %d: %s", goal.ID, userID, goal.Name)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(goal)
	}
}

func GetAllGoals(store *db.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		goals, err := store.ListGoals(r.Context(), int(userID))
		if err != nil {
			log.Printf("ERROR: Failed to get goals for user %d: %v", userID, err)
			http.Error(w, "failed to get goals", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(goals)
	}
}

func UpdateGoal(store *db.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		goalID, ok := goalIDParam(w, r)
		if !ok {
			return
		}
		var req struct {
			Name                string  `json:"name"`
			TargetAmount        float64 `json:"target_amount"`
			AutoSavingsPercent  float64 `json:"auto_savings_percent"`
			IsCurrentlySelected bool    `json:"is_currently_selected"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode update goal request body for user %d: %v", userID, err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		if req.AutoSavingsPercent < 0 || req.AutoSavingsPercent > 100 {
			http.Error(w, "auto_savings_percent must be between 0 and 100", http.StatusBadRequest)
			return
		}
		goal := &models.Goal{
			ID:                  goalID,
			UserID:              int(userID),
			Name:                req.Name,
			TargetAmount:        req.TargetAmount,
			AutoSavingsPercent:  req.AutoSavingsPercent,
			IsCurrentlySelected: req.IsCurrentlySelected,
		}
		if err := store.UpdateGoal(r.Context(), goal); err != nil {
			log.Printf("ERROR: Failed to update goal id %d for user %d: %v", goalID, userID, err)
			http.Error(w, "failed to update goal", http.StatusInternalServerError)
			return
		}
		log.Printf("INFO: Updated goal id %d for user %d", goalID, userID)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(goal)
	}
}

func DeleteGoal(store *db.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		goalID, ok := goalIDParam(w, r)
		if !ok {
			return
		}
		if err := store.DeleteGoal(r.Context(), int(userID), goalID); err != nil {
			log.Printf("ERROR: Failed to delete goal id %d for user %d: %v", goalID, userID, err)
			http.Error(w, "failed to delete goal", http.StatusInternalServerError)
			return
		}
		log.Printf("INFO: Deleted goal id %d for user %d", goalID, userID)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "goal deleted"})
	}
}

// SelectGoal marks the goal shown on the dashboard. The allocator's multi-goal
// selection is driven by is_currently_selected plus auto_savings_percent and is
// not limited to this single choice.
func SelectGoal(store *db.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		goalID, ok := goalIDParam(w, r)
		if !ok {
			return
		}
		if err := store.SelectDashboardGoal(r.Context(), int(userID), goalID); err != nil {
			log.Printf("ERROR: Failed to select goal id %d for user %d: %v", goalID, userID, err)
			http.Error(w, "failed to select goal", http.StatusInternalServerError)
			return
		}
		log.Printf("INFO: Selected goal id %d for user %d", goalID, userID)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "goal selected"})
	}
}

// SaveTowardGoal records a manual deposit into a goal: a savings-op
// transaction for today plus an increase of the goal's current amount.
func SaveTowardGoal(store *db.Store, loc *time.Location) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		goalID, ok := goalIDParam(w, r)
		if !ok {
			return
		}
		var req struct {
			Amount float64 `json:"amount"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Amount <= 0 {
			http.Error(w, "a positive amount is required", http.StatusBadRequest)
			return
		}
		goal, err := store.GetGoalByID(r.Context(), int(userID), goalID)
		if err != nil {
			log.Printf("ERROR: Failed to load goal id %d for user %d: %v", goalID, userID, err)
			http.Error(w, "failed to load goal", http.StatusInternalServerError)
			return
		}
		if goal == nil {
			http.Error(w, "goal not found", http.StatusNotFound)
			return
		}

		tx := &models.Transaction{
			UserID:          int(userID),
			Name:            "Goal deposit: " + goal.Name,
			Amount:          req.Amount,
			TransactionDate: budget.FormatDay(time.Now().In(requestLocation(r, loc))),
			IsSavingsOp:     true,
		}
		if err := store.InsertTransaction(r.Context(), tx); err != nil {
			log.Printf("ERROR: Failed to create goal deposit transaction for user %d: %v", userID, err)
			http.Error(w, "failed to save toward goal", http.StatusInternalServerError)
			return
		}
		newAmount := budget.RoundUpToCents(goal.CurrentAmount + req.Amount)
		if err := store.UpdateGoalAmount(r.Context(), int(userID), goalID, newAmount); err != nil {
			log.Printf("ERROR: Failed to update goal id %d amount for user %d: %v", goalID, userID, err)
			http.Error(w, "failed to update goal amount", http.StatusInternalServerError)
			return
		}
		log.Printf("INFO: Saved %.2f toward goal id %d for user %d", req.Amount, goalID, userID)
		goal.CurrentAmount = newAmount
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(goal)
	}
}

// RealizeGoal books the purchase of a goal: an expense transaction for the
// final price and a savings-op withdrawal releasing the saved funds, then the
// goal's current amount is drawn down.
func RealizeGoal(store *db.Store, loc *time.Location) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		goalID, ok := goalIDParam(w, r)
		if !ok {
			return
		}
		var req struct {
			FinalPrice float64 `json:"final_price"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.FinalPrice <= 0 {
			http.Error(w, "a positive final_price is required", http.StatusBadRequest)
			return
		}
		goal, err := store.GetGoalByID(r.Context(), int(userID), goalID)
		if err != nil {
			log.Printf("ERROR: Failed to load goal id %d for user %d: %v", goalID, userID, err)
			http.Error(w, "failed to load goal", http.StatusInternalServerError)
			return
		}
		if goal == nil {
			http.Error(w, "goal not found", http.StatusNotFound)
			return
		}

		today := budget.FormatDay(time.Now().In(requestLocation(r, loc)))
		expense := &models.Transaction{
			UserID:          int(userID),
			Name:            "Realized goal: " + goal.Name,
			Amount:          req.FinalPrice,
			TransactionDate: today,
		}
		if err := store.InsertTransaction(r.Context(), expense); err != nil {
			log.Printf("ERROR: Failed to create realization expense for user %d: %v", userID, err)
			http.Error(w, "failed to realize goal", http.StatusInternalServerError)
			return
		}
		withdrawal := &models.Transaction{
			UserID:          int(userID),
			Name:            "Goal withdrawal: " + goal.Name,
			Amount:          -req.FinalPrice,
			TransactionDate: today,
			IsSavingsOp:     true,
		}
		if err := store.InsertTransaction(r.Context(), withdrawal); err != nil {
			log.Printf("ERROR: Failed to create goal withdrawal for user %d: %v", userID, err)
			http.Error(w, "failed to realize goal", http.StatusInternalServerError)
			return
		}

		remaining := goal.CurrentAmount - req.FinalPrice
		if remaining < 0 {
			remaining = 0
		}
		if err := store.UpdateGoalAmount(r.Context(), int(userID), goalID, remaining); err != nil {
			log.Printf("ERROR: Failed to draw down goal id %d for user %d: %v", goalID, userID, err)
			http.Error(w, "failed to update goal amount", http.StatusInternalServerError)
			return
		}
		log.Printf("INFO: Realized goal id %d for user %d at price %.2f", goalID, userID, req.FinalPrice)
		goal.CurrentAmount = remaining
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(goal)
	}
}
