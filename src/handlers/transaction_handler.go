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
	"dayspend-server/src/util"
)

const defaultTransactionLimit = 50

func CreateTransaction(store *db.Store, engine *budget.Engine, loc *time.Location) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		var req struct {
			Name            string  `json:"name"`
			Amount          float64 `json:"amount"`
			TransactionDate string  `json:"transaction_date"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode create transaction request body for user %d: %v", userID, err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		if req.Name == "" || req.Amount == 0 {
			http.Error(w, "name and a non-zero amount are required", http.StatusBadRequest)
			return
		}
		reqLoc := requestLocation(r, loc)
		if req.TransactionDate == "" {
			req.TransactionDate = budget.FormatDay(time.Now().In(reqLoc))
		} else if !util.ValidateDay(req.TransactionDate) {
			http.Error(w, "transaction_date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		tx := &models.Transaction{
			UserID:          int(userID),
			Name:            req.Name,
			Amount:          req.Amount,
			TransactionDate: req.TransactionDate,
		}
		if err := store.InsertTransaction(r.Context(), tx); err != nil {
			log.Printf("ERROR: Failed to create transaction for user %d: %v", userID, err)
			http.Error(w, "failed to create transaction", http.StatusInternalServerError)
			return
		}
		log.Printf("INFO: Created transaction id %d for user %d, amount %.2f", tx.ID, userID, tx.Amount)

		// A new variable income reshapes today's limit; recompute but do not
		// fail the create if the recompute does.
		if tx.Amount < 0 {
			if err := engine.RecalculateForVariableIncome(r.Context(), int(userID), reqLoc, tx.Amount); err != nil {
				log.Printf("ERROR: Failed to recalculate budget after income for user %d: %v", userID, err)
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(tx)
	}
}

func GetRecentTransactions(store *db.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		limit := defaultTransactionLimit
		if v := r.URL.Query().Get("limit"); v != "" {
			if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 && parsed <= 500 {
				limit = parsed
			}
		}
		txs, err := store.ListRecentTransactions(r.Context(), int(userID), limit)
		if err != nil {
			log.Printf("ERROR: Failed to get transactions for user %d: %v", userID, err)
			http.Error(w, "failed to get transactions", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(txs)
	}
}

func DeleteTransaction(store *db.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		idStr := chi.URLParam(r, "transaction_id")
		id, err := strconv.Atoi(idStr)
		if err != nil {
			log.Printf("ERROR: Invalid transaction id param: %s", idStr)
			http.Error(w, "invalid transaction id", http.StatusBadRequest)
			return
		}
		if err := store.DeleteTransaction(r.Context(), int(userID), id); err != nil {
			log.Printf("ERROR: Failed to delete transaction id %d for user %d: %v", id, userID, err)
			http.Error(w, "failed to delete transaction", http.StatusInternalServerError)
			return
		}
		log.Printf("INFO: Deleted transaction id %d for user %d", id, userID)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "transaction deleted"})
	}
}
