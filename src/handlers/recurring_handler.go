package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	db "dayspend-server/src/db/sql"
	"dayspend-server/src/models"
)

func CreateRecurring(store *db.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		var req struct {
			Name   string  `json:"name"`
			Amount float64 `json:"amount"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode create recurring request body for user %d: %v", userID, err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		if req.Name == "" || req.Amount == 0 {
			http.Error(w, "name and a non-zero amount are required", http.StatusBadRequest)
			return
		}
		rt := &models.RecurringTransaction{
			UserID: int(userID),
			Name:   req.Name,
			Amount: req.Amount,
		}
		if err := store.CreateRecurring(r.Context(), rt); err != nil {
			log.Printf("ERROR: Failed to create recurring transaction for user %d: %v", userID, err)
			http.Error(w, "failed to create recurring transaction", http.StatusInternalServerError)
			return
		}
		log.Printf("INFO: Created recurring transaction id %d for user %d", rt.ID, userID)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(rt)
	}
}

func GetAllRecurring(store *db.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		list, err := store.ListRecurring(r.Context(), int(userID))
		if err != nil {
			log.Printf("ERROR: Failed to get recurring transactions for user %d: %v", userID, err)
			http.Error(w, "failed to get recurring transactions", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(list)
	}
}

func UpdateRecurring(store *db.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		idStr := chi.URLParam(r, "recurring_id")
		id, err := strconv.Atoi(idStr)
		if err != nil {
			log.Printf("ERROR: Invalid recurring id param: %s", idStr)
			http.Error(w, "invalid recurring transaction id", http.StatusBadRequest)
			return
		}
		var req struct {
			Name   string  `json:"name"`
			Amount float64 `json:"amount"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode update recurring request body for user %d: %v", userID, err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		rt := &models.RecurringTransaction{
			ID:     id,
			UserID: int(userID),
			Name:   req.Name,
			Amount: req.Amount,
		}
		if err := store.UpdateRecurring(r.Context(), rt); err != nil {
			log.Printf("ERROR: Failed to update recurring transaction id %d for user %d: %v", id, userID, err)
			http.Error(w, "failed to update recurring transaction", http.StatusInternalServerError)
			return
		}
		log.Printf("INFO: Updated recurring transaction id %d for user %d", id, userID)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(rt)
	}
}

func DeleteRecurring(store *db.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		idStr := chi.URLParam(r, "recurring_id")
		id, err := strconv.Atoi(idStr)
		if err != nil {
			log.Printf("ERROR: Invalid recurring id param: %s", idStr)
			http.Error(w, "invalid recurring transaction id", http.StatusBadRequest)
			return
		}
		if err := store.DeleteRecurring(r.Context(), int(userID), id); err != nil {
			log.Printf("ERROR: Failed to delete recurring transaction id %d for user %d: %v", id, userID, err)
			http.Error(w, "failed to delete recurring transaction", http.StatusInternalServerError)
			return
		}
		log.Printf("INFO: Deleted recurring transaction id %d for user %d", id, userID)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "recurring transaction deleted"})
	}
}
