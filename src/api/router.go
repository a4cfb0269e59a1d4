package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"dayspend-server/src/budget"
	dbcache "dayspend-server/src/db"
	db "dayspend-server/src/db/sql"
	"dayspend-server/src/handlers"
	"dayspend-server/src/middleware"
)

func NewRouter(pool *pgxpool.Pool, cache *dbcache.Cache, loc *time.Location, allowedOrigins []string) *chi.Mux {
	store := db.NewStore(pool, cache)
	engine := budget.NewEngine(store)

	r := chi.NewRouter()
	r.Use(middleware.CORSMiddleware(allowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", handlers.Login(store))
		r.Post("/register", handlers.Register(store))

		// Protected routes
		r.With(middleware.JWTAuthMiddleware).Group(func(r chi.Router) {
			// User
			r.Get("/user", handlers.GetUser(store))
			r.Delete("/user", handlers.DeleteUser(store))

			// Daily budget
			r.Get("/budget/today", handlers.GetTodayBudget(engine, loc))
			r.Post("/budget/refresh", handlers.RefreshBudget(engine, loc))
			r.Post("/budget/recalculate", handlers.RecalculateBudget(engine, loc))
			r.Put("/budget/auto-percents", handlers.UpdateAutoPercents(engine, loc))

			// Transactions
			r.Post("/transactions", handlers.CreateTransaction(store, engine, loc))
			r.Get("/transactions", handlers.GetRecentTransactions(store))
			r.Delete("/transactions/{transaction_id}", handlers.DeleteTransaction(store))

			// Recurring transactions
			r.Post("/recurring", handlers.CreateRecurring(store))
			r.Get("/recurring", handlers.GetAllRecurring(store))
			r.Put("/recurring/{recurring_id}", handlers.UpdateRecurring(store))
			r.Delete("/recurring/{recurring_id}", handlers.DeleteRecurring(store))

			// Goals
			r.Post("/goals", handlers.CreateGoal(store))
			r.Get("/goals", handlers.GetAllGoals(store))
			r.Put("/goals/{goal_id}", handlers.UpdateGoal(store))
			r.Delete("/goals/{goal_id}", handlers.DeleteGoal(store))
			r.Put("/goals/{goal_id}/select", handlers.SelectGoal(store))
			r.Post("/goals/{goal_id}/save", handlers.SaveTowardGoal(store, loc))
			r.Post("/goals/{goal_id}/realize", handlers.RealizeGoal(store, loc))
		})
	})

	return r
}
