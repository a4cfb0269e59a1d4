package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"dayspend-server/src/api"
	"dayspend-server/src/config"
	"dayspend-server/src/db"
)

func main() {
	cfg := config.Load()

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Fatalf("Invalid TIMEZONE %q: %v", cfg.Timezone, err)
	}

	// Connect to database
	pool, err := db.Connect(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("DB connection failed: %v", err)
	}
	defer pool.Close()

	cache, err := db.NewCache()
	if err != nil {
		log.Fatalf("Cache init failed: %v", err)
	}

	// Router
	router := api.NewRouter(pool, cache, loc, cfg.AllowedOrigins)

	log.Println("API server running on port", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		log.Fatal(err)
	}
}
