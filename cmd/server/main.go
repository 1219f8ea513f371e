package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/nextmic/nextmic/internal/api"
	"github.com/nextmic/nextmic/internal/db"
	"github.com/nextmic/nextmic/internal/functions"
)

func main() {
	// Missing .env is fine in production; env vars win either way.
	_ = godotenv.Load()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8081"
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := db.ApplyMigrations(ctx, pool); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	fns := functions.NewClient(os.Getenv("FUNCTIONS_BASE_URL"), os.Getenv("FUNCTIONS_TOKEN"))

	srv := api.NewServer(pool, fns)
	log.Printf("Server starting on port %s...", port)
	if err := srv.Start(port); err != nil {
		log.Fatal(err)
	}
}
