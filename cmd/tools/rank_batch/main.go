package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/nextmic/nextmic/internal/ai"
	"github.com/nextmic/nextmic/internal/db"
	"github.com/nextmic/nextmic/internal/functions"
)

// Embeds any opportunities still missing vectors, then recomputes match
// scores for every user with a profile. Meant to run after ingestion.
func main() {
	limit := flag.Int("limit", 50, "Max new matches per user")
	batch := flag.Int("batch", 200, "Embedding batch size")
	flag.Parse()

	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.Connect(ctx)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	store := db.NewStore(pool)
	fns := functions.NewClient(os.Getenv("FUNCTIONS_BASE_URL"), os.Getenv("FUNCTIONS_TOKEN"))
	ranker := ai.NewRanker(store, fns)

	embedded, err := ranker.EmbedMissing(ctx, *batch)
	if err != nil {
		log.Fatalf("Embedding pass failed: %v", err)
	}
	log.Printf("Embedded %d opportunities", embedded)

	rows, err := pool.Query(ctx, "SELECT u.id FROM users u JOIN speaker_profiles p ON p.user_id = u.id")
	if err != nil {
		log.Fatal(err)
	}
	defer rows.Close()

	var userIDs []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			log.Fatal(err)
		}
		userIDs = append(userIDs, id)
	}

	for _, userID := range userIDs {
		stats, err := ranker.RankForUser(ctx, userID, *limit)
		if err != nil {
			log.Printf("Ranking failed for %s: %v", userID, err)
			continue
		}
		log.Printf("User %s: scored=%d errors=%d", userID, stats.Scored, stats.Errors)
	}
}
