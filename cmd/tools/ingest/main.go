package main

import (
	"context"
	"flag"
	"log"

	"github.com/nextmic/nextmic/internal/db"
	"github.com/nextmic/nextmic/internal/discover"
)

func main() {
	sourceID := flag.String("source", "", "Source ID to ingest (e.g., papercall)")
	flag.Parse()

	if *sourceID == "" {
		log.Fatal("Please provide a source ID using -source flag")
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

	registry, err := discover.LoadRegistry("internal/discover/config/sources.yaml")
	if err != nil {
		log.Fatalf("Failed to load source registry: %v", err)
	}

	ingestor := discover.NewIngestor(registry, db.NewStore(pool))

	log.Printf("Starting ingestion for source: %s", *sourceID)
	stats, err := ingestor.IngestSource(ctx, *sourceID)
	if err != nil {
		log.Fatalf("Ingestion failed: %v", err)
	}

	log.Printf("Ingestion finished for %s. Found: %d, Saved: %d, Errors: %d",
		*sourceID, stats.TotalFound, stats.TotalSaved, stats.Errors)
}
