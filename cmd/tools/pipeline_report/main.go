package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/nextmic/nextmic/internal/db"
	"github.com/nextmic/nextmic/internal/models"
)

// Prints a per-stage card count for one user or every user. Handy for
// eyeballing pipeline health without opening the app.
func main() {
	userFlag := flag.String("user", "", "User ID to report on (default: all users)")
	flag.Parse()

	ctx := context.Background()
	pool, err := db.Connect(ctx)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	store := db.NewStore(pool)

	var userIDs []uuid.UUID
	var emails []string
	if *userFlag != "" {
		id, err := uuid.Parse(*userFlag)
		if err != nil {
			log.Fatalf("Invalid user ID: %v", err)
		}
		userIDs = append(userIDs, id)
		emails = append(emails, *userFlag)
	} else {
		rows, err := pool.Query(ctx, "SELECT id, email FROM users ORDER BY created_at")
		if err != nil {
			log.Fatal(err)
		}
		defer rows.Close()
		for rows.Next() {
			var id uuid.UUID
			var email string
			if err := rows.Scan(&id, &email); err != nil {
				log.Fatal(err)
			}
			userIDs = append(userIDs, id)
			emails = append(emails, email)
		}
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)

	header := table.Row{"User"}
	for _, st := range models.BoardStages {
		header = append(header, st.Label())
	}
	header = append(header, "Total")
	t.AppendHeader(header)

	for i, userID := range userIDs {
		stats, err := store.StageCounts(ctx, userID)
		if err != nil {
			log.Printf("Stage counts for %s: %v", userID, err)
			continue
		}

		total := 0
		row := table.Row{emails[i]}
		for _, st := range models.BoardStages {
			row = append(row, stats[st])
			total += stats[st]
		}
		row = append(row, total)
		t.AppendRow(row)
	}
	t.Render()
}
