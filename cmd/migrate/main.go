package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	if len(os.Args) < 2 {
		fmt.Println("Usage: go run main.go [drop|up|seed]")
		os.Exit(1)
	}

	command := os.Args[1]

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer conn.Close(ctx)

	switch command {
	case "drop":
		if err := dropTables(ctx, conn); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		fmt.Println("✅ All tables dropped successfully")

	case "up":
		if err := createTables(ctx, conn); err != nil {
			log.Fatalf("Failed to create tables: %v", err)
		}
		fmt.Println("✅ All tables created successfully")

	case "seed":
		if err := seedData(ctx, conn); err != nil {
			log.Fatalf("Failed to seed data: %v", err)
		}
		fmt.Println("✅ Data seeded successfully")

	default:
		fmt.Printf("Unknown command: %s\n", command)
		fmt.Println("Usage: go run main.go [drop|up|seed]")
		os.Exit(1)
	}
}

func dropTables(ctx context.Context, conn *pgx.Conn) error {
	queries := []string{
		`DROP TABLE IF EXISTS polls CASCADE`,
		`DROP TABLE IF EXISTS presentations CASCADE`,
	}

	for _, query := range queries {
		if _, err := conn.Exec(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
		fmt.Printf("  Dropped: %s\n", query)
	}

	return nil
}

func createTables(ctx context.Context, conn *pgx.Conn) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS presentations (
			id TEXT PRIMARY KEY,
			creator_id TEXT NOT NULL DEFAULT '',
			doc JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_presentations_creator
			ON presentations (creator_id, updated_at DESC)`,
		`CREATE TABLE IF NOT EXISTS polls (
			id TEXT PRIMARY KEY,
			short_code TEXT NOT NULL DEFAULT '',
			creator_id TEXT NOT NULL DEFAULT '',
			doc JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_polls_short_code
			ON polls (short_code) WHERE short_code <> ''`,
		`CREATE INDEX IF NOT EXISTS idx_polls_creator
			ON polls (creator_id, updated_at DESC)`,
	}

	for _, query := range queries {
		if _, err := conn.Exec(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}
	fmt.Println("  Created: presentations, polls")

	return nil
}

func seedData(ctx context.Context, conn *pgx.Conn) error {
	doc := `{
		"id": "demo-deck",
		"title": "Demo deck",
		"slides": [
			{"id": "s1", "content": "[]", "layout": "blank"}
		],
		"currentSlideIndex": 0,
		"aspectRatio": "16:9",
		"updatedAt": "2025-01-01T00:00:00Z",
		"creatorId": "seed"
	}`

	query := `
		INSERT INTO presentations (id, creator_id, doc, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (id) DO NOTHING`

	if _, err := conn.Exec(ctx, query, "demo-deck", "seed", doc); err != nil {
		return fmt.Errorf("failed to seed presentation: %w", err)
	}
	fmt.Println("  Seeded: demo-deck")

	return nil
}
