package main

import (
	"context"
	"io/fs"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"catalogsite/internal/database"
	"catalogsite/migrations"
)

func main() {
	_ = godotenv.Load()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	var (
		fsys   fs.FS = migrations.FS
		source       = "embedded migrations"
	)
	if dir := os.Getenv("MIGRATIONS_DIR"); dir != "" {
		fsys, source = os.DirFS(dir), dir
	}

	db, err := database.Connect(databaseURL)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	applied, err := database.ApplyMigrations(ctx, db, fsys)
	if err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	log.Printf("applied %d migration(s) from %s: %v", len(applied), source, applied)
}
