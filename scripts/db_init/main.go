package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	dbfs "github.com/garnizeh/assessboard/db"
	"github.com/garnizeh/assessboard/internal/config"
	"github.com/garnizeh/assessboard/internal/db"
	"github.com/garnizeh/assessboard/internal/repository/sqlite"
	"github.com/garnizeh/assessboard/internal/seed"
)

func main() {
	demo := flag.Bool("demo", false, "Load the demo employees after migrating")
	flag.Parse()

	ctx := context.Background()
	cfg, err := config.LoadConfig("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	database, err := db.New(ctx, cfg.DatabasePath, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "DB init error: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	if err := db.Migrate(ctx, database, dbfs.Migrations); err != nil {
		fmt.Fprintf(os.Stderr, "Migration runner error: %v\n", err)
		os.Exit(1)
	}

	if *demo {
		drafts, err := seed.Drafts(dbfs.SeedFiles)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Seed error: %v\n", err)
			os.Exit(1)
		}
		n, err := seed.Employees(ctx, sqlite.New(database, nil), drafts)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Seed error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Seeded %d demo employees.\n", n)
	}

	fmt.Println("Database initialized successfully.")
}
