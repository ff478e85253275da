package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/garnizeh/assessboard/internal/config"
	"github.com/garnizeh/assessboard/internal/db"
)

func main() {
	cfg, err := config.LoadConfig("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	out := flag.String("out", cfg.DatabasePath+".bak", "Backup file to write")
	flag.Parse()

	// VACUUM INTO refuses to overwrite
	if err := os.Remove(*out); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Backup error: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	database, err := db.New(ctx, cfg.DatabasePath, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Backup error: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	if _, err := database.Exec(ctx, `VACUUM INTO ?`, *out); err != nil {
		fmt.Fprintf(os.Stderr, "Backup error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Database backup completed: %s\n", *out)
}
