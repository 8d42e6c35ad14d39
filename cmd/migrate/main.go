package main

import (
	"fmt"

	"github.com/joho/godotenv"

	"github.com/raihansyah/sql-agent/internal/config"
	"github.com/raihansyah/sql-agent/internal/repository/sqlite"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	fmt.Printf("Migrating preference store at %s...\n", cfg.Preferences.Path)

	if err := sqlite.RunMigrations(cfg.Preferences.Path, "file://migrations"); err != nil {
		panic(fmt.Sprintf("Migration failed: %v", err))
	}

	fmt.Println("Migrations applied")
}
