// Command migrate applies the gorm schema to the configured database.
// Connect skips AutoMigrate in production; this binary is the explicit,
// operator-driven way to run it there.
package main

import (
	"flag"
	"fmt"
	"log"

	"hackarena/internal/config"
	"hackarena/internal/database"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	apply := flag.Bool("apply", false, "Apply schema changes (default is a dry announcement)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	models := database.PersistentModels()
	if !*apply {
		log.Printf("%d models registered; run with -apply to migrate", len(models))
		return nil
	}

	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("automigrate failed: %w", err)
	}
	log.Printf("schema applied for %d models", len(models))
	return nil
}
