package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"skill-swap/internal/app"
	"skill-swap/internal/config"

	"github.com/joho/godotenv"
)

func main() {
	skipMigrate := flag.Bool("skip-migrate", false, "do not apply SQL migrations first")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("failed to read .env: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if cfg.Store.Driver != config.StoreDriverPostgres {
		log.Printf("STORE_DRIVER=%s: seeding an in-memory tree has no lasting effect", cfg.Store.Driver)
	}

	logger := log.New(os.Stdout, "", log.LstdFlags)
	c, err := app.NewContainer(cfg, logger)
	if err != nil {
		log.Fatalf("failed to init container: %v", err)
	}
	defer func() {
		_ = c.Close()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if !*skipMigrate {
		if err := c.Migrate(ctx); err != nil {
			log.Fatalf("migration failed: %v", err)
		}
	}
	if err := c.Seed(ctx); err != nil {
		log.Fatalf("seed failed: %v", err)
	}
	log.Printf("seed completed")
}
