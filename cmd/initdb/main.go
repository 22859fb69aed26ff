// Command initdb creates the schema and seeds the default admin account
// and municipality catalog. It is idempotent; running it against an
// existing database changes nothing.
package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/turnosmx/sistema-turnos/internal/config"
	"github.com/turnosmx/sistema-turnos/internal/database"
	"github.com/turnosmx/sistema-turnos/internal/utils"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := database.Migrate(ctx, db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	adminUser := envOr("ADMIN_USER", "admin")
	adminEmail := envOr("ADMIN_EMAIL", "admin@turnos.local")
	adminPass := os.Getenv("ADMIN_PASSWORD")
	if adminPass == "" {
		log.Fatal("missing required env var: ADMIN_PASSWORD")
	}
	hash, err := utils.HashPassword(adminPass, cfg.BcryptCost)
	if err != nil {
		log.Fatalf("hash admin password: %v", err)
	}

	if err := database.Seed(ctx, db, adminUser, hash, adminEmail); err != nil {
		log.Fatalf("seed: %v", err)
	}

	log.Printf("database %s ready (admin user %q)", cfg.DBName, adminUser)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
