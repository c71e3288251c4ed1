package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/openledger/backend/internal/infrastructure/config"
	"github.com/openledger/backend/internal/infrastructure/logger"
	"github.com/openledger/backend/internal/infrastructure/persistence"
	"github.com/openledger/backend/internal/infrastructure/persistence/models"
	"go.uber.org/zap"
)

func main() {
	var logLevel string
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]

	log, err := logger.New(&logger.Config{
		Level:  logLevel,
		Format: "console",
		Output: "stdout",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = log.Sync()
	}()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		_ = db.Close()
	}()

	switch command {
	case "up":
		log.Info("Applying schema migrations", zap.String("database", cfg.Database.DBName))
		if err := db.DB.AutoMigrate(models.AllModels()...); err != nil {
			log.Fatal("Migration failed", zap.Error(err))
		}
		log.Info("Schema is up to date")

	case "seed-company":
		if len(args) < 2 {
			log.Fatal("Company ID required. Usage: migrate seed-company <uuid>")
		}
		companyID, err := uuid.Parse(args[1])
		if err != nil {
			log.Fatal("Invalid company ID", zap.String("value", args[1]))
		}
		companies := persistence.NewGormCompanyRepository(db.DB)
		if err := companies.Ensure(context.Background(), companyID); err != nil {
			log.Fatal("Failed to seed company", zap.Error(err))
		}
		log.Info("Company seeded", zap.String("company_id", companyID.String()))

	default:
		log.Error("Unknown command", zap.String("command", command))
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`OpenLedger Database Migration Tool

Usage:
  migrate [flags] <command> [arguments]

Commands:
  up                    Apply the current schema to the database
  seed-company <uuid>   Ensure a company record exists (idempotent)

Flags:
  -log-level string     Log level: debug, info, warn, error (default: info)

Environment Variables:
  LEDGER_DATABASE_HOST, LEDGER_DATABASE_PORT, LEDGER_DATABASE_USER,
  LEDGER_DATABASE_PASSWORD, LEDGER_DATABASE_DBNAME, LEDGER_DATABASE_SSLMODE

Examples:
  # Bring the schema up to date
  migrate up

  # Register a company
  migrate seed-company 7c9e6679-7425-40de-944b-e07fc1f90ae7`)
}
