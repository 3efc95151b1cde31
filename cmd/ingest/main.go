package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"credit-engine/internal/config"
	"credit-engine/internal/infrastructure/database/postgres"
	"credit-engine/internal/infrastructure/logging"
	"credit-engine/internal/ingest"
)

// Seeds the database from the historical customer and loan CSV exports.
// Intended as a one-shot command, run before the API server first starts.
func main() {
	customerFile := flag.String("customers", "", "path to the customer CSV file (overrides config)")
	loanFile := flag.String("loans", "", "path to the loan CSV file (overrides config)")
	configPath := flag.String("config", ".", "directory containing config.yml")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg.Logger)
	slog.SetDefault(logger)

	if *customerFile == "" {
		*customerFile = cfg.Ingest.CustomerFile
	}
	if *loanFile == "" {
		*loanFile = cfg.Ingest.LoanFile
	}

	ctx := context.Background()

	dbPool, err := postgres.NewConnectionPool(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("Failed to initialize database connection pool", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	customers, err := os.Open(*customerFile)
	if err != nil {
		logger.Error("Failed to open customer file", "path", *customerFile, "error", err)
		os.Exit(1)
	}
	defer customers.Close()

	loans, err := os.Open(*loanFile)
	if err != nil {
		logger.Error("Failed to open loan file", "path", *loanFile, "error", err)
		os.Exit(1)
	}
	defer loans.Close()

	loader := ingest.NewLoader(
		postgres.NewCustomerRepository(dbPool, logger),
		postgres.NewLoanRepository(dbPool, logger),
		logger,
	)

	summary, err := loader.Run(ctx, customers, loans)
	if err != nil {
		logger.Error("Ingestion failed", "error", err)
		os.Exit(1)
	}

	logger.Info("Ingestion complete",
		"customers_created", summary.CustomersCreated,
		"customers_skipped", summary.CustomersSkipped,
		"loans_created", summary.LoansCreated,
		"loans_skipped", summary.LoansSkipped,
	)
}
