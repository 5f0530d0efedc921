package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	json "github.com/goccy/go-json"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/gobapps/gob-api/internal/api/tickers"
	"github.com/gobapps/gob-api/internal/loaders"
	"github.com/gobapps/gob-api/internal/types"
)

// TickerRecord is one entry of the input file. A bare string is accepted as
// shorthand for {"ticker": "..."}.
type TickerRecord struct {
	Ticker      string `json:"ticker"`
	Source      string `json:"source"`
	CompanyName string `json:"company_name"`
	Exchange    string `json:"exchange"`
	Country     string `json:"country"`
	Priority    int    `json:"priority"`
	IsActive    *bool  `json:"is_active"`
}

func (r *TickerRecord) UnmarshalJSON(data []byte) error {
	var symbol string
	if err := json.Unmarshal(data, &symbol); err == nil {
		r.Ticker = symbol
		return nil
	}
	type plain TickerRecord
	return json.Unmarshal(data, (*plain)(r))
}

func main() {
	_ = godotenv.Load()

	jsonFile := flag.String("file", "tickers.json", "Path to the JSON ticker list")
	dbDSN := flag.String("db", os.Getenv("DATABASE_URL"), "PostgreSQL DSN (defaults to DATABASE_URL)")
	batchSize := flag.Int("batch", 100, "Rows per upsert batch")
	source := flag.String("source", string(types.TickerSourceTeam), "Source for records that do not set one")
	migrate := flag.Bool("migrate", false, "Create tables before loading")
	dryRun := flag.Bool("dry-run", false, "Validate the file without writing")
	flag.Parse()

	if *dbDSN == "" && !*dryRun {
		fmt.Println("Error: Database DSN is required. Use -db flag or DATABASE_URL")
		flag.Usage()
		os.Exit(1)
	}
	defaultSource := types.TickerSource(*source)
	if !defaultSource.Valid() {
		fmt.Printf("Error: unknown source %q\n", *source)
		os.Exit(1)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx := context.Background()

	logger.Info("Loading ticker file", zap.String("file", *jsonFile))
	records, err := loadJSONFile(*jsonFile)
	if err != nil {
		logger.Fatal("Failed to load ticker file", zap.Error(err))
	}

	rows, skipped := buildRows(records, defaultSource, time.Now().UTC(), logger)
	logger.Info("Parsed ticker file",
		zap.Int("records", len(records)),
		zap.Int("valid", len(rows)),
		zap.Int("skipped", skipped))

	if *dryRun {
		return
	}

	pgClient, err := loaders.NewPostgresClient(*dbDSN, 4, *batchSize)
	if err != nil {
		logger.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer pgClient.Close()

	if *migrate {
		if err := pgClient.EnsureSchema(ctx); err != nil {
			logger.Fatal("Failed to ensure schema", zap.Error(err))
		}
	}

	writeCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	written, err := pgClient.UpsertTickers(writeCtx, rows)
	if err != nil {
		logger.Fatal("Failed to upsert tickers", zap.Int("written", written), zap.Error(err))
	}
	logger.Info("Completed loading tickers", zap.Int("written", written), zap.Int("skipped", skipped))
}

func loadJSONFile(filePath string) ([]TickerRecord, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var records []TickerRecord
	if err := json.NewDecoder(file).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode JSON: %w", err)
	}
	return records, nil
}

// buildRows normalises symbols and drops invalid or repeated ones. The first
// occurrence of a symbol wins.
func buildRows(records []TickerRecord, defaultSource types.TickerSource, now time.Time, logger *zap.Logger) ([]types.TickerRegistryRow, int) {
	seen := make(map[string]bool, len(records))
	rows := make([]types.TickerRegistryRow, 0, len(records))
	skipped := 0

	for i, rec := range records {
		ticker, err := tickers.NormalizeTicker(rec.Ticker)
		if err != nil {
			logger.Warn("Skipping invalid ticker", zap.Int("index", i), zap.Error(err))
			skipped++
			continue
		}
		if seen[ticker] {
			skipped++
			continue
		}
		seen[ticker] = true

		src := defaultSource
		if rec.Source != "" {
			src = types.TickerSource(rec.Source)
			if !src.Valid() {
				logger.Warn("Skipping ticker with unknown source", zap.String("ticker", ticker), zap.String("source", rec.Source))
				skipped++
				continue
			}
		}
		active := true
		if rec.IsActive != nil {
			active = *rec.IsActive
		}
		rows = append(rows, types.TickerRegistryRow{
			Ticker:      ticker,
			Source:      src,
			IsActive:    active,
			CompanyName: rec.CompanyName,
			Exchange:    rec.Exchange,
			Country:     rec.Country,
			Priority:    rec.Priority,
			UpdatedAt:   now,
		})
	}
	return rows, skipped
}
