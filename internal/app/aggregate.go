package app

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"horse.fit/crimemap/internal/cli"
	"horse.fit/crimemap/internal/config"
	"horse.fit/crimemap/internal/db"
	"horse.fit/crimemap/internal/heatmap"
	"horse.fit/crimemap/internal/logging"
)

func runAggregate(args []string) int {
	fs := flag.NewFlagSet("aggregate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 30*time.Second, "Command timeout")
	outFile := fs.String("out", "", "Heatmap output file, empty skips rendering")
	asJSON := fs.Bool("json", false, "Print aggregated buckets as JSON")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if envLoader != nil {
		if _, err := envLoader.Load(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Error().Err(err).Msg("database connection failed")
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		return 1
	}
	defer pool.Close()

	points, err := pool.AggregatePoints(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("aggregation failed")
		fmt.Fprintf(os.Stderr, "Aggregation failed: %v\n", err)
		return 1
	}

	if *asJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(points); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode points: %v\n", err)
			return 1
		}
	} else {
		fmt.Printf("buckets=%d\n", len(points))
	}

	if out := strings.TrimSpace(*outFile); out != "" {
		written, err := heatmap.Write(points, out, heatmap.Options{})
		if err != nil {
			logger.Error().Err(err).Str("out", out).Msg("heatmap render failed")
			fmt.Fprintf(os.Stderr, "Heatmap render failed: %v\n", err)
			return 1
		}
		logger.Info().Str("file", written).Int("buckets", len(points)).Msg("heatmap rendered")
		fmt.Printf("heatmap=%s\n", written)
	}

	return 0
}
