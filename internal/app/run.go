package app

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"horse.fit/crimemap/internal/cli"
	"horse.fit/crimemap/internal/config"
	"horse.fit/crimemap/internal/db"
	"horse.fit/crimemap/internal/feeds"
	"horse.fit/crimemap/internal/geocode"
	"horse.fit/crimemap/internal/globaltime"
	"horse.fit/crimemap/internal/heatmap"
	"horse.fit/crimemap/internal/langdetect"
	"horse.fit/crimemap/internal/logging"
	"horse.fit/crimemap/internal/pipeline"
	"horse.fit/crimemap/internal/places"
	"horse.fit/crimemap/internal/reader"
	feedschema "horse.fit/crimemap/schema"
)

func runPipeline(args []string) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	feedList := fs.String("feeds", "", "Comma-separated feed URLs")
	feedsFile := fs.String("feeds-file", "", "Path to a JSON feed list file (overrides --feeds)")
	since := fs.String("since", "", "Only keep items published at or after this RFC3339 or YYYY-MM-DD cutoff")
	lookback := fs.Duration("lookback", 24*time.Hour, "Cutoff window when --since is not set")
	maxItems := fs.Int("max", 0, "Maximum items to process, 0 means no cap")
	outFile := fs.String("out", "", "Heatmap output file, empty skips rendering")
	timeout := fs.Duration("timeout", 15*time.Minute, "Overall run timeout")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if *maxItems < 0 {
		fmt.Fprintln(os.Stderr, "--max must be >= 0")
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

	feedURLs, err := resolveFeedURLs(*feedList, *feedsFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid feed list: %v\n", err)
		return 2
	}

	cutoff, err := resolveCutoff(*since, *lookback)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid --since: %v\n", err)
		return 2
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		cancel()
	}()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Error().Err(err).Msg("database connection failed")
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		return 1
	}
	defer pool.Close()

	extractors, err := places.NewRegistry(places.NewEnglishExtractor(), places.NewPortugueseExtractor())
	if err != nil {
		logger.Error().Err(err).Msg("place extractor registry failed")
		fmt.Fprintf(os.Stderr, "Failed to build place extractors: %v\n", err)
		return 1
	}

	selector := geocode.NewSelector(geocode.NewNominatim(logger, geocode.NominatimOptions{
		Endpoint:          cfg.GeocodeEndpoint,
		UserAgent:         cfg.UserAgent,
		Timeout:           cfg.GeocodeTimeout,
		RequestsPerSecond: cfg.GeocodeRPS,
	}))

	var render pipeline.RenderFunc
	if strings.TrimSpace(*outFile) != "" {
		render = func(points []db.AggregatedPoint, out string) (string, error) {
			return heatmap.Write(points, out, heatmap.Options{})
		}
	}

	svc, err := pipeline.NewService(pipeline.Deps{
		Source:  feeds.NewFetcher(logger, cfg.UserAgent),
		Fetcher: reader.NewFetcher(reader.Options{Timeout: cfg.FetchTimeout, UserAgent: cfg.UserAgent}),
		DetectLang: func(text, fallback string) string {
			return langdetect.DetectOrDefault(text, fallback)
		},
		Extractors: extractors,
		Selector:   selector,
		Store:      pool,
		Render:     render,
		Logger:     logger,
	}, pipeline.Options{
		ScoreThreshold:  cfg.ScoreThreshold,
		DedupThreshold:  cfg.DedupThreshold,
		SignatureSize:   cfg.SignatureSize,
		DefaultLanguage: langdetect.NormalizeCode(cfg.DefaultLanguage),
	})
	if err != nil {
		logger.Error().Err(err).Msg("pipeline initialization failed")
		fmt.Fprintf(os.Stderr, "Failed to build pipeline: %v\n", err)
		return 1
	}

	stats, err := svc.Run(ctx, pipeline.RunOptions{
		FeedURLs: feedURLs,
		Since:    cutoff,
		MaxItems: *maxItems,
		OutFile:  strings.TrimSpace(*outFile),
	})
	if err != nil {
		logger.Error().Err(err).Msg("pipeline run failed")
		fmt.Fprintf(os.Stderr, "Run failed: %v\n", err)
		return 1
	}

	fmt.Printf("fetched=%d saved=%d low_score=%d duplicates=%d unresolved=%d failed=%d points=%d\n",
		stats.ItemsFetched, stats.Saved, stats.LowScore, stats.Duplicates, stats.Unresolved, stats.Failed, stats.Points)
	if stats.HeatmapFile != "" {
		fmt.Printf("heatmap=%s\n", stats.HeatmapFile)
	}
	return 0
}

func resolveFeedURLs(inline, filePath string) ([]string, error) {
	if path := strings.TrimSpace(filePath); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read feed list file %q: %w", path, err)
		}
		sources, err := feedschema.ValidateFeedList(json.RawMessage(raw))
		if err != nil {
			return nil, err
		}
		urls := make([]string, 0, len(sources))
		for _, source := range sources {
			urls = append(urls, strings.TrimSpace(source.URL))
		}
		return urls, nil
	}

	var urls []string
	for _, part := range strings.Split(inline, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			urls = append(urls, trimmed)
		}
	}
	if len(urls) == 0 {
		return nil, fmt.Errorf("either --feeds or --feeds-file is required")
	}
	return urls, nil
}

func resolveCutoff(since string, lookback time.Duration) (time.Time, error) {
	trimmed := strings.TrimSpace(since)
	if trimmed == "" {
		if lookback <= 0 {
			lookback = 24 * time.Hour
		}
		return globaltime.UTC().Add(-lookback), nil
	}

	if ts, err := time.Parse(time.RFC3339, trimmed); err == nil {
		return ts.UTC(), nil
	}
	if day, err := time.Parse("2006-01-02", trimmed); err == nil {
		return day.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("must be RFC3339 or YYYY-MM-DD")
}
