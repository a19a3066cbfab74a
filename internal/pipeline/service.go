package pipeline

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"horse.fit/crimemap/internal/db"
	"horse.fit/crimemap/internal/dedup"
	"horse.fit/crimemap/internal/feeds"
	"horse.fit/crimemap/internal/geocode"
	"horse.fit/crimemap/internal/globaltime"
	"horse.fit/crimemap/internal/places"
	"horse.fit/crimemap/internal/relevance"
)

// ItemSource supplies candidate items from configured feed sources.
type ItemSource interface {
	Fetch(ctx context.Context, feedURLs []string, since time.Time, maxItems int) ([]feeds.Item, error)
}

// TextFetcher extracts readable plain text for a candidate link.
type TextFetcher interface {
	FetchText(ctx context.Context, link string) (string, error)
}

// LocationSelector resolves one representative location from ordered
// candidate names.
type LocationSelector interface {
	Select(ctx context.Context, candidates []string) (geocode.Location, bool, error)
}

// EventStore is the durable side of the pipeline.
type EventStore interface {
	InsertEventIfNew(ctx context.Context, event db.Event) (bool, error)
	AggregatePoints(ctx context.Context) ([]db.AggregatedPoint, error)
}

// RenderFunc turns aggregated points into a visual artifact and returns its
// handle.
type RenderFunc func(points []db.AggregatedPoint, outFile string) (string, error)

// Options are the pipeline policy knobs.
type Options struct {
	ScoreThreshold  float64
	DedupThreshold  float64
	SignatureSize   int
	DefaultLanguage string
}

// RunOptions describes one pipeline run.
type RunOptions struct {
	FeedURLs []string
	Since    time.Time
	MaxItems int
	OutFile  string
}

// RunStats summarizes one pipeline run. Per-item failures and policy
// rejections are counted here, never surfaced as errors.
type RunStats struct {
	ItemsFetched int    `json:"items_fetched"`
	Saved        int    `json:"saved"`
	LowScore     int    `json:"low_score"`
	Duplicates   int    `json:"duplicates"`
	Unresolved   int    `json:"unresolved"`
	Failed       int    `json:"failed"`
	Points       int    `json:"points"`
	HeatmapFile  string `json:"heatmap_file,omitempty"`
}

// Service sequences the scoring, dedup, geocoding, and persistence stages
// per item. Each run owns its near-duplicate index; the event store owns all
// durable state.
type Service struct {
	source     ItemSource
	fetcher    TextFetcher
	detectLang func(text, fallback string) string
	extractors *places.Registry
	selector   LocationSelector
	store      EventStore
	render     RenderFunc
	logger     zerolog.Logger
	opts       Options
}

// Deps are the pipeline's collaborators. Source, Fetcher, DetectLang,
// Selector, and Store are required; Render may be nil when no artifact is
// requested.
type Deps struct {
	Source     ItemSource
	Fetcher    TextFetcher
	DetectLang func(text, fallback string) string
	Extractors *places.Registry
	Selector   LocationSelector
	Store      EventStore
	Render     RenderFunc
	Logger     zerolog.Logger
}

func NewService(deps Deps, opts Options) (*Service, error) {
	if deps.Source == nil || deps.Fetcher == nil || deps.DetectLang == nil || deps.Selector == nil || deps.Store == nil {
		return nil, fmt.Errorf("pipeline collaborators are incomplete")
	}
	if opts.ScoreThreshold <= 0 {
		opts.ScoreThreshold = 0.6
	}
	if opts.DedupThreshold <= 0 {
		opts.DedupThreshold = dedup.DefaultThreshold
	}
	if opts.SignatureSize <= 0 {
		opts.SignatureSize = dedup.DefaultSignatureSize
	}
	if opts.DefaultLanguage == "" {
		opts.DefaultLanguage = "en"
	}
	if !relevance.Supported(opts.DefaultLanguage) {
		return nil, fmt.Errorf("no keyword table for default language %q", opts.DefaultLanguage)
	}
	if deps.Extractors == nil {
		return nil, fmt.Errorf("place extractor registry is required")
	}
	if err := deps.Extractors.Require(relevance.Languages()...); err != nil {
		return nil, fmt.Errorf("place extraction capability missing: %w", err)
	}

	return &Service{
		source:     deps.Source,
		fetcher:    deps.Fetcher,
		detectLang: deps.DetectLang,
		extractors: deps.Extractors,
		selector:   deps.Selector,
		store:      deps.Store,
		render:     deps.Render,
		logger:     deps.Logger,
		opts:       opts,
	}, nil
}

// Run processes items sequentially in delivery order. Per-item failures drop
// the item and continue; only initialization failures and context
// cancellation abort the run. Already-saved events survive an aborted run.
func (s *Service) Run(ctx context.Context, runOpts RunOptions) (RunStats, error) {
	var stats RunStats

	items, err := s.source.Fetch(ctx, runOpts.FeedURLs, runOpts.Since, runOpts.MaxItems)
	if err != nil {
		return stats, fmt.Errorf("fetch feed items: %w", err)
	}
	stats.ItemsFetched = len(items)

	index, err := dedup.NewIndex(s.opts.DedupThreshold, s.opts.SignatureSize)
	if err != nil {
		return stats, fmt.Errorf("build near-duplicate index: %w", err)
	}

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		result, err := s.processItem(ctx, index, item)
		if err != nil {
			return stats, err
		}

		s.logger.Debug().
			Str("link", item.Link).
			Str("outcome", result.String()).
			Msg("item processed")

		switch result {
		case outcomeSaved:
			stats.Saved++
		case outcomeLowScore:
			stats.LowScore++
		case outcomeDuplicate:
			stats.Duplicates++
		case outcomeNoLocation:
			stats.Unresolved++
		case outcomeFailed:
			stats.Failed++
		}
	}

	points, err := s.store.AggregatePoints(ctx)
	if err != nil {
		return stats, fmt.Errorf("aggregate points: %w", err)
	}
	stats.Points = len(points)

	if s.render != nil && runOpts.OutFile != "" {
		artifact, err := s.render(points, runOpts.OutFile)
		if err != nil {
			return stats, fmt.Errorf("render heatmap: %w", err)
		}
		stats.HeatmapFile = artifact
	}

	return stats, nil
}

// processItem walks one item through the transition chain. A returned error
// aborts the whole run and is reserved for context cancellation; everything
// else terminates in an outcome.
func (s *Service) processItem(ctx context.Context, index *dedup.Index, item feeds.Item) (outcome, error) {
	text, err := s.fetcher.FetchText(ctx, item.Link)
	if err != nil {
		if ctx.Err() != nil {
			return outcomeFailed, ctx.Err()
		}
		s.logger.Debug().Err(err).Str("link", item.Link).Msg("text extraction failed")
		return outcomeFailed, nil
	}

	lang := s.detectLang(text, s.opts.DefaultLanguage)
	if !relevance.Supported(lang) {
		lang = s.opts.DefaultLanguage
	}

	score := relevance.Score(text, lang)
	if score < s.opts.ScoreThreshold {
		return outcomeLowScore, nil
	}

	sig := dedup.NewSignature(text, s.opts.SignatureSize)
	if index.Query(sig) {
		return outcomeDuplicate, nil
	}
	index.Insert(linkKey(item.Link), sig)

	extractor, err := s.extractors.Resolve(lang)
	if err != nil {
		s.logger.Warn().Err(err).Str("link", item.Link).Msg("place extraction unavailable")
		return outcomeFailed, nil
	}

	location, ok, err := s.selector.Select(ctx, extractor.Extract(text))
	if err != nil {
		if ctx.Err() != nil {
			return outcomeFailed, ctx.Err()
		}
		s.logger.Debug().Err(err).Str("link", item.Link).Msg("geocoding failed")
		return outcomeFailed, nil
	}
	if !ok {
		return outcomeNoLocation, nil
	}

	event := db.Event{
		Link:        item.Link,
		Title:       item.Title,
		PublishedAt: item.PublishedAt,
		Lang:        lang,
		Score:       score,
		Lat:         location.Lat,
		Lon:         location.Lon,
		Place:       location.Label,
		CreatedAt:   globaltime.UTC(),
	}
	if _, err := s.store.InsertEventIfNew(ctx, event); err != nil {
		if ctx.Err() != nil {
			return outcomeFailed, ctx.Err()
		}
		s.logger.Warn().Err(err).Str("link", item.Link).Msg("event insert failed")
		return outcomeFailed, nil
	}

	return outcomeSaved, nil
}

func linkKey(link string) string {
	sum := sha1.Sum([]byte(link))
	return hex.EncodeToString(sum[:])
}
