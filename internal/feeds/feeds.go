package feeds

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog"

	"horse.fit/crimemap/internal/globaltime"
)

// Item is one normalized feed entry. Link is the natural key for the
// whole pipeline.
type Item struct {
	Link        string
	Title       string
	PublishedAt time.Time
}

// Fetcher pulls candidate items from RSS/Atom feeds.
type Fetcher struct {
	parser *gofeed.Parser
	logger zerolog.Logger
}

func NewFetcher(logger zerolog.Logger, userAgent string) *Fetcher {
	parser := gofeed.NewParser()
	if ua := strings.TrimSpace(userAgent); ua != "" {
		parser.UserAgent = ua
	}
	return &Fetcher{
		parser: parser,
		logger: logger,
	}
}

// Fetch parses every feed URL and returns items published at or after the
// cutoff, capped at maxItems (0 means no cap). Items missing a link or a
// title are dropped; items without a publish time count as freshly
// published. A feed that fails to parse is logged and skipped.
func (f *Fetcher) Fetch(ctx context.Context, feedURLs []string, since time.Time, maxItems int) ([]Item, error) {
	if f == nil || f.parser == nil {
		return nil, fmt.Errorf("feed fetcher is not initialized")
	}
	if len(feedURLs) == 0 {
		return nil, fmt.Errorf("at least one feed URL is required")
	}

	items := make([]Item, 0, 64)
	for _, feedURL := range feedURLs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		feed, err := f.parser.ParseURLWithContext(feedURL, ctx)
		if err != nil {
			f.logger.Warn().Err(err).Str("feed", feedURL).Msg("feed parse failed, skipping")
			continue
		}

		for _, entry := range feed.Items {
			item, ok := normalizeEntry(entry, since)
			if !ok {
				continue
			}
			items = append(items, item)
			if maxItems > 0 && len(items) >= maxItems {
				return items, nil
			}
		}
	}

	return items, nil
}

func normalizeEntry(entry *gofeed.Item, since time.Time) (Item, bool) {
	if entry == nil {
		return Item{}, false
	}

	link := strings.TrimSpace(entry.Link)
	title := strings.TrimSpace(entry.Title)
	if link == "" || title == "" {
		return Item{}, false
	}

	published := entryTime(entry)
	if published == nil {
		now := globaltime.UTC()
		published = &now
	} else if published.Before(since) {
		return Item{}, false
	}

	return Item{
		Link:        link,
		Title:       title,
		PublishedAt: published.UTC(),
	}, true
}

func entryTime(entry *gofeed.Item) *time.Time {
	if entry.PublishedParsed != nil {
		return entry.PublishedParsed
	}
	return entry.UpdatedParsed
}
