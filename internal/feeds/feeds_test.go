package feeds

import (
	"testing"
	"time"

	"github.com/mmcdole/gofeed"

	"horse.fit/crimemap/internal/globaltime"
)

func TestNormalizeEntry_DropsMissingLinkOrTitle(t *testing.T) {
	since := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	if _, ok := normalizeEntry(&gofeed.Item{Title: "no link"}, since); ok {
		t.Fatalf("expected entry without link to be dropped")
	}
	if _, ok := normalizeEntry(&gofeed.Item{Link: "https://example.com/a", Title: "  "}, since); ok {
		t.Fatalf("expected entry with blank title to be dropped")
	}
}

func TestNormalizeEntry_CutoffFilter(t *testing.T) {
	since := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	old := since.Add(-time.Hour)
	fresh := since.Add(time.Hour)

	if _, ok := normalizeEntry(&gofeed.Item{
		Link:            "https://example.com/old",
		Title:           "old story",
		PublishedParsed: &old,
	}, since); ok {
		t.Fatalf("expected entry older than the cutoff to be dropped")
	}

	item, ok := normalizeEntry(&gofeed.Item{
		Link:            "https://example.com/fresh",
		Title:           "fresh story",
		PublishedParsed: &fresh,
	}, since)
	if !ok {
		t.Fatalf("expected fresh entry to survive")
	}
	if !item.PublishedAt.Equal(fresh) {
		t.Fatalf("unexpected published time: %v", item.PublishedAt)
	}
}

func TestNormalizeEntry_MissingTimestampIsFresh(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	globaltime.SetMockTime(now)
	defer globaltime.ResetTime()

	since := now.Add(-24 * time.Hour)
	item, ok := normalizeEntry(&gofeed.Item{
		Link:  "https://example.com/undated",
		Title: "undated story",
	}, since)
	if !ok {
		t.Fatalf("expected undated entry to survive the cutoff")
	}
	if !item.PublishedAt.Equal(now) {
		t.Fatalf("expected undated entry to use the current time, got %v", item.PublishedAt)
	}
}

func TestNormalizeEntry_FallsBackToUpdatedTime(t *testing.T) {
	t.Parallel()

	since := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	updated := since.Add(48 * time.Hour)

	item, ok := normalizeEntry(&gofeed.Item{
		Link:          "https://example.com/updated",
		Title:         "updated story",
		UpdatedParsed: &updated,
	}, since)
	if !ok {
		t.Fatalf("expected entry with updated time to survive")
	}
	if !item.PublishedAt.Equal(updated) {
		t.Fatalf("expected updated time to be used, got %v", item.PublishedAt)
	}
}
