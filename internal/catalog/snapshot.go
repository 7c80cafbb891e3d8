package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"ArticlePublisher/internal/domain"
	"ArticlePublisher/internal/ports"
)

const uncategorized = "uncategorized"

// maxPages bounds pagination against a backend that never returns a short page.
const maxPages = 1000

// Builder pulls the paginated catalog and aggregates it into a snapshot.
type Builder struct {
	source ports.CatalogSource
	logger *slog.Logger
}

// NewBuilder wires a catalog source.
func NewBuilder(source ports.CatalogSource, logger *slog.Logger) *Builder {
	return &Builder{source: source, logger: logger}
}

// Build walks every page until exhaustion and returns the aggregated snapshot.
func (b *Builder) Build(ctx context.Context) (domain.CatalogSnapshot, error) {
	if b.source == nil {
		return domain.CatalogSnapshot{}, fmt.Errorf("catalog source is not configured")
	}

	var items []domain.Item
	seen := map[string]struct{}{}
	pageSize := b.source.PageSize()

	for page := 1; page <= maxPages; page++ {
		batch, err := b.source.FetchPage(ctx, page)
		if err != nil {
			return domain.CatalogSnapshot{}, fmt.Errorf("fetch catalog page %d: %w", page, err)
		}
		for _, item := range batch {
			if _, ok := seen[item.ID]; ok {
				continue
			}
			seen[item.ID] = struct{}{}
			items = append(items, item)
		}
		b.debug("catalog page fetched", "page", page, "items", len(batch))

		if len(batch) == 0 || len(batch) < pageSize {
			break
		}
	}

	snapshot := Aggregate(items)
	b.debug("catalog snapshot built", "total", snapshot.TotalItems, "categories", len(snapshot.Categories))
	return snapshot, nil
}

// Aggregate computes counts, categories and the price histogram for items.
func Aggregate(items []domain.Item) domain.CatalogSnapshot {
	buckets := defaultBuckets()
	categories := map[string]int{}

	for _, item := range items {
		category := strings.TrimSpace(item.Category)
		if category == "" {
			category = uncategorized
		}
		categories[category]++

		for i := range buckets {
			if buckets[i].Contains(item.Price) {
				buckets[i].Count++
				break
			}
		}
	}

	return domain.CatalogSnapshot{
		TotalItems:   len(items),
		Categories:   categories,
		PriceBuckets: buckets,
		Items:        items,
	}
}

func defaultBuckets() []domain.PriceBucket {
	return []domain.PriceBucket{
		{Label: "0-25", Min: 0, Max: 25},
		{Label: "25-50", Min: 25, Max: 50},
		{Label: "50-100", Min: 50, Max: 100},
		{Label: "100-250", Min: 100, Max: 250},
		{Label: "250+", Min: 250},
	}
}

func (b *Builder) debug(msg string, args ...interface{}) {
	if b.logger != nil {
		b.logger.Debug(msg, args...)
	}
}
