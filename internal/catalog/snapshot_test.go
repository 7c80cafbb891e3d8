package catalog

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"ArticlePublisher/internal/domain"
)

type pagedSource struct {
	pages    [][]domain.Item
	size     int
	requests []int
	failOn   int
}

func (s *pagedSource) PageSize() int { return s.size }

func (s *pagedSource) FetchPage(_ context.Context, page int) ([]domain.Item, error) {
	s.requests = append(s.requests, page)
	if page == s.failOn {
		return nil, fmt.Errorf("%w: boom", domain.ErrTransientIO)
	}
	if page-1 >= len(s.pages) {
		return nil, nil
	}
	return s.pages[page-1], nil
}

func TestBuildWalksUntilShortPage(t *testing.T) {
	t.Parallel()

	src := &pagedSource{
		size: 2,
		pages: [][]domain.Item{
			{{ID: "1", Category: "Lighting", Price: 10}, {ID: "2", Category: "Lighting", Price: 30}},
			{{ID: "3", Category: "", Price: 300}},
		},
	}

	snap, err := NewBuilder(src, nil).Build(context.Background())
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if len(src.requests) != 2 {
		t.Fatalf("expected 2 page requests, got %v", src.requests)
	}
	if snap.TotalItems != 3 {
		t.Fatalf("expected 3 items, got %d", snap.TotalItems)
	}
	if snap.Categories["Lighting"] != 2 || snap.Categories[uncategorized] != 1 {
		t.Fatalf("unexpected categories: %v", snap.Categories)
	}
}

func TestBuildStopsOnEmptyPage(t *testing.T) {
	t.Parallel()

	src := &pagedSource{
		size:  1,
		pages: [][]domain.Item{{{ID: "1"}}, {{ID: "2"}}},
	}

	snap, err := NewBuilder(src, nil).Build(context.Background())
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if len(src.requests) != 3 {
		t.Fatalf("expected 3 page requests, got %v", src.requests)
	}
	if snap.TotalItems != 2 {
		t.Fatalf("expected 2 items, got %d", snap.TotalItems)
	}
}

func TestBuildPropagatesErrors(t *testing.T) {
	t.Parallel()

	src := &pagedSource{size: 1, pages: [][]domain.Item{{{ID: "1"}}}, failOn: 2}
	_, err := NewBuilder(src, nil).Build(context.Background())
	if !errors.Is(err, domain.ErrTransientIO) {
		t.Fatalf("expected transient error, got %v", err)
	}
}

func TestAggregateHistogram(t *testing.T) {
	t.Parallel()

	snap := Aggregate([]domain.Item{
		{ID: "a", Price: 0},
		{ID: "b", Price: 24.99},
		{ID: "c", Price: 25},
		{ID: "d", Price: 99},
		{ID: "e", Price: 249.99},
		{ID: "f", Price: 1200},
	})

	want := map[string]int{"0-25": 2, "25-50": 1, "50-100": 1, "100-250": 1, "250+": 1}
	for _, b := range snap.PriceBuckets {
		if b.Count != want[b.Label] {
			t.Fatalf("bucket %s: want %d, got %d", b.Label, want[b.Label], b.Count)
		}
	}
}
