package usecase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ArticlePublisher/internal/domain"
	"ArticlePublisher/internal/infrastructure/registry"
	"ArticlePublisher/internal/retry"
)

type staticCatalog struct {
	items []domain.Item
	calls int
}

func (s *staticCatalog) PageSize() int { return 100 }

func (s *staticCatalog) FetchPage(_ context.Context, page int) ([]domain.Item, error) {
	s.calls++
	if page > 1 {
		return nil, nil
	}
	return s.items, nil
}

type recordingPublisher struct {
	fail     bool
	calls    int
	requests []domain.PublishRequest
}

func (p *recordingPublisher) Publish(_ context.Context, _ string, req domain.PublishRequest) (domain.PublishedArticle, error) {
	p.calls++
	if p.fail {
		return domain.PublishedArticle{}, fmt.Errorf("%w: 502 bad gateway", domain.ErrTransientIO)
	}
	p.requests = append(p.requests, req)
	return domain.PublishedArticle{
		ID:          fmt.Sprintf("article-%d", p.calls),
		Handle:      fmt.Sprintf("guide-%d", p.calls),
		PublishedAt: time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC),
	}, nil
}

func (p *recordingPublisher) DestinationHandle(context.Context, string) (string, error) {
	return "journal", nil
}

func (p *recordingPublisher) StoreURL() string { return "https://shop.example.com" }

type countingLock struct {
	held     bool
	acquired int
	released int
}

func (l *countingLock) Acquire(context.Context) error {
	if l.held {
		return domain.ErrRegistryLocked
	}
	l.acquired++
	return nil
}

func (l *countingLock) Release(context.Context) error {
	l.released++
	return nil
}

func product(id, title, handle, category string, price float64) domain.Item {
	return domain.Item{
		ID:       id,
		Title:    title,
		Handle:   handle,
		Category: category,
		Price:    price,
		ImageURL: "https://cdn.example.com/" + handle + ".jpg",
	}
}

func lamps(n int) []domain.Item {
	var items []domain.Item
	for i := 0; i < n; i++ {
		items = append(items, product(
			fmt.Sprintf("lamp-%d", i),
			fmt.Sprintf("Nordic Brass Floor Lamp %d", i),
			fmt.Sprintf("nordic-brass-floor-lamp-%d", i),
			"Lighting",
			float64(45+i*20),
		))
	}
	return items
}

func filler() []domain.Item {
	var items []domain.Item
	for i := 0; i < 4; i++ {
		items = append(items, product(
			fmt.Sprintf("table-%d", i),
			fmt.Sprintf("Oak Dining Table %d", i),
			fmt.Sprintf("oak-dining-table-%d", i),
			"Dining",
			float64(300+i*50),
		))
	}
	return items
}

type fixture struct {
	catalog   *staticCatalog
	publisher *recordingPublisher
	lock      *countingLock
	registry  *registry.FileRegistry
	path      string
	pipeline  *Pipeline
}

func newFixture(t *testing.T, items []domain.Item) *fixture {
	t.Helper()

	f := &fixture{
		catalog:   &staticCatalog{items: items},
		publisher: &recordingPublisher{},
		lock:      &countingLock{},
		path:      filepath.Join(t.TempDir(), "registry.yaml"),
	}
	f.registry = registry.NewFileRegistry(f.path, nil)
	f.pipeline = NewPipeline(PipelineDeps{
		Catalog:   f.catalog,
		Publisher: f.publisher,
		Registry:  f.registry,
		Lock:      f.lock,
		Retry: retry.Policy{
			MaxAttempts: 3,
			BaseDelay:   time.Second,
			Sleep:       func(context.Context, time.Duration) error { return nil },
		},
	})
	return f
}

func (f *fixture) registryBytes(t *testing.T) []byte {
	t.Helper()
	raw, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	return raw
}

func target() domain.PublishTarget {
	return domain.PublishTarget{Destination: "news", Tags: []string{"guides"}, Published: true}
}

func TestRunPublishesCompliantDocument(t *testing.T) {
	t.Parallel()

	f := newFixture(t, append(filler(), lamps(8)...))

	res, err := f.pipeline.Run(context.Background(), Request{Keyword: "lamp", Target: target()})
	require.NoError(t, err)

	assert.True(t, res.Published)
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, 100.0, res.Report.Score)
	assert.Empty(t, res.Corrections)
	assert.Equal(t, 8, res.Document.Metrics.ItemLinks)
	assert.Equal(t, 3, strings.Count(res.Document.HTML(), `class="cta"`))
	assert.GreaterOrEqual(t, res.Document.Metrics.Length, 10000)
	assert.LessOrEqual(t, res.Document.Metrics.Length, 20000)
	assert.Equal(t, "https://shop.example.com/blogs/journal/guide-1", res.Record.URL)

	assert.Equal(t, 1, f.publisher.calls)
	assert.Equal(t, 1, f.lock.acquired)
	assert.Equal(t, 1, f.lock.released)

	used, err := f.registry.UsedAssets(context.Background())
	require.NoError(t, err)
	assert.Len(t, used, len(res.Document.ConsumedAssets()))
	assert.Contains(t, used, res.Document.Cover)
}

func TestRunNeverReusesAssetsAcrossDocuments(t *testing.T) {
	t.Parallel()

	f := newFixture(t, append(filler(), lamps(15)...))
	ctx := context.Background()

	first, err := f.pipeline.Run(ctx, Request{Keyword: "lamp", Target: target()})
	require.NoError(t, err)

	second, err := f.pipeline.Run(ctx, Request{Keyword: "lamp", Target: target()})
	require.NoError(t, err)

	firstAssets := map[string]bool{}
	for _, a := range first.Document.ConsumedAssets() {
		firstAssets[a] = true
	}
	for _, a := range second.Document.ConsumedAssets() {
		assert.False(t, firstAssets[a], "asset %s reused across documents", a)
	}
}

func TestRunExpandsNarrowKeyword(t *testing.T) {
	t.Parallel()

	var items []domain.Item
	for i := 0; i < 5; i++ {
		items = append(items, product(fmt.Sprintf("sofa-%d", i), fmt.Sprintf("Velvet Sofa %d", i), fmt.Sprintf("velvet-sofa-%d", i), "Living Room", float64(600+i*40)))
	}
	for i := 0; i < 3; i++ {
		items = append(items, product(fmt.Sprintf("couch-%d", i), fmt.Sprintf("Linen Couch %d", i), fmt.Sprintf("linen-couch-%d", i), "Living Room", float64(500+i*30)))
	}
	for i := 0; i < 2; i++ {
		items = append(items, product(fmt.Sprintf("loveseat-%d", i), fmt.Sprintf("Compact Loveseat %d", i), fmt.Sprintf("compact-loveseat-%d", i), "Living Room", float64(400+i*25)))
	}
	f := newFixture(t, append(items, filler()...))

	res, err := f.pipeline.Run(context.Background(), Request{Keyword: "sofa", DryRun: true})
	require.NoError(t, err)

	assert.True(t, res.Topic.Expanded)
	assert.Len(t, res.Topic.Candidates, 10)
	assert.True(t, res.Report.Compliant())
	assert.False(t, res.Published)
	assert.Zero(t, f.publisher.calls)
	assert.Zero(t, f.lock.acquired, "dry runs never take the registry lock")
	assert.Nil(t, f.registryBytes(t))
}

func TestRunTopicTooNarrow(t *testing.T) {
	t.Parallel()

	f := newFixture(t, append(filler(), lamps(3)...))

	_, err := f.pipeline.Run(context.Background(), Request{Keyword: "lamp", Target: target()})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTopicTooNarrow)

	var phaseErr *domain.PhaseError
	require.ErrorAs(t, err, &phaseErr)
	assert.Equal(t, PhaseTopic, phaseErr.Phase)
	assert.Zero(t, f.publisher.calls)
}

func TestRunAbortsWhenEveryAssetWasUsed(t *testing.T) {
	t.Parallel()

	items := lamps(8)
	f := newFixture(t, append(filler(), items...))

	var assets []string
	for _, it := range items {
		assets = append(assets, it.ImageURL)
	}
	require.NoError(t, f.registry.Append(context.Background(), domain.UsageRecord{
		Title:       "Earlier guide",
		DocumentID:  "earlier",
		PublishedAt: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		Assets:      assets,
	}))
	before := f.registryBytes(t)

	res, err := f.pipeline.Run(context.Background(), Request{Keyword: "lamp", Target: target()})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAssetPoolExhausted)

	var phaseErr *domain.PhaseError
	require.ErrorAs(t, err, &phaseErr)
	assert.Equal(t, PhaseContent, phaseErr.Phase)

	assert.Nil(t, res.Document)
	assert.Zero(t, f.publisher.calls)
	assert.Equal(t, before, f.registryBytes(t))
	assert.Equal(t, 1, f.lock.released)
}

func TestRunCorrectsBannedColor(t *testing.T) {
	t.Parallel()

	items := lamps(8)
	items[2].Title = "Signal Lamp #FF0000 Edition"
	f := newFixture(t, items)

	res, err := f.pipeline.Run(context.Background(), Request{Keyword: "lamp", Target: target()})
	require.NoError(t, err)

	assert.Equal(t, []string{"banned-colors"}, res.Corrections)
	assert.True(t, res.Report.Compliant())
	assert.True(t, res.Published)
	require.Len(t, f.publisher.requests, 1)
	assert.NotContains(t, strings.ToLower(f.publisher.requests[0].Body), "#ff0000")
}

func TestRunAbortsOnUnfixableViolation(t *testing.T) {
	t.Parallel()

	items := lamps(8)
	for i := 5; i < 8; i++ {
		items[i].Handle = items[0].Handle
	}
	f := newFixture(t, items)

	res, err := f.pipeline.Run(context.Background(), Request{Keyword: "lamp", Target: target()})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidationUnrecoverable)
	assert.Contains(t, err.Error(), "item-references")

	var phaseErr *domain.PhaseError
	require.ErrorAs(t, err, &phaseErr)
	assert.Equal(t, PhaseValidate, phaseErr.Phase)

	assert.Empty(t, res.Corrections)
	assert.False(t, res.Published)
	assert.Zero(t, f.publisher.calls)
	assert.Nil(t, f.registryBytes(t))
}

func TestRunPublishFailureLeavesRegistryUnchanged(t *testing.T) {
	t.Parallel()

	f := newFixture(t, append(filler(), lamps(10)...))
	require.NoError(t, f.registry.Append(context.Background(), domain.UsageRecord{
		Title:       "Unrelated guide",
		DocumentID:  "unrelated",
		PublishedAt: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		Assets:      []string{"https://cdn.example.com/elsewhere.jpg"},
	}))
	before := f.registryBytes(t)
	f.publisher.fail = true

	res, err := f.pipeline.Run(context.Background(), Request{Keyword: "lamp", Target: target()})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTransientIO)
	assert.Equal(t, 3, f.publisher.calls)
	assert.False(t, res.Published)
	assert.Equal(t, before, f.registryBytes(t))
	assert.Equal(t, 1, f.lock.released)
}

func TestRunStopsWhenRegistryLocked(t *testing.T) {
	t.Parallel()

	f := newFixture(t, append(filler(), lamps(8)...))
	f.lock.held = true

	_, err := f.pipeline.Run(context.Background(), Request{Keyword: "lamp", Target: target()})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRegistryLocked)
	assert.Zero(t, f.publisher.calls)
	assert.Zero(t, f.lock.released)
}
