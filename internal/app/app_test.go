package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"ArticlePublisher/internal/config"
)

func commerceServer(t *testing.T, posts *atomic.Int32) *httptest.Server {
	t.Helper()

	products := make([]map[string]any, 0, 9)
	for i := 0; i < 9; i++ {
		products = append(products, map[string]any{
			"id":           fmt.Sprintf("p%d", i),
			"title":        fmt.Sprintf("Handwoven Jute Rug %d", i),
			"handle":       fmt.Sprintf("handwoven-jute-rug-%d", i),
			"product_type": "Textiles",
			"price":        80 + i*35,
			"image_url":    fmt.Sprintf("https://cdn.example.com/rugs/%d.jpg", i),
		})
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/products.json", func(w http.ResponseWriter, r *http.Request) {
		page := products
		if r.URL.Query().Get("page") != "1" {
			page = nil
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"products": page})
	})
	mux.HandleFunc("/blogs/news.json", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"blog":{"handle":"journal"}}`))
	})
	mux.HandleFunc("/blogs/news/articles.json", func(w http.ResponseWriter, _ *http.Request) {
		posts.Add(1)
		_, _ = w.Write([]byte(`{"article":{"id":"5001","handle":"choosing-rugs","published_at":"2026-10-17T10:00:00Z"}}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(t *testing.T, apiURL string) config.Config {
	t.Helper()
	dir := t.TempDir()
	return config.Config{
		Logging:    config.LoggingConfig{Level: "error"},
		Commerce:   config.CommerceConfig{APIURL: apiURL, StoreURL: "https://shop.example.com", PageSize: 50},
		Publishing: config.PublishingConfig{Destination: "news", Tags: []string{"rugs"}},
		Registry:   config.RegistryConfig{Backend: config.RegistryYAML, Path: filepath.Join(dir, "registry.yaml")},
		Lock:       config.LockConfig{Backend: config.LockFile},
		Retry:      config.RetryConfig{MaxAttempts: 1},
	}
}

func TestApplicationPublishesAndRecordsAssets(t *testing.T) {
	t.Parallel()

	var posts atomic.Int32
	srv := commerceServer(t, &posts)
	cfg := testConfig(t, srv.URL)

	application, err := New(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	defer application.Close()

	res, err := application.Run(context.Background(), application.Request("rug", "", nil, false))
	require.NoError(t, err)

	assert.Equal(t, int32(1), posts.Load())
	assert.Equal(t, "https://shop.example.com/blogs/journal/choosing-rugs", res.Record.URL)

	raw, err := os.ReadFile(cfg.Registry.Path)
	require.NoError(t, err)
	var doc struct {
		Revision     int64 `yaml:"revision"`
		Publications []struct {
			ID     string   `yaml:"id"`
			Assets []string `yaml:"assets"`
		} `yaml:"publications"`
	}
	require.NoError(t, yaml.Unmarshal(raw, &doc))
	assert.Equal(t, int64(1), doc.Revision)
	require.Len(t, doc.Publications, 1)
	assert.Equal(t, "5001", doc.Publications[0].ID)
	assert.ElementsMatch(t, res.Document.ConsumedAssets(), doc.Publications[0].Assets)

	_, err = os.Stat(cfg.LockPath())
	assert.True(t, os.IsNotExist(err), "lock file must be released")
}

func TestApplicationDryRunPublishesNothing(t *testing.T) {
	t.Parallel()

	var posts atomic.Int32
	srv := commerceServer(t, &posts)
	cfg := testConfig(t, srv.URL)

	application, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer application.Close()

	res, err := application.Run(context.Background(), application.Request("rug", "", nil, true))
	require.NoError(t, err)
	assert.True(t, res.Report.Compliant())
	assert.Zero(t, posts.Load())

	_, err = os.Stat(cfg.Registry.Path)
	assert.True(t, os.IsNotExist(err))
}

func TestApplicationRejectsInvalidConfig(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), config.Config{}, nil)
	require.Error(t, err)
}

func TestRequestFallsBackToConfig(t *testing.T) {
	t.Parallel()

	published := false
	a := &Application{cfg: config.Config{Publishing: config.PublishingConfig{
		Destination: "news",
		Tags:        []string{"home"},
		Published:   &published,
	}}}

	req := a.Request("lamp", "", nil, false)
	assert.Equal(t, "news", req.Target.Destination)
	assert.Equal(t, []string{"home"}, req.Target.Tags)
	assert.False(t, req.Target.Published)

	req = a.Request("lamp", "offers", []string{"sale"}, true)
	assert.Equal(t, "offers", req.Target.Destination)
	assert.Equal(t, []string{"sale"}, req.Target.Tags)
	assert.True(t, req.DryRun)
}
