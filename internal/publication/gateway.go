package publication

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"ArticlePublisher/internal/domain"
	"ArticlePublisher/internal/ports"
	"ArticlePublisher/internal/retry"
)

// Gateway publishes finalized documents and records their assets.
type Gateway struct {
	publisher ports.Publisher
	registry  ports.UsageRegistry
	retry     retry.Policy
	logger    *slog.Logger
}

// NewGateway wires the publishing backend with the usage registry.
func NewGateway(publisher ports.Publisher, registry ports.UsageRegistry, policy retry.Policy, logger *slog.Logger) *Gateway {
	return &Gateway{publisher: publisher, registry: registry, retry: policy, logger: logger}
}

// Publish submits doc and, only after the backend confirms success, appends
// one usage record covering every asset the document consumed.
func (g *Gateway) Publish(ctx context.Context, doc *domain.Document, target domain.PublishTarget) (domain.PublicationRecord, error) {
	if g.publisher == nil || g.registry == nil {
		return domain.PublicationRecord{}, fmt.Errorf("publication gateway is not configured")
	}
	if target.Destination == "" {
		return domain.PublicationRecord{}, fmt.Errorf("publish destination is required")
	}

	// resolved before publishing so a lookup failure cannot strand a live article
	blogHandle, err := retry.Value(ctx, g.retry, "destination-lookup", func(ctx context.Context) (string, error) {
		return g.publisher.DestinationHandle(ctx, target.Destination)
	})
	if err != nil {
		return domain.PublicationRecord{}, err
	}

	req := domain.PublishRequest{
		Title:     doc.Title,
		Body:      doc.HTML(),
		Tags:      target.Tags,
		Published: target.Published,
		CoverURL:  doc.Cover,
	}
	article, err := retry.Value(ctx, g.retry, "publish", func(ctx context.Context) (domain.PublishedArticle, error) {
		return g.publisher.Publish(ctx, target.Destination, req)
	})
	if err != nil {
		return domain.PublicationRecord{}, err
	}

	record := domain.PublicationRecord{
		ExternalID:  article.ID,
		URL:         CanonicalURL(g.publisher.StoreURL(), blogHandle, article.Handle),
		PublishedAt: article.PublishedAt,
	}
	g.info("document published", "id", record.ExternalID, "url", record.URL)

	usage := domain.UsageRecord{
		Title:       doc.Title,
		DocumentID:  record.ExternalID,
		URL:         record.URL,
		PublishedAt: record.PublishedAt,
		Assets:      doc.ConsumedAssets(),
	}
	// the article is live; recording it must survive cancellation of the run
	appendCtx := context.WithoutCancel(ctx)
	if err := g.retry.Do(appendCtx, "registry-append", func(ctx context.Context) error {
		return g.registry.Append(ctx, usage)
	}); err != nil {
		g.logError("document is live but its assets were not recorded", "id", record.ExternalID, "url", record.URL, "assets", usage.Assets, "error", err)
		return record, err
	}

	return record, nil
}

// CanonicalURL joins the storefront, destination handle and article handle.
func CanonicalURL(storeURL, blogHandle, articleHandle string) string {
	return fmt.Sprintf("%s/blogs/%s/%s", strings.TrimSuffix(storeURL, "/"), blogHandle, articleHandle)
}

func (g *Gateway) info(msg string, args ...interface{}) {
	if g.logger != nil {
		g.logger.Info(msg, args...)
	}
}

func (g *Gateway) logError(msg string, args ...interface{}) {
	if g.logger != nil {
		g.logger.Error(msg, args...)
	}
}
