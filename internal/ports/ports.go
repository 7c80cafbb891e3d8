package ports

import (
	"context"

	"ArticlePublisher/internal/domain"
)

// CatalogSource reads one page of the commerce catalog.
// An empty or short page signals pagination exhaustion.
type CatalogSource interface {
	FetchPage(ctx context.Context, page int) ([]domain.Item, error)
	PageSize() int
}

// Publisher submits documents to the publishing backend.
type Publisher interface {
	Publish(ctx context.Context, destination string, req domain.PublishRequest) (domain.PublishedArticle, error)
	DestinationHandle(ctx context.Context, destination string) (string, error)
	StoreURL() string
}

// UsageRegistry is the append-only record of consumed visual assets.
type UsageRegistry interface {
	UsedAssets(ctx context.Context) (map[string]struct{}, error)
	Append(ctx context.Context, record domain.UsageRecord) error
}

// RegistryLock guards the registry against concurrent pipeline runs.
type RegistryLock interface {
	Acquire(ctx context.Context) error
	Release(ctx context.Context) error
}
