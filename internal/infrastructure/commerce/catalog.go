package commerce

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"ArticlePublisher/internal/domain"
	"ArticlePublisher/internal/ports"
)

var _ ports.CatalogSource = (*Client)(nil)

type productPage struct {
	Products []product `json:"products"`
}

type product struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Handle      string  `json:"handle"`
	ProductType string  `json:"product_type"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"image_url"`
}

// PageSize is the number of products requested per page.
func (c *Client) PageSize() int {
	return c.pageSize
}

// FetchPage reads one catalog page (1-based).
func (c *Client) FetchPage(ctx context.Context, page int) ([]domain.Item, error) {
	path, err := buildPagePath("/products.json", page, c.pageSize)
	if err != nil {
		return nil, err
	}

	var resp productPage
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("catalog page %d: %w", page, err)
	}

	items := make([]domain.Item, 0, len(resp.Products))
	for _, p := range resp.Products {
		items = append(items, domain.Item{
			ID:       p.ID,
			Title:    p.Title,
			Handle:   p.Handle,
			Category: p.ProductType,
			Price:    p.Price,
			ImageURL: p.ImageURL,
		})
	}
	return items, nil
}

func buildPagePath(base string, page, limit int) (string, error) {
	parsed, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid catalog path %s: %w", base, err)
	}

	query := parsed.Query()
	query.Set("page", strconv.Itoa(page))
	query.Set("limit", strconv.Itoa(limit))
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}
