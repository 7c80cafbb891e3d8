package commerce

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ArticlePublisher/internal/domain"
	"ArticlePublisher/internal/ports"
)

var _ ports.Publisher = (*Client)(nil)

type articleImage struct {
	Src string `json:"src"`
}

type articlePayload struct {
	Title     string        `json:"title"`
	BodyHTML  string        `json:"body_html"`
	Tags      string        `json:"tags,omitempty"`
	Published bool          `json:"published"`
	Image     *articleImage `json:"image,omitempty"`
}

type articleEnvelope struct {
	Article articlePayload `json:"article"`
}

type articleResponse struct {
	Article struct {
		ID          string `json:"id"`
		Handle      string `json:"handle"`
		PublishedAt string `json:"published_at"`
	} `json:"article"`
}

type blogResponse struct {
	Blog struct {
		Handle string `json:"handle"`
	} `json:"blog"`
}

// StoreURL is the public storefront base URL.
func (c *Client) StoreURL() string {
	return c.storeURL
}

// Publish creates an article on the destination blog.
func (c *Client) Publish(ctx context.Context, destination string, req domain.PublishRequest) (domain.PublishedArticle, error) {
	payload := articleEnvelope{Article: articlePayload{
		Title:     req.Title,
		BodyHTML:  req.Body,
		Tags:      strings.Join(req.Tags, ", "),
		Published: req.Published,
	}}
	if req.CoverURL != "" {
		payload.Article.Image = &articleImage{Src: req.CoverURL}
	}

	var resp articleResponse
	path := "/blogs/" + url.PathEscape(destination) + "/articles.json"
	if err := c.do(ctx, http.MethodPost, path, payload, &resp); err != nil {
		return domain.PublishedArticle{}, fmt.Errorf("publish article: %w", err)
	}
	if resp.Article.ID == "" {
		return domain.PublishedArticle{}, fmt.Errorf("publish article: response carried no article id")
	}

	publishedAt := time.Now().UTC()
	if resp.Article.PublishedAt != "" {
		if parsed, err := time.Parse(time.RFC3339, resp.Article.PublishedAt); err == nil {
			publishedAt = parsed
		}
	}

	return domain.PublishedArticle{
		ID:          resp.Article.ID,
		Handle:      resp.Article.Handle,
		PublishedAt: publishedAt,
	}, nil
}

// DestinationHandle resolves the public handle of the destination blog.
func (c *Client) DestinationHandle(ctx context.Context, destination string) (string, error) {
	var resp blogResponse
	if err := c.do(ctx, http.MethodGet, "/blogs/"+url.PathEscape(destination)+".json", nil, &resp); err != nil {
		return "", fmt.Errorf("lookup destination %s: %w", destination, err)
	}
	if resp.Blog.Handle == "" {
		return "", fmt.Errorf("lookup destination %s: empty handle", destination)
	}
	return resp.Blog.Handle, nil
}
