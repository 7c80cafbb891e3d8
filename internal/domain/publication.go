package domain

import "time"

// PublishTarget carries caller-supplied destination metadata.
type PublishTarget struct {
	Destination string
	Tags        []string
	Published   bool
}

// PublishRequest is the payload sent to the publishing backend.
type PublishRequest struct {
	Title     string
	Body      string
	Tags      []string
	Published bool
	CoverURL  string
}

// PublishedArticle is what the publishing backend returns.
type PublishedArticle struct {
	ID          string
	Handle      string
	PublishedAt time.Time
}

// PublicationRecord is the terminal artifact of a successful run.
type PublicationRecord struct {
	ExternalID  string
	URL         string
	PublishedAt time.Time
}

// UsageRecord is one registry block: a published document and every asset it consumed.
type UsageRecord struct {
	Title       string
	DocumentID  string
	URL         string
	PublishedAt time.Time
	Assets      []string
}
