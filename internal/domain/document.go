package domain

import (
	"strings"
	"unicode/utf8"
)

// SectionContent is the rendered HTML of one outline section.
type SectionContent struct {
	Type SectionType
	HTML string
}

// Metrics are derived from the rendered document and refreshed after every mutation.
type Metrics struct {
	Length    int
	H1Count   int
	H2Count   int
	ItemLinks int
}

// Document is the assembled article.
type Document struct {
	Title    string
	Header   string
	Sections []SectionContent
	Items    []Item
	Assets   []string
	Cover    string
	Metrics  Metrics
}

// HTML joins the header and every section in order.
func (d *Document) HTML() string {
	var b strings.Builder
	b.WriteString(d.Header)
	for _, s := range d.Sections {
		b.WriteString(s.HTML)
	}
	return b.String()
}

// ConsumedAssets returns body assets plus the cover, without duplicates.
func (d *Document) ConsumedAssets() []string {
	seen := make(map[string]struct{}, len(d.Assets)+1)
	out := make([]string, 0, len(d.Assets)+1)
	for _, u := range append(append([]string{}, d.Assets...), d.Cover) {
		if u == "" {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}

// Refresh recomputes Metrics from the current HTML.
func (d *Document) Refresh() {
	html := d.HTML()
	d.Metrics = Metrics{
		Length:    utf8.RuneCountInString(html),
		H1Count:   strings.Count(html, "<h1"),
		H2Count:   strings.Count(html, "<h2"),
		ItemLinks: uniqueItemLinks(d.Items),
	}
}

func uniqueItemLinks(items []Item) int {
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		seen[it.Handle] = struct{}{}
	}
	return len(seen)
}
