package content

import (
	"encoding/json"
	"fmt"
	"html"
	"net/url"
	"sort"
	"strings"
	"unicode/utf8"

	"ArticlePublisher/internal/domain"
)

const (
	textColor   = "#1f2933"
	mutedColor  = "#52606d"
	borderColor = "#e5e7eb"
	panelColor  = "#f5f7fa"

	minAltLength = 50
	maxAltLength = 125

	comparisonRows = 5
)

// VisualTemplate is the canonical presentation wrapper for every embedded image.
const VisualTemplate = `<div class="visual" style="text-align:center;margin:28px 0;">` +
	`<img src="%s" alt="%s" loading="lazy" style="max-width:100%%;height:auto;border-radius:12px;box-shadow:0 4px 14px rgba(0,0,0,0.12);">` +
	`</div>` + "\n"

// RenderVisual renders an image in the canonical visual template.
func RenderVisual(src, alt string) string {
	return fmt.Sprintf(VisualTemplate, html.EscapeString(src), html.EscapeString(alt))
}

func paragraph(text string) string {
	return fmt.Sprintf(`<p style="margin:0 0 16px;line-height:1.7;color:%s;">%s</p>`+"\n", textColor, html.EscapeString(text))
}

func heading(s domain.Section) string {
	return fmt.Sprintf(`<h2 id="%s" style="margin:40px 0 16px;color:%s;">%s</h2>`+"\n", s.ID, textColor, html.EscapeString(s.Title))
}

func (a *Assembler) productURL(item domain.Item) string {
	return strings.TrimSuffix(a.opts.StoreURL, "/") + "/products/" + url.PathEscape(item.Handle)
}

func (a *Assembler) productCard(item domain.Item, note string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<div class="product-card" style="border:1px solid %s;padding:16px;margin:16px 0;">`+"\n", borderColor)
	fmt.Fprintf(&b, "<h3>%s</h3>\n", html.EscapeString(item.Title))
	fmt.Fprintf(&b, `<p style="color:%s;">%s</p>`+"\n", mutedColor, html.EscapeString(note))
	fmt.Fprintf(&b, `<p><strong>%s</strong> &middot; <a class="product-link" href="%s">View product</a></p>`+"\n",
		formatPrice(item.Price), html.EscapeString(a.productURL(item)))
	b.WriteString("</div>\n")
	return b.String()
}

func (a *Assembler) cta(label string, topic domain.Topic) string {
	target := strings.TrimSuffix(a.opts.StoreURL, "/") + "/search?q=" + url.QueryEscape(topic.Keyword)
	return fmt.Sprintf(`<p style="text-align:center;margin:32px 0;"><a class="cta" href="%s" style="display:inline-block;background:%s;color:#ffffff;padding:14px 28px;border-radius:8px;text-decoration:none;font-weight:600;">%s</a></p>`+"\n",
		html.EscapeString(target), a.opts.AccentColor, html.EscapeString(label))
}

func tableOfContents(sections []domain.Section) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<nav class="toc" style="background:%s;border-radius:12px;padding:18px 24px;margin:24px 0;">`+"\n", panelColor)
	b.WriteString("<p><strong>In this guide</strong></p>\n<ul>\n")
	for _, s := range sections {
		if s.Type == domain.SectionIntro {
			continue
		}
		fmt.Fprintf(&b, `<li><a href="#%s">%s</a></li>`+"\n", s.ID, html.EscapeString(s.Title))
	}
	b.WriteString("</ul>\n</nav>\n")
	return b.String()
}

// comparisonTable lists the most expensive consumed items, highest price first.
func (a *Assembler) comparisonTable(items []domain.Item) string {
	sorted := append([]domain.Item(nil), items...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Price > sorted[j].Price })
	if len(sorted) > comparisonRows {
		sorted = sorted[:comparisonRows]
	}

	cell := fmt.Sprintf(`style="padding:10px;border-bottom:1px solid %s;text-align:left;"`, borderColor)
	var b strings.Builder
	b.WriteString(`<table class="comparison" style="width:100%;border-collapse:collapse;margin:20px 0;">` + "\n")
	fmt.Fprintf(&b, "<thead><tr><th %s>Product</th><th %s>Category</th><th %s>Price</th></tr></thead>\n<tbody>\n", cell, cell, cell)
	for _, item := range sorted {
		fmt.Fprintf(&b, `<tr><td %s><a class="product-link" href="%s">%s</a></td><td %s>%s</td><td %s>%s</td></tr>`+"\n",
			cell, html.EscapeString(a.productURL(item)), html.EscapeString(item.Title),
			cell, html.EscapeString(item.Category),
			cell, formatPrice(item.Price))
	}
	b.WriteString("</tbody>\n</table>\n")
	return b.String()
}

func (a *Assembler) structuredData(title string, items []domain.Item) string {
	type listItem struct {
		Type     string `json:"@type"`
		Position int    `json:"position"`
		Name     string `json:"name"`
		URL      string `json:"url"`
	}
	payload := struct {
		Context  string     `json:"@context"`
		Type     string     `json:"@type"`
		Name     string     `json:"name"`
		Elements []listItem `json:"itemListElement"`
	}{Context: "https://schema.org", Type: "ItemList", Name: title}

	for i, item := range items {
		payload.Elements = append(payload.Elements, listItem{
			Type:     "ListItem",
			Position: i + 1,
			Name:     item.Title,
			URL:      a.productURL(item),
		})
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return ""
	}
	return `<script type="application/ld+json">` + string(raw) + "</script>\n"
}

// AltText describes an asset in 50 to 125 characters.
func AltText(item domain.Item, plural string) string {
	category := strings.TrimSpace(item.Category)
	if category == "" {
		category = "home"
	}
	alt := fmt.Sprintf("%s from our %s range, photographed as an example of %s", strings.TrimSpace(item.Title), strings.ToLower(category), plural)
	for utf8.RuneCountInString(alt) < minAltLength {
		alt += " chosen for everyday living"
	}
	if utf8.RuneCountInString(alt) > maxAltLength {
		runes := []rune(alt)
		alt = strings.TrimSpace(string(runes[:maxAltLength-3])) + "..."
	}
	return alt
}

func formatPrice(price float64) string {
	return fmt.Sprintf("$%.2f", price)
}

func priceTier(price, low, high float64) string {
	if high <= low {
		return "mid-range"
	}
	third := (high - low) / 3
	switch {
	case price < low+third:
		return "budget"
	case price < low+2*third:
		return "mid-range"
	default:
		return "premium"
	}
}

func priceRange(items []domain.Item) (low, high, avg float64) {
	if len(items) == 0 {
		return 0, 0, 0
	}
	low, high = items[0].Price, items[0].Price
	var sum float64
	for _, it := range items {
		if it.Price < low {
			low = it.Price
		}
		if it.Price > high {
			high = it.Price
		}
		sum += it.Price
	}
	return low, high, sum / float64(len(items))
}
