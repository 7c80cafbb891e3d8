package topic

import (
	"fmt"
	"log/slog"
	"strings"

	"ArticlePublisher/internal/domain"
)

const (
	// MinCandidates is the smallest candidate set a pipeline run may proceed with.
	MinCandidates = 8
	// MaxCandidates bounds the candidate set handed to later phases.
	MaxCandidates = 15
)

// synonyms is the fixed keyword expansion table used when direct matches are scarce.
var synonyms = map[string][]string{
	"sofa":    {"couch", "settee", "loveseat", "sectional"},
	"couch":   {"sofa", "settee", "loveseat"},
	"lamp":    {"light", "lighting", "sconce", "lantern"},
	"chair":   {"armchair", "stool", "seat", "recliner"},
	"table":   {"desk", "console", "nightstand"},
	"rug":     {"carpet", "runner", "mat"},
	"bed":     {"headboard", "mattress", "bedframe"},
	"mirror":  {"looking glass", "vanity"},
	"vase":    {"planter", "pot", "vessel"},
	"shelf":   {"bookcase", "shelving", "rack"},
	"cushion": {"pillow", "throw", "bolster"},
	"curtain": {"drape", "blind", "shade"},
	"candle":  {"candleholder", "diffuser", "tealight"},
	"clock":   {"timepiece"},
	"basket":  {"hamper", "bin", "storage"},
	"bag":     {"tote", "backpack", "pouch"},
	"mug":     {"cup", "tumbler"},
}

// Selector matches a keyword against the catalog snapshot.
type Selector struct {
	logger *slog.Logger
}

// NewSelector builds a selector.
func NewSelector(logger *slog.Logger) *Selector {
	return &Selector{logger: logger}
}

// Select returns a topic with at least MinCandidates candidates or ErrTopicTooNarrow.
func (s *Selector) Select(keyword string, snapshot domain.CatalogSnapshot) (domain.Topic, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return domain.Topic{}, fmt.Errorf("empty keyword: %w", domain.ErrTopicTooNarrow)
	}

	matches := match(snapshot.Items, []string{keyword}, nil)
	expanded := false
	if len(matches) < MinCandidates {
		terms := Synonyms(keyword)
		if len(terms) > 0 {
			expanded = true
			matches = match(snapshot.Items, terms, matches)
		}
		s.debug("keyword expanded", "keyword", keyword, "terms", terms, "matches", len(matches))
	}

	if len(matches) < MinCandidates {
		return domain.Topic{}, fmt.Errorf("keyword %q matched %d items, need %d: %w",
			keyword, len(matches), MinCandidates, domain.ErrTopicTooNarrow)
	}

	found := len(matches)
	if len(matches) > MaxCandidates {
		matches = matches[:MaxCandidates]
	}

	return domain.Topic{
		Keyword:    keyword,
		Plural:     Plural(keyword),
		Candidates: matches,
		Found:      found,
		Expanded:   expanded,
	}, nil
}

// Synonyms returns the expansion terms for keyword, or nil when none are known.
// A plural keyword expands to its singular form followed by that form's entry.
func Synonyms(keyword string) []string {
	key := strings.ToLower(strings.TrimSpace(keyword))
	if terms, ok := synonyms[key]; ok {
		return terms
	}

	base := Singular(key)
	if base == "" || base == key {
		return nil
	}
	return append([]string{base}, synonyms[base]...)
}

// match appends items matching any term to existing, in catalog order, without duplicates.
func match(items []domain.Item, terms []string, existing []domain.Item) []domain.Item {
	seen := make(map[string]struct{}, len(existing))
	for _, it := range existing {
		seen[it.ID] = struct{}{}
	}

	lowered := make([]string, 0, len(terms))
	for _, t := range terms {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			lowered = append(lowered, t)
		}
	}

	out := existing
	for _, item := range items {
		if _, ok := seen[item.ID]; ok {
			continue
		}
		title := strings.ToLower(item.Title)
		category := strings.ToLower(item.Category)
		for _, term := range lowered {
			if strings.Contains(title, term) || strings.Contains(category, term) {
				seen[item.ID] = struct{}{}
				out = append(out, item)
				break
			}
		}
	}
	return out
}

func (s *Selector) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
