package content

import (
	"fmt"
	"html"
	"log/slog"
	"strings"

	"ArticlePublisher/internal/domain"
)

// DefaultAccentColor is the canonical brand accent used for calls to action.
const DefaultAccentColor = "#2e7d5b"

// Options configure rendering.
type Options struct {
	StoreURL    string
	AccentColor string
}

// Assembler turns an outline into a document, consuming items and assets.
type Assembler struct {
	opts   Options
	logger *slog.Logger
}

// NewAssembler builds an assembler; an empty accent falls back to DefaultAccentColor.
func NewAssembler(opts Options, logger *slog.Logger) *Assembler {
	if opts.AccentColor == "" {
		opts.AccentColor = DefaultAccentColor
	}
	opts.AccentColor = strings.ToLower(opts.AccentColor)
	return &Assembler{opts: opts, logger: logger}
}

// assembly is the mutable state of one Assemble call.
type assembly struct {
	topic    domain.Topic
	outline  domain.Outline
	pool     *AssetPool
	cursor   int
	consumed []domain.Item
}

func (s *assembly) takeItems(n int) []domain.Item {
	var out []domain.Item
	for ; n > 0 && s.cursor < len(s.topic.Candidates); n-- {
		item := s.topic.Candidates[s.cursor]
		s.cursor++
		out = append(out, item)
		s.consumed = append(s.consumed, item)
	}
	return out
}

// Assemble renders every outline section in order. used is the registry
// snapshot; any asset in it is excluded from the document entirely.
func (a *Assembler) Assemble(topic domain.Topic, outline domain.Outline, used map[string]struct{}) (*domain.Document, error) {
	pool := NewAssetPool(topic.Candidates, used)
	if pool.Len() == 0 {
		return nil, fmt.Errorf("no unused visual among %d candidates: %w", len(topic.Candidates), domain.ErrAssetPoolExhausted)
	}
	if pool.Len() < MinPoolSize {
		a.warn("asset pool below nominal size, continuing with fewer visuals",
			"available", pool.Len(), "nominal", MinPoolSize)
	}

	state := &assembly{topic: topic, outline: outline, pool: pool}
	doc := &domain.Document{
		Title:  outline.Title,
		Header: fmt.Sprintf(`<h1 style="color:%s;">%s</h1>`+"\n", textColor, html.EscapeString(outline.Title)),
	}

	for _, section := range outline.Sections {
		var b strings.Builder
		fmt.Fprintf(&b, `<section class="%s">`+"\n", section.Type)
		if section.Type != domain.SectionIntro {
			b.WriteString(heading(section))
		}

		items := state.takeItems(section.ItemQuota)
		a.renderSection(&b, section, state, items)

		if section.Visual {
			if asset, ok := pool.Next(); ok {
				b.WriteString(RenderVisual(asset.URL, AltText(asset.Item, topic.Plural)))
				doc.Assets = append(doc.Assets, asset.URL)
			}
		}

		b.WriteString("</section>\n")
		doc.Sections = append(doc.Sections, domain.SectionContent{Type: section.Type, HTML: b.String()})
	}

	cover, ok := pool.Cover()
	if !ok {
		return nil, fmt.Errorf("no cover visual available: %w", domain.ErrAssetPoolExhausted)
	}
	doc.Cover = cover.URL
	doc.Items = state.consumed
	doc.Refresh()

	a.debug("document assembled",
		"title", doc.Title,
		"items", len(doc.Items),
		"assets", len(doc.Assets),
		"length", doc.Metrics.Length)
	return doc, nil
}

func (a *Assembler) renderSection(b *strings.Builder, section domain.Section, s *assembly, items []domain.Item) {
	plural := s.topic.Plural
	switch section.Type {
	case domain.SectionIntro:
		b.WriteString(paragraph(fmt.Sprintf("Choosing %s sounds simple until you start comparing options side by side. "+
			"Dimensions, finishes, materials and price all pull in different directions, and the piece that looks perfect "+
			"online can feel wrong once it arrives. This guide walks through everything we weigh when we pick %s for our "+
			"own range, so you can shop with confidence instead of guesswork.", plural, plural)))
		b.WriteString(paragraph(fmt.Sprintf("We looked at %d %s currently in our catalog and narrowed them down to the ones "+
			"that genuinely earn their place. Along the way you will find the features that matter, realistic price "+
			"expectations, the materials that last, and the mistakes we see most often. Use the contents below to jump "+
			"straight to the part you need.", s.topic.Found, plural)))
		b.WriteString(tableOfContents(s.outline.Sections))

	case domain.SectionFeatures:
		b.WriteString(paragraph(fmt.Sprintf("Not every feature deserves equal weight. When we evaluate %s we start with how "+
			"they will actually be used day to day, then work outward to finish, proportion and care requirements. A "+
			"well-made piece should look good in photos, but it should also survive years of real life without constant "+
			"attention.", plural)))
		b.WriteString(paragraph("The picks below show what good looks like in practice. Each one balances durability, " +
			"comfort and style in a slightly different way, which makes them useful reference points even if you end up " +
			"choosing something else."))
		for _, item := range items {
			b.WriteString(a.productCard(item, fmt.Sprintf("What stands out: dependable everyday performance, "+
				"exactly what we look for in %s.", plural)))
		}
		b.WriteString(a.cta(fmt.Sprintf("Browse all %s", plural), s.topic))

	case domain.SectionPricing:
		low, high, avg := priceRange(s.topic.Candidates)
		b.WriteString(paragraph(fmt.Sprintf("Price is rarely a perfect signal of quality, but it does tell you where a maker "+
			"has chosen to spend money. Budget %s tend to save on materials and finishing, mid-range options usually offer "+
			"the best balance, and premium pieces justify their cost through craftsmanship and longevity.", plural)))
		b.WriteString(paragraph(fmt.Sprintf("Across the %s we reviewed, prices run from %s to %s, with an average of %s. "+
			"That spread leaves room for almost every budget.", plural, formatPrice(low), formatPrice(high), formatPrice(avg))))
		for _, item := range items {
			b.WriteString(a.productCard(item, fmt.Sprintf("Value note: %s tier, and more than its price suggests.",
				priceTier(item.Price, low, high))))
		}
		b.WriteString(a.cta("Compare prices now", s.topic))

	case domain.SectionMaterials:
		b.WriteString(paragraph(fmt.Sprintf("Materials decide how %s age. Solid woods, natural fibres and powder-coated "+
			"metals usually outlast veneers and plastics, although modern composites have closed much of the gap. Look "+
			"closely at joints, seams and hardware, because that is where cheaper construction tends to show first.", plural)))
		b.WriteString(paragraph("If you have children or pets, favour finishes that wipe clean and fabrics with a tight " +
			"weave. In humid rooms, avoid untreated wood and choose materials that resist warping and fading."))
		for _, item := range items {
			b.WriteString(a.productCard(item, fmt.Sprintf("Build quality: solid %s construction made to last.",
				strings.ToLower(categoryOf(item)))))
		}

	case domain.SectionBrands:
		b.WriteString(paragraph(fmt.Sprintf("A handful of %s consistently stand out in our range. They are not always the "+
			"most expensive options, but they are the ones customers return to and recommend, and they set the benchmark "+
			"we use when judging everything else.", plural)))
		for _, item := range items {
			b.WriteString(a.productCard(item, "Why we rate it: consistent reviews and careful detailing."))
		}

	case domain.SectionComparison:
		b.WriteString(paragraph(fmt.Sprintf("Seeing the main contenders next to each other makes trade-offs much easier to "+
			"spot. The table below lines up the most premium %s featured in this guide by price so you can compare them at "+
			"a glance.", plural)))
		b.WriteString(a.comparisonTable(s.consumed))

	case domain.SectionMistakes:
		b.WriteString(paragraph(fmt.Sprintf("Most disappointing purchases come down to a few avoidable errors. Before you "+
			"order any of these %s, run through this short checklist.", plural)))
		b.WriteString("<ul>\n")
		for _, m := range []string{
			"Measuring the space but forgetting doorways, stairs and lifts on the delivery route.",
			"Choosing purely on looks without checking care instructions and long-term maintenance.",
			fmt.Sprintf("Ignoring the scale of the rest of the room, which makes even beautiful %s feel out of place.", plural),
			"Buying the cheapest option and replacing it twice, instead of buying well once.",
			"Skipping reviews that describe how a piece holds up after months of use.",
		} {
			fmt.Fprintf(b, `<li style="margin:0 0 8px;">%s</li>`+"\n", html.EscapeString(m))
		}
		b.WriteString("</ul>\n")

	case domain.SectionConclusion:
		b.WriteString(paragraph(fmt.Sprintf("The best %s are the ones that fit your space, your routine and your budget at "+
			"the same time. Start with how you will use them, set a realistic price range, and favour materials that will "+
			"age gracefully rather than chase short-lived trends.", plural)))
		b.WriteString(paragraph("Every product in this guide was chosen because it does at least one thing exceptionally " +
			"well. Whichever you pick, you are starting from a shortlist we would happily put in our own homes."))
		b.WriteString(a.cta("Find your favourite today", s.topic))
		b.WriteString(a.structuredData(s.outline.Title, s.consumed))
	}
}

func categoryOf(item domain.Item) string {
	if c := strings.TrimSpace(item.Category); c != "" {
		return c
	}
	return "home"
}

func (a *Assembler) warn(msg string, args ...interface{}) {
	if a.logger != nil {
		a.logger.Warn(msg, args...)
	}
}

func (a *Assembler) debug(msg string, args ...interface{}) {
	if a.logger != nil {
		a.logger.Debug(msg, args...)
	}
}
