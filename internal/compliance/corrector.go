package compliance

import (
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"ArticlePublisher/internal/content"
	"ArticlePublisher/internal/domain"
)

// Corrector applies deterministic, rule-keyed rewrites. It never re-validates;
// callers run the Validator again and abort if violations remain.
type Corrector struct {
	palette map[string]string
	logger  *slog.Logger
}

// NewCorrector builds a corrector whose color substitutions honour accent.
func NewCorrector(accent string, logger *slog.Logger) *Corrector {
	return &Corrector{palette: Palette(accent), logger: logger}
}

// Fixable reports whether rule has a known rewrite.
func Fixable(rule string) bool {
	return rule == RuleVisualTemplate || rule == RuleBannedColors
}

// Correct rewrites doc in place for every fixable violated rule and returns
// the rules it touched. Warnings and unknown rules are ignored.
func (c *Corrector) Correct(doc *domain.Document, report domain.ComplianceReport) []string {
	var applied []string
	for _, rule := range report.ViolatedRules() {
		changed := false
		switch rule {
		case RuleVisualTemplate:
			changed = c.rewriteFragments(doc, fixVisuals)
		case RuleBannedColors:
			changed = c.rewriteFragments(doc, c.replaceColors)
		default:
			c.debug("no fix for rule", "rule", rule)
			continue
		}
		if changed {
			applied = append(applied, rule)
		}
	}

	if len(applied) > 0 {
		doc.Refresh()
		c.debug("corrections applied", "rules", applied, "length", doc.Metrics.Length)
	}
	return applied
}

func (c *Corrector) rewriteFragments(doc *domain.Document, fix func(string) (string, bool)) bool {
	changed := false
	if out, ok := fix(doc.Header); ok {
		doc.Header = out
		changed = true
	}
	for i := range doc.Sections {
		if out, ok := fix(doc.Sections[i].HTML); ok {
			doc.Sections[i].HTML = out
			changed = true
		}
	}
	return changed
}

func (c *Corrector) replaceColors(fragment string) (string, bool) {
	out := fragment
	for _, color := range BannedColors {
		out = bannedPatterns[color].ReplaceAllLiteralString(out, c.palette[color])
	}
	return out, out != fragment
}

// fixVisuals rebuilds every non-canonical image block from its src and alt.
func fixVisuals(fragment string) (string, bool) {
	if !strings.Contains(fragment, "<img") {
		return fragment, false
	}

	parsed, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return fragment, false
	}

	changed := false
	parsed.Find("img").Each(func(_ int, img *goquery.Selection) {
		if CanonicalVisual(img) {
			return
		}
		src, _ := img.Attr("src")
		alt, _ := img.Attr("alt")
		canonical := strings.TrimSuffix(content.RenderVisual(src, alt), "\n")

		target := img
		if parent := img.Parent(); parent.Is("div.visual") && parent.Children().Length() == 1 {
			target = parent
		}
		target.ReplaceWithHtml(canonical)
		changed = true
	})
	if !changed {
		return fragment, false
	}

	out, err := parsed.Find("body").Html()
	if err != nil {
		return fragment, false
	}
	return out, true
}

func (c *Corrector) debug(msg string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}
