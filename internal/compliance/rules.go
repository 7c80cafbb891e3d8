package compliance

import (
	"regexp"
	"strings"
)

// Rule names as they appear in reports.
const (
	RuleSingleH1       = "single-h1"
	RuleH2Count        = "h2-count"
	RuleLength         = "length"
	RuleItemReferences = "item-references"
	RuleCTACount       = "cta-count"
	RuleVisualTemplate = "visual-template"
	RuleBannedColors   = "banned-colors"
	RuleAltText        = "alt-text"
)

// Rules lists every rule in report order.
var Rules = []string{
	RuleSingleH1,
	RuleH2Count,
	RuleLength,
	RuleItemReferences,
	RuleCTACount,
	RuleVisualTemplate,
	RuleBannedColors,
	RuleAltText,
}

const (
	minH2          = 5
	maxH2          = 10
	minLength      = 10000
	maxLength      = 20000
	minItemRefs    = 8
	maxItemRefs    = 15
	requiredCTAs   = 3
	minAltLength   = 50
	maxAltLength   = 125
	itemLinkMarker = "/products/"
)

// BannedColors are legacy palette values that must not appear in published documents.
var BannedColors = []string{"#e74c3c", "#3498db", "#f39c12", "#ff0000"}

var bannedPatterns = compileBanned(BannedColors)

func compileBanned(colors []string) map[string]*regexp.Regexp {
	out := make(map[string]*regexp.Regexp, len(colors))
	for _, c := range colors {
		out[c] = regexp.MustCompile(`(?i)` + regexp.QuoteMeta(c) + `\b`)
	}
	return out
}

// IsBannedColor reports whether color is one of BannedColors, ignoring case.
func IsBannedColor(color string) bool {
	color = strings.ToLower(strings.TrimSpace(color))
	for _, c := range BannedColors {
		if c == color {
			return true
		}
	}
	return false
}

// Palette maps each banned color to its replacement. accent replaces the
// legacy link blue so restyled calls to action keep the brand color.
func Palette(accent string) map[string]string {
	return map[string]string{
		"#e74c3c": "#b4443a",
		"#3498db": strings.ToLower(accent),
		"#f39c12": "#b7791f",
		"#ff0000": "#b4443a",
	}
}

func normalizeStyle(style string) string {
	return strings.ToLower(strings.Join(strings.Fields(style), ""))
}
