package compliance

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"ArticlePublisher/internal/domain"
)

// Validator checks an assembled document against the fixed rule set.
// It never mutates the document.
type Validator struct {
	accent string
}

// NewValidator builds a validator that recognises accent as the brand CTA color.
func NewValidator(accent string) *Validator {
	return &Validator{accent: strings.ToLower(accent)}
}

type findings struct {
	violations []domain.Violation
	warnings   []domain.Violation
}

func (f *findings) violate(rule, format string, args ...any) {
	f.violations = append(f.violations, domain.Violation{Rule: rule, Detail: fmt.Sprintf(format, args...)})
}

func (f *findings) warn(rule, format string, args ...any) {
	f.warnings = append(f.warnings, domain.Violation{Rule: rule, Detail: fmt.Sprintf(format, args...)})
}

// Validate returns a fresh report for doc.
func (v *Validator) Validate(doc *domain.Document) domain.ComplianceReport {
	raw := doc.HTML()
	f := &findings{}

	parsed, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		for _, rule := range Rules {
			f.violate(rule, "document could not be parsed: %v", err)
		}
		return v.report(f)
	}

	checkHeadings(parsed, f)
	checkLength(raw, f)
	checkItemReferences(parsed, f)
	v.checkCTAs(parsed, f)
	checkVisuals(parsed, f)
	checkBannedColors(raw, f)
	return v.report(f)
}

func (v *Validator) report(f *findings) domain.ComplianceReport {
	failed := map[string]bool{}
	for _, x := range f.violations {
		failed[x.Rule] = true
	}
	for _, x := range f.warnings {
		failed[x.Rule] = true
	}

	report := domain.ComplianceReport{
		Violations: f.violations,
		Warnings:   f.warnings,
	}
	for _, rule := range Rules {
		if !failed[rule] {
			report.CompliantItems = append(report.CompliantItems, rule)
		}
	}
	report.Score = float64(len(report.CompliantItems)) / float64(len(Rules)) * 100
	return report
}

func checkHeadings(doc *goquery.Document, f *findings) {
	if n := doc.Find("h1").Length(); n != 1 {
		f.violate(RuleSingleH1, "expected exactly 1 h1, found %d", n)
	}

	n := doc.Find("h2").Length()
	switch {
	case n < minH2:
		f.violate(RuleH2Count, "found %d h2 headings, need at least %d", n, minH2)
	case n > maxH2:
		f.warn(RuleH2Count, "found %d h2 headings, recommended at most %d", n, maxH2)
	}
}

func checkLength(raw string, f *findings) {
	n := utf8.RuneCountInString(raw)
	switch {
	case n < minLength:
		f.violate(RuleLength, "document is %d characters, need at least %d", n, minLength)
	case n > maxLength:
		f.warn(RuleLength, "document is %d characters, recommended at most %d", n, maxLength)
	}
}

// ItemReferences returns the distinct product URLs linked from doc.
func ItemReferences(doc *goquery.Document) []string {
	seen := map[string]struct{}{}
	var refs []string
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		href = strings.TrimSpace(href)
		if !strings.Contains(href, itemLinkMarker) {
			return
		}
		if _, ok := seen[href]; ok {
			return
		}
		seen[href] = struct{}{}
		refs = append(refs, href)
	})
	return refs
}

func checkItemReferences(doc *goquery.Document, f *findings) {
	n := len(ItemReferences(doc))
	switch {
	case n < minItemRefs:
		f.violate(RuleItemReferences, "found %d unique item references, need at least %d", n, minItemRefs)
	case n > maxItemRefs:
		f.warn(RuleItemReferences, "found %d unique item references, recommended at most %d", n, maxItemRefs)
	}
}

func (v *Validator) checkCTAs(doc *goquery.Document, f *findings) {
	n := 0
	doc.Find("a.cta").Each(func(_ int, a *goquery.Selection) {
		style, _ := a.Attr("style")
		if strings.Contains(normalizeStyle(style), v.accent) {
			n++
		}
	})
	switch {
	case n < requiredCTAs:
		f.violate(RuleCTACount, "found %d calls to action in %s, need %d", n, v.accent, requiredCTAs)
	case n > requiredCTAs:
		f.warn(RuleCTACount, "found %d calls to action in %s, expected %d", n, v.accent, requiredCTAs)
	}
}

// CanonicalVisual reports whether img sits in the canonical presentation template.
func CanonicalVisual(img *goquery.Selection) bool {
	wrapper := img.Parent()
	if !wrapper.Is("div.visual") {
		return false
	}
	wrapperStyle, _ := wrapper.Attr("style")
	if !strings.Contains(normalizeStyle(wrapperStyle), "text-align:center") {
		return false
	}
	if loading, _ := img.Attr("loading"); loading != "lazy" {
		return false
	}
	style, _ := img.Attr("style")
	style = normalizeStyle(style)
	return strings.Contains(style, "border-radius") && strings.Contains(style, "box-shadow")
}

func checkVisuals(doc *goquery.Document, f *findings) {
	doc.Find("img").Each(func(_ int, img *goquery.Selection) {
		src, _ := img.Attr("src")
		if !CanonicalVisual(img) {
			f.violate(RuleVisualTemplate, "image %s is not in the canonical visual template", src)
		}

		alt, _ := img.Attr("alt")
		if n := utf8.RuneCountInString(alt); n < minAltLength || n > maxAltLength {
			f.warn(RuleAltText, "image %s alt text is %d characters, recommended %d-%d", src, n, minAltLength, maxAltLength)
		}
	})
}

func checkBannedColors(raw string, f *findings) {
	for _, color := range BannedColors {
		if n := len(bannedPatterns[color].FindAllStringIndex(raw, -1)); n > 0 {
			f.violate(RuleBannedColors, "banned color %s found %d times", color, n)
		}
	}
}
