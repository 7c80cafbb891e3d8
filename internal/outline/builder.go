package outline

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"ArticlePublisher/internal/domain"
)

type template struct {
	kind   domain.SectionType
	title  string
	quota  int
	visual bool
}

// sections is the fixed 8-section template; %s is replaced with the plural topic.
var sections = []template{
	{kind: domain.SectionIntro, title: "Why the Right %s Make a Difference", quota: 0, visual: true},
	{kind: domain.SectionFeatures, title: "Key Features to Look for in %s", quota: 3, visual: true},
	{kind: domain.SectionPricing, title: "How Much Should You Spend on %s?", quota: 2},
	{kind: domain.SectionMaterials, title: "Materials and Build Quality of %s", quota: 1, visual: true},
	{kind: domain.SectionBrands, title: "Standout %s Worth Your Attention", quota: 2, visual: true},
	{kind: domain.SectionComparison, title: "%s Side by Side", quota: 0},
	{kind: domain.SectionMistakes, title: "Common Mistakes When Buying %s", quota: 0, visual: true},
	{kind: domain.SectionConclusion, title: "Final Thoughts on Choosing %s", quota: 0},
}

// overflow lists, in order, the sections that absorb candidates beyond the base quota.
var overflow = []domain.SectionType{
	domain.SectionFeatures,
	domain.SectionPricing,
	domain.SectionMaterials,
	domain.SectionBrands,
}

// Build expands a topic into the fixed outline. It is deterministic.
func Build(topic domain.Topic) domain.Outline {
	plural := Title(topic.Plural)

	out := domain.Outline{
		Title:    fmt.Sprintf("The Complete Guide to Choosing %s", plural),
		Sections: make([]domain.Section, 0, len(sections)),
	}

	base := 0
	for _, t := range sections {
		base += t.quota
	}
	extra := len(topic.Candidates) - base
	if extra < 0 {
		extra = 0
	}
	extraFor := map[domain.SectionType]int{}
	for i := 0; i < extra; i++ {
		extraFor[overflow[i%len(overflow)]]++
	}

	for _, t := range sections {
		out.Sections = append(out.Sections, domain.Section{
			ID:        "section-" + string(t.kind),
			Title:     fmt.Sprintf(t.title, plural),
			Type:      t.kind,
			ItemQuota: t.quota + extraFor[t.kind],
			Visual:    t.visual,
		})
	}
	return out
}

// Title upper-cases the first letter of each word.
func Title(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
