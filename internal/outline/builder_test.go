package outline

import (
	"fmt"
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"

	"ArticlePublisher/internal/domain"
)

func topicWith(n int) domain.Topic {
	t := domain.Topic{Keyword: "lamp", Plural: "lamps"}
	for i := 0; i < n; i++ {
		t.Candidates = append(t.Candidates, domain.Item{ID: fmt.Sprint(i)})
	}
	return t
}

func TestBuildSectionOrder(t *testing.T) {
	t.Parallel()

	o := Build(topicWith(8))
	want := []domain.SectionType{
		domain.SectionIntro, domain.SectionFeatures, domain.SectionPricing, domain.SectionMaterials,
		domain.SectionBrands, domain.SectionComparison, domain.SectionMistakes, domain.SectionConclusion,
	}
	if len(o.Sections) != len(want) {
		t.Fatalf("expected %d sections, got %d", len(want), len(o.Sections))
	}
	for i, s := range o.Sections {
		if s.Type != want[i] {
			t.Fatalf("section %d: want %s, got %s", i, want[i], s.Type)
		}
	}
	if o.Title != "The Complete Guide to Choosing Lamps" {
		t.Fatalf("unexpected title %q", o.Title)
	}
	if o.TotalQuota() != 8 {
		t.Fatalf("expected total quota 8, got %d", o.TotalQuota())
	}
}

func TestBuildDistributesExtraCandidates(t *testing.T) {
	t.Parallel()

	o := Build(topicWith(15))
	if o.TotalQuota() != 15 {
		t.Fatalf("expected total quota 15, got %d", o.TotalQuota())
	}
	quotas := map[domain.SectionType]int{}
	for _, s := range o.Sections {
		quotas[s.Type] = s.ItemQuota
	}
	// 7 extra: features +2, pricing +2, materials +2, brands +1
	if quotas[domain.SectionFeatures] != 5 || quotas[domain.SectionPricing] != 4 ||
		quotas[domain.SectionMaterials] != 3 || quotas[domain.SectionBrands] != 3 {
		t.Fatalf("unexpected quotas: %v", quotas)
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	t.Parallel()

	a := Build(topicWith(11))
	b := Build(topicWith(11))
	if !reflect.DeepEqual(a, b) {
		t.Fatal("outline must be a pure function of the topic")
	}
}

func TestBuildNonASCIITopic(t *testing.T) {
	t.Parallel()

	o := Build(domain.Topic{Keyword: "étagère", Plural: "étagères"})
	if o.Title != "The Complete Guide to Choosing Étagères" {
		t.Fatalf("unexpected title %q", o.Title)
	}
	for _, s := range o.Sections {
		if !utf8.ValidString(s.Title) {
			t.Fatalf("section %s title is not valid UTF-8: %q", s.ID, s.Title)
		}
		if strings.Contains(s.Title, "\uFFFD") {
			t.Fatalf("section %s title carries a replacement character: %q", s.ID, s.Title)
		}
	}
}

func TestTitle(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"floor lamps":    "Floor Lamps",
		"étagères":       "Étagères",
		"öl lamps":       "Öl Lamps",
		"  spaced  out ": "Spaced Out",
		"":               "",
	}
	for in, want := range cases {
		if got := Title(in); got != want {
			t.Errorf("Title(%q) = %q, want %q", in, got, want)
		}
	}
}
