package domain

// SectionType tags an outline section with its semantic role.
type SectionType string

const (
	SectionIntro      SectionType = "intro"
	SectionFeatures   SectionType = "features"
	SectionPricing    SectionType = "pricing"
	SectionMaterials  SectionType = "materials"
	SectionBrands     SectionType = "brands"
	SectionComparison SectionType = "comparison"
	SectionMistakes   SectionType = "mistakes"
	SectionConclusion SectionType = "conclusion"
)

// Section describes one outline entry.
type Section struct {
	ID        string
	Title     string
	Type      SectionType
	ItemQuota int
	Visual    bool
}

// Outline is the ordered section plan for one document.
type Outline struct {
	Title    string
	Sections []Section
}

// TotalQuota sums item quotas across all sections.
func (o Outline) TotalQuota() int {
	total := 0
	for _, s := range o.Sections {
		total += s.ItemQuota
	}
	return total
}
