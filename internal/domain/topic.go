package domain

// Topic is the selected keyword together with its matching candidates.
type Topic struct {
	Keyword    string
	Plural     string
	Candidates []Item
	Found      int
	Expanded   bool
}
