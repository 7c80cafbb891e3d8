package domain

// Violation is a failed compliance rule.
type Violation struct {
	Rule   string
	Detail string
}

// ComplianceReport is produced fresh on every validation pass.
type ComplianceReport struct {
	Violations     []Violation
	Warnings       []Violation
	CompliantItems []string
	Score          float64
}

// Compliant reports whether the document may be published.
func (r ComplianceReport) Compliant() bool {
	return len(r.Violations) == 0
}

// ViolatedRules lists the distinct rule names that produced violations.
func (r ComplianceReport) ViolatedRules() []string {
	seen := map[string]struct{}{}
	var rules []string
	for _, v := range r.Violations {
		if _, ok := seen[v.Rule]; ok {
			continue
		}
		seen[v.Rule] = struct{}{}
		rules = append(rules, v.Rule)
	}
	return rules
}
