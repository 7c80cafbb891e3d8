package topic

import "strings"

var irregular = map[string]string{
	"shelf":  "shelves",
	"knife":  "knives",
	"leaf":   "leaves",
	"person": "people",
	"child":  "children",
	"mouse":  "mice",
	"glass":  "glasses",
}

var invariant = map[string]bool{
	"furniture": true,
	"lighting":  true,
	"bedding":   true,
	"decor":     true,
	"storage":   true,
	"glassware": true,
}

// Plural returns the English plural form used in prose.
func Plural(word string) string {
	w := strings.ToLower(strings.TrimSpace(word))
	if w == "" {
		return w
	}

	// only the last word of a phrase is inflected
	prefix := ""
	if i := strings.LastIndex(w, " "); i >= 0 {
		prefix, w = w[:i+1], w[i+1:]
	}

	switch {
	case invariant[w]:
	case irregular[w] != "":
		w = irregular[w]
	case strings.HasSuffix(w, "s"), strings.HasSuffix(w, "x"), strings.HasSuffix(w, "z"),
		strings.HasSuffix(w, "ch"), strings.HasSuffix(w, "sh"):
		if !strings.HasSuffix(w, "ss") && strings.HasSuffix(w, "s") {
			break // already plural
		}
		w += "es"
	case strings.HasSuffix(w, "y") && len(w) > 1 && !strings.ContainsRune("aeiou", rune(w[len(w)-2])):
		w = w[:len(w)-1] + "ies"
	default:
		w += "s"
	}
	return prefix + w
}

var singularIrregular = func() map[string]string {
	out := make(map[string]string, len(irregular))
	for one, many := range irregular {
		out[many] = one
	}
	return out
}()

// Singular reverses Plural for the last word of a phrase. Words that do not
// look plural are returned unchanged.
func Singular(word string) string {
	w := strings.ToLower(strings.TrimSpace(word))

	prefix := ""
	if i := strings.LastIndex(w, " "); i >= 0 {
		prefix, w = w[:i+1], w[i+1:]
	}

	switch {
	case w == "" || invariant[w]:
	case singularIrregular[w] != "":
		w = singularIrregular[w]
	case strings.HasSuffix(w, "ies") && len(w) > 3:
		w = w[:len(w)-3] + "y"
	case strings.HasSuffix(w, "sses"), strings.HasSuffix(w, "ches"), strings.HasSuffix(w, "shes"),
		strings.HasSuffix(w, "xes"), strings.HasSuffix(w, "zes"):
		w = w[:len(w)-2]
	case strings.HasSuffix(w, "s") && !strings.HasSuffix(w, "ss") && len(w) > 1:
		w = w[:len(w)-1]
	}
	return prefix + w
}
