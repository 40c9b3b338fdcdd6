package pipeline

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "that": {}, "this": {}, "from": {},
	"are": {}, "was": {}, "has": {}, "have": {}, "had": {}, "will": {}, "would": {},
	"could": {}, "into": {}, "over": {}, "after": {}, "before": {}, "about": {},
	"more": {}, "than": {}, "its": {}, "his": {}, "her": {}, "their": {}, "our": {},
	"but": {}, "not": {}, "out": {}, "off": {}, "all": {}, "new": {}, "says": {},
	"say": {}, "said": {}, "amid": {}, "can": {}, "may": {}, "might": {}, "been": {},
	"being": {}, "what": {}, "when": {}, "where": {}, "which": {}, "while": {},
	"who": {}, "why": {}, "how": {}, "per": {}, "via": {}, "among": {}, "between": {},
	"against": {}, "during": {}, "under": {}, "because": {}, "still": {}, "also": {},
}

// tokenize lowercases, strips punctuation and drops stopwords and tokens
// shorter than three characters.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	var tokens []string
	for _, f := range fields {
		if len(f) < 3 {
			continue
		}
		if _, ok := stopwords[f]; ok {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

func tokenSet(texts ...string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, t := range texts {
		for _, tok := range tokenize(t) {
			set[tok] = struct{}{}
		}
	}
	return set
}

func slugify(s string) string {
	var sb strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			sb.WriteRune(r)
			lastDash = false
		case !lastDash:
			sb.WriteRune('-')
			lastDash = true
		}
	}
	slug := strings.Trim(sb.String(), "-")
	if len(slug) > 48 {
		slug = strings.Trim(cutRunes(slug, 48), "-")
	}
	if slug == "" {
		slug = "topic"
	}
	return slug
}

// truncate cuts s at max bytes on a word boundary where possible.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := cutRunes(s, max)
	if idx := strings.LastIndex(cut, " "); idx > max/2 {
		cut = cut[:idx]
	}
	return cut + "..."
}

// cutRunes returns the longest prefix of s at most max bytes long that does
// not split a multi-byte rune.
func cutRunes(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}

// stripProperNouns removes capitalized words that are not sentence-leading,
// which is how theme phrases generalize away from specific actors.
func stripProperNouns(s string) string {
	words := strings.Fields(s)
	var kept []string
	for i, w := range words {
		runes := []rune(w)
		if i > 0 && len(runes) > 0 && unicode.IsUpper(runes[0]) {
			continue
		}
		kept = append(kept, w)
	}
	return strings.Join(kept, " ")
}

// parseFirstFloat scans s for the first decimal number, used to pull yield
// values out of series summaries.
func parseFirstFloat(s string) (float64, bool) {
	start := -1
	for i, r := range s {
		isNum := unicode.IsDigit(r) || r == '.'
		if isNum && start < 0 {
			start = i
		}
		if !isNum && start >= 0 {
			if v, err := strconv.ParseFloat(strings.Trim(s[start:i], "."), 64); err == nil {
				return v, true
			}
			start = -1
		}
	}
	if start >= 0 {
		if v, err := strconv.ParseFloat(strings.Trim(s[start:], "."), 64); err == nil {
			return v, true
		}
	}
	return 0, false
}
