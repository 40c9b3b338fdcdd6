package pipeline

import "strings"

// themeCategories maps a generalized theme to the vocabulary that marks it.
// A topic's theme phrase is the first matching category, so two stories about
// different companies raising prices still collide on "pricing-pressure".
var themeCategories = []struct {
	name     string
	keywords []string
}{
	{"central-banks", []string{"fed", "rate cut", "rate hike", "interest rate", "central bank", "monetary"}},
	{"inflation", []string{"inflation", "cpi", "consumer prices", "price index"}},
	{"earnings", []string{"earnings", "quarterly results", "profit", "revenue beat", "guidance"}},
	{"mergers", []string{"merger", "acquisition", "takeover", "buyout", "acquire"}},
	{"regulation", []string{"regulator", "antitrust", "lawsuit", "ruling", "fine", "probe", "investigation"}},
	{"trade-policy", []string{"tariff", "export controls", "trade deal", "sanctions", "import"}},
	{"chip-supply", []string{"chip", "semiconductor", "foundry", "wafer", "fab"}},
	{"ai-advances", []string{"artificial intelligence", "model", "llm", "chatbot", "training"}},
	{"cybersecurity", []string{"breach", "hack", "ransomware", "vulnerability", "cyber"}},
	{"elections", []string{"election", "vote", "ballot", "campaign", "poll"}},
	{"conflict", []string{"war", "strike", "missile", "troops", "ceasefire", "offensive"}},
	{"energy-transition", []string{"solar", "wind", "renewable", "ev", "electric vehicle", "battery"}},
	{"oil-markets", []string{"oil", "crude", "opec", "barrel", "refinery"}},
	{"labor-market", []string{"jobs", "unemployment", "layoffs", "hiring", "wages", "union"}},
	{"housing", []string{"housing", "mortgage", "home prices", "real estate", "rent"}},
	{"climate", []string{"climate", "emissions", "carbon", "warming", "drought", "wildfire"}},
	{"space", []string{"rocket", "satellite", "orbit", "lunar", "mars", "spacecraft"}},
	{"health", []string{"vaccine", "drug", "fda", "clinical trial", "outbreak", "therapy"}},
	{"crypto", []string{"bitcoin", "crypto", "ethereum", "stablecoin", "token"}},
	{"consumer-spending", []string{"retail sales", "consumer", "spending", "holiday shopping", "demand"}},
}

// themePhrase derives a rule-based paraphrase of a topic label: proper nouns
// are stripped so the phrase describes the underlying event rather than its
// actors, then the result is mapped against the known theme categories.
func themePhrase(label string) string {
	stripped := strings.ToLower(stripProperNouns(label))
	if stripped == "" {
		stripped = strings.ToLower(label)
	}

	for _, cat := range themeCategories {
		for _, kw := range cat.keywords {
			if strings.Contains(stripped, kw) {
				return cat.name
			}
		}
	}

	words := strings.Fields(stripped)
	if len(words) > 6 {
		words = words[:6]
	}
	return strings.Join(words, " ")
}
