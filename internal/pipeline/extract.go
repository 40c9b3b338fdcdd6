package pipeline

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/msanchezgrice/futurenews-sub000/internal/model"
)

const (
	maxKeywords = 12
	maxEntities = 10
)

// Providers whose kind alone does not determine the signal type.
var sourceTypeOverrides = map[string]string{
	"arxiv":    model.SignalResearch,
	"treasury": model.SignalMarket,
}

var kindToType = map[string]string{
	model.KindFeed:   model.SignalNews,
	model.KindMarket: model.SignalMarket,
	model.KindSeries: model.SignalEcon,
}

var typeBaseWeight = map[string]float64{
	model.SignalNews:     1.0,
	model.SignalMarket:   1.15,
	model.SignalEcon:     1.1,
	model.SignalResearch: 0.9,
}

var typeHorizon = map[string]string{
	model.SignalNews:     model.HorizonNear,
	model.SignalMarket:   model.HorizonNear,
	model.SignalEcon:     model.HorizonMid,
	model.SignalResearch: model.HorizonLong,
}

var sectionKeywords = map[string][]string{
	model.SectionBusiness: {
		"earnings", "revenue", "profit", "acquisition", "merger", "ipo", "startup",
		"ceo", "layoffs", "retail", "bank", "lawsuit", "antitrust", "tariff", "trade",
	},
	model.SectionTechnology: {
		"software", "chip", "semiconductor", "artificial intelligence", "cloud",
		"smartphone", "app", "data center", "cybersecurity", "robot", "model",
		"platform", "silicon", "compute",
	},
	model.SectionWorld: {
		"election", "parliament", "sanctions", "treaty", "minister", "military",
		"border", "diplomacy", "summit", "conflict", "ceasefire", "refugee", "nato",
	},
	model.SectionScience: {
		"study", "researchers", "vaccine", "genome", "telescope", "physics",
		"clinical", "species", "discovery", "experiment", "spacecraft", "quantum",
	},
	model.SectionEnergy: {
		"oil", "gas", "solar", "wind", "nuclear", "grid", "battery", "emissions",
		"renewable", "barrel", "opec", "carbon", "fusion", "drilling",
	},
}

var entityDictionary = []string{
	"Apple", "Microsoft", "Nvidia", "Alphabet", "Google", "Amazon", "Meta", "Tesla",
	"OpenAI", "Anthropic", "TSMC", "Intel", "Samsung", "Boeing", "Airbus",
	"JPMorgan", "Goldman Sachs", "BlackRock", "Berkshire Hathaway", "ExxonMobil",
	"Saudi Aramco", "OPEC", "Federal Reserve", "Treasury", "SEC", "European Union",
	"European Central Bank", "Bank of Japan", "IMF", "World Bank", "United Nations",
	"NATO", "White House", "Congress", "Pentagon", "NASA", "SpaceX", "China",
	"United States", "Japan", "Germany", "India", "Russia", "Ukraine", "Taiwan",
	"Brazil", "United Kingdom",
}

const spreadSignalTitle = "2s10s Treasury spread"

// Extractor turns a day's raw items into scored, classified signals.
type Extractor struct {
	sources map[string]model.Source
	now     func() time.Time
}

func NewExtractor(sources []model.Source) *Extractor {
	byID := make(map[string]model.Source, len(sources))
	for _, s := range sources {
		byID[s.ID] = s
	}
	return &Extractor{sources: byID, now: time.Now}
}

// Extract derives one signal per raw item, then synthesizes the yield-spread
// signal once per day when both parent yields are present. existing is the
// day's already-persisted signals, consulted only for spread dedup.
func (e *Extractor) Extract(day string, items []model.RawItem, existing []model.Signal) []model.Signal {
	var signals []model.Signal
	for _, item := range items {
		signals = append(signals, e.extractOne(day, item))
	}

	if spread, ok := e.synthesizeSpread(day, existing, signals); ok {
		signals = append(signals, spread)
	}

	return signals
}

func (e *Extractor) extractOne(day string, item model.RawItem) model.Signal {
	src := e.sources[item.SourceID]

	sigType := kindToType[src.Kind]
	if override, ok := sourceTypeOverrides[item.SourceID]; ok {
		sigType = override
	}
	if sigType == "" {
		sigType = model.SignalNews
	}

	section := src.Section
	if section == "" {
		if sigType == model.SignalMarket || sigType == model.SignalEcon {
			section = model.SectionMarkets
		} else {
			section = classifySection(item.Title, item.Summary)
		}
	}

	citation := src.Name
	if citation == "" {
		citation = item.SourceID
	}
	if item.URL != "" {
		citation += " — " + item.URL
	}

	return model.Signal{
		RawItemID:   item.ID,
		Day:         day,
		Section:     section,
		Type:        sigType,
		Title:       item.Title,
		Summary:     item.Summary,
		PublishedAt: item.PublishedAt,
		Horizon:     typeHorizon[sigType],
		Score:       typeBaseWeight[sigType] * e.recencyBoost(item.PublishedAt) * lengthBoost(item.Title),
		Entities:    extractEntities(item.Title, item.Summary),
		Keywords:    extractKeywords(item.Title, item.Summary),
		Citations:   []string{citation},
	}
}

// recencyBoost decays with age as 1/(1+ageHours/18), clamped to [0.2, 1.0].
// Items without a published timestamp get a neutral 0.5.
func (e *Extractor) recencyBoost(publishedAt time.Time) float64 {
	if publishedAt.IsZero() {
		return 0.5
	}
	ageHours := e.now().Sub(publishedAt).Hours()
	if ageHours < 0 {
		ageHours = 0
	}
	boost := 1.0 / (1.0 + ageHours/18.0)
	if boost < 0.2 {
		return 0.2
	}
	if boost > 1.0 {
		return 1.0
	}
	return boost
}

// lengthBoost rewards longer titles up to a 90-character cap.
func lengthBoost(title string) float64 {
	n := len(title)
	if n > 90 {
		n = 90
	}
	return 0.8 + float64(n)/150.0
}

func classifySection(title, summary string) string {
	text := strings.ToLower(title + " " + summary)

	best := model.SectionBusiness
	bestScore := 0
	for _, section := range model.OrdinarySections {
		score := 0
		for _, kw := range sectionKeywords[section] {
			score += strings.Count(text, kw)
		}
		if score > bestScore {
			best = section
			bestScore = score
		}
	}
	return best
}

// extractKeywords returns up to maxKeywords frequency-ranked tokens,
// alphabetical within equal counts so the ranking is deterministic.
func extractKeywords(title, summary string) []string {
	counts := make(map[string]int)
	for _, tok := range tokenize(title + " " + summary) {
		counts[tok]++
	}

	ranked := make([]string, 0, len(counts))
	for tok := range counts {
		ranked = append(ranked, tok)
	}
	sort.Slice(ranked, func(a, b int) bool {
		if counts[ranked[a]] != counts[ranked[b]] {
			return counts[ranked[a]] > counts[ranked[b]]
		}
		return ranked[a] < ranked[b]
	})

	if len(ranked) > maxKeywords {
		ranked = ranked[:maxKeywords]
	}
	return ranked
}

// extractEntities matches the known-entity dictionary first, then falls back
// to a conservative multi-word capitalized-phrase heuristic, capped to avoid
// noise.
func extractEntities(title, summary string) []string {
	text := title + ". " + summary
	lower := strings.ToLower(text)

	var entities []string
	seen := make(map[string]struct{})
	add := func(name string) {
		key := strings.ToLower(name)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		entities = append(entities, name)
	}

	for _, known := range entityDictionary {
		if strings.Contains(lower, strings.ToLower(known)) {
			add(known)
		}
	}

	for _, phrase := range capitalizedPhrases(text) {
		if len(entities) >= maxEntities {
			break
		}
		add(phrase)
	}

	if len(entities) > maxEntities {
		entities = entities[:maxEntities]
	}
	return entities
}

// capitalizedPhrases finds runs of two or more capitalized words.
func capitalizedPhrases(text string) []string {
	words := strings.Fields(text)
	var phrases []string
	var run []string

	flush := func() {
		if len(run) >= 2 {
			phrases = append(phrases, strings.Join(run, " "))
		}
		run = nil
	}

	for _, w := range words {
		trimmed := strings.Trim(w, ".,:;!?\"'()")
		runes := []rune(trimmed)
		if len(runes) > 1 && runes[0] >= 'A' && runes[0] <= 'Z' {
			run = append(run, trimmed)
			// Sentence punctuation ends the run even mid-phrase.
			if strings.ContainsAny(w, ".!?") {
				flush()
			}
			continue
		}
		flush()
	}
	flush()

	return phrases
}

// synthesizeSpread emits the 2s10s spread signal when both the 10-year and
// 2-year yield signals exist for the day and the spread has not already been
// synthesized.
func (e *Extractor) synthesizeSpread(day string, existing, fresh []model.Signal) (model.Signal, bool) {
	var tenYear, twoYear *model.Signal
	all := make([]model.Signal, 0, len(existing)+len(fresh))
	all = append(all, existing...)
	all = append(all, fresh...)

	for i := range all {
		s := &all[i]
		if strings.HasPrefix(s.Title, spreadSignalTitle) {
			return model.Signal{}, false
		}
		if s.Type != model.SignalMarket {
			continue
		}
		if strings.Contains(s.Title, "10-Year Treasury") {
			tenYear = s
		}
		if strings.Contains(s.Title, "2-Year Treasury") {
			twoYear = s
		}
	}

	if tenYear == nil || twoYear == nil {
		return model.Signal{}, false
	}

	title := spreadSignalTitle
	summary := "Derived from the day's 10-year and 2-year Treasury yield readings."
	v10, ok10 := parseFirstFloat(tenYear.Summary)
	v2, ok2 := parseFirstFloat(twoYear.Summary)
	if ok10 && ok2 {
		spread := v10 - v2
		title = fmt.Sprintf("%s at %+.2fpp", spreadSignalTitle, spread)
		summary = fmt.Sprintf("10-year yield %.2f%% minus 2-year yield %.2f%% puts the curve at %+.2f points.", v10, v2, spread)
	}

	score := tenYear.Score
	if twoYear.Score > score {
		score = twoYear.Score
	}

	return model.Signal{
		Day:       day,
		Section:   model.SectionMarkets,
		Type:      model.SignalEcon,
		Title:     title,
		Summary:   summary,
		Horizon:   model.HorizonMid,
		Score:     score,
		Keywords:  []string{"treasury", "yield", "spread", "curve"},
		Citations: append(append([]string{}, tenYear.Citations...), twoYear.Citations...),
	}, true
}
