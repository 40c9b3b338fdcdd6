package pipeline

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/msanchezgrice/futurenews-sub000/internal/model"
)

const (
	DefaultSectionTarget = 5
	standingSectionMax   = 6
	poolMultiplier       = 3

	// Two selected topics may not exceed this token-set similarity; paired
	// with the theme-phrase check it keeps one event from filling a section.
	ThemeJaccardMax = 0.55
)

// Named rhetorical angles, assigned round-robin within a section.
var storyAngles = []string{
	"what-changed",
	"why-it-matters",
	"winners-losers",
	"whats-next",
	"the-long-view",
}

var standingHeadlineTemplates = []string{
	"%s enters a new phase",
	"The next chapter for %s",
	"%s: what to watch",
	"Where %s goes from here",
}

// AssembleInput is the fully-ingested snapshot the assembler selects from.
type AssembleInput struct {
	Day           string
	Offset        int
	Topics        []model.Topic
	Standing      []model.StandingTopic
	EvidenceCount map[string]int // standing-topic key -> day evidence links
	MarketSignals []model.Signal
	EconSignals   []model.Signal
	SectionTarget int
}

// AssembleEdition deterministically selects and orders stories for one
// (day, offset) pair. Two runs over the same input produce identical story
// ids, ordering and content.
func AssembleEdition(in AssembleInput) (model.Edition, []model.Story) {
	target := in.SectionTarget
	if target <= 0 {
		target = DefaultSectionTarget
	}

	bySection := make(map[string][]model.Topic)
	for _, t := range in.Topics {
		bySection[t.Section] = append(bySection[t.Section], t)
	}

	var stories []model.Story
	for _, section := range model.OrdinarySections {
		chosen := selectSectionTopics(in.Day, in.Offset, section, bySection[section], target)
		for i, topic := range chosen {
			stories = append(stories, buildStory(in, section, i, topic))
		}
	}
	stories = append(stories, buildStandingStories(in)...)

	ids := make([]string, len(stories))
	for i, s := range stories {
		ids[i] = s.ID
	}

	ed := model.Edition{
		Day:           in.Day,
		Offset:        in.Offset,
		Version:       fmt.Sprintf("%016x", StableHash(strings.Join(ids, "|"))),
		Status:        model.EditionBuilt,
		MarketSummary: summarizeSignals(in.MarketSignals),
		EconSummary:   summarizeSignals(in.EconSignals),
	}
	return ed, stories
}

// horizonTargets converts the offset-dependent near/mid/long mix into per
// bucket counts summing to n: near-heavy for short offsets, long-heavy far
// out.
func horizonTargets(offset, n int) map[string]int {
	var fractions [3]float64
	switch {
	case offset <= 2:
		fractions = [3]float64{0.6, 0.3, 0.1}
	case offset <= 14:
		fractions = [3]float64{0.3, 0.4, 0.3}
	default:
		fractions = [3]float64{0.1, 0.3, 0.6}
	}

	buckets := []string{model.HorizonNear, model.HorizonMid, model.HorizonLong}
	counts := make(map[string]int, 3)
	total := 0
	for i, b := range buckets {
		counts[b] = int(fractions[i] * float64(n))
		total += counts[b]
	}
	for i := 0; total < n; i = (i + 1) % 3 {
		counts[buckets[i]]++
		total++
	}
	return counts
}

// selectSectionTopics picks up to n topics from a deterministically shuffled
// top pool, filling horizon buckets first and relaxing the diversity
// constraints tier by tier so the section always reaches min(n, available).
func selectSectionTopics(day string, offset int, section string, topics []model.Topic, n int) []model.Topic {
	if len(topics) == 0 {
		return nil
	}

	sort.SliceStable(topics, func(a, b int) bool {
		if topics[a].Score != topics[b].Score {
			return topics[a].Score > topics[b].Score
		}
		return topics[a].Slug < topics[b].Slug
	})

	pool := topics
	if len(pool) > n*poolMultiplier {
		pool = pool[:n*poolMultiplier]
	}

	seed := day + "|" + strconv.Itoa(offset) + "|" + section
	shuffled := make([]model.Topic, len(pool))
	for i, idx := range hashOrder(seed, len(pool)) {
		shuffled[i] = pool[idx]
	}

	sel := &sectionSelection{max: n}
	targets := horizonTargets(offset, n)

	// Tier 1: fill each horizon bucket to target under full diversity checks.
	for _, horizon := range []string{model.HorizonNear, model.HorizonMid, model.HorizonLong} {
		for _, t := range shuffled {
			if sel.full() || sel.bucket[horizon] >= targets[horizon] {
				break
			}
			if t.Horizon != horizon {
				continue
			}
			sel.take(t, true, true)
		}
	}

	// Tier 2: backfill ignoring horizon, keeping both diversity checks.
	for _, t := range shuffled {
		if sel.full() {
			break
		}
		sel.take(t, true, true)
	}

	// Tier 3: relax the theme check, keep the similarity check.
	for _, t := range shuffled {
		if sel.full() {
			break
		}
		sel.take(t, false, true)
	}

	// Last resort: any unused topic, in stable-hash order, so the section
	// reaches its target whenever enough topics exist at all.
	remaining := make([]model.Topic, 0, len(topics))
	for _, t := range topics {
		if !sel.used[t.Slug] {
			remaining = append(remaining, t)
		}
	}
	sort.SliceStable(remaining, func(a, b int) bool {
		return StableHash(seed+"|"+remaining[a].Slug) < StableHash(seed+"|"+remaining[b].Slug)
	})
	for _, t := range remaining {
		if sel.full() {
			break
		}
		sel.take(t, false, false)
	}

	return sel.chosen
}

type sectionSelection struct {
	max    int
	chosen []model.Topic
	themes map[string]struct{}
	tokens []map[string]struct{}
	bucket map[string]int
	used   map[string]bool
}

func (s *sectionSelection) full() bool {
	return len(s.chosen) >= s.max
}

// take adds the topic unless a diversity check rejects it. Checks are
// individually optional so later tiers can relax them.
func (s *sectionSelection) take(t model.Topic, checkTheme, checkSimilarity bool) bool {
	if s.used == nil {
		s.themes = make(map[string]struct{})
		s.bucket = make(map[string]int)
		s.used = make(map[string]bool)
	}
	if s.used[t.Slug] {
		return false
	}

	theme := themePhrase(t.Label)
	if checkTheme {
		if _, dup := s.themes[theme]; dup {
			return false
		}
	}

	tokens := make(map[string]struct{}, len(t.Keywords))
	for _, kw := range t.Keywords {
		tokens[kw] = struct{}{}
	}
	if checkSimilarity {
		for _, prev := range s.tokens {
			if jaccard(tokens, prev) >= ThemeJaccardMax {
				return false
			}
		}
	}

	s.chosen = append(s.chosen, t)
	s.themes[theme] = struct{}{}
	s.tokens = append(s.tokens, tokens)
	s.bucket[t.Horizon]++
	s.used[t.Slug] = true
	return true
}

func buildStory(in AssembleInput, section string, rank int, topic model.Topic) model.Story {
	angle := storyAngles[rank%len(storyAngles)]
	return model.Story{
		ID:        storyID(in.Day, in.Offset, section, topic.Slug, angle),
		Day:       in.Day,
		Offset:    in.Offset,
		Section:   section,
		Rank:      rank + 1,
		Angle:     angle,
		TopicSlug: topic.Slug,
		Headline:  seedHeadline(topic.Label),
		Dek:       seedDek(topic.Brief),
		Body:      seedBody(topic),
		Evidence: model.EvidencePack{
			TopicBrief:    topic.Brief,
			Citations:     topicCitations(topic),
			Horizon:       topic.Horizon,
			MarketContext: summarizeSignals(in.MarketSignals),
			EconContext:   summarizeSignals(in.EconSignals),
		},
	}
}

// buildStandingStories fills the futures section from the standing-topic
// registry: one per category first for coverage, then by daily evidence.
func buildStandingStories(in AssembleInput) []model.Story {
	var enabled []model.StandingTopic
	for _, t := range in.Standing {
		if t.Enabled && t.Section == model.SectionFutures {
			enabled = append(enabled, t)
		}
	}
	if len(enabled) == 0 {
		return nil
	}

	evidence := func(t model.StandingTopic) int { return in.EvidenceCount[t.Key] }
	sort.SliceStable(enabled, func(a, b int) bool {
		if evidence(enabled[a]) != evidence(enabled[b]) {
			return evidence(enabled[a]) > evidence(enabled[b])
		}
		return enabled[a].Key < enabled[b].Key
	})

	var chosen []model.StandingTopic
	usedCategories := make(map[string]bool)
	usedKeys := make(map[string]bool)
	for _, t := range enabled {
		if len(chosen) >= standingSectionMax {
			break
		}
		if usedCategories[t.Category] {
			continue
		}
		usedCategories[t.Category] = true
		usedKeys[t.Key] = true
		chosen = append(chosen, t)
	}
	for _, t := range enabled {
		if len(chosen) >= standingSectionMax {
			break
		}
		if usedKeys[t.Key] {
			continue
		}
		usedKeys[t.Key] = true
		chosen = append(chosen, t)
	}

	targetYear := editionTargetYear(in.Day, in.Offset)

	stories := make([]model.Story, 0, len(chosen))
	for i, topic := range chosen {
		headline, dek := standingSeeds(in.Day, topic, targetYear)
		angle := storyAngles[i%len(storyAngles)]
		stories = append(stories, model.Story{
			ID:        storyID(in.Day, in.Offset, model.SectionFutures, topic.Key, angle),
			Day:       in.Day,
			Offset:    in.Offset,
			Section:   model.SectionFutures,
			Rank:      i + 1,
			Angle:     angle,
			TopicSlug: topic.Key,
			Headline:  headline,
			Dek:       dek,
			Body:      topic.Description,
			Evidence: model.EvidencePack{
				TopicBrief: topic.Description,
				Citations:  []string{},
				Horizon:    model.HorizonLong,
			},
		})
	}
	return stories
}

// standingSeeds builds headline and dek from milestone data when a milestone
// year is within one year of the target, otherwise from a stable-hash-picked
// template.
func standingSeeds(day string, topic model.StandingTopic, targetYear int) (string, string) {
	for _, m := range topic.Milestones {
		if m.Year >= targetYear-1 && m.Year <= targetYear+1 {
			headline := truncate(m.Event, 96)
			dek := fmt.Sprintf("%s — a %d milestone on the %s track.", truncate(topic.Description, 160), m.Year, topic.Category)
			return headline, dek
		}
	}

	tmpl := standingHeadlineTemplates[hashPick(day+"|"+topic.Key, len(standingHeadlineTemplates))]
	return fmt.Sprintf(tmpl, topic.Title), truncate(topic.Description, 200)
}

func editionTargetYear(day string, offset int) int {
	t, err := time.Parse("2006-01-02", day)
	if err != nil {
		t = time.Now().UTC()
	}
	return t.AddDate(0, 0, offset).Year()
}

func storyID(day string, offset int, section, slug, angle string) string {
	return fmt.Sprintf("%s-%d-%s-%s-%s", day, offset, section, slug, angle)
}

var interrogatives = []string{"will ", "can ", "could ", "is ", "are ", "should ", "do ", "does ", "what ", "why ", "how "}

// seedHeadline is a fallback skeleton: question headlines are rewritten as
// declaratives and the result capped. Curation overwrites it when present.
func seedHeadline(label string) string {
	headline := strings.TrimSpace(label)
	if strings.HasSuffix(headline, "?") {
		headline = strings.TrimSuffix(headline, "?")
		lower := strings.ToLower(headline)
		for _, prefix := range interrogatives {
			if strings.HasPrefix(lower, prefix) {
				headline = headline[len(prefix):]
				break
			}
		}
		headline = strings.TrimSpace(headline)
		if headline != "" {
			runes := []rune(headline)
			headline = strings.ToUpper(string(runes[0])) + string(runes[1:])
		}
	}
	return truncate(headline, 96)
}

func seedDek(brief string) string {
	line := brief
	if idx := strings.Index(brief, "\n"); idx >= 0 {
		line = brief[:idx]
	}
	line = strings.TrimPrefix(line, "- ")
	return truncate(line, 180)
}

func seedBody(topic model.Topic) string {
	var sb strings.Builder
	sb.WriteString(topic.Label)
	sb.WriteString("\n\n")
	sb.WriteString(topic.Brief)
	return sb.String()
}

func topicCitations(topic model.Topic) []string {
	// Signal-level citations are resolved by id at read time; the stub keeps
	// the member signal ids in string form.
	citations := make([]string, 0, len(topic.SignalIDs))
	for _, id := range topic.SignalIDs {
		citations = append(citations, "signal:"+strconv.FormatInt(id, 10))
	}
	return citations
}

// summarizeSignals joins the top three signal titles into a one-line context
// summary for the evidence pack and the edition header.
func summarizeSignals(signals []model.Signal) string {
	sorted := make([]model.Signal, len(signals))
	copy(sorted, signals)
	sort.SliceStable(sorted, func(a, b int) bool {
		if sorted[a].Score != sorted[b].Score {
			return sorted[a].Score > sorted[b].Score
		}
		return sorted[a].Title < sorted[b].Title
	})

	var titles []string
	for _, s := range sorted {
		if len(titles) >= 3 {
			break
		}
		titles = append(titles, s.Title)
	}
	return strings.Join(titles, " · ")
}
