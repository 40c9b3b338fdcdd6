package model

import "time"

const (
	SignalNews     = "news"
	SignalMarket   = "market"
	SignalEcon     = "econ"
	SignalResearch = "research"
)

const (
	HorizonNear = "near"
	HorizonMid  = "mid"
	HorizonLong = "long"
)

const (
	SectionBusiness   = "business"
	SectionTechnology = "technology"
	SectionWorld      = "world"
	SectionScience    = "science"
	SectionEnergy     = "energy"
	SectionMarkets    = "markets"
	SectionFutures    = "futures"
)

// OrdinarySections are the sections filled from daily topic clusters. The
// futures section is filled from the standing-topic registry instead, and
// markets is summarized rather than clustered.
var OrdinarySections = []string{
	SectionBusiness,
	SectionTechnology,
	SectionWorld,
	SectionScience,
	SectionEnergy,
}

// Signal is a scored, classified unit derived from one raw item (or
// synthesized, for derived indicators). Append-only.
type Signal struct {
	ID          int64
	RawItemID   int64 // 0 for synthesized signals
	Day         string
	Section     string
	Type        string
	Title       string
	Summary     string
	PublishedAt time.Time
	Horizon     string
	Score       float64
	Entities    []string
	Keywords    []string
	Citations   []string
}

// Topic is a cluster of same-day, same-section signals. Rebuilt in full on
// every refresh; only (day, slug) is reproducible across rebuilds.
type Topic struct {
	ID        int64
	Day       string
	Section   string
	Slug      string
	Label     string
	Brief     string
	Horizon   string
	Score     float64
	Keywords  []string
	SignalIDs []int64
}

// StandingTopic is a persistent, hand-curated registry entry independent of
// any single day.
type StandingTopic struct {
	ID          int64
	Key         string
	Section     string
	Category    string
	Title       string
	Description string
	Axes        []string
	Keywords    []string
	Milestones  []Milestone
	Enabled     bool
}

type Milestone struct {
	Year  int    `json:"year"`
	Event string `json:"event"`
}

// TopicEvidence links a standing topic to one of the day's signals.
// Unique per (topic key, signal id, day).
type TopicEvidence struct {
	ID              int64
	TopicKey        string
	SignalID        int64
	Day             string
	Relevance       float64
	MatchedKeywords []string
}
