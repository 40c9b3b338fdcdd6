package model

import "time"

const (
	EditionBuilding = "building"
	EditionBuilt    = "built"
)

// Edition is the full set of selected stories for one (day, offset) pair.
type Edition struct {
	ID            int64
	Day           string
	Offset        int // forward offset in days
	Version       string
	Status        string
	GeneratedAt   time.Time
	MarketSummary string
	EconSummary   string
}

// Story is one section-ranked placeholder derived from a topic, awaiting
// curation. The id is fully deterministic so rebuilds of an unchanged day
// keep the same ids.
type Story struct {
	ID        string
	Day       string
	Offset    int
	Section   string
	Rank      int
	Angle     string
	TopicSlug string
	Headline  string
	Dek       string
	Body      string
	Evidence  EvidencePack
}

// EvidencePack is the material handed to the curation collaborator.
type EvidencePack struct {
	TopicBrief    string   `json:"topic_brief"`
	Citations     []string `json:"citations"`
	Horizon       string   `json:"horizon"`
	MarketContext string   `json:"market_context,omitempty"`
	EconContext   string   `json:"econ_context,omitempty"`
}
