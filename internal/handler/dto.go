package handler

type EditionResponse struct {
	Day           string          `json:"day"`
	Offset        int             `json:"offset"`
	Version       string          `json:"version"`
	Status        string          `json:"status"`
	GeneratedAt   string          `json:"generated_at"`
	HeroStoryID   string          `json:"hero_story_id"`
	MarketSummary string          `json:"market_summary"`
	EconSummary   string          `json:"econ_summary"`
	Stories       []StoryResponse `json:"stories"`
}

type StoryResponse struct {
	ID         string        `json:"id"`
	Section    string        `json:"section"`
	Rank       int           `json:"rank"`
	Angle      string        `json:"angle"`
	Headline   string        `json:"headline"`
	Dek        string        `json:"dek"`
	Body       string        `json:"body"`
	Confidence int           `json:"confidence"`
	Hero       bool          `json:"hero"`
	Citations  []string      `json:"citations"`
	Curation   *CurationMeta `json:"curation,omitempty"`
}

type CurationMeta struct {
	TopicTitle      string   `json:"topic_title"`
	SparkDirections string   `json:"spark_directions"`
	FutureEventSeed string   `json:"future_event_seed"`
	Outline         []string `json:"outline"`
	ModelUsed       string   `json:"model_used"`
	CuratedAt       string   `json:"curated_at"`
}

type CandidateResponse struct {
	ID         string   `json:"id"`
	Section    string   `json:"section"`
	Rank       int      `json:"rank"`
	Angle      string   `json:"angle"`
	Headline   string   `json:"headline"`
	Dek        string   `json:"dek"`
	TopicBrief string   `json:"topic_brief"`
	Horizon    string   `json:"horizon"`
	Citations  []string `json:"citations"`
}

type BuildDayResponse struct {
	Day string `json:"day"`
}

type SnapshotResponse struct {
	Day          string           `json:"day"`
	Sources      []SourceResponse `json:"sources"`
	RawItemCount int              `json:"raw_item_count"`
	Signals      []SignalResponse `json:"signals"`
	Topics       []TopicResponse  `json:"topics"`
	Editions     []EditionSummary `json:"editions"`
}

type SourceResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Kind          string `json:"kind"`
	Section       string `json:"section,omitempty"`
	Enabled       bool   `json:"enabled"`
	LastFetchedAt string `json:"last_fetched_at,omitempty"`
	LastError     string `json:"last_error,omitempty"`
	LastItemCount int    `json:"last_item_count"`
}

type SignalResponse struct {
	ID       int64    `json:"id"`
	Section  string   `json:"section"`
	Type     string   `json:"type"`
	Title    string   `json:"title"`
	Horizon  string   `json:"horizon"`
	Score    float64  `json:"score"`
	Entities []string `json:"entities"`
	Keywords []string `json:"keywords"`
}

type TopicResponse struct {
	Day     string  `json:"day"`
	Section string  `json:"section"`
	Slug    string  `json:"slug"`
	Label   string  `json:"label"`
	Brief   string  `json:"brief"`
	Horizon string  `json:"horizon"`
	Score   float64 `json:"score"`
	Signals []int64 `json:"signal_ids"`
}

type EditionSummary struct {
	Offset      int    `json:"offset"`
	Version     string `json:"version"`
	Status      string `json:"status"`
	GeneratedAt string `json:"generated_at"`
}
