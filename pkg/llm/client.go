package llm

// StoryContext is the evidence pack handed to the curation model for one
// assembled story stub.
type StoryContext struct {
	StoryID    string
	Section    string
	Angle      string
	TargetDate string
	Headline   string
	Dek        string
	Brief      string
	Horizon    string
	Citations  []string
}

// CurationResult is the model's enrichment for one story. Confidence is
// already normalized to [0, 100].
type CurationResult struct {
	CuratedTitle    string
	CuratedDek      string
	Draft           Draft
	Confidence      int
	Hero            bool
	TopicTitle      string
	SparkDirections string
	FutureEventSeed string
	Outline         []string
	ModelUsed       string
}

type Draft struct {
	Title string `json:"title"`
	Dek   string `json:"dek"`
	Body  string `json:"body"`
}

type CurationClient interface {
	Curate(input StoryContext) (*CurationResult, error)
}
