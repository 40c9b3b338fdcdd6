package model

import "time"

// Curation is the externally supplied enrichment for one story. Absence is a
// valid, common state: stories keep their generated seeds until curated.
type Curation struct {
	StoryID         string
	CuratedTitle    string
	CuratedDek      string
	Draft           DraftArticle
	Confidence      int // clamped to [0,100]
	Hero            bool
	TopicTitle      string
	SparkDirections string
	FutureEventSeed string
	Outline         []string
	ModelUsed       string
	CuratedAt       time.Time
}

type DraftArticle struct {
	Title string `json:"title"`
	Dek   string `json:"dek"`
	Body  string `json:"body"`
}
