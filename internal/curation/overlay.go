// Package curation merges externally produced enrichment onto assembled
// stories at read time. It only decorates: stories are never created,
// removed or reordered here, so sections keep full coverage even when
// curation is missing or low-confidence.
package curation

import (
	"math"
	"strconv"

	"github.com/msanchezgrice/futurenews-sub000/internal/model"
)

// Drafts at or under this length are treated as truncated or failed and do
// not replace the generated stub body.
const minDraftBodyChars = 100

// StoryView is a story with its curation overlaid.
type StoryView struct {
	model.Story
	Confidence int
	Hero       bool
	Curation   *model.Curation // full record as metadata; nil when uncurated
}

// OverlayStories applies curation records to stories in their given order.
// The default hero is the first story; a single curated hero flag overrides
// it, while multiple flags (an inconsistent curation batch) leave the
// default in place.
func OverlayStories(stories []model.Story, records map[string]model.Curation) []StoryView {
	views := make([]StoryView, len(stories))

	heroIdx := -1
	flagged := 0
	for i, s := range stories {
		views[i] = StoryView{Story: s}

		rec, ok := records[s.ID]
		if !ok {
			continue
		}

		c := rec
		views[i].Curation = &c
		views[i].Confidence = clampConfidence(c.Confidence)

		if c.CuratedTitle != "" {
			views[i].Headline = c.CuratedTitle
		}
		if c.CuratedDek != "" {
			views[i].Dek = c.CuratedDek
		}
		if len(c.Draft.Body) > minDraftBodyChars {
			views[i].Body = c.Draft.Body
		}

		if c.Hero {
			flagged++
			heroIdx = i
		}
	}

	if flagged != 1 {
		heroIdx = 0
	}
	if heroIdx >= 0 && heroIdx < len(views) {
		views[heroIdx].Hero = true
	}

	return views
}

// ParseConfidence normalizes a confidence value from the enrichment
// collaborator, which may arrive as a number or a numeric string. Non-numeric
// or absent values default to 0; the result is rounded and clamped to
// [0, 100].
func ParseConfidence(v any) int {
	switch value := v.(type) {
	case nil:
		return 0
	case int:
		return clampConfidence(value)
	case int64:
		return clampConfidence(int(value))
	case float64:
		return clampConfidence(int(math.Round(value)))
	case string:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0
		}
		return clampConfidence(int(math.Round(f)))
	default:
		return 0
	}
}

func clampConfidence(c int) int {
	if c < 0 {
		return 0
	}
	if c > 100 {
		return 100
	}
	return c
}
