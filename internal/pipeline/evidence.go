package pipeline

import (
	"strings"

	"github.com/msanchezgrice/futurenews-sub000/internal/model"
)

const (
	evidenceScoreMin    = 2.0
	evidenceKeywordsMin = 2
	evidenceScoreCap    = 8.0
)

// MatchStandingTopics links the day's signals to standing topics by keyword
// overlap. It is the futures section's alternate evidence path and runs
// independently of clustering; signals from every section participate.
func MatchStandingTopics(day string, topics []model.StandingTopic, signals []model.Signal) []model.TopicEvidence {
	var links []model.TopicEvidence
	for _, topic := range topics {
		if !topic.Enabled {
			continue
		}
		for _, sig := range signals {
			if ev, ok := matchOne(day, topic, sig); ok {
				links = append(links, ev)
			}
		}
	}
	return links
}

func matchOne(day string, topic model.StandingTopic, sig model.Signal) (model.TopicEvidence, bool) {
	text := strings.ToLower(sig.Title + " " + sig.Summary)

	sigKeywords := make(map[string]struct{}, len(sig.Keywords))
	for _, kw := range sig.Keywords {
		sigKeywords[strings.ToLower(kw)] = struct{}{}
	}

	score := 0.0
	var matched []string
	for _, kw := range topic.Keywords {
		lower := strings.ToLower(kw)
		hit := false
		if strings.Contains(text, lower) {
			hit = true
			if strings.Contains(lower, " ") {
				score += 2
			} else {
				score += 1
			}
		}
		if _, ok := sigKeywords[lower]; ok {
			hit = true
			score += 0.5
		}
		if hit {
			matched = append(matched, kw)
		}
	}

	if score < evidenceScoreMin && len(matched) < evidenceKeywordsMin {
		return model.TopicEvidence{}, false
	}

	relevance := score / evidenceScoreCap
	if relevance > 1.0 {
		relevance = 1.0
	}

	return model.TopicEvidence{
		TopicKey:        topic.Key,
		SignalID:        sig.ID,
		Day:             day,
		Relevance:       relevance,
		MatchedKeywords: matched,
	}, true
}
