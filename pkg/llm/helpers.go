package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/msanchezgrice/futurenews-sub000/internal/curation"
)

func formatStoryContext(input StoryContext) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Section: %s\n", input.Section))
	sb.WriteString(fmt.Sprintf("Angle: %s\n", input.Angle))
	sb.WriteString(fmt.Sprintf("Target publication date: %s\n", input.TargetDate))
	sb.WriteString(fmt.Sprintf("Forecast horizon: %s\n", input.Horizon))
	sb.WriteString(fmt.Sprintf("Seed headline: %s\n", input.Headline))
	if input.Dek != "" {
		sb.WriteString(fmt.Sprintf("Seed dek: %s\n", input.Dek))
	}
	sb.WriteString("\nEvidence brief:\n")
	sb.WriteString(input.Brief)
	if len(input.Citations) > 0 {
		sb.WriteString("\n\nCitations:\n")
		for _, c := range input.Citations {
			sb.WriteString("- " + c + "\n")
		}
	}
	return sb.String()
}

func cleanJSONResponse(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	// Some model responses include extra prose around JSON.
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start >= 0 && end > start {
		content = content[start : end+1]
	}
	return content
}

// curationPayload tolerates confidence arriving as a number or a numeric
// string; some models quote it.
type curationPayload struct {
	CuratedTitle    string   `json:"curated_title"`
	CuratedDek      string   `json:"curated_dek"`
	DraftArticle    Draft    `json:"draft_article"`
	Confidence      any      `json:"confidence"`
	Hero            bool     `json:"hero"`
	TopicTitle      string   `json:"topic_title"`
	SparkDirections string   `json:"spark_directions"`
	FutureEventSeed string   `json:"future_event_seed"`
	Outline         []string `json:"outline"`
}

func parseCurationResponse(content, modelName string) (*CurationResult, error) {
	cleaned := cleanJSONResponse(content)

	var parsed curationPayload
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w, content: %s", err, cleaned)
	}

	return &CurationResult{
		CuratedTitle:    parsed.CuratedTitle,
		CuratedDek:      parsed.CuratedDek,
		Draft:           parsed.DraftArticle,
		Confidence:      curation.ParseConfidence(parsed.Confidence),
		Hero:            parsed.Hero,
		TopicTitle:      parsed.TopicTitle,
		SparkDirections: parsed.SparkDirections,
		FutureEventSeed: parsed.FutureEventSeed,
		Outline:         parsed.Outline,
		ModelUsed:       modelName,
	}, nil
}
