package repository

import (
	"database/sql"
	"encoding/json"

	"github.com/lib/pq"
	"github.com/msanchezgrice/futurenews-sub000/internal/model"
)

type CurationRepository struct {
	db *sql.DB
}

func NewCurationRepository(db *sql.DB) *CurationRepository {
	return &CurationRepository{db: db}
}

func (r *CurationRepository) Save(c *model.Curation) error {
	draft, err := json.Marshal(c.Draft)
	if err != nil {
		return err
	}
	outline, err := json.Marshal(stringList(c.Outline))
	if err != nil {
		return err
	}

	_, err = r.db.Exec(`
		INSERT INTO curation(story_id, curated_title, curated_dek, draft, confidence, hero, topic_title, spark_directions, future_event_seed, outline, model_used, curated_at)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
		ON CONFLICT (story_id) DO UPDATE
		SET curated_title = EXCLUDED.curated_title, curated_dek = EXCLUDED.curated_dek,
			draft = EXCLUDED.draft, confidence = EXCLUDED.confidence, hero = EXCLUDED.hero,
			topic_title = EXCLUDED.topic_title, spark_directions = EXCLUDED.spark_directions,
			future_event_seed = EXCLUDED.future_event_seed, outline = EXCLUDED.outline,
			model_used = EXCLUDED.model_used, curated_at = NOW()
	`, c.StoryID, c.CuratedTitle, c.CuratedDek, draft, c.Confidence, c.Hero, c.TopicTitle,
		c.SparkDirections, c.FutureEventSeed, outline, c.ModelUsed)
	return err
}

// GetByStoryIDs returns curation records keyed by story id; ids without a
// record are simply absent from the map.
func (r *CurationRepository) GetByStoryIDs(ids []string) (map[string]model.Curation, error) {
	if len(ids) == 0 {
		return map[string]model.Curation{}, nil
	}

	rows, err := r.db.Query(`
		SELECT story_id, curated_title, curated_dek, draft, confidence, hero, topic_title, spark_directions, future_event_seed, outline, model_used, curated_at
		FROM curation
		WHERE story_id = ANY($1)
	`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]model.Curation)
	for rows.Next() {
		var c model.Curation
		var draft, outline []byte
		err := rows.Scan(&c.StoryID, &c.CuratedTitle, &c.CuratedDek, &draft, &c.Confidence, &c.Hero,
			&c.TopicTitle, &c.SparkDirections, &c.FutureEventSeed, &outline, &c.ModelUsed, &c.CuratedAt)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(draft, &c.Draft); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(outline, &c.Outline); err != nil {
			return nil, err
		}
		result[c.StoryID] = c
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *CurationRepository) GetErrorCount(storyID string) (int, error) {
	var count int
	err := r.db.QueryRow(`
		SELECT COUNT(*) FROM processing_error WHERE story_id = $1
	`, storyID).Scan(&count)
	return count, err
}

func (r *CurationRepository) SaveError(storyID string, errMsg string, errType string) error {
	_, err := r.db.Exec(`
		INSERT INTO processing_error(story_id, error_message, error_type)
		VALUES($1, $2, $3)
	`, storyID, errMsg, errType)
	return err
}
