package repository

import (
	"database/sql"
	"encoding/json"

	"github.com/msanchezgrice/futurenews-sub000/internal/model"
)

type EditionRepository struct {
	db *sql.DB
}

func NewEditionRepository(db *sql.DB) *EditionRepository {
	return &EditionRepository{db: db}
}

// Replace writes an edition and its stories in one transaction: the edition
// row is upserted in the building state, prior stories for the (day, offset)
// are deleted, new stories inserted, and the edition marked built. A failure
// rolls the whole day/offset back to its previous committed state.
func (r *EditionRepository) Replace(ed *model.Edition, stories []model.Story) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = tx.QueryRow(`
		INSERT INTO edition(day, offset_days, version, status, generated_at, market_summary, econ_summary)
		VALUES($1, $2, $3, $4, NOW(), $5, $6)
		ON CONFLICT (day, offset_days) DO UPDATE
		SET version = EXCLUDED.version, status = $4, generated_at = NOW(),
			market_summary = EXCLUDED.market_summary, econ_summary = EXCLUDED.econ_summary
		RETURNING id
	`, ed.Day, ed.Offset, ed.Version, model.EditionBuilding, ed.MarketSummary, ed.EconSummary).Scan(&ed.ID)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`DELETE FROM story WHERE day = $1 AND offset_days = $2`, ed.Day, ed.Offset)
	if err != nil {
		return err
	}

	for _, s := range stories {
		evidence, err := json.Marshal(s.Evidence)
		if err != nil {
			return err
		}
		_, err = tx.Exec(`
			INSERT INTO story(id, day, offset_days, section, rank, angle, topic_slug, headline, dek, body, evidence)
			VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		`, s.ID, s.Day, s.Offset, s.Section, s.Rank, s.Angle, s.TopicSlug, s.Headline, s.Dek, s.Body, evidence)
		if err != nil {
			return err
		}
	}

	_, err = tx.Exec(`
		UPDATE edition SET status = $1 WHERE day = $2 AND offset_days = $3
	`, model.EditionBuilt, ed.Day, ed.Offset)
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	ed.Status = model.EditionBuilt
	return nil
}

func (r *EditionRepository) Get(day string, offset int) (*model.Edition, error) {
	var ed model.Edition
	err := r.db.QueryRow(`
		SELECT id, day, offset_days, version, status, generated_at, market_summary, econ_summary
		FROM edition
		WHERE day = $1 AND offset_days = $2
	`, day, offset).Scan(&ed.ID, &ed.Day, &ed.Offset, &ed.Version, &ed.Status, &ed.GeneratedAt, &ed.MarketSummary, &ed.EconSummary)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return &ed, nil
}

func (r *EditionRepository) GetStories(day string, offset int) ([]model.Story, error) {
	rows, err := r.db.Query(`
		SELECT id, day, offset_days, section, rank, angle, topic_slug, headline, dek, body, evidence
		FROM story
		WHERE day = $1 AND offset_days = $2
		ORDER BY section ASC, rank ASC
	`, day, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stories []model.Story
	for rows.Next() {
		var s model.Story
		var evidence []byte
		err := rows.Scan(&s.ID, &s.Day, &s.Offset, &s.Section, &s.Rank, &s.Angle, &s.TopicSlug, &s.Headline, &s.Dek, &s.Body, &evidence)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(evidence, &s.Evidence); err != nil {
			return nil, err
		}
		stories = append(stories, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stories, nil
}

func (r *EditionRepository) GetStory(id string) (*model.Story, error) {
	var s model.Story
	var evidence []byte
	err := r.db.QueryRow(`
		SELECT id, day, offset_days, section, rank, angle, topic_slug, headline, dek, body, evidence
		FROM story
		WHERE id = $1
	`, id).Scan(&s.ID, &s.Day, &s.Offset, &s.Section, &s.Rank, &s.Angle, &s.TopicSlug, &s.Headline, &s.Dek, &s.Body, &evidence)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(evidence, &s.Evidence); err != nil {
		return nil, err
	}

	return &s, nil
}

func (r *EditionRepository) ListByDay(day string) ([]model.Edition, error) {
	rows, err := r.db.Query(`
		SELECT id, day, offset_days, version, status, generated_at, market_summary, econ_summary
		FROM edition
		WHERE day = $1
		ORDER BY offset_days ASC
	`, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var editions []model.Edition
	for rows.Next() {
		var ed model.Edition
		err := rows.Scan(&ed.ID, &ed.Day, &ed.Offset, &ed.Version, &ed.Status, &ed.GeneratedAt, &ed.MarketSummary, &ed.EconSummary)
		if err != nil {
			return nil, err
		}
		editions = append(editions, ed)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return editions, nil
}

// GetRenderCache returns the stored cache key and payload for a story
// variant; empty strings when absent.
func (r *EditionRepository) GetRenderCache(storyID, variant string) (string, string, error) {
	var cacheKey, payload string
	err := r.db.QueryRow(`
		SELECT cache_key, payload FROM render_cache WHERE story_id = $1 AND content_variant = $2
	`, storyID, variant).Scan(&cacheKey, &payload)

	if err == sql.ErrNoRows {
		return "", "", nil
	}

	if err != nil {
		return "", "", err
	}

	return cacheKey, payload, nil
}

func (r *EditionRepository) PutRenderCache(storyID, variant, cacheKey, payload string) error {
	_, err := r.db.Exec(`
		INSERT INTO render_cache(story_id, content_variant, cache_key, payload, updated_at)
		VALUES($1, $2, $3, $4, NOW())
		ON CONFLICT (story_id, content_variant) DO UPDATE
		SET cache_key = EXCLUDED.cache_key, payload = EXCLUDED.payload, updated_at = NOW()
	`, storyID, variant, cacheKey, payload)
	return err
}
