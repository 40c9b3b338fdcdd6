package repository

import (
	"database/sql"
	"encoding/json"

	"github.com/msanchezgrice/futurenews-sub000/internal/model"
)

type TopicRepository struct {
	db *sql.DB
}

func NewTopicRepository(db *sql.DB) *TopicRepository {
	return &TopicRepository{db: db}
}

// ReplaceDay swaps the day's topics in one transaction, so a failed rebuild
// never leaves a day half-populated.
func (r *TopicRepository) ReplaceDay(day string, topics []model.Topic) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`DELETE FROM topic WHERE day = $1`, day)
	if err != nil {
		return err
	}

	for i := range topics {
		t := &topics[i]
		keywords, err := json.Marshal(stringList(t.Keywords))
		if err != nil {
			return err
		}
		signalIDs, err := json.Marshal(int64List(t.SignalIDs))
		if err != nil {
			return err
		}
		err = tx.QueryRow(`
			INSERT INTO topic(day, section, slug, label, brief, horizon, score, keywords, signal_ids)
			VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id
		`, t.Day, t.Section, t.Slug, t.Label, t.Brief, t.Horizon, t.Score, keywords, signalIDs).Scan(&t.ID)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *TopicRepository) ListByDay(day string) ([]model.Topic, error) {
	rows, err := r.db.Query(`
		SELECT id, day, section, slug, label, brief, horizon, score, keywords, signal_ids
		FROM topic
		WHERE day = $1
		ORDER BY score DESC, slug ASC
	`, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var topics []model.Topic
	for rows.Next() {
		var t model.Topic
		var keywords, signalIDs []byte
		err := rows.Scan(&t.ID, &t.Day, &t.Section, &t.Slug, &t.Label, &t.Brief, &t.Horizon, &t.Score, &keywords, &signalIDs)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(keywords, &t.Keywords); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(signalIDs, &t.SignalIDs); err != nil {
			return nil, err
		}
		topics = append(topics, t)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return topics, nil
}

func (r *TopicRepository) ListEnabledStanding() ([]model.StandingTopic, error) {
	rows, err := r.db.Query(`
		SELECT id, key, section, category, title, description, axes, keywords, milestones, enabled
		FROM standing_topic
		WHERE enabled = TRUE
		ORDER BY key
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var topics []model.StandingTopic
	for rows.Next() {
		var t model.StandingTopic
		var axes, keywords, milestones []byte
		err := rows.Scan(&t.ID, &t.Key, &t.Section, &t.Category, &t.Title, &t.Description, &axes, &keywords, &milestones, &t.Enabled)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(axes, &t.Axes); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(keywords, &t.Keywords); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(milestones, &t.Milestones); err != nil {
			return nil, err
		}
		topics = append(topics, t)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return topics, nil
}

// UpsertEvidence records a standing-topic/signal link, idempotent per
// (topic key, signal id, day).
func (r *TopicRepository) UpsertEvidence(ev *model.TopicEvidence) error {
	matched, err := json.Marshal(stringList(ev.MatchedKeywords))
	if err != nil {
		return err
	}
	_, err = r.db.Exec(`
		INSERT INTO topic_evidence(topic_key, signal_id, day, relevance, matched_keywords)
		VALUES($1, $2, $3, $4, $5)
		ON CONFLICT (topic_key, signal_id, day) DO UPDATE
		SET relevance = EXCLUDED.relevance, matched_keywords = EXCLUDED.matched_keywords
	`, ev.TopicKey, ev.SignalID, ev.Day, ev.Relevance, matched)
	return err
}

// EvidenceCountByDay returns the number of evidence links per standing-topic
// key for the day.
func (r *TopicRepository) EvidenceCountByDay(day string) (map[string]int, error) {
	rows, err := r.db.Query(`
		SELECT topic_key, COUNT(*) FROM topic_evidence WHERE day = $1 GROUP BY topic_key
	`, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return nil, err
		}
		counts[key] = count
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return counts, nil
}

func int64List(s []int64) []int64 {
	if s == nil {
		return []int64{}
	}
	return s
}
