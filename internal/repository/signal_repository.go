package repository

import (
	"database/sql"
	"encoding/json"

	"github.com/msanchezgrice/futurenews-sub000/internal/model"
)

type SignalRepository struct {
	db *sql.DB
}

func NewSignalRepository(db *sql.DB) *SignalRepository {
	return &SignalRepository{db: db}
}

func (r *SignalRepository) Save(sig *model.Signal) error {
	entities, err := json.Marshal(stringList(sig.Entities))
	if err != nil {
		return err
	}
	keywords, err := json.Marshal(stringList(sig.Keywords))
	if err != nil {
		return err
	}
	citations, err := json.Marshal(stringList(sig.Citations))
	if err != nil {
		return err
	}

	return r.db.QueryRow(`
		INSERT INTO signal(raw_item_id, day, section, type, title, summary, published_at, horizon, score, entities, keywords, citations)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`, sig.RawItemID, sig.Day, sig.Section, sig.Type, sig.Title, sig.Summary, nullableTime(sig.PublishedAt),
		sig.Horizon, sig.Score, entities, keywords, citations).Scan(&sig.ID)
}

func (r *SignalRepository) ListByDay(day string) ([]model.Signal, error) {
	rows, err := r.db.Query(`
		SELECT id, raw_item_id, day, section, type, title, summary, published_at, horizon, score, entities, keywords, citations
		FROM signal
		WHERE day = $1
		ORDER BY score DESC, id ASC
	`, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var signals []model.Signal
	for rows.Next() {
		var s model.Signal
		var published sql.NullTime
		var entities, keywords, citations []byte
		err := rows.Scan(&s.ID, &s.RawItemID, &s.Day, &s.Section, &s.Type, &s.Title, &s.Summary, &published,
			&s.Horizon, &s.Score, &entities, &keywords, &citations)
		if err != nil {
			return nil, err
		}
		if published.Valid {
			s.PublishedAt = published.Time
		}
		if err := json.Unmarshal(entities, &s.Entities); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(keywords, &s.Keywords); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(citations, &s.Citations); err != nil {
			return nil, err
		}
		signals = append(signals, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return signals, nil
}

func (r *SignalRepository) CountByDay(day string) (int, error) {
	var total int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM signal WHERE day = $1`, day).Scan(&total)
	return total, err
}

// stringList keeps JSON columns as [] instead of null for nil slices.
func stringList(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
