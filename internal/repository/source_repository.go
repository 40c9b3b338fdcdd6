package repository

import (
	"database/sql"
	"time"

	"github.com/msanchezgrice/futurenews-sub000/internal/model"
)

type SourceRepository struct {
	db *sql.DB
}

func NewSourceRepository(db *sql.DB) *SourceRepository {
	return &SourceRepository{db: db}
}

// Upsert registers a source, updating descriptor fields but never touching
// the health columns, so re-seeding at startup is idempotent.
func (r *SourceRepository) Upsert(s *model.Source) error {
	_, err := r.db.Exec(`
		INSERT INTO source(id, name, kind, section, enabled, fetch_interval_mins)
		VALUES($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, kind = EXCLUDED.kind, section = EXCLUDED.section,
			enabled = EXCLUDED.enabled, fetch_interval_mins = EXCLUDED.fetch_interval_mins
	`, s.ID, s.Name, s.Kind, s.Section, s.Enabled, int(s.FetchInterval.Minutes()))
	return err
}

func (r *SourceRepository) ListEnabled() ([]model.Source, error) {
	return r.list(`
		SELECT id, name, kind, section, enabled, fetch_interval_mins, last_fetched_at, last_error, last_item_count
		FROM source
		WHERE enabled = TRUE
		ORDER BY id
	`)
}

func (r *SourceRepository) ListAll() ([]model.Source, error) {
	return r.list(`
		SELECT id, name, kind, section, enabled, fetch_interval_mins, last_fetched_at, last_error, last_item_count
		FROM source
		ORDER BY id
	`)
}

func (r *SourceRepository) list(query string) ([]model.Source, error) {
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sources []model.Source
	for rows.Next() {
		var s model.Source
		var intervalMins int
		var lastFetched sql.NullTime
		err := rows.Scan(&s.ID, &s.Name, &s.Kind, &s.Section, &s.Enabled, &intervalMins, &lastFetched, &s.LastError, &s.LastItemCount)
		if err != nil {
			return nil, err
		}
		s.FetchInterval = time.Duration(intervalMins) * time.Minute
		if lastFetched.Valid {
			s.LastFetchedAt = lastFetched.Time
		}
		sources = append(sources, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sources, nil
}

// RecordFetch writes the outcome of one fetch attempt to the source's health
// fields. fetchErr is empty on success.
func (r *SourceRepository) RecordFetch(id string, itemCount int, fetchErr string) error {
	_, err := r.db.Exec(`
		UPDATE source SET last_fetched_at = NOW(), last_error = $1, last_item_count = $2 WHERE id = $3
	`, fetchErr, itemCount, id)
	return err
}
