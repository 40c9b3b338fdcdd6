package repository

import (
	"database/sql"
	"time"

	"github.com/msanchezgrice/futurenews-sub000/internal/model"
)

type ItemRepository struct {
	db *sql.DB
}

func NewItemRepository(db *sql.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// Save inserts a raw item, returning false when an item with the same
// fingerprint already exists for the day.
func (r *ItemRepository) Save(item *model.RawItem) (bool, error) {
	var id int64
	err := r.db.QueryRow(`
		INSERT INTO raw_item(source_id, day, published_at, url, title, summary, payload, fingerprint)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (fingerprint) DO NOTHING
		RETURNING id
	`, item.SourceID, item.Day, nullableTime(item.PublishedAt), item.URL, item.Title, item.Summary, item.Payload, item.Fingerprint).Scan(&id)

	if err == sql.ErrNoRows {
		return false, nil
	}

	if err != nil {
		return false, err
	}

	item.ID = id
	return true, nil
}

// ListUnsignaled returns the day's raw items that have no signal yet, so
// re-running extraction is a no-op for already-processed items.
func (r *ItemRepository) ListUnsignaled(day string) ([]model.RawItem, error) {
	rows, err := r.db.Query(`
		SELECT i.id, i.source_id, i.day, i.fetched_at, i.published_at, i.url, i.title, i.summary, i.payload, i.fingerprint
		FROM raw_item i
		LEFT JOIN signal s ON s.raw_item_id = i.id
		WHERE i.day = $1 AND s.id IS NULL
		ORDER BY i.id ASC
	`, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []model.RawItem
	for rows.Next() {
		var item model.RawItem
		var published sql.NullTime
		err := rows.Scan(&item.ID, &item.SourceID, &item.Day, &item.FetchedAt, &published, &item.URL, &item.Title, &item.Summary, &item.Payload, &item.Fingerprint)
		if err != nil {
			return nil, err
		}
		if published.Valid {
			item.PublishedAt = published.Time
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

func (r *ItemRepository) CountByDay(day string) (int, error) {
	var total int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM raw_item WHERE day = $1`, day).Scan(&total)
	return total, err
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
