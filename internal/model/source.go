package model

import "time"

const (
	KindFeed   = "feed"
	KindMarket = "market"
	KindSeries = "series"
)

// Source is a registered feed/market/series descriptor. Loaded from the
// default registry at startup and upserted idempotently; fetch attempts
// mutate only the health fields.
type Source struct {
	ID            string
	Name          string
	Kind          string
	Section       string // optional fixed section hint, empty means classify
	Enabled       bool
	FetchInterval time.Duration
	LastFetchedAt time.Time
	LastError     string
	LastItemCount int
}

// RawItem is one fetched record, deduplicated per day by fingerprint.
// Immutable after insert.
type RawItem struct {
	ID          int64
	SourceID    string
	Day         string // YYYY-MM-DD, UTC
	FetchedAt   time.Time
	PublishedAt time.Time
	URL         string
	Title       string
	Summary     string
	Payload     string // optional source-specific JSON
	Fingerprint string
}
