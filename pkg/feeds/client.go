package feeds

import (
	"context"
	"os"
	"time"
)

// Item is one raw record from a feed, market or series source.
type Item struct {
	Title       string
	Summary     string
	Link        string
	PublishedAt time.Time
	Payload     string // optional source-specific JSON
}

type Client interface {
	Fetch(ctx context.Context, limit int) ([]Item, error)
	Name() string
}

// Descriptor declares a source for the registry.
type Descriptor struct {
	ID            string
	Name          string
	Kind          string // feed | market | series
	Section       string // optional fixed section
	FetchInterval time.Duration
}

// Defaults is the built-in source registry. Sources without a configured API
// key are still registered; they simply have no client and are skipped at
// fetch time.
func Defaults() []Descriptor {
	return []Descriptor{
		{ID: "finnhub", Name: "Finnhub", Kind: "feed", FetchInterval: 30 * time.Minute},
		{ID: "alphavantage", Name: "Alpha Vantage", Kind: "feed", FetchInterval: 60 * time.Minute},
		{ID: "arxiv", Name: "arXiv", Kind: "feed", Section: "science", FetchInterval: 12 * time.Hour},
		{ID: "treasury", Name: "US Treasury", Kind: "series", Section: "markets", FetchInterval: 12 * time.Hour},
	}
}

// BuildClients wires a client per source id from the configured API keys.
func BuildClients() map[string]Client {
	clients := make(map[string]Client)
	if key := os.Getenv("FINNHUB_API_KEY"); key != "" {
		clients["finnhub"] = NewFinnhubClient(key)
	}
	if key := os.Getenv("ALPHA_VANTAGE_API_KEY"); key != "" {
		clients["alphavantage"] = NewAlphaVantageClient(key)
	}
	clients["arxiv"] = NewArxivClient()
	clients["treasury"] = NewTreasuryClient()
	return clients
}
