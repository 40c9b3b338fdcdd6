package feeds

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

type AlphaVantageClient struct {
	apiKey     string
	httpClient *http.Client
}

func NewAlphaVantageClient(apiKey string) *AlphaVantageClient {
	return &AlphaVantageClient{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *AlphaVantageClient) Name() string {
	return "Alpha Vantage"
}

func (c *AlphaVantageClient) Fetch(ctx context.Context, limit int) ([]Item, error) {
	url := fmt.Sprintf(
		"https://www.alphavantage.co/query?function=NEWS_SENTIMENT&limit=%d&sort=LATEST&apikey=%s",
		limit, c.apiKey,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("alphavantage fetch: %w", err)
	}
	defer resp.Body.Close()

	var raw avResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("alphavantage decode: %w", err)
	}

	items := make([]Item, 0, len(raw.Feed))
	for _, entry := range raw.Feed {
		publishedAt, err := time.Parse("20060102T150405", entry.TimePublished)
		if err != nil {
			publishedAt = time.Time{}
		}

		items = append(items, Item{
			Title:       entry.Title,
			Summary:     entry.Summary,
			Link:        entry.URL,
			PublishedAt: publishedAt,
		})
	}

	return items, nil
}

type avResponse struct {
	Feed []avFeedItem `json:"feed"`
}

type avFeedItem struct {
	Title         string `json:"title"`
	Summary       string `json:"summary"`
	URL           string `json:"url"`
	Source        string `json:"source"`
	TimePublished string `json:"time_published"`
}
