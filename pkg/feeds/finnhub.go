package feeds

import (
	"context"
	"time"

	finnhub "github.com/Finnhub-Stock-API/finnhub-go/v2"
)

type FinnhubClient struct {
	client *finnhub.DefaultApiService
}

func NewFinnhubClient(apiKey string) *FinnhubClient {
	cfg := finnhub.NewConfiguration()
	cfg.AddDefaultHeader("X-Finnhub-Token", apiKey)
	client := finnhub.NewAPIClient(cfg).DefaultApi
	return &FinnhubClient{client: client}
}

func (c *FinnhubClient) Fetch(ctx context.Context, limit int) ([]Item, error) {
	res, _, err := c.client.MarketNews(ctx).Category("general").Execute()
	if err != nil {
		return nil, err
	}

	var items []Item
	for _, news := range res {
		if len(items) >= limit {
			break
		}

		var item Item
		if news.Headline != nil {
			item.Title = *news.Headline
		}
		if news.Summary != nil {
			item.Summary = *news.Summary
		}
		if news.Url != nil {
			item.Link = *news.Url
		}
		if news.Datetime != nil {
			item.PublishedAt = time.Unix(*news.Datetime, 0)
		}

		if item.Title == "" || item.Link == "" {
			continue
		}
		items = append(items, item)
	}

	return items, nil
}

func (c *FinnhubClient) Name() string {
	return "Finnhub"
}
