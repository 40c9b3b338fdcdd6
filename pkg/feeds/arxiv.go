package feeds

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ArxivClient pulls recent AI/quantitative-finance abstracts from the arXiv
// Atom API. No API key required.
type ArxivClient struct {
	httpClient *http.Client
}

func NewArxivClient() *ArxivClient {
	return &ArxivClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *ArxivClient) Name() string {
	return "arXiv"
}

func (c *ArxivClient) Fetch(ctx context.Context, limit int) ([]Item, error) {
	url := fmt.Sprintf(
		"http://export.arxiv.org/api/query?search_query=cat:cs.AI+OR+cat:q-fin.GN&sortBy=submittedDate&sortOrder=descending&max_results=%d",
		limit,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("arxiv fetch: %w", err)
	}
	defer resp.Body.Close()

	var feed arxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("arxiv decode: %w", err)
	}

	items := make([]Item, 0, len(feed.Entries))
	for _, entry := range feed.Entries {
		publishedAt, err := time.Parse(time.RFC3339, entry.Published)
		if err != nil {
			publishedAt = time.Time{}
		}

		items = append(items, Item{
			Title:       strings.Join(strings.Fields(entry.Title), " "),
			Summary:     strings.Join(strings.Fields(entry.Summary), " "),
			Link:        entry.ID,
			PublishedAt: publishedAt,
		})
	}

	return items, nil
}

type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID        string `xml:"id"`
	Title     string `xml:"title"`
	Summary   string `xml:"summary"`
	Published string `xml:"published"`
}
