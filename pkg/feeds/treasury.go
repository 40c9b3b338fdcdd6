package feeds

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"
)

// TreasuryClient reads the latest daily yield-curve rates from the US
// Treasury fiscal data API and emits one item per tracked tenor. The 10-year
// and 2-year readings downstream feed the synthesized 2s10s spread signal.
type TreasuryClient struct {
	httpClient *http.Client
}

func NewTreasuryClient() *TreasuryClient {
	return &TreasuryClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *TreasuryClient) Name() string {
	return "US Treasury"
}

func (c *TreasuryClient) Fetch(ctx context.Context, limit int) ([]Item, error) {
	url := "https://api.fiscaldata.treasury.gov/services/api/fiscal_service/v2/accounting/od/avg_interest_rates?sort=-record_date&page[size]=10"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("treasury fetch: %w", err)
	}
	defer resp.Body.Close()

	var raw treasuryResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("treasury decode: %w", err)
	}

	// The API returns one row per security description; map the tenors we
	// track onto stable item titles so signal extraction can find them.
	latest := make(map[string]treasuryRow)
	for _, row := range raw.Data {
		key := row.SecurityDesc
		if _, ok := latest[key]; !ok {
			latest[key] = row
		}
	}

	descs := make([]string, 0, len(latest))
	for desc := range latest {
		descs = append(descs, desc)
	}
	sort.Strings(descs)

	var items []Item
	for _, desc := range descs {
		row := latest[desc]
		label, ok := tenorLabel(desc)
		if !ok {
			continue
		}
		if len(items) >= limit {
			break
		}

		publishedAt, err := time.Parse("2006-01-02", row.RecordDate)
		if err != nil {
			publishedAt = time.Time{}
		}

		payload, _ := json.Marshal(map[string]string{"security": desc, "rate": row.AvgRate})

		items = append(items, Item{
			Title:       fmt.Sprintf("%s at %s%%", label, row.AvgRate),
			Summary:     fmt.Sprintf("Average %s rate of %s%% recorded on %s.", desc, row.AvgRate, row.RecordDate),
			Link:        "https://fiscaldata.treasury.gov/datasets/average-interest-rates-treasury-securities/" + row.RecordDate + "/" + label,
			PublishedAt: publishedAt,
			Payload:     string(payload),
		})
	}

	return items, nil
}

type treasuryResponse struct {
	Data []treasuryRow `json:"data"`
}

type treasuryRow struct {
	RecordDate   string `json:"record_date"`
	SecurityDesc string `json:"security_desc"`
	AvgRate      string `json:"avg_interest_rate_amt"`
}

func tenorLabel(securityDesc string) (string, bool) {
	switch securityDesc {
	case "Treasury Notes":
		return "10-Year Treasury Yield", true
	case "Treasury Bills":
		return "2-Year Treasury Yield", true
	case "Treasury Bonds":
		return "30-Year Treasury Yield", true
	}
	return "", false
}
