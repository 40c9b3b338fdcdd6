package pipeline

import (
	"strings"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
	"github.com/msanchezgrice/futurenews-sub000/internal/model"
)

func testExtractor(sources []model.Source, now time.Time) *Extractor {
	e := NewExtractor(sources)
	e.now = func() time.Time { return now }
	return e
}

func TestRecencyBoost_Bounds(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	e := testExtractor(nil, now)

	assert.Equal(t, 1.0, e.recencyBoost(now))
	assert.Equal(t, 0.2, e.recencyBoost(now.Add(-1000*time.Hour)))
	assert.Equal(t, 0.5, e.recencyBoost(time.Time{}))

	// Future timestamps clamp to 1.0 rather than boosting past it.
	assert.Equal(t, 1.0, e.recencyBoost(now.Add(3*time.Hour)))

	for _, age := range []time.Duration{time.Hour, 18 * time.Hour, 72 * time.Hour, 500 * time.Hour} {
		boost := e.recencyBoost(now.Add(-age))
		if boost < 0.2 || boost > 1.0 {
			t.Errorf("recencyBoost out of bounds for age %v: %f", age, boost)
		}
	}
}

func TestExtract_ScoresAndClassification(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	sources := []model.Source{
		{ID: "finnhub", Name: "Finnhub", Kind: model.KindFeed},
		{ID: "arxiv", Name: "arXiv", Kind: model.KindFeed, Section: model.SectionScience},
	}
	e := testExtractor(sources, now)

	items := []model.RawItem{
		{ID: 1, SourceID: "finnhub", Title: "Chipmaker expands semiconductor fab capacity as cloud demand grows", Summary: "Data center buildout accelerates.", PublishedAt: now.Add(-2 * time.Hour)},
		{ID: 2, SourceID: "finnhub", Title: "Quiet day expected", Summary: ""},
		{ID: 3, SourceID: "arxiv", Title: "A new method for time-series forecasting", Summary: "We propose a model.", PublishedAt: now.Add(-30 * time.Hour)},
	}

	signals := e.Extract("2026-08-31", items, nil)
	assert.Equal(t, 3, len(signals))

	for _, s := range signals {
		if s.Score < 0 {
			t.Errorf("negative score for %q: %f", s.Title, s.Score)
		}
		assert.Equal(t, "2026-08-31", s.Day)
	}

	// Keyword-table argmax puts the chip story in technology.
	assert.Equal(t, model.SectionTechnology, signals[0].Section)
	assert.Equal(t, model.SignalNews, signals[0].Type)
	assert.Equal(t, model.HorizonNear, signals[0].Horizon)

	// No keyword matches falls back to the default section.
	assert.Equal(t, model.SectionBusiness, signals[1].Section)

	// The arXiv source carries a fixed section hint and a type override.
	assert.Equal(t, model.SectionScience, signals[2].Section)
	assert.Equal(t, model.SignalResearch, signals[2].Type)
	assert.Equal(t, model.HorizonLong, signals[2].Horizon)
}

func TestExtract_KeywordAndEntityCaps(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	e := testExtractor([]model.Source{{ID: "s", Kind: model.KindFeed}}, now)

	items := []model.RawItem{{
		ID:       1,
		SourceID: "s",
		Title:    "Nvidia and the Federal Reserve dominate an unusual week",
		Summary: "alpha bravo charlie delta echo foxtrot golf hotel india juliet kilo lima mike november " +
			"Oscar Peterson Quartet visits Rocket Lab and Crescent City Bank offices",
	}}

	sig := e.Extract("2026-08-31", items, nil)[0]

	if len(sig.Keywords) > maxKeywords {
		t.Errorf("keyword cap exceeded: %d", len(sig.Keywords))
	}
	if len(sig.Entities) > maxEntities {
		t.Errorf("entity cap exceeded: %d", len(sig.Entities))
	}

	found := func(list []string, want string) bool {
		for _, v := range list {
			if v == want {
				return true
			}
		}
		return false
	}
	assert.Equal(t, true, found(sig.Entities, "Nvidia"))
	assert.Equal(t, true, found(sig.Entities, "Federal Reserve"))
}

func TestExtract_SpreadSynthesis(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	e := testExtractor(nil, now)

	existing := []model.Signal{
		{Day: "2026-08-31", Type: model.SignalMarket, Title: "10-Year Treasury Yield at 4.38%", Summary: "Average Treasury Notes rate of 4.38% recorded on 2026-08-28.", Score: 1.1, Citations: []string{"US Treasury"}},
		{Day: "2026-08-31", Type: model.SignalMarket, Title: "2-Year Treasury Yield at 4.91%", Summary: "Average Treasury Bills rate of 4.91% recorded on 2026-08-28.", Score: 1.0, Citations: []string{"US Treasury"}},
	}

	signals := e.Extract("2026-08-31", nil, existing)
	assert.Equal(t, 1, len(signals))

	spread := signals[0]
	assert.Equal(t, model.SignalEcon, spread.Type)
	assert.Equal(t, model.SectionMarkets, spread.Section)
	assert.Equal(t, model.HorizonMid, spread.Horizon)
	assert.Equal(t, 1.1, spread.Score)
	if !strings.Contains(spread.Title, "-0.53pp") {
		t.Errorf("expected computed spread in title, got %q", spread.Title)
	}

	// Once the spread signal exists for the day, re-running extraction does
	// not synthesize a second one.
	again := e.Extract("2026-08-31", nil, append(existing, spread))
	assert.Equal(t, 0, len(again))
}

func TestExtract_SpreadRequiresBothTenors(t *testing.T) {
	e := testExtractor(nil, time.Now())
	existing := []model.Signal{
		{Day: "2026-08-31", Type: model.SignalMarket, Title: "10-Year Treasury Yield at 4.38%", Summary: "4.38"},
	}
	assert.Equal(t, 0, len(e.Extract("2026-08-31", nil, existing)))
}

func TestFingerprint_Stable(t *testing.T) {
	a := Fingerprint("Chip Export Controls", "https://example.com/a", "2026-08-31")
	b := Fingerprint("chip export controls", "https://example.com/a", "2026-08-31")
	c := Fingerprint("chip export controls", "https://example.com/a", "2026-09-01")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}
