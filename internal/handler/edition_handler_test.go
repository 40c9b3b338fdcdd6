package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/assert/v2"
	"github.com/msanchezgrice/futurenews-sub000/internal/curation"
	"github.com/msanchezgrice/futurenews-sub000/internal/model"
)

type fakeEditionStore struct {
	edition  *model.Edition
	stories  []model.Story
	cacheKey map[string]string
	payload  map[string]string
	puts     int
	err      error
}

func (f *fakeEditionStore) Get(day string, offset int) (*model.Edition, error) {
	return f.edition, f.err
}

func (f *fakeEditionStore) GetStories(day string, offset int) ([]model.Story, error) {
	return f.stories, f.err
}

func (f *fakeEditionStore) GetRenderCache(storyID, variant string) (string, string, error) {
	return f.cacheKey[storyID], f.payload[storyID], nil
}

func (f *fakeEditionStore) PutRenderCache(storyID, variant, cacheKey, payload string) error {
	if f.cacheKey == nil {
		f.cacheKey = map[string]string{}
		f.payload = map[string]string{}
	}
	f.cacheKey[storyID] = cacheKey
	f.payload[storyID] = payload
	f.puts++
	return nil
}

type fakeCurationStore struct {
	records map[string]model.Curation
	err     error
}

func (f *fakeCurationStore) GetByStoryIDs(ids []string) (map[string]model.Curation, error) {
	return f.records, f.err
}

type fakeBuilder struct {
	built string
	err   error
}

func (f *fakeBuilder) EnsureDayBuilt(ctx context.Context, day string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.built = day
	return day, nil
}

func newEditionRouter(editions EditionStore, curations CurationStore, builder DayBuilder) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewEditionHandler(editions, curations, builder)
	r.POST("/days/:day/build", h.BuildDay)
	r.GET("/editions/:day/:offset", h.GetEdition)
	r.GET("/editions/:day/:offset/candidates", h.GetCandidates)
	return r
}

func testEditionFixture() *fakeEditionStore {
	return &fakeEditionStore{
		edition: &model.Edition{
			Day:           "2026-08-31",
			Offset:        1,
			Version:       "abc123",
			Status:        model.EditionBuilt,
			GeneratedAt:   time.Date(2026, 8, 31, 6, 0, 0, 0, time.UTC),
			MarketSummary: "10-Year Treasury Yield at 4.38%",
		},
		stories: []model.Story{
			{
				ID: "2026-08-31-1-business-fed-rate-pause-what-changed", Day: "2026-08-31", Offset: 1,
				Section: model.SectionBusiness, Rank: 1, Angle: "what-changed",
				Headline: "Fed signals rate pause", Dek: "Seed dek", Body: "Seed body",
				Evidence: model.EvidencePack{TopicBrief: "- brief line", Horizon: model.HorizonNear, Citations: []string{"signal:1"}},
			},
			{
				ID: "2026-08-31-1-business-oil-supply-glut-why-it-matters", Day: "2026-08-31", Offset: 1,
				Section: model.SectionBusiness, Rank: 2, Angle: "why-it-matters",
				Headline: "Oil prices slide", Dek: "Seed dek", Body: "Seed body",
				Evidence: model.EvidencePack{TopicBrief: "- brief line", Horizon: model.HorizonNear, Citations: []string{"signal:2"}},
			},
		},
	}
}

func TestGetEdition_OverlaysCuration(t *testing.T) {
	store := testEditionFixture()
	curations := &fakeCurationStore{records: map[string]model.Curation{
		store.stories[0].ID: {
			StoryID:      store.stories[0].ID,
			CuratedTitle: "Curated headline",
			Confidence:   88,
			CuratedAt:    time.Date(2026, 8, 31, 8, 0, 0, 0, time.UTC),
		},
	}}

	r := newEditionRouter(store, curations, &fakeBuilder{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/editions/2026-08-31/1", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var res EditionResponse
	json.Unmarshal(w.Body.Bytes(), &res)
	assert.Equal(t, "2026-08-31", res.Day)
	assert.Equal(t, 1, res.Offset)
	assert.Equal(t, 2, len(res.Stories))
	assert.Equal(t, "Curated headline", res.Stories[0].Headline)
	assert.Equal(t, 88, res.Stories[0].Confidence)
	assert.Equal(t, "Oil prices slide", res.Stories[1].Headline)
	assert.Equal(t, 0, res.Stories[1].Confidence)
	assert.Equal(t, store.stories[0].ID, res.HeroStoryID)

	// Both renderings were cached on this first read.
	assert.Equal(t, 2, store.puts)
}

func TestGetEdition_ServesRenderCacheOnKeyMatch(t *testing.T) {
	store := testEditionFixture()
	store.stories = store.stories[:1]

	cached := StoryResponse{ID: store.stories[0].ID, Headline: "Cached headline"}
	encoded, _ := json.Marshal(cached)
	store.cacheKey = map[string]string{
		store.stories[0].ID: curation.CacheKey(store.stories[0].ID, time.Time{}),
	}
	store.payload = map[string]string{store.stories[0].ID: string(encoded)}

	r := newEditionRouter(store, &fakeCurationStore{}, &fakeBuilder{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/editions/2026-08-31/1", nil)
	r.ServeHTTP(w, req)

	var res EditionResponse
	json.Unmarshal(w.Body.Bytes(), &res)
	assert.Equal(t, "Cached headline", res.Stories[0].Headline)
	assert.Equal(t, 0, store.puts)
}

func TestGetEdition_RebuildsStaleRenderCache(t *testing.T) {
	store := testEditionFixture()
	store.stories = store.stories[:1]

	// Cached under the uncurated key; the curation record below changes the
	// key, so the stale payload must not be served.
	cached := StoryResponse{ID: store.stories[0].ID, Headline: "Stale headline"}
	encoded, _ := json.Marshal(cached)
	store.cacheKey = map[string]string{
		store.stories[0].ID: curation.CacheKey(store.stories[0].ID, time.Time{}),
	}
	store.payload = map[string]string{store.stories[0].ID: string(encoded)}

	curations := &fakeCurationStore{records: map[string]model.Curation{
		store.stories[0].ID: {
			StoryID:      store.stories[0].ID,
			CuratedTitle: "Fresh headline",
			CuratedAt:    time.Date(2026, 8, 31, 8, 0, 0, 0, time.UTC),
		},
	}}

	r := newEditionRouter(store, curations, &fakeBuilder{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/editions/2026-08-31/1", nil)
	r.ServeHTTP(w, req)

	var res EditionResponse
	json.Unmarshal(w.Body.Bytes(), &res)
	assert.Equal(t, "Fresh headline", res.Stories[0].Headline)
	assert.Equal(t, 1, store.puts)
}

func TestGetEdition_NotFound(t *testing.T) {
	r := newEditionRouter(&fakeEditionStore{}, &fakeCurationStore{}, &fakeBuilder{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/editions/2026-08-31/1", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetEdition_InvalidParams(t *testing.T) {
	r := newEditionRouter(&fakeEditionStore{}, &fakeCurationStore{}, &fakeBuilder{})

	for _, path := range []string{
		"/editions/not-a-day/1",
		"/editions/2026-08-31/abc",
		"/editions/2026-08-31/-1",
	} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", path, nil)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}
}

func TestGetEdition_DBError(t *testing.T) {
	store := &fakeEditionStore{err: errors.New("DB down")}
	r := newEditionRouter(store, &fakeCurationStore{}, &fakeBuilder{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/editions/2026-08-31/1", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestGetCandidates_ReturnsStubs(t *testing.T) {
	store := testEditionFixture()
	r := newEditionRouter(store, &fakeCurationStore{}, &fakeBuilder{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/editions/2026-08-31/1/candidates", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var res []CandidateResponse
	json.Unmarshal(w.Body.Bytes(), &res)
	assert.Equal(t, 2, len(res))
	assert.Equal(t, "Fed signals rate pause", res[0].Headline)
	assert.Equal(t, "- brief line", res[0].TopicBrief)
	assert.Equal(t, model.HorizonNear, res[0].Horizon)
}

func TestBuildDay_TriggersRefresh(t *testing.T) {
	builder := &fakeBuilder{}
	r := newEditionRouter(&fakeEditionStore{}, &fakeCurationStore{}, builder)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/days/2026-08-31/build", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2026-08-31", builder.built)

	var res BuildDayResponse
	json.Unmarshal(w.Body.Bytes(), &res)
	assert.Equal(t, "2026-08-31", res.Day)
}

func TestBuildDay_InvalidDay(t *testing.T) {
	builder := &fakeBuilder{err: errors.New("invalid day")}
	r := newEditionRouter(&fakeEditionStore{}, &fakeCurationStore{}, builder)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/days/not-a-day/build", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBuildDay_BuildError(t *testing.T) {
	builder := &fakeBuilder{err: errors.New("fetch failed")}
	r := newEditionRouter(&fakeEditionStore{}, &fakeCurationStore{}, builder)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/days/2026-08-31/build", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
