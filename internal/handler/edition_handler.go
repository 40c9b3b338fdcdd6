package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/msanchezgrice/futurenews-sub000/internal/curation"
	"github.com/msanchezgrice/futurenews-sub000/internal/model"
	"github.com/msanchezgrice/futurenews-sub000/internal/pipeline"
)

const renderVariantWeb = "web"

type EditionStore interface {
	Get(day string, offset int) (*model.Edition, error)
	GetStories(day string, offset int) ([]model.Story, error)
	GetRenderCache(storyID, variant string) (string, string, error)
	PutRenderCache(storyID, variant, cacheKey, payload string) error
}

type CurationStore interface {
	GetByStoryIDs(ids []string) (map[string]model.Curation, error)
}

type DayBuilder interface {
	EnsureDayBuilt(ctx context.Context, day string) (string, error)
}

type EditionHandler struct {
	editions  EditionStore
	curations CurationStore
	builder   DayBuilder
}

func NewEditionHandler(editions EditionStore, curations CurationStore, builder DayBuilder) *EditionHandler {
	return &EditionHandler{editions: editions, curations: curations, builder: builder}
}

// BuildDay triggers an idempotent refresh for the day; concurrent requests
// share one outstanding build.
func (h *EditionHandler) BuildDay(c *gin.Context) {
	day, err := h.builder.EnsureDayBuilt(c.Request.Context(), c.Param("day"))
	if err != nil {
		if _, normErr := pipeline.NormalizeDay(c.Param("day")); normErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid day"})
			return
		}
		slog.Error("error building day", "day", day, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Build failed"})
		return
	}

	c.JSON(http.StatusOK, BuildDayResponse{Day: day})
}

// GetEdition returns the curation-overlaid edition payload.
func (h *EditionHandler) GetEdition(c *gin.Context) {
	day, offset, ok := h.editionParams(c)
	if !ok {
		return
	}

	ed, err := h.editions.Get(day, offset)
	if err != nil {
		slog.Error("error fetching edition", "day", day, "offset", offset, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if ed == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Edition not found"})
		return
	}

	stories, err := h.editions.GetStories(day, offset)
	if err != nil {
		slog.Error("error fetching stories", "day", day, "offset", offset, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	ids := make([]string, len(stories))
	for i, s := range stories {
		ids[i] = s.ID
	}

	records, err := h.curations.GetByStoryIDs(ids)
	if err != nil {
		slog.Error("error fetching curations", "day", day, "offset", offset, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	views := curation.OverlayStories(stories, records)

	res := EditionResponse{
		Day:           ed.Day,
		Offset:        ed.Offset,
		Version:       ed.Version,
		Status:        ed.Status,
		GeneratedAt:   ed.GeneratedAt.Format(time.RFC3339),
		MarketSummary: ed.MarketSummary,
		EconSummary:   ed.EconSummary,
	}
	for _, view := range views {
		if view.Hero {
			res.HeroStoryID = view.ID
		}
		res.Stories = append(res.Stories, h.renderStory(view))
	}

	c.JSON(http.StatusOK, res)
}

// renderStory serves a story's rendered payload from the render cache when
// the content-derived key still matches, rebuilding and re-caching otherwise.
// Cache failures only cost a recomputation, never the response.
func (h *EditionHandler) renderStory(view curation.StoryView) StoryResponse {
	var curatedAt time.Time
	if view.Curation != nil {
		curatedAt = view.Curation.CuratedAt
	}
	key := curation.CacheKey(view.ID, curatedAt)

	cachedKey, payload, err := h.editions.GetRenderCache(view.ID, renderVariantWeb)
	if err != nil {
		slog.Error("error reading render cache", "story_id", view.ID, "error", err)
	} else if cachedKey == key && payload != "" {
		var cached StoryResponse
		if err := json.Unmarshal([]byte(payload), &cached); err == nil {
			return cached
		}
	}

	res := buildStoryResponse(view)
	if encoded, err := json.Marshal(res); err == nil {
		if err := h.editions.PutRenderCache(view.ID, renderVariantWeb, key, string(encoded)); err != nil {
			slog.Error("error writing render cache", "story_id", view.ID, "error", err)
		}
	}
	return res
}

func buildStoryResponse(view curation.StoryView) StoryResponse {
	res := StoryResponse{
		ID:         view.ID,
		Section:    view.Section,
		Rank:       view.Rank,
		Angle:      view.Angle,
		Headline:   view.Headline,
		Dek:        view.Dek,
		Body:       view.Body,
		Confidence: view.Confidence,
		Hero:       view.Hero,
		Citations:  view.Evidence.Citations,
	}
	if view.Curation != nil {
		res.Curation = &CurationMeta{
			TopicTitle:      view.Curation.TopicTitle,
			SparkDirections: view.Curation.SparkDirections,
			FutureEventSeed: view.Curation.FutureEventSeed,
			Outline:         view.Curation.Outline,
			ModelUsed:       view.Curation.ModelUsed,
			CuratedAt:       view.Curation.CuratedAt.Format(time.RFC3339),
		}
	}
	return res
}

// GetCandidates returns the pre-curation story stubs, used to drive the
// curation collaborator's batch request.
func (h *EditionHandler) GetCandidates(c *gin.Context) {
	day, offset, ok := h.editionParams(c)
	if !ok {
		return
	}

	ed, err := h.editions.Get(day, offset)
	if err != nil {
		slog.Error("error fetching edition", "day", day, "offset", offset, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if ed == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Edition not found"})
		return
	}

	stories, err := h.editions.GetStories(day, offset)
	if err != nil {
		slog.Error("error fetching stories", "day", day, "offset", offset, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	res := make([]CandidateResponse, 0, len(stories))
	for _, s := range stories {
		res = append(res, CandidateResponse{
			ID:         s.ID,
			Section:    s.Section,
			Rank:       s.Rank,
			Angle:      s.Angle,
			Headline:   s.Headline,
			Dek:        s.Dek,
			TopicBrief: s.Evidence.TopicBrief,
			Horizon:    s.Evidence.Horizon,
			Citations:  s.Evidence.Citations,
		})
	}

	c.JSON(http.StatusOK, res)
}

func (h *EditionHandler) editionParams(c *gin.Context) (string, int, bool) {
	day, err := pipeline.NormalizeDay(c.Param("day"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid day"})
		return "", 0, false
	}

	offset, err := strconv.Atoi(c.Param("offset"))
	if err != nil || offset < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid offset"})
		return "", 0, false
	}

	return day, offset, true
}
