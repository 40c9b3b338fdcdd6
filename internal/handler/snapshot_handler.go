package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/msanchezgrice/futurenews-sub000/internal/model"
	"github.com/msanchezgrice/futurenews-sub000/internal/pipeline"
)

type SourceLister interface {
	ListAll() ([]model.Source, error)
}

type ItemCounter interface {
	CountByDay(day string) (int, error)
}

type SignalLister interface {
	ListByDay(day string) ([]model.Signal, error)
}

type TopicLister interface {
	ListByDay(day string) ([]model.Topic, error)
}

type EditionLister interface {
	ListByDay(day string) ([]model.Edition, error)
}

// SnapshotHandler serves the read-only day dump used for observability and
// for building curation prompts.
type SnapshotHandler struct {
	sources  SourceLister
	items    ItemCounter
	signals  SignalLister
	topics   TopicLister
	editions EditionLister
}

func NewSnapshotHandler(sources SourceLister, items ItemCounter, signals SignalLister, topics TopicLister, editions EditionLister) *SnapshotHandler {
	return &SnapshotHandler{sources: sources, items: items, signals: signals, topics: topics, editions: editions}
}

func (h *SnapshotHandler) GetSnapshot(c *gin.Context) {
	day, err := pipeline.NormalizeDay(c.Param("day"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid day"})
		return
	}

	sources, err := h.sources.ListAll()
	if err != nil {
		slog.Error("error listing sources", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	itemCount, err := h.items.CountByDay(day)
	if err != nil {
		slog.Error("error counting raw items", "day", day, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	signals, err := h.signals.ListByDay(day)
	if err != nil {
		slog.Error("error listing signals", "day", day, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	topics, err := h.topics.ListByDay(day)
	if err != nil {
		slog.Error("error listing topics", "day", day, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	editions, err := h.editions.ListByDay(day)
	if err != nil {
		slog.Error("error listing editions", "day", day, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	res := SnapshotResponse{Day: day, RawItemCount: itemCount}

	for _, s := range sources {
		src := SourceResponse{
			ID:            s.ID,
			Name:          s.Name,
			Kind:          s.Kind,
			Section:       s.Section,
			Enabled:       s.Enabled,
			LastError:     s.LastError,
			LastItemCount: s.LastItemCount,
		}
		if !s.LastFetchedAt.IsZero() {
			src.LastFetchedAt = s.LastFetchedAt.Format(time.RFC3339)
		}
		res.Sources = append(res.Sources, src)
	}

	for _, s := range signals {
		res.Signals = append(res.Signals, SignalResponse{
			ID:       s.ID,
			Section:  s.Section,
			Type:     s.Type,
			Title:    s.Title,
			Horizon:  s.Horizon,
			Score:    s.Score,
			Entities: s.Entities,
			Keywords: s.Keywords,
		})
	}

	for _, t := range topics {
		res.Topics = append(res.Topics, TopicResponse{
			Day:     t.Day,
			Section: t.Section,
			Slug:    t.Slug,
			Label:   t.Label,
			Brief:   t.Brief,
			Horizon: t.Horizon,
			Score:   t.Score,
			Signals: t.SignalIDs,
		})
	}

	for _, ed := range editions {
		res.Editions = append(res.Editions, EditionSummary{
			Offset:      ed.Offset,
			Version:     ed.Version,
			Status:      ed.Status,
			GeneratedAt: ed.GeneratedAt.Format(time.RFC3339),
		})
	}

	c.JSON(http.StatusOK, res)
}

func (h *SnapshotHandler) GetHealth(c *gin.Context) {
	_, err := h.sources.ListAll()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "unhealthy",
			"database": "disconnected",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"database": "connected",
	})
}
