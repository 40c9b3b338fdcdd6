package main

import (
	"errors"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/msanchezgrice/futurenews-sub000/db"
	"github.com/msanchezgrice/futurenews-sub000/internal/model"
	"github.com/msanchezgrice/futurenews-sub000/internal/repository"
	"github.com/msanchezgrice/futurenews-sub000/pkg/llm"
	"github.com/redis/go-redis/v9"
)

const maxRetries = 3

type storyQueue interface {
	Pop(key string, timeout time.Duration) (string, error)
	Push(key string, storyID string) error
}

type storyStore interface {
	GetStory(id string) (*model.Story, error)
}

type curationStore interface {
	GetErrorCount(storyID string) (int, error)
	SaveError(storyID string, errMsg string, errType string) error
	Save(c *model.Curation) error
}

type worker struct {
	queue      storyQueue
	stories    storyStore
	curations  curationStore
	client     llm.CurationClient
	popTimeout time.Duration
	retryDelay time.Duration
}

// run loops until the queue returns a real error. An idle queue surfaces as
// redis.Nil once popTimeout elapses; that is not an error, just keep waiting.
func (w *worker) run() {
	for {
		storyID, err := w.queue.Pop(db.CurationQueueKey, w.popTimeout)
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			slog.Error("error popping from Redis queue", "error", err)
			break
		}
		w.process(storyID)
	}
}

func (w *worker) process(storyID string) {
	errorCount, err := w.curations.GetErrorCount(storyID)
	if err != nil {
		slog.Error("error getting error count", "error", err, "story_id", storyID)
		return
	}

	if errorCount >= maxRetries {
		slog.Warn("story exceeded max retries, dead-lettering", "story_id", storyID, "error_count", errorCount)
		if err := w.queue.Push(db.DeadLetterKey, storyID); err != nil {
			slog.Error("error pushing to dead-letter queue", "error", err, "story_id", storyID)
		}
		return
	}

	story, err := w.stories.GetStory(storyID)
	if err != nil {
		slog.Error("error getting story from DB", "error", err, "story_id", storyID)
		return
	}

	if story == nil {
		slog.Warn("story not found in DB", "story_id", storyID)
		return
	}

	result, err := w.client.Curate(llm.StoryContext{
		StoryID:    story.ID,
		Section:    story.Section,
		Angle:      story.Angle,
		TargetDate: targetDate(story),
		Headline:   story.Headline,
		Dek:        story.Dek,
		Brief:      story.Evidence.TopicBrief,
		Horizon:    story.Evidence.Horizon,
		Citations:  story.Evidence.Citations,
	})
	if err != nil {
		slog.Error("error curating story", "error", err, "story_id", storyID)

		w.curations.SaveError(storyID, err.Error(), "llm_error")

		if err := w.queue.Push(db.CurationQueueKey, storyID); err != nil {
			slog.Error("error re-queueing story", "error", err, "story_id", storyID)
		}

		time.Sleep(w.retryDelay)
		return
	}

	record := model.Curation{
		StoryID:         story.ID,
		CuratedTitle:    result.CuratedTitle,
		CuratedDek:      result.CuratedDek,
		Draft:           model.DraftArticle(result.Draft),
		Confidence:      result.Confidence,
		Hero:            result.Hero,
		TopicTitle:      result.TopicTitle,
		SparkDirections: result.SparkDirections,
		FutureEventSeed: result.FutureEventSeed,
		Outline:         result.Outline,
		ModelUsed:       result.ModelUsed,
	}

	if err := w.curations.Save(&record); err != nil {
		slog.Error("error saving curation", "error", err, "story_id", storyID)
		return
	}

	slog.Info("story curated successfully", "story_id", story.ID, "confidence", record.Confidence)
}

type redisQueue struct{}

func (redisQueue) Pop(key string, timeout time.Duration) (string, error) {
	return db.PopFromQueue(key, timeout)
}

func (redisQueue) Push(key string, storyID string) error {
	return db.PushToQueue(key, storyID)
}

func main() {

	godotenv.Load()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	err := db.ConnectRedis()
	if err != nil {
		log.Fatalf("error connecting to Redis: %v", err)
	}
	defer db.CloseRedis()

	err = db.Connect()
	if err != nil {
		log.Fatalf("error connecting to DB: %v", err)
	}
	defer db.Close()

	client := buildClient()
	if client == nil {
		slog.Error("no curation API key configured")
		return
	}

	w := &worker{
		queue:      redisQueue{},
		stories:    repository.NewEditionRepository(db.DB),
		curations:  repository.NewCurationRepository(db.DB),
		client:     client,
		popTimeout: 30 * time.Second,
		retryDelay: 5 * time.Second,
	}
	w.run()
}

func buildClient() llm.CurationClient {
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		return llm.NewAnthropicClient(key)
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return llm.NewOpenAIClient(key)
	}
	return nil
}

func targetDate(story *model.Story) string {
	day, err := time.Parse("2006-01-02", story.Day)
	if err != nil {
		return story.Day
	}
	return day.AddDate(0, 0, story.Offset).Format("2006-01-02")
}
