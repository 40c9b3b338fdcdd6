package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/msanchezgrice/futurenews-sub000/db"
	"github.com/msanchezgrice/futurenews-sub000/internal/pipeline"
	"github.com/msanchezgrice/futurenews-sub000/internal/repository"
	"github.com/msanchezgrice/futurenews-sub000/pkg/feeds"
)

type redisQueue struct{}

func (redisQueue) Push(storyID string) error {
	return db.PushToQueue(db.CurationQueueKey, storyID)
}

func main() {

	godotenv.Load()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	err := db.Connect()
	if err != nil {
		log.Fatalf("error connecting to DB: %v", err)
	}
	defer db.Close()

	err = db.ConnectRedis()
	if err != nil {
		log.Fatalf("error connecting to Redis: %v", err)
	}
	defer db.CloseRedis()

	refresher := pipeline.NewRefresher(
		repository.NewSourceRepository(db.DB),
		repository.NewItemRepository(db.DB),
		repository.NewSignalRepository(db.DB),
		repository.NewTopicRepository(db.DB),
		repository.NewEditionRepository(db.DB),
		feeds.BuildClients(),
		redisQueue{},
		editionOffsets(),
		fetchWorkers(),
	)

	day := time.Now().UTC().Format("2006-01-02")
	if len(os.Args) > 1 {
		day = os.Args[1]
	}

	built, err := refresher.EnsureDayBuilt(context.Background(), day)
	if err != nil {
		log.Fatalf("error refreshing day %s: %v", day, err)
	}

	slog.Info("refresh finished", "day", built)
}

func editionOffsets() []int {
	raw := os.Getenv("EDITION_OFFSETS")
	if raw == "" {
		return nil
	}

	var offsets []int
	for _, part := range strings.Split(raw, ",") {
		offset, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || offset < 0 {
			slog.Warn("ignoring invalid edition offset", "value", part)
			continue
		}
		offsets = append(offsets, offset)
	}
	return offsets
}

func fetchWorkers() int {
	raw := os.Getenv("FETCH_WORKERS")
	if raw == "" {
		return 0
	}
	workers, err := strconv.Atoi(raw)
	if err != nil {
		slog.Warn("ignoring invalid FETCH_WORKERS", "value", raw)
		return 0
	}
	return workers
}
