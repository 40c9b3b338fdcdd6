package main

import (
	"log"
	"log/slog"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/msanchezgrice/futurenews-sub000/db"
	"github.com/msanchezgrice/futurenews-sub000/internal/handler"
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

	sourceRepo := repository.NewSourceRepository(db.DB)
	itemRepo := repository.NewItemRepository(db.DB)
	signalRepo := repository.NewSignalRepository(db.DB)
	topicRepo := repository.NewTopicRepository(db.DB)
	editionRepo := repository.NewEditionRepository(db.DB)
	curationRepo := repository.NewCurationRepository(db.DB)

	refresher := pipeline.NewRefresher(
		sourceRepo, itemRepo, signalRepo, topicRepo, editionRepo,
		feeds.BuildClients(), redisQueue{}, nil, 0,
	)

	editionHandler := handler.NewEditionHandler(editionRepo, curationRepo, refresher)
	snapshotHandler := handler.NewSnapshotHandler(sourceRepo, itemRepo, signalRepo, topicRepo, editionRepo)

	r := gin.Default()

	allowedOrigins := []string{"http://localhost:3000"}

	if frontendURL := os.Getenv("FRONTEND_URL"); frontendURL != "" {
		allowedOrigins = append(allowedOrigins, frontendURL)
	}

	slog.Info("AllowOrigins URL:", "urls", allowedOrigins)

	r.Use(cors.New(cors.Config{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type"},
	}))

	r.POST("/days/:day/build", editionHandler.BuildDay)
	r.GET("/days/:day/snapshot", snapshotHandler.GetSnapshot)
	r.GET("/editions/:day/:offset", editionHandler.GetEdition)
	r.GET("/editions/:day/:offset/candidates", editionHandler.GetCandidates)
	r.GET("/health", snapshotHandler.GetHealth)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	err = r.Run(":" + port)
	if err != nil {
		log.Fatalf("error starting server: %v", err)
	}
}
