package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/roamio-app/roamio-backend/internal/config"
	"github.com/roamio-app/roamio-backend/internal/logging"
	"github.com/roamio-app/roamio-backend/internal/queue"
	"github.com/roamio-app/roamio-backend/internal/repository/postgres"
	"github.com/roamio-app/roamio-backend/internal/service"
)

// The worker drains the rating-recomputation queue. It shares no in-process
// state with the API; scaling out means running more copies.
func main() {
	cfg := config.Load()

	if cfg.LogstashTCPAddr != "" {
		writer, err := logging.NewLogstashWriter(cfg.LogstashTCPAddr)
		if err != nil {
			log.Printf("logstash disabled: %v", err)
		} else {
			log.SetOutput(io.MultiWriter(os.Stdout, writer))
		}
	}

	db, err := postgres.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	defer redisClient.Close()

	pollInterval, err := time.ParseDuration(cfg.QueuePollInterval)
	if err != nil {
		pollInterval = time.Second
	}

	reviewRepo := postgres.NewReviewRepo(db)
	placeRepo := postgres.NewPlaceRepo(db)
	jobs := queue.NewRedisQueue(redisClient, cfg.QueuePrefix)
	ratings := service.NewRatingService(reviewRepo, placeRepo, jobs)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Printf("rating worker started, polling every %s", pollInterval)
	jobs.Consume(ctx, service.RatingQueueName, pollInterval, ratings.HandleJob)
	log.Println("rating worker stopped")
}
