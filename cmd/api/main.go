package main

import (
	"io"
	"log"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/roamio-app/roamio-backend/internal/config"
	"github.com/roamio-app/roamio-backend/internal/logging"
	"github.com/roamio-app/roamio-backend/internal/media"
	"github.com/roamio-app/roamio-backend/internal/queue"
	minioStorage "github.com/roamio-app/roamio-backend/internal/repository/minio"
	"github.com/roamio-app/roamio-backend/internal/repository/postgres"
	"github.com/roamio-app/roamio-backend/internal/service"
	graphqlTransport "github.com/roamio-app/roamio-backend/internal/transport/graphql"
	httpTransport "github.com/roamio-app/roamio-backend/internal/transport/http"
	"github.com/roamio-app/roamio-backend/internal/transport/mail"
	"github.com/roamio-app/roamio-backend/internal/util"
)

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

	minioClient, err := minioStorage.NewClient(cfg.MinIOEndpoint, cfg.MinIOAccessKey, cfg.MinIOSecretKey, cfg.MinIOUseSSL)
	if err != nil {
		log.Fatalf("connect minio: %v", err)
	}
	storage := minioStorage.NewStorage(minioClient, cfg.MinIOPublicURL, cfg.MinIOUseSSL)

	sessionTTL, err := time.ParseDuration(cfg.SessionTTL)
	if err != nil {
		sessionTTL = 24 * time.Hour
	}
	otpTTL, err := time.ParseDuration(cfg.OTPTTL)
	if err != nil {
		otpTTL = 15 * time.Minute
	}

	placeRepo := postgres.NewPlaceRepo(db)
	reviewRepo := postgres.NewReviewRepo(db)
	userRepo := postgres.NewUserRepo(db)
	photoRepo := postgres.NewPhotoRepo(db)
	savedRepo := postgres.NewSavedPlaceRepo(db)

	jobs := queue.NewRedisQueue(redisClient, cfg.QueuePrefix)

	var processor media.Processor
	if cfg.FFMPEGPath != "" {
		processor = media.NewFFMPEGProcessor(cfg.FFMPEGPath, cfg.ImageMaxPixels)
	}

	uploaderCfg := func(bucket string) service.PhotoUploaderConfig {
		return service.PhotoUploaderConfig{
			Bucket:        bucket,
			MaxPhotos:     cfg.PhotoMaxCount,
			MaxPhotoBytes: cfg.PhotoMaxBytes,
			Processor:     processor,
			MaxDimension:  cfg.ImageMaxPixels,
		}
	}

	jwtManager := util.NewJWTManager(cfg.JWTSecret, sessionTTL)
	mailer := mail.NewOTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom, cfg.SMTPUseTLS)

	ratingService := service.NewRatingService(reviewRepo, placeRepo, jobs)
	authService := service.NewAuthService(userRepo, jwtManager, mailer, cfg.GoogleAudience, otpTTL, cfg.OTPLength)
	placeService := service.NewPlaceService(placeRepo, photoRepo, storage, uploaderCfg(cfg.MinIOBucketPlaces))
	reviewService := service.NewReviewService(reviewRepo, placeRepo, photoRepo, ratingService, storage, uploaderCfg(cfg.MinIOBucketReviews))
	userService := service.NewUserService(userRepo, savedRepo, placeRepo, photoRepo, storage, uploaderCfg(cfg.MinIOBucketProfile))

	e := httpTransport.NewRouter(cfg.AllowOrigins)
	httpTransport.RegisterAuth(e, authService)
	httpTransport.RegisterPlaces(e, authService, placeService)
	httpTransport.RegisterReviews(e, authService, reviewService)
	httpTransport.RegisterUsers(e, authService, userService)
	httpTransport.RegisterSwagger(e)

	if err := graphqlTransport.Register(e, authService, &graphqlTransport.Resolvers{
		Places:  placeService,
		Reviews: reviewService,
		Users:   userService,
	}); err != nil {
		log.Fatalf("build graphql schema: %v", err)
	}

	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
