package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port            string
	DatabaseURL     string
	RedisAddr       string
	RedisPassword   string
	JWTSecret       string
	SessionTTL      string
	GoogleAudience  string
	AllowOrigins    []string
	LogstashTCPAddr string

	MinIOEndpoint      string
	MinIOAccessKey     string
	MinIOSecretKey     string
	MinIOUseSSL        bool
	MinIOBucketPlaces  string
	MinIOBucketReviews string
	MinIOBucketProfile string
	MinIOPublicURL     string

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	SMTPUseTLS   bool

	OTPTTL    string
	OTPLength int

	QueuePrefix       string
	QueuePollInterval string

	PhotoMaxBytes  int64
	PhotoMaxCount  int
	FFMPEGPath     string
	ImageMaxPixels int
}

func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	otpLen := 6
	if v, err := strconv.Atoi(getenv("OTP_LENGTH", "6")); err == nil && v > 0 {
		otpLen = v
	}

	photoMax := int64(5 * 1024 * 1024)
	if v, err := strconv.ParseInt(getenv("PHOTO_MAX_BYTES", "5242880"), 10, 64); err == nil && v > 0 {
		photoMax = v
	}
	photoCount := 5
	if v, err := strconv.Atoi(getenv("PHOTO_MAX_COUNT", "5")); err == nil && v > 0 {
		photoCount = v
	}
	imageMaxPixels := 0
	if v, err := strconv.Atoi(getenv("IMAGE_MAX_DIMENSION", "0")); err == nil && v > 0 {
		imageMaxPixels = v
	}

	return Config{
		Port:            getenv("PORT", "8080"),
		DatabaseURL:     must("DATABASE_URL"),
		RedisAddr:       must("REDIS_ADDR"),
		RedisPassword:   getenv("REDIS_PASSWORD", ""),
		JWTSecret:       must("JWT_SECRET"),
		SessionTTL:      getenv("SESSION_TTL", "24h"),
		GoogleAudience:  getenv("GOOGLE_AUDIENCE", ""),
		AllowOrigins:    splitAndTrim(getenv("ALLOW_ORIGINS", "*")),
		LogstashTCPAddr: getenv("LOGSTASH_TCP_ADDR", ""),

		MinIOEndpoint:      must("MINIO_ENDPOINT"),
		MinIOAccessKey:     must("MINIO_ACCESS_KEY"),
		MinIOSecretKey:     must("MINIO_SECRET_KEY"),
		MinIOUseSSL:        getenv("MINIO_USE_SSL", "false") == "true",
		MinIOBucketPlaces:  getenv("MINIO_BUCKET_PLACES", "roamio-places"),
		MinIOBucketReviews: getenv("MINIO_BUCKET_REVIEWS", "roamio-reviews"),
		MinIOBucketProfile: getenv("MINIO_BUCKET_PROFILE", "roamio-profiles"),
		MinIOPublicURL:     getenv("MINIO_PUBLIC_URL", ""),

		SMTPHost:     getenv("SMTP_HOST", ""),
		SMTPPort:     getenv("SMTP_PORT", ""),
		SMTPUsername: getenv("SMTP_USERNAME", ""),
		SMTPPassword: getenv("SMTP_PASSWORD", ""),
		SMTPFrom:     getenv("SMTP_FROM", ""),
		SMTPUseTLS:   getenv("SMTP_USE_TLS", "false") == "true",

		OTPTTL:    getenv("OTP_TTL", "15m"),
		OTPLength: otpLen,

		QueuePrefix:       getenv("QUEUE_PREFIX", "roamio-jobs"),
		QueuePollInterval: getenv("QUEUE_POLL_INTERVAL", "1s"),

		PhotoMaxBytes:  photoMax,
		PhotoMaxCount:  photoCount,
		FFMPEGPath:     getenv("FFMPEG_PATH", ""),
		ImageMaxPixels: imageMaxPixels,
	}
}

func splitAndTrim(input string) []string {
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		panic("missing env: " + k)
	}
	return v
}
