package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	// Working directories. Both are flat; downloads get a per-request
	// subdirectory, thumbnails are one JPEG per video id.
	DownloadDir  string
	ThumbnailDir string

	// External tools. Empty paths mean "resolve from PATH".
	YtdlpPath  string
	FFmpegPath string

	// Extraction behavior.
	SocketTimeoutSeconds int
	RetryCount           int
	UserAgent            string

	// Hard cap on concurrent extraction/download operations.
	MaxConcurrentDownloads int

	// Request rate limiting; 0 disables the limiter.
	RequestsPerSecond int
	RateBurst         int

	// Optional S3 artifact archive. Left empty, the server runs in local mode.
	AWSRegion          string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	AWSS3Bucket        string
}

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

func Load() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := &Config{
		Port:                   getEnv("PORT", "8080"),
		DownloadDir:            getEnv("DOWNLOAD_DIR", "downloads"),
		ThumbnailDir:           getEnv("THUMBNAIL_DIR", "thumbnails"),
		YtdlpPath:              getEnv("YTDLP_PATH", ""),
		FFmpegPath:             getEnv("FFMPEG_PATH", ""),
		SocketTimeoutSeconds:   getEnvInt("SOCKET_TIMEOUT_SECONDS", 15),
		RetryCount:             getEnvInt("RETRY_COUNT", 5),
		UserAgent:              getEnv("USER_AGENT", defaultUserAgent),
		MaxConcurrentDownloads: getEnvInt("MAX_CONCURRENT_DOWNLOADS", 4),
		RequestsPerSecond:      getEnvInt("REQUESTS_PER_SECOND", 0),
		RateBurst:              getEnvInt("RATE_BURST", 20),
		AWSRegion:              getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:         getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:     getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSS3Bucket:            getEnv("AWS_S3_BUCKET", ""),
	}

	if !cfg.ArchiveEnabled() {
		log.Println("AWS credentials not configured, artifact archiving disabled")
	}

	return cfg
}

// ArchiveEnabled reports whether the optional S3 artifact archive is configured.
func (c *Config) ArchiveEnabled() bool {
	return c.AWSAccessKeyID != "" && c.AWSSecretAccessKey != "" && c.AWSS3Bucket != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
