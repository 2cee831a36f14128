package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Result storage
	DataDir string

	// Gemini inference
	GeminiAPIKey string
	GeminiModel  string

	// Object detection sidecar
	DetectorURL string

	// OCR
	OCREnabled   bool
	OCRLanguages string

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes int64

	// Task state
	TaskTTL time.Duration

	// Per-stage timeouts
	DetectTimeout time.Duration
	OCRTimeout    time.Duration
	InferTimeout  time.Duration

	// PDF
	PDFFallbackPdftotext bool
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		DataDir: envOr("DATA_DIR", "data"),

		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  envOr("GEMINI_MODEL", "gemini-pro"),

		DetectorURL: os.Getenv("DETECTOR_URL"),

		OCREnabled:   envBool("OCR_ENABLED", true),
		OCRLanguages: envOr("OCR_LANGUAGES", "eng"),

		WorkerCount:  envInt("WORKER_COUNT", 4),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		TaskTTL: envDuration("TASK_TTL", 1*time.Hour),

		DetectTimeout: envDuration("DETECT_TIMEOUT", 30*time.Second),
		OCRTimeout:    envDuration("OCR_TIMEOUT", 60*time.Second),
		InferTimeout:  envDuration("INFER_TIMEOUT", 120*time.Second),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.TaskTTL <= 0 {
		cfg.TaskTTL = 1 * time.Hour
	}

	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
