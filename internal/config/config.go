package config

import (
	"log/slog"
	"os"
	"strconv"
)

const (
	DefaultVisionURL   = "https://vision.api.cloud.yandex.net/vision/v1/batchAnalyze"
	DefaultGPTURL      = "https://llm.api.cloud.yandex.net/foundationModels/v1/completion"
	DefaultGPTModel    = "yandexgpt/latest"
	DefaultUploadDir   = "./uploads"
	DefaultMaxFileSize = 10 * 1024 * 1024
	DefaultPort        = "8000"
)

// Config holds all application configuration
type Config struct {
	Vision VisionConfig
	GPT    GPTConfig
	Server ServerConfig
}

// VisionConfig holds text detection service configuration
type VisionConfig struct {
	APIKey   string
	FolderID string
	URL      string
}

// GPTConfig holds language model configuration
type GPTConfig struct {
	APIKey      string
	FolderID    string
	URL         string
	Model       string
	Temperature float64
	MaxTokens   int
}

// ModelURI returns the gpt:// URI of the configured model
func (c GPTConfig) ModelURI() string {
	return "gpt://" + c.FolderID + "/" + c.Model
}

// ServerConfig holds upload server configuration
type ServerConfig struct {
	Port        string
	UploadDir   string
	MaxFileSize int64
}

// Load builds the configuration from the environment.
// Missing credentials are logged but not fatal: calls fail at run time instead.
func Load() *Config {
	folderID := os.Getenv("YANDEX_FOLDER_ID")
	visionKey := os.Getenv("YANDEX_VISION_API_KEY")
	gptKey := os.Getenv("YANDEX_GPT_API_KEY")
	if gptKey == "" {
		gptKey = visionKey
	}

	cfg := &Config{
		Vision: VisionConfig{
			APIKey:   visionKey,
			FolderID: folderID,
			URL:      getEnv("YANDEX_VISION_URL", DefaultVisionURL),
		},
		GPT: GPTConfig{
			APIKey:      gptKey,
			FolderID:    folderID,
			URL:         getEnv("YANDEX_GPT_URL", DefaultGPTURL),
			Model:       getEnv("YANDEX_GPT_MODEL", DefaultGPTModel),
			Temperature: 0.1,
			MaxTokens:   1000,
		},
		Server: ServerConfig{
			Port:        getEnv("PORT", DefaultPort),
			UploadDir:   getEnv("UPLOAD_DIR", DefaultUploadDir),
			MaxFileSize: DefaultMaxFileSize,
		},
	}

	if v := os.Getenv("MAX_FILE_SIZE"); v != "" {
		size, err := strconv.ParseInt(v, 10, 64)
		if err != nil || size <= 0 {
			slog.Warn("Ignoring invalid MAX_FILE_SIZE", "value", v)
		} else {
			cfg.Server.MaxFileSize = size
		}
	}

	if folderID == "" || visionKey == "" {
		slog.Warn("Yandex credentials are missing in environment variables")
	} else {
		slog.Info("Yandex book service ready", "folder_id", folderID, "model", cfg.GPT.Model)
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
