package config

import (
	_ "embed"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

type Config struct {
	Store     StoreConfig     `yaml:"store"`
	Drivers   DriversConfig   `yaml:"drivers"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Match     MatchConfig     `yaml:"match"`
	Train     TrainConfig     `yaml:"train"`
	Web       WebConfig       `yaml:"web"`
	Log       LogConfig       `yaml:"log"`
}

type StoreConfig struct {
	Path string `yaml:"path"` // snapshot file of trained face embeddings
}

type DriversConfig struct {
	DatabaseURL  string `yaml:"database_url"` // sqlite://path, postgres://..., mysql://...
	ImageDir     string `yaml:"image_dir"`    // directory holding driver profile photos
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
}

type EmbeddingConfig struct {
	Backend        string  `yaml:"backend"` // "remote" or "dlib"
	URL            string  `yaml:"url"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
	MaxRetries     int     `yaml:"max_retries"`
	RPS            float64 `yaml:"rps"` // 0 disables rate limiting
	DlibModelsDir  string  `yaml:"dlib_models_dir"`
}

// Timeout returns the per-request extractor timeout.
func (c *EmbeddingConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

type MatchConfig struct {
	Threshold    float64 `yaml:"threshold"`
	MaxImageSize int     `yaml:"max_image_size"`
}

type TrainConfig struct {
	Concurrency int  `yaml:"concurrency"`
	OnStartup   bool `yaml:"on_startup"`
}

type WebConfig struct {
	Host           string   `yaml:"host"`
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"` // CORS whitelist; localhost is always allowed
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads a non-negative float. Invalid values fall back to the default.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f >= 0 {
		return f
	}
	return defaultVal
}

func envBool(key string, defaultVal bool) bool {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return defaultVal
}

// envList reads a comma-separated list. Empty items are dropped.
func envList(key string, defaultVal []string) []string {
	s := os.Getenv(key)
	if strings.TrimSpace(s) == "" {
		return defaultVal
	}
	var out []string
	for item := range strings.SplitSeq(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func envString(key, defaultVal string) string {
	if s := strings.TrimSpace(os.Getenv(key)); s != "" {
		return s
	}
	return defaultVal
}

// Defaults returns the embedded defaults without consulting the environment.
func Defaults() *Config {
	var cfg Config
	if err := yaml.Unmarshal(defaultsYAML, &cfg); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded defaults.yaml: " + err.Error())
	}
	return &cfg
}

func Load() *Config {
	d := Defaults()

	return &Config{
		Store: StoreConfig{
			Path: envString("FACE_STORE_PATH", d.Store.Path),
		},
		Drivers: DriversConfig{
			DatabaseURL:  envString("DRIVERS_DATABASE_URL", d.Drivers.DatabaseURL),
			ImageDir:     envString("DRIVERS_IMAGE_DIR", d.Drivers.ImageDir),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", d.Drivers.MaxOpenConns),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", d.Drivers.MaxIdleConns),
		},
		Embedding: EmbeddingConfig{
			Backend:        strings.ToLower(envString("FACE_BACKEND", d.Embedding.Backend)),
			URL:            envString("EMBEDDING_URL", d.Embedding.URL),
			TimeoutSeconds: envInt("EMBEDDING_TIMEOUT_SECONDS", d.Embedding.TimeoutSeconds),
			MaxRetries:     envInt("EMBEDDING_MAX_RETRIES", d.Embedding.MaxRetries),
			RPS:            envFloat("EMBEDDING_RPS", d.Embedding.RPS),
			DlibModelsDir:  envString("DLIB_MODELS_DIR", d.Embedding.DlibModelsDir),
		},
		Match: MatchConfig{
			Threshold:    envFloat("MATCH_THRESHOLD", d.Match.Threshold),
			MaxImageSize: envInt("MAX_IMAGE_SIZE", d.Match.MaxImageSize),
		},
		Train: TrainConfig{
			Concurrency: envInt("TRAIN_CONCURRENCY", d.Train.Concurrency),
			OnStartup:   envBool("AUTO_TRAIN", d.Train.OnStartup),
		},
		Web: WebConfig{
			Host: envString("WEB_HOST", d.Web.Host),
			Port: envInt("WEB_PORT", d.Web.Port),

			AllowedOrigins: envList("WEB_ALLOWED_ORIGINS", d.Web.AllowedOrigins),
		},
		Log: LogConfig{
			Level:  strings.ToLower(envString("LOG_LEVEL", d.Log.Level)),
			Format: strings.ToLower(envString("LOG_FORMAT", d.Log.Format)),
		},
	}
}
