package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// 生成式後端
const (
	ProviderOpenRouter = "openrouter"
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
)

// 收藏儲存後端
const (
	FavoritesRedis  = "redis"
	FavoritesMemory = "memory"
)

// Config 應用配置
type Config struct {
	App         AppConfig        `mapstructure:"app"`
	Server      ServerConfig     `mapstructure:"server"`
	CocktailDB  CocktailDBConfig `mapstructure:"cocktaildb"`
	Search      SearchConfig     `mapstructure:"search"`
	Generative  GenerativeConfig `mapstructure:"generative"`
	Cache       CacheConfig      `mapstructure:"cache"`
	Favorites   FavoritesConfig  `mapstructure:"favorites"`
	RateLimit   RateLimitConfig  `mapstructure:"rate_limit"`
	Image       ImageConfig      `mapstructure:"image"`
	DedupWindow time.Duration    `mapstructure:"dedup_window"`
	LogLevel    string           `mapstructure:"log_level"`
	LogDir      string           `mapstructure:"log_dir"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env     string `mapstructure:"env"`
	Debug   bool   `mapstructure:"debug"`
	Version string `mapstructure:"version"`
	Name    string `mapstructure:"name"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// CocktailDBConfig 公開酒譜 API 設定
type CocktailDBConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// SearchConfig 搜尋聚合設定
type SearchConfig struct {
	MaxDetailFetch int           `mapstructure:"max_detail_fetch"`
	CallTimeout    time.Duration `mapstructure:"call_timeout"`
}

// GenerativeConfig 生成式 AI 設定
type GenerativeConfig struct {
	Provider   string           `mapstructure:"provider"`
	Timeout    time.Duration    `mapstructure:"timeout"`
	MaxTokens  int              `mapstructure:"max_tokens"`
	Workers    int              `mapstructure:"workers"`
	QueueSize  int              `mapstructure:"queue_size"`
	OpenRouter OpenRouterConfig `mapstructure:"openrouter"`
	OpenAI     OpenAIConfig     `mapstructure:"openai"`
	Gemini     GeminiConfig     `mapstructure:"gemini"`
}

// OpenRouterConfig OpenRouter 配置
type OpenRouterConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

// OpenAIConfig OpenAI 配置
type OpenAIConfig struct {
	APIKey     string `mapstructure:"api_key"`
	Model      string `mapstructure:"model"`
	ImageModel string `mapstructure:"image_model"`
	BaseURL    string `mapstructure:"base_url"`
}

// GeminiConfig Gemini 配置
type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// CacheConfig 緩存配置
type CacheConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	MaxSize         int           `mapstructure:"max_size"`
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// FavoritesConfig 收藏儲存設定
type FavoritesConfig struct {
	Backend        string        `mapstructure:"backend"`
	FallbackMemory bool          `mapstructure:"fallback_memory"`
	RetryDelay     time.Duration `mapstructure:"retry_delay"`
	Redis          RedisConfig   `mapstructure:"redis"`
}

// RedisConfig Redis 連線設定
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Key      string `mapstructure:"key"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// ImageConfig 圖片配置
type ImageConfig struct {
	MaxSizeBytes      int64 `mapstructure:"max_size_bytes"`
	GenerationEnabled bool  `mapstructure:"generation_enabled"`
}

// LoadConfig 載入設定；.env 不存在時只使用環境變數與預設值
func LoadConfig() (*Config, error) {
	// 加載 .env 文件
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()

	// 設定預設值
	setDefaults(v)

	// 設定環境變數前綴
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 綁定環境變量
	bindings := map[string][]string{
		"generative.provider":            {"GENERATIVE_PROVIDER"},
		"generative.openrouter.api_key":  {"OPENROUTER_API_KEY"},
		"generative.openrouter.model":    {"OPENROUTER_MODEL"},
		"generative.openai.api_key":      {"OPENAI_API_KEY"},
		"generative.openai.model":        {"OPENAI_MODEL"},
		"generative.gemini.api_key":      {"GEMINI_API_KEY", "GOOGLE_API_KEY"},
		"generative.gemini.model":        {"GEMINI_MODEL"},
		"generative.max_tokens":          {"MODEL_MAX_TOKENS"},
		"favorites.backend":              {"FAVORITES_BACKEND"},
		"favorites.redis.addr":           {"REDIS_ADDR"},
		"favorites.redis.password":       {"REDIS_PASSWORD"},
		"cache.enabled":                  {"CACHE_ENABLED"},
		"rate_limit.enabled":             {"RATE_LIMIT_ENABLED"},
		"rate_limit.requests":            {"RATE_LIMIT_REQUESTS"},
		"rate_limit.window":              {"RATE_LIMIT_WINDOW"},
		"search.call_timeout":            {"SEARCH_CALL_TIMEOUT"},
		"search.max_detail_fetch":        {"SEARCH_MAX_DETAIL_FETCH"},
		"dedup_window":                   {"DEDUP_WINDOW"},
		"log_level":                      {"LOG_LEVEL"},
		"log_dir":                        {"LOG_DIR"},
		"server.port":                    {"PORT"},
		"image.generation_enabled":       {"IMAGE_GENERATION_ENABLED"},
		"cocktaildb.base_url":            {"COCKTAILDB_BASE_URL"},
		"generative.openrouter.base_url": {"OPENROUTER_BASE_URL"},
		"generative.openai.base_url":     {"OPENAI_BASE_URL"},
		"generative.openai.image_model":  {"OPENAI_IMAGE_MODEL"},
		"favorites.fallback_memory":      {"FAVORITES_FALLBACK_MEMORY"},
		"favorites.retry_delay":          {"FAVORITES_RETRY_DELAY"},
	}
	for key, envs := range bindings {
		args := append([]string{key}, envs...)
		if err := v.BindEnv(args...); err != nil {
			return nil, fmt.Errorf("failed to bind env %s: %w", key, err)
		}
	}

	// 設定設定檔名稱和路徑
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// 讀取設定檔（可選）
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// 解析設定
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 驗證必要設定
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// setDefaults 設定預設值
func setDefaults(v *viper.Viper) {
	// 應用程式設定
	v.SetDefault("app.env", "development")
	v.SetDefault("app.debug", true)
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.name", "mixologist")

	// 伺服器設定
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.request_timeout", "120s")

	// TheCocktailDB 設定
	v.SetDefault("cocktaildb.base_url", "https://www.thecocktaildb.com/api/json/v1/1")
	v.SetDefault("cocktaildb.timeout", "10s")

	// 搜尋設定
	v.SetDefault("search.max_detail_fetch", 8)
	v.SetDefault("search.call_timeout", "10s")

	// 生成式 AI 設定
	v.SetDefault("generative.provider", ProviderOpenRouter)
	v.SetDefault("generative.timeout", "60s")
	v.SetDefault("generative.max_tokens", 1500)
	v.SetDefault("generative.workers", 4)
	v.SetDefault("generative.queue_size", 32)
	v.SetDefault("generative.openrouter.model", "google/gemini-2.0-flash-001")
	v.SetDefault("generative.openrouter.base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("generative.openai.model", "gpt-4o")
	v.SetDefault("generative.openai.image_model", "dall-e-3")
	v.SetDefault("generative.gemini.model", "gemini-1.5-flash")

	// 快取設定
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.max_size", 1000)
	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("cache.cleanup_interval", "10m")

	// 收藏設定
	v.SetDefault("favorites.backend", FavoritesMemory)
	v.SetDefault("favorites.fallback_memory", true)
	v.SetDefault("favorites.retry_delay", "500ms")
	v.SetDefault("favorites.redis.addr", "localhost:6379")
	v.SetDefault("favorites.redis.db", 0)
	v.SetDefault("favorites.redis.key", "mixologist:favorites")

	// 限流設定
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests", 100)
	v.SetDefault("rate_limit.window", "1m")

	// 圖片設定
	v.SetDefault("image.max_size_bytes", 10*1024*1024) // 10MB
	v.SetDefault("image.generation_enabled", true)

	v.SetDefault("dedup_window", "1s")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_dir", "logs")
}

// validateConfig 驗證設定
func validateConfig(config *Config) error {
	// 驗證伺服器設定
	if config.Server.Port <= 0 {
		return fmt.Errorf("server port is required")
	}

	if config.CocktailDB.BaseURL == "" {
		return fmt.Errorf("cocktaildb base url is required")
	}

	// 驗證搜尋設定
	if config.Search.MaxDetailFetch <= 0 {
		return fmt.Errorf("invalid search max detail fetch")
	}
	if config.Search.CallTimeout <= 0 {
		return fmt.Errorf("invalid search call timeout")
	}

	switch config.Generative.Provider {
	case ProviderOpenRouter, ProviderOpenAI, ProviderGemini:
	default:
		return fmt.Errorf("unsupported generative provider %q", config.Generative.Provider)
	}
	if config.Generative.Timeout <= 0 {
		return fmt.Errorf("invalid generative timeout")
	}
	if config.Generative.Workers <= 0 || config.Generative.QueueSize <= 0 {
		return fmt.Errorf("invalid generative queue settings")
	}

	// 驗證快取設定
	if config.Cache.Enabled {
		if config.Cache.MaxSize <= 0 {
			return fmt.Errorf("invalid cache max size")
		}
		if config.Cache.TTL <= 0 {
			return fmt.Errorf("invalid cache ttl")
		}
		if config.Cache.CleanupInterval <= 0 {
			return fmt.Errorf("invalid cache cleanup interval")
		}
	}

	switch config.Favorites.Backend {
	case FavoritesRedis, FavoritesMemory:
	default:
		return fmt.Errorf("unsupported favorites backend %q", config.Favorites.Backend)
	}
	if config.Favorites.RetryDelay < 0 {
		return fmt.Errorf("invalid favorites retry delay")
	}

	if config.RateLimit.Enabled && (config.RateLimit.Requests <= 0 || config.RateLimit.Window <= 0) {
		return fmt.Errorf("invalid rate limit settings")
	}

	return nil
}

// GenerativeAPIKey 回傳目前生成式後端的 API Key
func (c *Config) GenerativeAPIKey() string {
	switch c.Generative.Provider {
	case ProviderOpenAI:
		return c.Generative.OpenAI.APIKey
	case ProviderGemini:
		return c.Generative.Gemini.APIKey
	default:
		return c.Generative.OpenRouter.APIKey
	}
}

// GenerativeModel 回傳目前生成式後端的模型名稱
func (c *Config) GenerativeModel() string {
	switch c.Generative.Provider {
	case ProviderOpenAI:
		return c.Generative.OpenAI.Model
	case ProviderGemini:
		return c.Generative.Gemini.Model
	default:
		return c.Generative.OpenRouter.Model
	}
}
