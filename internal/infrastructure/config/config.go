package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 應用配置
type Config struct {
	App          AppConfig          `mapstructure:"app"`
	Server       ServerConfig       `mapstructure:"server"`
	Redis        RedisConfig        `mapstructure:"redis"`
	OpenRouter   OpenRouterConfig   `mapstructure:"openrouter"`
	Nutrition    NutritionConfig    `mapstructure:"nutrition"`
	RecipeLookup RecipeLookupConfig `mapstructure:"recipe_lookup"`
	Rules        RulesConfig        `mapstructure:"rules"`
	Pipeline     PipelineConfig     `mapstructure:"pipeline"`
	RateLimit    RateLimitConfig    `mapstructure:"rate_limit"`
	DedupWindow  time.Duration      `mapstructure:"dedup_window"`
	LogLevel     string             `mapstructure:"log_level"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env      string `mapstructure:"env"`
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
	Version  string `mapstructure:"version"`
	Name     string `mapstructure:"name"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// RedisConfig 規則庫與食譜儲存設定
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// OpenRouterConfig 生成服務設定
type OpenRouterConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Temperature float64       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxRetries  int           `mapstructure:"max_retries"`
}

// NutritionConfig 營養查詢服務設定
type NutritionConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// RecipeLookupConfig 外部食譜查詢服務設定
type RecipeLookupConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// RulesConfig 食材規則存取設定
type RulesConfig struct {
	CacheTTL        time.Duration `mapstructure:"cache_ttl"`
	CacheMaxSize    int           `mapstructure:"cache_max_size"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	UnknownPolicy   string        `mapstructure:"unknown_policy"` // safe | harmful
}

// PipelineConfig 管線併發設定
type PipelineConfig struct {
	WorkerCount   int           `mapstructure:"worker_count"`
	LookupTimeout time.Duration `mapstructure:"lookup_timeout"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// LoadConfig 載入設定
func LoadConfig() (*Config, error) {
	// 加載 .env 文件（不存在時不視為錯誤）
	_ = godotenv.Load()

	// 設定預設值
	setDefaults()

	// 設定環境變數前綴
	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// 綁定環境變量
	viper.BindEnv("openrouter.api_key", "OPENROUTER_API_KEY")
	viper.BindEnv("openrouter.model", "OPENROUTER_MODEL")
	viper.BindEnv("openrouter.max_tokens", "MODEL_MAX_TOKENS")
	viper.BindEnv("nutrition.api_key", "NUTRITION_API_KEY")
	viper.BindEnv("redis.addr", "REDIS_ADDR")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("rules.unknown_policy", "RULES_UNKNOWN_POLICY")
	viper.BindEnv("rate_limit.enabled", "RATE_LIMIT_ENABLED")
	viper.BindEnv("rate_limit.requests", "RATE_LIMIT_REQUESTS")
	viper.BindEnv("rate_limit.window", "RATE_LIMIT_WINDOW")
	viper.BindEnv("dedup_window", "DEDUP_WINDOW")
	viper.BindEnv("log_level", "LOG_LEVEL")

	// 設定設定檔名稱和路徑
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	// 讀取設定檔
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// 添加調試日誌（logger 尚未初始化，改用 fmt.Println）
	fmt.Println("Loading configuration",
		"openrouter_api_key:", maskAPIKey(viper.GetString("openrouter.api_key")),
		"openrouter_model:", viper.GetString("openrouter.model"),
		"redis_addr:", viper.GetString("redis.addr"))

	// 解析設定
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 驗證必要設定
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// maskAPIKey 遮罩 API Key，只顯示前後各 4 個字符
func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// setDefaults 設定預設值
func setDefaults() {
	// 應用程式設定
	viper.SetDefault("app.env", "development")
	viper.SetDefault("app.debug", true)
	viper.SetDefault("app.log_level", "info")
	viper.SetDefault("app.version", "1.0.0")
	viper.SetDefault("app.name", "health-recipe-api")

	// 伺服器設定
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "60s")

	// Redis 設定
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	// 生成服務設定
	viper.SetDefault("openrouter.enabled", true)
	viper.SetDefault("openrouter.base_url", "https://openrouter.ai/api/v1")
	viper.SetDefault("openrouter.model", "deepseek/deepseek-chat-v3-0324:free")
	viper.SetDefault("openrouter.max_tokens", 800)
	viper.SetDefault("openrouter.temperature", 0.7)
	viper.SetDefault("openrouter.timeout", "10s")
	viper.SetDefault("openrouter.max_retries", 1)

	// 營養查詢設定
	viper.SetDefault("nutrition.base_url", "https://api.nal.usda.gov/fdc")
	viper.SetDefault("nutrition.timeout", "3s")

	// 外部食譜查詢設定
	viper.SetDefault("recipe_lookup.base_url", "https://www.themealdb.com/api/json/v1/1")
	viper.SetDefault("recipe_lookup.timeout", "3s")

	// 規則快取設定
	viper.SetDefault("rules.cache_ttl", "5m")
	viper.SetDefault("rules.cache_max_size", 1000)
	viper.SetDefault("rules.cleanup_interval", "1m")
	viper.SetDefault("rules.unknown_policy", "safe")

	// 管線設定
	viper.SetDefault("pipeline.worker_count", 8)
	viper.SetDefault("pipeline.lookup_timeout", "3s")

	// 限流設定
	viper.SetDefault("rate_limit.enabled", true)
	viper.SetDefault("rate_limit.requests", 100)
	viper.SetDefault("rate_limit.window", "1m")

	// 重複請求視窗預設
	viper.SetDefault("dedup_window", "100ms")
}

// validateConfig 驗證設定
func validateConfig(config *Config) error {
	// 驗證伺服器設定
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535")
	}

	// 驗證規則快取設定
	if config.Rules.CacheTTL <= 0 {
		return fmt.Errorf("invalid rules cache ttl")
	}
	if config.Rules.CacheMaxSize <= 0 {
		return fmt.Errorf("invalid rules cache max size")
	}
	if config.Rules.CleanupInterval <= 0 {
		return fmt.Errorf("invalid rules cleanup interval")
	}
	switch config.Rules.UnknownPolicy {
	case "safe", "harmful":
	default:
		return fmt.Errorf("rules unknown policy must be safe or harmful")
	}

	// 驗證管線設定
	if config.Pipeline.WorkerCount <= 0 {
		return fmt.Errorf("invalid pipeline worker count")
	}
	if config.Pipeline.LookupTimeout <= 0 {
		return fmt.Errorf("invalid pipeline lookup timeout")
	}

	// 驗證生成服務設定
	if config.OpenRouter.Temperature < 0 || config.OpenRouter.Temperature > 2 {
		return fmt.Errorf("openrouter temperature must be between 0 and 2")
	}
	if config.OpenRouter.MaxRetries < 0 {
		return fmt.Errorf("invalid openrouter max retries")
	}

	return nil
}
