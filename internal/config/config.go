package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	LLM      LLMConfig      `yaml:"llm" mapstructure:"llm"`
	Crawl    CrawlConfig    `yaml:"crawl" mapstructure:"crawl"`
	Dedup    DedupConfig    `yaml:"dedup" mapstructure:"dedup"`
	Enrich   EnrichConfig   `yaml:"enrich" mapstructure:"enrich"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Schedule ScheduleConfig `yaml:"schedule" mapstructure:"schedule"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// LLMConfig holds language model client settings.
type LLMConfig struct {
	Key            string  `yaml:"key" mapstructure:"key"`
	Model          string  `yaml:"model" mapstructure:"model"`
	MaxTokens      int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature    float64 `yaml:"temperature" mapstructure:"temperature"`
	TimeoutSecs    int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RequestsPerMin int     `yaml:"requests_per_min" mapstructure:"requests_per_min"`
}

// CrawlConfig configures crawl task execution and the sidecar bridge.
type CrawlConfig struct {
	BridgeURL           string   `yaml:"bridge_url" mapstructure:"bridge_url"`
	Platforms           []string `yaml:"platforms" mapstructure:"platforms"`
	MaxCountPerPlatform int      `yaml:"max_count_per_platform" mapstructure:"max_count_per_platform"`
	TimeoutSecs         int      `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	DefaultKeywordCount int      `yaml:"default_keyword_count" mapstructure:"default_keyword_count"`
}

// DedupConfig configures the deduplication gate.
type DedupConfig struct {
	ProjectWindowHours  int     `yaml:"project_window_hours" mapstructure:"project_window_hours"`
	SimilarityThreshold float64 `yaml:"similarity_threshold" mapstructure:"similarity_threshold"`
	RetentionDays       int     `yaml:"retention_days" mapstructure:"retention_days"`
}

// EnrichConfig configures the enrichment scheduler.
type EnrichConfig struct {
	BatchSize     int `yaml:"batch_size" mapstructure:"batch_size"`
	MaxConcurrent int `yaml:"max_concurrent" mapstructure:"max_concurrent"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// ScheduleConfig configures periodic batch crawls.
type ScheduleConfig struct {
	CrawlCron string `yaml:"crawl_cron" mapstructure:"crawl_cron"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("TGERADAR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "tge-radar.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("llm.model", "claude-haiku-4-5-20251001")
	v.SetDefault("llm.max_tokens", 2048)
	v.SetDefault("llm.temperature", 0.3)
	v.SetDefault("llm.timeout_secs", 30)
	v.SetDefault("llm.requests_per_min", 60)
	v.SetDefault("crawl.bridge_url", "http://127.0.0.1:9001")
	v.SetDefault("crawl.platforms", []string{"xhs", "douyin", "weibo", "bilibili", "zhihu"})
	v.SetDefault("crawl.max_count_per_platform", 20)
	v.SetDefault("crawl.timeout_secs", 120)
	v.SetDefault("crawl.default_keyword_count", 5)
	v.SetDefault("dedup.project_window_hours", 24)
	v.SetDefault("dedup.similarity_threshold", 0.8)
	v.SetDefault("dedup.retention_days", 7)
	v.SetDefault("enrich.batch_size", 10)
	v.SetDefault("enrich.max_concurrent", 3)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
