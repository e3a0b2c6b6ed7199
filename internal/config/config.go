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
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Places     PlacesConfig     `yaml:"places" mapstructure:"places"`
	Groq       GroqConfig       `yaml:"groq" mapstructure:"groq"`
	Anthropic  AnthropicConfig  `yaml:"anthropic" mapstructure:"anthropic"`
	LLM        LLMConfig        `yaml:"llm" mapstructure:"llm"`
	Crawl      CrawlConfig      `yaml:"crawl" mapstructure:"crawl"`
	Render     RenderConfig     `yaml:"render" mapstructure:"render"`
	Extract    ExtractConfig    `yaml:"extract" mapstructure:"extract"`
	Finder     FinderConfig     `yaml:"finder" mapstructure:"finder"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
	Monitoring MonitoringConfig `yaml:"monitoring" mapstructure:"monitoring"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// PlacesConfig holds Places API settings.
type PlacesConfig struct {
	Key          string `yaml:"key" mapstructure:"key"`
	BaseURL      string `yaml:"base_url" mapstructure:"base_url"`
	RadiusMeters int    `yaml:"radius_meters" mapstructure:"radius_meters"`
}

// GroqConfig holds Groq API settings.
type GroqConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Model   string `yaml:"model" mapstructure:"model"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// LLMConfig selects the chat/extraction model provider.
type LLMConfig struct {
	Provider string `yaml:"provider" mapstructure:"provider"`
}

// CrawlConfig configures the site crawl.
type CrawlConfig struct {
	MaxPages      int `yaml:"max_pages" mapstructure:"max_pages"`
	PagesPerPlace int `yaml:"pages_per_place" mapstructure:"pages_per_place"`
	TimeoutSecs   int `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// RenderConfig configures the headless browser.
type RenderConfig struct {
	PageTimeoutSecs int `yaml:"page_timeout_secs" mapstructure:"page_timeout_secs"`
	MaxConcurrent   int `yaml:"max_concurrent" mapstructure:"max_concurrent"`
}

// ExtractConfig configures roster extraction.
type ExtractConfig struct {
	ModelRPS float64 `yaml:"model_rps" mapstructure:"model_rps"`
}

// FinderConfig configures the doctor finder orchestration.
type FinderConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// MonitoringConfig configures background alerting.
type MonitoringConfig struct {
	WebhookURL            string  `yaml:"webhook_url" mapstructure:"webhook_url"`
	CheckIntervalSecs     int     `yaml:"check_interval_secs" mapstructure:"check_interval_secs"`
	LookbackWindowHours   int     `yaml:"lookback_window_hours" mapstructure:"lookback_window_hours"`
	FailureRateThreshold  float64 `yaml:"failure_rate_threshold" mapstructure:"failure_rate_threshold"`
	SymptomSpikeThreshold int     `yaml:"symptom_spike_threshold" mapstructure:"symptom_spike_threshold"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("HEALTHASSIST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "healthassist.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("places.base_url", "https://maps.googleapis.com/maps/api/place")
	v.SetDefault("places.radius_meters", 5000)
	v.SetDefault("groq.base_url", "https://api.groq.com/openai/v1")
	v.SetDefault("groq.model", "llama-3.3-70b-versatile")
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("llm.provider", "groq")
	v.SetDefault("crawl.max_pages", 5)
	v.SetDefault("crawl.pages_per_place", 3)
	v.SetDefault("crawl.timeout_secs", 60)
	v.SetDefault("render.page_timeout_secs", 25)
	v.SetDefault("render.max_concurrent", 2)
	v.SetDefault("extract.model_rps", 1.0)
	v.SetDefault("finder.workers", 3)
	v.SetDefault("monitoring.check_interval_secs", 300)
	v.SetDefault("monitoring.lookback_window_hours", 24)
	v.SetDefault("monitoring.failure_rate_threshold", 0.5)
	v.SetDefault("monitoring.symptom_spike_threshold", 50)

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

// Validate checks that the configuration is complete for the given run
// mode ("serve" or "find"). Errors aggregate every missing field so the
// operator can fix them in one pass.
func (c *Config) Validate(mode string) error {
	var problems []string

	common := func() {
		if c.Places.Key == "" {
			problems = append(problems, "places.key is required")
		}
		switch c.LLM.Provider {
		case "groq":
			if c.Groq.Key == "" {
				problems = append(problems, "groq.key is required")
			}
		case "anthropic":
			if c.Anthropic.Key == "" {
				problems = append(problems, "anthropic.key is required")
			}
		default:
			problems = append(problems, "llm.provider must be groq or anthropic")
		}
		if c.Store.Driver != "sqlite" && c.Store.Driver != "postgres" {
			problems = append(problems, "store.driver must be sqlite or postgres")
		}
		if c.Store.DatabaseURL == "" {
			problems = append(problems, "store.database_url is required")
		}
		if c.Finder.Workers < 1 || c.Finder.Workers > 20 {
			problems = append(problems, "finder.workers must be between 1 and 20")
		}
	}

	switch mode {
	case "serve":
		common()
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
	case "find":
		common()
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.Errorf("config: invalid configuration:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
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
