package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port          string        `mapstructure:"port"`
	DBDriver      string        `mapstructure:"db_driver"`
	DBDSN         string        `mapstructure:"db_dsn"`
	MediaDir      string        `mapstructure:"media_dir"`
	LogFile       string        `mapstructure:"log_file"`
	SeedDemo      bool          `mapstructure:"seed_demo"`
	OperatorHash  string        `mapstructure:"operator_password_hash"`
	BulkWorkers   int           `mapstructure:"bulk_workers"`
	ScraperMode   string        `mapstructure:"scraper_mode"`
	ChromeBin     string        `mapstructure:"chrome_bin"`
	ScrapeTimeout time.Duration `mapstructure:"scrape_timeout"`
	AnalyzerMode  string        `mapstructure:"analyzer_mode"`
	AnthropicKey  string        `mapstructure:"anthropic_api_key"`
	PerplexityKey string        `mapstructure:"perplexity_api_key"`
	AnalyzerModel string        `mapstructure:"analyzer_model"`
	AnalyzerTO    time.Duration `mapstructure:"analyzer_timeout"`
	MaxRetries    int           `mapstructure:"max_retries"`
	KafkaBrokers  []string      `mapstructure:"kafka_brokers"`
	KafkaTopic    string        `mapstructure:"kafka_topic"`
	ConsulAddr    string        `mapstructure:"consul_addr"`
	ServiceID     string        `mapstructure:"service_id"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("db_driver", "sqlite")
	v.SetDefault("db_dsn", "watchflip.db") // sqlite file in working dir
	v.SetDefault("media_dir", "./web/media")
	v.SetDefault("log_file", "./watchflip.log")
	v.SetDefault("seed_demo", true)
	v.SetDefault("operator_password_hash", "")
	v.SetDefault("bulk_workers", 4)
	v.SetDefault("scraper_mode", "disabled")
	v.SetDefault("chrome_bin", "")
	v.SetDefault("scrape_timeout", 45*time.Second)
	v.SetDefault("analyzer_mode", "disabled")
	v.SetDefault("anthropic_api_key", "")
	v.SetDefault("perplexity_api_key", "")
	v.SetDefault("analyzer_model", "")
	v.SetDefault("analyzer_timeout", 60*time.Second)
	v.SetDefault("max_retries", 3)
	v.SetDefault("kafka_brokers", []string{})
	v.SetDefault("kafka_topic", "watch-events")
	v.SetDefault("consul_addr", "")
	v.SetDefault("service_id", "")
}

// Load reads .env (if present), an optional watchflip.yaml and the process
// environment, in increasing priority.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("[warn] could not read .env: %v", err)
	}

	v := viper.New()
	v.AddConfigPath(".")
	v.SetConfigName("watchflip")
	v.SetConfigType("yaml")
	setDefaults(v)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	log.Printf("[config] PORT=%s DB_DRIVER=%s MEDIA_DIR=%s LOG_FILE=%s SCRAPER_MODE=%s ANALYZER_MODE=%s KAFKA=%v CONSUL=%q",
		cfg.Port, cfg.DBDriver, cfg.MediaDir, cfg.LogFile, cfg.ScraperMode, cfg.AnalyzerMode, len(cfg.KafkaBrokers) > 0, cfg.ConsulAddr)
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	switch c.DBDriver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER must be sqlite or postgres, got %q", c.DBDriver))
	}
	switch c.ScraperMode {
	case "disabled", "chromedp":
	default:
		errs = append(errs, fmt.Errorf("SCRAPER_MODE must be disabled or chromedp, got %q", c.ScraperMode))
	}
	switch c.AnalyzerMode {
	case "disabled":
	case "anthropic":
		if c.AnthropicKey == "" {
			errs = append(errs, errors.New("ANALYZER_MODE=anthropic requires ANTHROPIC_API_KEY"))
		}
	case "perplexity":
		if c.PerplexityKey == "" {
			errs = append(errs, errors.New("ANALYZER_MODE=perplexity requires PERPLEXITY_API_KEY"))
		}
	default:
		errs = append(errs, fmt.Errorf("ANALYZER_MODE must be disabled, anthropic or perplexity, got %q", c.AnalyzerMode))
	}
	if c.BulkWorkers < 1 {
		errs = append(errs, errors.New("BULK_WORKERS must be at least 1"))
	}
	if c.MaxRetries < 0 {
		errs = append(errs, errors.New("MAX_RETRIES must not be negative"))
	}
	if len(c.KafkaBrokers) > 0 && c.KafkaTopic == "" {
		errs = append(errs, errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set"))
	}
	return errors.Join(errs...)
}

// AnalyzerKey returns the API key for the selected analyzer mode.
func (c Config) AnalyzerKey() string {
	if c.AnalyzerMode == "perplexity" {
		return c.PerplexityKey
	}
	return c.AnthropicKey
}
