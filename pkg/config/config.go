package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"RiskRegime/pkg/logger"
)

type Config struct {
	Environment string `yaml:"environment" default:"development" validate:"required"`

	Server struct {
		Port            int           `yaml:"port" default:"8080" validate:"min=1,max=65535"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"15s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"30s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		Debug           bool          `yaml:"debug"`
	} `yaml:"server"`

	Logger logger.Config `yaml:"logger"`

	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`

	Source struct {
		Type    string        `yaml:"type" default:"yahoo" validate:"oneof=yahoo clickhouse mock"`
		BaseURL string        `yaml:"base_url" default:"https://query1.finance.yahoo.com"`
		Timeout time.Duration `yaml:"timeout" default:"10s"`
		Period  string        `yaml:"period" default:"1y" validate:"oneof=1y 2y 5y 10y"`
		Cache   struct {
			Enabled bool          `yaml:"enabled"`
			Backend string        `yaml:"backend" default:"memory" validate:"oneof=memory redis layered"`
			TTL     time.Duration `yaml:"ttl" default:"15m"`
			MaxSize int           `yaml:"max_size" default:"1000"`
		} `yaml:"cache"`
	} `yaml:"source"`

	ModelStore struct {
		Type       string `yaml:"type" default:"file" validate:"oneof=file sqlite redis"`
		Dir        string `yaml:"dir" default:"models"`
		SQLitePath string `yaml:"sqlite_path" default:"models/models.db"`
		Key        string `yaml:"key" default:"risk_model" validate:"required"`
	} `yaml:"model_store"`

	Training struct {
		Symbols         []string      `yaml:"symbols"`
		Period          string        `yaml:"period" default:"2y" validate:"oneof=1y 2y 5y 10y"`
		Seed            int64         `yaml:"seed" default:"42"`
		Trees           int           `yaml:"trees" default:"100" validate:"min=1"`
		MaxDepth        int           `yaml:"max_depth" validate:"min=0"`
		MinSamplesSplit int           `yaml:"min_samples_split" default:"2" validate:"min=2"`
		MinSamplesLeaf  int           `yaml:"min_samples_leaf" default:"1" validate:"min=1"`
		TestFraction    float64       `yaml:"test_fraction" default:"0.2" validate:"gt=0,lt=1"`
		StrictSymbols   bool          `yaml:"strict_symbols"`
		Concurrency     int           `yaml:"concurrency" default:"4" validate:"min=1"`
		Schedule        string        `yaml:"schedule"`
		Timeout         time.Duration `yaml:"timeout" default:"10m"`
	} `yaml:"training"`

	ClickHouse struct {
		Host             string        `yaml:"host" default:"localhost"`
		Port             int           `yaml:"port" default:"9000"`
		Database         string        `yaml:"database" default:"market"`
		User             string        `yaml:"user" default:"default"`
		Password         string        `yaml:"password"`
		Table            string        `yaml:"table" default:"daily_bars"`
		UseHTTP          bool          `yaml:"use_http"`
		DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout      time.Duration `yaml:"read_timeout" default:"30s"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"30s"`
	} `yaml:"clickhouse"`

	Redis struct {
		Addr     string `yaml:"addr" default:"localhost:6379"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		PoolSize int    `yaml:"pool_size" default:"10"`
		Prefix   string `yaml:"prefix" default:"riskregime"`
	} `yaml:"redis"`

	Kafka struct {
		Enabled      bool          `yaml:"enabled"`
		Brokers      []string      `yaml:"brokers"`
		Topic        string        `yaml:"topic" default:"risk.events"`
		RequiredAcks int           `yaml:"required_acks" default:"-1"`
		Compression  string        `yaml:"compression" default:"snappy" validate:"oneof=none gzip snappy lz4 zstd"`
		MaxAttempts  int           `yaml:"max_attempts" default:"3"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
		Async        bool          `yaml:"async"`
	} `yaml:"kafka"`
}

var validate = validator.New()

// Load reads a YAML file, applies defaults and validates the result.
// An empty path yields the defaults.
func Load(path string) (*Config, error) {
	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}
	c.applyEnv(os.Getenv)
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv("SOURCE"); v != "" {
		c.Source.Type = v
	}
	if v := getenv("MODEL_STORE"); v != "" {
		c.ModelStore.Type = v
	}
	if v := getenv("MODEL_DIR"); v != "" {
		c.ModelStore.Dir = v
	}
	if v := getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = splitList(v)
		c.Kafka.Enabled = true
	}
	if v := getenv("SYMBOLS"); v != "" {
		c.Training.Symbols = splitList(v)
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.Logger.Level = v
	}
}

// Validate checks struct tags and the cross-field rules tags cannot express.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
