package config

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Exchange struct {
		Name         string `yaml:"name"`
		RESTEndpoint string `yaml:"rest_endpoint"`
		WSEndpoint   string `yaml:"ws_endpoint"`
		TimeoutMs    int    `yaml:"timeout_ms"`
	} `yaml:"exchange"`
	Server struct {
		Port         int    `yaml:"port"`
		TemplatesDir string `yaml:"templates_dir"`
		StaticDir    string `yaml:"static_dir"`
	} `yaml:"server"`
	Logging struct {
		Level    string `yaml:"level"`
		Encoding string `yaml:"encoding"`
	} `yaml:"logging"`
	Chart struct {
		Interval         string   `yaml:"interval"`
		Theme            string   `yaml:"theme"`
		Timezone         string   `yaml:"timezone"`
		LibraryPath      string   `yaml:"library_path"`
		DisabledFeatures []string `yaml:"disabled_features"`
		Debug            bool     `yaml:"debug"`
	} `yaml:"chart"`
	Ranking struct {
		MinQuoteVolume string `yaml:"min_quote_volume"`
		QuoteSuffix    string `yaml:"quote_suffix"`
		ListLength     int    `yaml:"list_length"`
	} `yaml:"ranking"`
	Storage struct {
		FetchLogPath string `yaml:"fetch_log_path"`
	} `yaml:"storage"`
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(b)
}

// Parse decodes YAML and fills in defaults.
func Parse(b []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	c.applyDefaults()
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// MaxListLength caps every ranked view.
const MaxListLength = 20

func (c *Config) validate() error {
	v, err := decimal.NewFromString(c.Ranking.MinQuoteVolume)
	if err != nil {
		return fmt.Errorf("ranking.min_quote_volume: %w", err)
	}
	if v.IsNegative() {
		return fmt.Errorf("ranking.min_quote_volume: must not be negative, got %s", c.Ranking.MinQuoteVolume)
	}
	if c.Ranking.ListLength < 1 || c.Ranking.ListLength > MaxListLength {
		return fmt.Errorf("ranking.list_length: must be between 1 and %d, got %d", MaxListLength, c.Ranking.ListLength)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Exchange.Name == "" {
		c.Exchange.Name = "binance"
	}
	if c.Exchange.TimeoutMs == 0 {
		c.Exchange.TimeoutMs = 10000
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.TemplatesDir == "" {
		c.Server.TemplatesDir = "internal/web/templates"
	}
	if c.Server.StaticDir == "" {
		c.Server.StaticDir = "static"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Chart.Interval == "" {
		c.Chart.Interval = "60"
	}
	if c.Chart.Theme == "" {
		c.Chart.Theme = "light"
	}
	if c.Chart.Timezone == "" {
		c.Chart.Timezone = "Etc/UTC"
	}
	if c.Chart.LibraryPath == "" {
		c.Chart.LibraryPath = "/scripts/charting_library/"
	}
	if len(c.Chart.DisabledFeatures) == 0 {
		c.Chart.DisabledFeatures = []string{"timeframes_toolbar", "header_undo_redo"}
	}
	if c.Ranking.MinQuoteVolume == "" {
		c.Ranking.MinQuoteVolume = "1000000"
	}
	if c.Ranking.QuoteSuffix == "" {
		c.Ranking.QuoteSuffix = "USDT"
	}
	if c.Ranking.ListLength == 0 {
		c.Ranking.ListLength = MaxListLength
	}
}

func (c *Config) ExchangeTimeout() time.Duration {
	return time.Duration(c.Exchange.TimeoutMs) * time.Millisecond
}

// MinQuoteVolume is validated by Parse.
func (c *Config) MinQuoteVolume() decimal.Decimal {
	return decimal.RequireFromString(c.Ranking.MinQuoteVolume)
}
