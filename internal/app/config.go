// Package app assembles the calculator bot: configuration, infrastructure
// bootstrap, and Telegram run options.
package app

import (
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	coreconfig "github.com/iwebix/webixbot/core/config"
	coredatabase "github.com/iwebix/webixbot/core/database"
)

// BotConfig holds presentation settings specific to this bot.
type BotConfig struct {
	OwnerUsername  string `yaml:"owner_username" envconfig:"BOT_OWNER_USERNAME"`
	ExampleShopURL string `yaml:"example_shop_url" envconfig:"BOT_EXAMPLE_SHOP_URL"`
	ExampleBookURL string `yaml:"example_booking_url" envconfig:"BOT_EXAMPLE_BOOKING_URL"`
}

// CalculatorConfig holds catalog and coupon settings.
type CalculatorConfig struct {
	// CatalogPath points at a catalog YAML file; empty uses the embedded one.
	CatalogPath   string `yaml:"catalog_path" envconfig:"CALC_CATALOG_PATH"`
	CouponCode    string `yaml:"coupon_code" envconfig:"CALC_COUPON_CODE"`
	CouponPercent int    `yaml:"coupon_percent" envconfig:"CALC_COUPON_PERCENT"`
}

// Config is the full application configuration: the reusable core sections
// plus database and bot-specific ones.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Database   coredatabase.Config `yaml:"database"`
	Bot        BotConfig           `yaml:"bot"`
	Calculator CalculatorConfig    `yaml:"calculator"`
}

// CoreConfig exposes the embedded core configuration for the runner.
func (c *Config) CoreConfig() *coreconfig.Config { return &c.Config }

// LoadConfig reads configuration from a YAML file with environment overrides.
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := coreconfig.Normalize(&cfg.Config); err != nil {
		return nil, err
	}
	if err := normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func normalize(cfg *Config) error {
	if strings.TrimSpace(cfg.Bot.OwnerUsername) == "" {
		return fmt.Errorf("bot.owner_username is required")
	}
	cfg.Bot.OwnerUsername = strings.TrimPrefix(strings.TrimSpace(cfg.Bot.OwnerUsername), "@")

	if cfg.Calculator.CouponPercent < 0 || cfg.Calculator.CouponPercent > 100 {
		return fmt.Errorf("calculator.coupon_percent must be within 0..100")
	}
	if cfg.Calculator.CouponCode != "" && cfg.Calculator.CouponPercent == 0 {
		cfg.Calculator.CouponPercent = 5
	}

	if cfg.Database.MaxConnections <= 0 {
		cfg.Database.MaxConnections = 4
	}
	return nil
}
