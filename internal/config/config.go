// internal/config/config.go
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	RabbitMQ struct {
		URL string `yaml:"url"`
	} `yaml:"rabbitmq"`

	Database struct {
		URL string `yaml:"url"`
	} `yaml:"database"`

	Workers int `yaml:"workers"`

	Auth struct {
		JWTSecret string `yaml:"jwt_secret"`
	} `yaml:"auth"`

	Onboarding struct {
		// Table is the onboarding record table identifier.
		Table string `yaml:"table"`
		// SharedPoolID is the id of the shared free-tier identity pool.
		SharedPoolID string `yaml:"shared_pool_id"`
	} `yaml:"onboarding"`
}

func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.Onboarding.Table == "" {
		return nil, fmt.Errorf("onboarding.table is required")
	}
	if cfg.Onboarding.SharedPoolID == "" {
		return nil, fmt.Errorf("onboarding.shared_pool_id is required")
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return cfg, nil
}
