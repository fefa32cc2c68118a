package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"mail-invite-extractor/internal/models"

	"gopkg.in/yaml.v2"
)

const (
	DefaultMailBox     = "INBOX"
	DefaultRefreshTime = time.Minute
	DefaultMaxResults  = 5
	DefaultLabel       = "AI"
	DefaultLogLevel    = "info"
)

// Load reads the configuration from the specified YAML file, fills defaults and validates it
func Load(filepath string) (*models.Config, error) {
	configFile, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("error reading config %s: %w", filepath, err)
	}

	var config models.Config
	if err := yaml.Unmarshal(configFile, &config); err != nil {
		return nil, fmt.Errorf("error parsing config %s: %w", filepath, err)
	}

	applyDefaults(&config)
	if err := Validate(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func applyDefaults(cfg *models.Config) {
	if cfg.Email.MailBox == "" {
		cfg.Email.MailBox = DefaultMailBox
	}
	if cfg.Email.RefreshTime <= 0 {
		cfg.Email.RefreshTime = DefaultRefreshTime
	}
	if cfg.Filter.MaxResults <= 0 {
		cfg.Filter.MaxResults = DefaultMaxResults
	}
	if cfg.Label == "" {
		cfg.Label = DefaultLabel
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
}

// Validate checks the settings the IMAP poller cannot run without
func Validate(cfg *models.Config) error {
	if cfg.Email.Imap == "" {
		return errors.New("email.imap is required")
	}
	if cfg.Email.Login == "" {
		return errors.New("email.login is required")
	}
	return nil
}
