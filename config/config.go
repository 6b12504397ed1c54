package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
	"github.com/k1LoW/expand"
)

var (
	homePath       string
	configHomePath string
	dataHomePath   string
	stateHomePath  string
)

// Config is the user-facing configuration of the poster generator.
// Values may reference environment variables (${PEXELS_API_KEY}); they are
// expanded at load time.
type Config struct {
	// Pexels API key used for background image search
	APIKey string `yaml:"apiKey,omitempty" json:"apiKey,omitempty"`
	// Search endpoint override, mainly for testing
	SearchEndpoint string `yaml:"searchEndpoint,omitempty" json:"searchEndpoint,omitempty"`
	// Photos fetched per search page
	PerPage int `yaml:"perPage,omitempty" json:"perPage,omitempty"`
	// Call-to-action text in the footer
	CTAText string `yaml:"ctaText,omitempty" json:"ctaText,omitempty"`
	// Link text in the footer
	LinkText string `yaml:"linkText,omitempty" json:"linkText,omitempty"`
	// URL encoded into the footer QR code
	LinkURL string `yaml:"linkURL,omitempty" json:"linkURL,omitempty"`
	// Webhook endpoint rendered posters are published to
	WebhookURL string `yaml:"webhookURL,omitempty" json:"webhookURL,omitempty"`
	// Directory holding logo, fonts and icons
	AssetsDir string `yaml:"assetsDir,omitempty" json:"assetsDir,omitempty"`
}

func init() {
	var err error
	homePath, err = os.UserHomeDir()
	if err != nil {
		panic(fmt.Sprintf("failed to get home directory: %v", err))
	}
}

// Load loads the configuration from the config file.
// It searches for config files in the following order:
// 1. $XDG_CONFIG_HOME/eventimg/config-{profile}.yml
// 2. $XDG_CONFIG_HOME/eventimg/config.yml
// If no config file is found, it returns a Config holding only the
// environment-derived defaults.
func Load(profile string) (*Config, error) {
	var configBasePaths []string
	if profile != "" {
		configBasePaths = append(configBasePaths, filepath.Join(configPath(), fmt.Sprintf("config-%s", profile)))
	}
	configBasePaths = append(configBasePaths, filepath.Join(configPath(), "config"))
	cfg := &Config{}
	for _, basePath := range configBasePaths {
		for _, ext := range []string{".yml", ".yaml"} {
			configPath := basePath + ext
			if b, err := os.ReadFile(configPath); err == nil {
				expanded := expand.ExpandenvYAMLBytes(b)
				if err := yaml.Unmarshal(expanded, cfg); err != nil {
					return nil, fmt.Errorf("failed to unmarshal config: %w", err)
				}
				cfg.applyEnv()
				return cfg, nil
			}
		}
	}
	// If no config file is found, fall back to environment variables only
	cfg.applyEnv()
	return cfg, nil
}

// applyEnv fills unset fields from the environment.
func (c *Config) applyEnv() {
	if c.APIKey == "" {
		c.APIKey = os.Getenv("PEXELS_API_KEY")
	}
	if c.WebhookURL == "" {
		c.WebhookURL = os.Getenv("EVENTIMG_WEBHOOK_URL")
	}
}

// configPath returns the path to the configuration directory.
func configPath() string {
	if configHomePath != "" {
		return configHomePath
	}
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		configHomePath = filepath.Join(v, "eventimg")
	} else {
		configHomePath = filepath.Join(homePath, ".config", "eventimg")
	}
	return configHomePath
}

// DataHomePath returns the path to the data home directory.
func DataHomePath() string {
	if dataHomePath != "" {
		return dataHomePath
	}
	if v := os.Getenv("XDG_DATA_HOME"); v != "" {
		dataHomePath = filepath.Join(v, "eventimg")
	} else {
		dataHomePath = filepath.Join(homePath, ".local", "share", "eventimg")
	}
	return dataHomePath
}

// StateHomePath returns the path to the state home directory.
func StateHomePath() string {
	if stateHomePath != "" {
		return stateHomePath
	}
	if v := os.Getenv("XDG_STATE_HOME"); v != "" {
		stateHomePath = filepath.Join(v, "eventimg")
	} else {
		stateHomePath = filepath.Join(homePath, ".local", "state", "eventimg")
	}
	return stateHomePath
}
