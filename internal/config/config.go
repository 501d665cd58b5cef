package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Config is the service configuration. The merge core in pkg/docx takes no
// configuration at all; everything here belongs to the HTTP service and the
// external collaborators (object storage, OpenAI).
type Config struct {
	Debug   bool          `mapstructure:"debug"`
	Server  ServerConfig  `mapstructure:"server"`
	Storage StorageConfig `mapstructure:"storage"`
	OpenAI  OpenAIConfig  `mapstructure:"openai"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr           string `mapstructure:"addr"`
	MaxUploadBytes int64  `mapstructure:"max_upload_bytes"`
}

// StorageConfig configures the Supabase Storage client.
type StorageConfig struct {
	URL            string `mapstructure:"url"`
	Key            string `mapstructure:"key"`
	Bucket         string `mapstructure:"bucket"`
	SignTTLSeconds int    `mapstructure:"sign_ttl_seconds"`
}

// OpenAIConfig configures the text extraction assistant.
type OpenAIConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// Load reads the configuration from an optional config file and the
// environment. When configPath is empty, .docmerger.yaml is searched in
// the working directory and the home directory; a missing file is not an
// error, environment variables and defaults still apply.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetDefault("debug", false)
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.max_upload_bytes", 10<<20)
	v.SetDefault("storage.sign_ttl_seconds", 3600)
	v.SetDefault("openai.model", "gpt-4o")

	// Environment names follow the original deployment.
	bindings := map[string]string{
		"storage.url":    "SUPABASE_URL",
		"storage.key":    "SUPABASE_KEY",
		"storage.bucket": "SUPABASE_BUCKET",
		"openai.api_key": "OPENAI_API_KEY",
		"server.addr":    "DOCMERGER_ADDR",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, err
		}
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigName(".docmerger")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound || configPath != "" {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	return &cfg, nil
}

// ValidateService checks the settings the HTTP service cannot run without.
// The merge CLI path deliberately needs none of them.
func (c *Config) ValidateService() error {
	if c.Storage.URL == "" {
		return fmt.Errorf("storage URL must be set (SUPABASE_URL)")
	}
	if c.Storage.Key == "" {
		return fmt.Errorf("storage key must be set (SUPABASE_KEY)")
	}
	if c.Storage.Bucket == "" {
		return fmt.Errorf("storage bucket must be set (SUPABASE_BUCKET)")
	}
	if c.OpenAI.APIKey == "" {
		return fmt.Errorf("OpenAI API key must be set (OPENAI_API_KEY)")
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("server max upload size must be positive")
	}
	return nil
}
