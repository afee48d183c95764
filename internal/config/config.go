package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

// Config holds the full application configuration.
type Config struct {
	Server ServerConfig   `mapstructure:"server"`
	LLM    ProviderConfig `mapstructure:"llm"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port    int    `mapstructure:"port"`
	LogFile string `mapstructure:"log_file"`
	AppYAML string `mapstructure:"app_yaml"`
}

// ProviderConfig holds connection details for the LLM provider.
type ProviderConfig struct {
	BaseURL        string  `mapstructure:"base_url"`
	APIKey         string  `mapstructure:"api_key"`
	Model          string  `mapstructure:"model"`
	Temperature    float32 `mapstructure:"temperature"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds"`
}

// Timeout returns the per-call deadline for outbound LLM requests.
func (p ProviderConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutSeconds) * time.Second
}

// Available reports whether the provider is configured well enough to
// attempt network calls. Without an API key the service still starts,
// but the generation endpoint answers 503.
func (p ProviderConfig) Available() bool {
	return p.APIKey != ""
}

// Load reads the Viper-populated config into a Config struct.
func Load() (*Config, error) {
	viper.SetDefault("server.port", 5000)
	viper.SetDefault("server.log_file", "api_calls.log")
	viper.SetDefault("server.app_yaml", "app.yaml")
	viper.SetDefault("llm.base_url", "https://api.groq.com/openai/v1")
	viper.SetDefault("llm.model", "meta-llama/llama-4-maverick-17b-128e-instruct")
	viper.SetDefault("llm.temperature", 0.7)
	viper.SetDefault("llm.timeout_seconds", 30)

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, errors.New("unmarshal config: " + err.Error())
	}

	// Environment fallbacks for container / .env deployments.
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = viper.GetString("GROQ_API_KEY")
	}
	if v := viper.GetString("LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := viper.GetString("LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	return &cfg, nil
}
