// Package config handles configuration loading and management for CrewOS.
// It supports XDG config paths, project-level overrides, and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for CrewOS.
type Config struct {
	Oracle OracleConfig `mapstructure:"oracle"`
	Kernel KernelConfig `mapstructure:"kernel"`
	Shell  ShellConfig  `mapstructure:"shell"`
}

// OracleConfig holds decision oracle settings.
type OracleConfig struct {
	// Model is the Anthropic model ID consulted for agent decisions.
	Model string `mapstructure:"model"`
	// APIKey is the Anthropic API key, or a ${VAR} reference.
	APIKey string `mapstructure:"api_key"`
	// MaxTokens caps the completion size per consultation.
	MaxTokens int64 `mapstructure:"max_tokens"`
	// UseAWSBedrock routes consultations through AWS Bedrock instead of
	// the Anthropic API.
	UseAWSBedrock bool `mapstructure:"use_aws_bedrock"`
	// AWSRegion is the Bedrock region, empty for the SDK default chain.
	AWSRegion string `mapstructure:"aws_region"`
	// AWSProfile is the shared credentials profile for Bedrock.
	AWSProfile string `mapstructure:"aws_profile"`
	// Scripted replaces the model with canned decisions for offline runs.
	Scripted bool `mapstructure:"scripted"`
}

// KernelConfig holds kernel run-loop settings.
type KernelConfig struct {
	// MaxTicks bounds a timed run.
	MaxTicks int `mapstructure:"max_ticks"`
	// TickDelay is the pause between ticks in a timed run.
	TickDelay time.Duration `mapstructure:"tick_delay"`
	// ConsultCost is the token estimate charged per oracle consultation
	// when the oracle reports no usage of its own.
	ConsultCost int64 `mapstructure:"consult_cost"`
	// DecisionRetryLimit fails a task after this many unusable decisions.
	// 0 retries forever.
	DecisionRetryLimit int `mapstructure:"decision_retry_limit"`
}

// ShellConfig holds interactive shell display settings.
type ShellConfig struct {
	// Color toggles ANSI color in shell and CLI output.
	Color bool `mapstructure:"color"`
}

// Load loads configuration from XDG paths, project overrides, and environment variables.
// Precedence (highest to lowest):
// 1. Environment variables (ANTHROPIC_API_KEY)
// 2. Project config (.crewos.yaml in current directory or parent)
// 3. User config (~/.config/crewos/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	// Load user config from XDG path
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(getUserConfigDir())

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	// Load project config if present
	if projectConfig := findProjectConfig(); projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			// Project config takes precedence over user config.
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	// Environment variable overrides
	v.AutomaticEnv()
	v.BindEnv("oracle.api_key", "ANTHROPIC_API_KEY")
	v.BindEnv("oracle.model", "CREWOS_MODEL")
	v.BindEnv("oracle.aws_region", "AWS_REGION")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Expand ${VAR} references
	cfg.Oracle.APIKey = os.ExpandEnv(cfg.Oracle.APIKey)

	return cfg, nil
}

// LoadFromPath loads configuration from a specific path.
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Oracle.APIKey = os.ExpandEnv(cfg.Oracle.APIKey)

	return cfg, nil
}

// Save writes the current configuration to the user config file.
func Save(cfg *Config) error {
	userConfigDir := getUserConfigDir()
	if err := os.MkdirAll(userConfigDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(filepath.Join(userConfigDir, "config.yaml"))

	v.Set("oracle.model", cfg.Oracle.Model)
	v.Set("oracle.api_key", cfg.Oracle.APIKey)
	v.Set("oracle.max_tokens", cfg.Oracle.MaxTokens)
	v.Set("oracle.use_aws_bedrock", cfg.Oracle.UseAWSBedrock)
	v.Set("oracle.aws_region", cfg.Oracle.AWSRegion)
	v.Set("oracle.aws_profile", cfg.Oracle.AWSProfile)
	v.Set("oracle.scripted", cfg.Oracle.Scripted)
	v.Set("kernel.max_ticks", cfg.Kernel.MaxTicks)
	v.Set("kernel.tick_delay", cfg.Kernel.TickDelay.String())
	v.Set("kernel.consult_cost", cfg.Kernel.ConsultCost)
	v.Set("kernel.decision_retry_limit", cfg.Kernel.DecisionRetryLimit)
	v.Set("shell.color", cfg.Shell.Color)

	return v.WriteConfig()
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// GetProjectConfigPath returns the path to the project config file if it exists.
func GetProjectConfigPath() string {
	return findProjectConfig()
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	// Oracle defaults: offline scripted mode until a key is configured.
	v.SetDefault("oracle.model", "")
	v.SetDefault("oracle.api_key", "")
	v.SetDefault("oracle.max_tokens", 1024)
	v.SetDefault("oracle.use_aws_bedrock", false)
	v.SetDefault("oracle.aws_region", "")
	v.SetDefault("oracle.aws_profile", "")
	v.SetDefault("oracle.scripted", false)

	// Kernel defaults
	v.SetDefault("kernel.max_ticks", 25)
	v.SetDefault("kernel.tick_delay", "500ms")
	v.SetDefault("kernel.consult_cost", 100)
	v.SetDefault("kernel.decision_retry_limit", 0)

	// Shell defaults
	v.SetDefault("shell.color", true)
}

// getUserConfigDir returns the XDG config directory for CrewOS.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "crewos")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "crewos")
	}
	return filepath.Join(home, ".config", "crewos")
}

// findProjectConfig searches for .crewos.yaml in the current directory and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ".crewos.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Oracle: OracleConfig{
			MaxTokens: 1024,
		},
		Kernel: KernelConfig{
			MaxTicks:    25,
			TickDelay:   500 * time.Millisecond,
			ConsultCost: 100,
		},
		Shell: ShellConfig{
			Color: true,
		},
	}
}
