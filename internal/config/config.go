package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var (
	// configDir is the configuration directory path
	// Can be set via SetConfigDir before loading config
	configDir     string
	configDirInit bool
)

// SetConfigDir sets a custom configuration directory
// Must be called before any config loading functions
func SetConfigDir(dir string) {
	configDir = dir
	configDirInit = true
}

// GetConfigDir returns the configuration directory
// Priority: 1. Manually set via SetConfigDir, 2. ./config in current directory
func GetConfigDir() string {
	if !configDirInit {
		// Default to ./config in current working directory
		cwd, err := os.Getwd()
		if err == nil {
			configDir = filepath.Join(cwd, "config")
		}
		configDirInit = true
	}
	return configDir
}

// Config application configuration structure
type Config struct {
	API     APIConfig     `yaml:"api"`
	Search  SearchConfig  `yaml:"search"`
	Preview PreviewConfig `yaml:"preview"`
}

// APIConfig search API endpoint configuration
type APIConfig struct {
	BaseURL        string `yaml:"base_url"`
	APIKey         string `yaml:"api_key"`
	UserAgent      string `yaml:"user_agent"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// SearchConfig search behavior configuration
type SearchConfig struct {
	DefaultSources []string `yaml:"default_sources"`
	// SimulateVideo answers video searches with a canned local payload
	// instead of calling the (not yet finalized) video endpoint.
	SimulateVideo    bool `yaml:"simulate_video"`
	VideoStubDelayMS int  `yaml:"video_stub_delay_ms"`
}

// PreviewConfig transient preview storage configuration
type PreviewConfig struct {
	// Dir holds preview copies; empty means the system temp directory.
	Dir string `yaml:"dir"`
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:        "http://localhost:8000",
			APIKey:         "",
			UserAgent:      "ContextSeek/0.1",
			TimeoutSeconds: 30,
		},
		Search: SearchConfig{
			DefaultSources:   []string{"article", "book", "video", "movie", "study", "social"},
			SimulateVideo:    true,
			VideoStubDelayMS: 1500,
		},
		Preview: PreviewConfig{
			Dir: "",
		},
	}
}

// ConfigDir returns the configuration directory path
func ConfigDir() (string, error) {
	dir := GetConfigDir()
	if dir == "" {
		return "", fmt.Errorf("failed to determine config directory")
	}
	return dir, nil
}

// LogDir returns the log directory path
func LogDir() string {
	dir := GetConfigDir()
	if dir == "" {
		return "logs"
	}
	return filepath.Join(dir, "logs")
}

// ConfigPath returns the configuration file path
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load loads configuration from file and merges with secrets and
// environment overrides
func Load() (*Config, error) {
	// A .env file next to the binary is honored before reading the
	// environment, matching common deployment practice.
	_ = godotenv.Load()

	configPath, err := ConfigPath()
	if err != nil {
		return nil, err
	}

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		// Config file doesn't exist, create default config
		cfg := DefaultConfig()
		applySecrets(cfg)
		applyEnv(cfg)

		if err := Save(cfg); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		return cfg, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse config
	cfg := DefaultConfig() // Use default values as base
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applySecrets(cfg)
	applyEnv(cfg)

	// Validate config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applySecrets merges values from the .secrets file into unset fields
func applySecrets(cfg *Config) {
	secrets, _ := LoadSecrets()
	if secrets == nil {
		return
	}
	if cfg.API.APIKey == "" {
		cfg.API.APIKey = secrets.GetSearchAPIKey()
	}
}

// applyEnv merges environment variable overrides. Environment wins over
// both the config file and the secrets file.
func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("CONTEXTSEEK_BASE_URL")); v != "" {
		cfg.API.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("CONTEXTSEEK_API_KEY")); v != "" {
		cfg.API.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("CONTEXTSEEK_TIMEOUT_SECONDS")); v != "" {
		if seconds, err := strconv.Atoi(v); err == nil && seconds > 0 {
			cfg.API.TimeoutSeconds = seconds
		}
	}
}

// Save saves configuration to file
func Save(cfg *Config) error {
	configPath, err := ConfigPath()
	if err != nil {
		return err
	}

	// Ensure config directory exists
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Serialize config
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	// Add header comment
	content := "# ContextSeek Configuration File\n# For more info: https://github.com/hession/contextseek\n\n" + string(data)

	// Write file
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("config error: api.base_url cannot be empty")
	}
	if c.API.TimeoutSeconds <= 0 {
		return fmt.Errorf("config error: api.timeout_seconds must be greater than 0")
	}
	if len(c.Search.DefaultSources) == 0 {
		return fmt.Errorf("config error: search.default_sources cannot be empty")
	}

	valid := map[string]bool{
		"article": true, "book": true, "video": true,
		"movie": true, "study": true, "social": true,
	}
	for _, src := range c.Search.DefaultSources {
		if !valid[strings.ToLower(strings.TrimSpace(src))] {
			return fmt.Errorf("config error: unknown source tag %q in search.default_sources", src)
		}
	}

	if c.Search.VideoStubDelayMS < 0 {
		return fmt.Errorf("config error: search.video_stub_delay_ms cannot be negative")
	}

	return nil
}

// IsAPIKeyConfigured checks if the search API key is configured
func (c *Config) IsAPIKeyConfigured() bool {
	return c.API.APIKey != ""
}

// String returns string representation of config (hides sensitive info)
func (c *Config) String() string {
	return fmt.Sprintf(`ContextSeek Configuration:
  API:
    Base URL: %s
    API Key: %s
    User Agent: %s
    Timeout Seconds: %d
  Search:
    Default Sources: %s
    Simulate Video: %v
    Video Stub Delay: %dms
  Preview:
    Dir: %s`,
		c.API.BaseURL,
		redactAPIKey(c.API.APIKey),
		c.API.UserAgent,
		c.API.TimeoutSeconds,
		strings.Join(c.Search.DefaultSources, ", "),
		c.Search.SimulateVideo,
		c.Search.VideoStubDelayMS,
		previewDirDisplay(c.Preview.Dir),
	)
}

func redactAPIKey(value string) string {
	if value == "" {
		return "(not configured)"
	}
	if len(value) > 8 {
		return value[:8] + "..."
	}
	return "***"
}

func previewDirDisplay(dir string) string {
	if dir == "" {
		return "(system temp)"
	}
	return dir
}
