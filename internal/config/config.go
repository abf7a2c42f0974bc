// Package config loads local settings from .env/yaml via viper and the
// user-editable tunables, weights, and overrides from remote spreadsheet CSV
// exports.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the locally sourced application configuration. Run tunables
// live on the remote sheet and are fetched separately, see LoadTunables.
type Config struct {
	AI     AI     `mapstructure:"ai"`
	Paths  Paths  `mapstructure:"paths"`
	Sheets Sheets `mapstructure:"sheets"`
}

// AI holds LLM provider configuration
type AI struct {
	Gemini GeminiConfig `mapstructure:"gemini"`
}

// GeminiConfig holds Google Gemini configuration
type GeminiConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Timeout string `mapstructure:"timeout"`
}

// Paths holds the on-disk artifact locations
type Paths struct {
	HistoryFile string `mapstructure:"history_file"`
	ContentFile string `mapstructure:"content_file"`
	DigestFile  string `mapstructure:"digest_file"`
}

// Sheets holds the published-CSV endpoints for the user's preference sheet
type Sheets struct {
	ConfigURL    string `mapstructure:"config_url"`
	TopicsURL    string `mapstructure:"topics_url"`
	KeywordsURL  string `mapstructure:"keywords_url"`
	OverridesURL string `mapstructure:"overrides_url"`
	Timeout      string `mapstructure:"timeout"`
}

var globalConfig *Config

// Load loads the local configuration from .env, an optional yaml file, and
// the environment.
func Load(configFile string) (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	// Load .env file if it exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Printf("Warning: Error loading .env file: %v\n", err)
		}
	}

	// Configure viper
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
		viper.SetConfigName(".newsdigest")
		viper.SetConfigType("yaml")
	}

	// Set defaults
	setDefaults()

	// Bind environment variables
	bindEnvironmentVariables()

	// Enable automatic environment variable reading
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Unmarshal into struct
	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Validate configuration
	if err := validateConfig(config); err != nil {
		return nil, err
	}

	globalConfig = config
	return config, nil
}

// Get returns the global configuration, loading it if necessary
func Get() *Config {
	if globalConfig == nil {
		config, err := Load("")
		if err != nil {
			panic(fmt.Sprintf("Failed to load configuration: %v", err))
		}
		return config
	}
	return globalConfig
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("ai.gemini.timeout", "120s")

	viper.SetDefault("paths.history_file", "history.json")
	viper.SetDefault("paths.content_file", "public/content.json")
	viper.SetDefault("paths.digest_file", "public/digest.html")

	viper.SetDefault("sheets.timeout", "15s")
}

// bindEnvironmentVariables sets up flexible environment variable binding
func bindEnvironmentVariables() {
	// Gemini API key - support multiple formats
	bindEnvKeys("ai.gemini.api_key", []string{
		"GEMINI_API_KEY",
		"GOOGLE_GEMINI_API_KEY",
		"GOOGLE_AI_API_KEY",
	})

	bindEnvKeys("sheets.config_url", []string{"CONFIG_CSV_URL"})
	bindEnvKeys("sheets.topics_url", []string{"TOPICS_CSV_URL"})
	bindEnvKeys("sheets.keywords_url", []string{"KEYWORDS_CSV_URL"})
	bindEnvKeys("sheets.overrides_url", []string{"OVERRIDES_CSV_URL"})
}

// bindEnvKeys binds the first found environment variable to a viper key
func bindEnvKeys(viperKey string, envKeys []string) {
	for _, envKey := range envKeys {
		if value := os.Getenv(envKey); value != "" {
			viper.Set(viperKey, value)
			return
		}
	}
}

// validateConfig ensures required configuration is present
func validateConfig(config *Config) error {
	var errors []string

	if config.AI.Gemini.APIKey == "" {
		errors = append(errors, "Gemini API key is required. Set GEMINI_API_KEY environment variable or ai.gemini.api_key in config file.\nGet your API key from: https://makersuite.google.com/app/apikey")
	}
	if config.Sheets.ConfigURL == "" {
		errors = append(errors, "Config sheet URL is required. Set CONFIG_CSV_URL environment variable or sheets.config_url in config file")
	}
	if config.Sheets.TopicsURL == "" {
		errors = append(errors, "Topics sheet URL is required. Set TOPICS_CSV_URL environment variable or sheets.topics_url in config file")
	}
	if config.Sheets.KeywordsURL == "" {
		errors = append(errors, "Keywords sheet URL is required. Set KEYWORDS_CSV_URL environment variable or sheets.keywords_url in config file")
	}
	if config.Sheets.OverridesURL == "" {
		errors = append(errors, "Overrides sheet URL is required. Set OVERRIDES_CSV_URL environment variable or sheets.overrides_url in config file")
	}

	if config.AI.Gemini.Timeout != "" {
		if _, err := time.ParseDuration(config.AI.Gemini.Timeout); err != nil {
			errors = append(errors, fmt.Sprintf("invalid duration for ai.gemini.timeout: %s", config.AI.Gemini.Timeout))
		}
	}
	if config.Sheets.Timeout != "" {
		if _, err := time.ParseDuration(config.Sheets.Timeout); err != nil {
			errors = append(errors, fmt.Sprintf("invalid duration for sheets.timeout: %s", config.Sheets.Timeout))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration errors:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// SheetTimeout returns the parsed sheet fetch timeout.
func (c *Config) SheetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Sheets.Timeout)
	if err != nil {
		return 15 * time.Second
	}
	return d
}

// GeminiTimeout returns the parsed Gemini call timeout.
func (c *Config) GeminiTimeout() time.Duration {
	d, err := time.ParseDuration(c.AI.Gemini.Timeout)
	if err != nil {
		return 2 * time.Minute
	}
	return d
}

// Tunables are the run parameters sourced from the remote config sheet. Each
// falls back to a default when the sheet omits the key.
type Tunables struct {
	MaxArticleHours      int
	MaxTopics            int
	MaxArticlesPerTopic  int
	ArticlesPerTopicFeed int
	DemoteFactor         float64
	MatchThreshold       float64
	GeminiModel          string
	HistoryRetentionDays int
	Timezone             string
	EnableGitPush        bool
	GitUserName          string
	GitUserEmail         string
}

// tunablesFrom applies sheet values over the defaults.
func tunablesFrom(sheet map[string]string) Tunables {
	return Tunables{
		MaxArticleHours:      intOr(sheet, "MAX_ARTICLE_HOURS", 6),
		MaxTopics:            intOr(sheet, "MAX_TOPICS", 10),
		MaxArticlesPerTopic:  intOr(sheet, "MAX_ARTICLES_PER_TOPIC", 1),
		ArticlesPerTopicFeed: intOr(sheet, "ARTICLES_TO_FETCH_PER_TOPIC", 10),
		DemoteFactor:         floatOr(sheet, "DEMOTE_FACTOR", 0.5),
		MatchThreshold:       floatOr(sheet, "DEDUPLICATION_MATCH_THRESHOLD", 0.4),
		GeminiModel:          strOr(sheet, "GEMINI_MODEL_NAME", "gemini-1.5-flash"),
		HistoryRetentionDays: intOr(sheet, "HISTORY_RETENTION_DAYS", 7),
		Timezone:             strOr(sheet, "TIMEZONE", "America/New_York"),
		EnableGitPush:        boolOr(sheet, "ENABLE_GIT_PUSH", false),
		GitUserName:          strOr(sheet, "GIT_USER_NAME", "Automated Digest Bot"),
		GitUserEmail:         strOr(sheet, "GIT_USER_EMAIL", "bot@example.com"),
	}
}

// Location resolves the configured timezone, falling back to Eastern time
// when the name is invalid.
func (t Tunables) Location() *time.Location {
	loc, err := time.LoadLocation(t.Timezone)
	if err != nil {
		loc, err = time.LoadLocation("America/New_York")
		if err != nil {
			return time.UTC
		}
	}
	return loc
}

func intOr(sheet map[string]string, key string, fallback int) int {
	raw, ok := sheet[key]
	if !ok {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func floatOr(sheet map[string]string, key string, fallback float64) float64 {
	raw, ok := sheet[key]
	if !ok {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return v
}

func boolOr(sheet map[string]string, key string, fallback bool) bool {
	raw, ok := sheet[key]
	if !ok {
		return fallback
	}
	switch strings.ToLower(raw) {
	case "true":
		return true
	case "false":
		return false
	}
	return fallback
}

func strOr(sheet map[string]string, key, fallback string) string {
	if raw, ok := sheet[key]; ok && raw != "" {
		return raw
	}
	return fallback
}

// Reset clears the global configuration (useful for testing)
func Reset() {
	globalConfig = nil
	viper.Reset()
}
