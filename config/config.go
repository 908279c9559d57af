package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the errand service
type Config struct {
	General   GeneralConfig   `mapstructure:"general"`
	Server    ServerConfig    `mapstructure:"server"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Tools     ToolsConfig     `mapstructure:"tools"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// GeneralConfig contains general application settings
type GeneralConfig struct {
	Debug          bool          `mapstructure:"debug"`
	LogLevel       string        `mapstructure:"log_level"`
	DataDir        string        `mapstructure:"data_dir"`
	DefaultTimeout time.Duration `mapstructure:"default_timeout"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Address        string `mapstructure:"address"`
	UploadMaxBytes int64  `mapstructure:"upload_max_bytes"`
}

// LLMConfig contains LLM provider configurations
type LLMConfig struct {
	Providers map[string]LLMProvider `mapstructure:"providers"`
	Routing   LLMRoutingConfig       `mapstructure:"routing"`
}

// LLMProvider represents a single LLM provider configuration
type LLMProvider struct {
	Type    string              `mapstructure:"type"` // openai, anthropic
	APIKey  string              `mapstructure:"api_key"`
	BaseURL string              `mapstructure:"base_url"`
	Models  map[string]LLMModel `mapstructure:"models"`
	Timeout time.Duration       `mapstructure:"timeout"`
}

// LLMModel represents a specific model configuration
type LLMModel struct {
	Name            string   `mapstructure:"name"`
	APIName         string   `mapstructure:"api_name"`
	MaxTokens       int      `mapstructure:"max_tokens"`
	Temperature     float64  `mapstructure:"temperature"`
	CostPer1K       float64  `mapstructure:"cost_per_1k_input"`
	CostPer1KOutput float64  `mapstructure:"cost_per_1k_output"`
	Capabilities    []string `mapstructure:"capabilities"` // planning, execution, synthesis
}

// LLMRoutingConfig defines which model to use for each orchestration role
type LLMRoutingConfig struct {
	Planning  string `mapstructure:"planning"`  // plan the next step
	Execution string `mapstructure:"execution"` // translate a step into a tool call
	Synthesis string `mapstructure:"synthesis"` // synthesize the final answer
	Fallback  string `mapstructure:"fallback"`
}

// ModelFor returns the routed model for a role, falling back when unset.
func (r LLMRoutingConfig) ModelFor(role string) string {
	var m string
	switch role {
	case "planning":
		m = r.Planning
	case "execution":
		m = r.Execution
	case "synthesis":
		m = r.Synthesis
	}
	if m == "" {
		m = r.Fallback
	}
	return m
}

// ToolsConfig contains per-tool settings
type ToolsConfig struct {
	WebSearch    WebSearchConfig    `mapstructure:"web_search"`
	WebLookup    WebLookupConfig    `mapstructure:"web_lookup"`
	GitHub       GitHubConfig       `mapstructure:"github"`
	Arxiv        ArxivConfig        `mapstructure:"arxiv"`
	FileAnalysis FileAnalysisConfig `mapstructure:"file_analysis"`
}

// WebSearchConfig contains web search settings
type WebSearchConfig struct {
	Provider     string        `mapstructure:"provider"` // duckduckgo, serper, brave
	SerperAPIKey string        `mapstructure:"serper_api_key"`
	BraveAPIKey  string        `mapstructure:"brave_api_key"`
	MaxResults   int           `mapstructure:"max_results"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// WebLookupConfig contains URL fetch settings
type WebLookupConfig struct {
	Renderer string        `mapstructure:"renderer"` // plain, chromedp
	MaxChars int           `mapstructure:"max_chars"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// GitHubConfig contains repository search settings
type GitHubConfig struct {
	Token      string `mapstructure:"token"`
	MaxResults int    `mapstructure:"max_results"`
}

// ArxivConfig contains paper search settings
type ArxivConfig struct {
	MaxResults int `mapstructure:"max_results"`
}

// FileAnalysisConfig controls uploaded-document analysis
type FileAnalysisConfig struct {
	ChunkSize    int `mapstructure:"chunk_size"`
	ChunkOverlap int `mapstructure:"chunk_overlap"`
	MaxPassages  int `mapstructure:"max_passages"`
}

// StorageConfig contains the run archive settings
type StorageConfig struct {
	Backend  string         `mapstructure:"backend"` // postgres, redis, none
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

// PostgresConfig contains Postgres connection settings
type PostgresConfig struct {
	URL      string        `mapstructure:"url"`
	Host     string        `mapstructure:"host"`
	Port     string        `mapstructure:"port"`
	User     string        `mapstructure:"user"`
	Password string        `mapstructure:"password"`
	DBName   string        `mapstructure:"dbname"`
	SSLMode  string        `mapstructure:"sslmode"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

func (p PostgresConfig) Validate() error {
	if strings.TrimSpace(p.URL) != "" {
		return nil
	}
	if strings.TrimSpace(p.Host) == "" {
		return fmt.Errorf("storage.postgres.host required when url is not provided")
	}
	if strings.TrimSpace(p.DBName) == "" {
		return fmt.Errorf("storage.postgres.dbname required when url is not provided")
	}
	return nil
}

// DSN builds a connection string from the discrete fields when URL is unset.
func (p PostgresConfig) DSN() string {
	if strings.TrimSpace(p.URL) != "" {
		return p.URL
	}
	port := p.Port
	if port == "" {
		port = "5432"
	}
	ssl := p.SSLMode
	if ssl == "" {
		ssl = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", p.User, p.Password, p.Host, port, p.DBName, ssl)
}

// RedisConfig contains Redis connection settings
type RedisConfig struct {
	Host     string        `mapstructure:"host"`
	Port     string        `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

func (r RedisConfig) Validate() error {
	if strings.TrimSpace(r.Host) == "" {
		return fmt.Errorf("storage.redis.host required")
	}
	if strings.TrimSpace(r.Port) == "" {
		return fmt.Errorf("storage.redis.port required")
	}
	return nil
}

// TelemetryConfig contains telemetry and cost tracking settings
type TelemetryConfig struct {
	Enabled      bool `mapstructure:"enabled"`
	CostTracking bool `mapstructure:"cost_tracking"`
}

// Validate checks cross-section constraints that LoadConfig enforces.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "", "none":
	case "postgres":
		if err := c.Storage.Postgres.Validate(); err != nil {
			return err
		}
	case "redis":
		if err := c.Storage.Redis.Validate(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("storage.backend must be postgres, redis, or none (got %q)", c.Storage.Backend)
	}
	if len(c.LLM.Providers) == 0 {
		return fmt.Errorf("llm.providers must configure at least one provider")
	}
	return nil
}

// LoadConfig loads config from file with ERRAND_* env overrides
func LoadConfig(path string) *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("json")
	viper.SetDefault("general.data_dir", "./data")
	viper.SetDefault("general.default_timeout", "2m")
	viper.SetDefault("server.address", ":10080")
	viper.SetDefault("server.upload_max_bytes", 16<<20)
	viper.SetDefault("tools.web_search.provider", "duckduckgo")
	viper.SetDefault("tools.web_search.max_results", 5)
	viper.SetDefault("tools.web_lookup.renderer", "plain")
	viper.SetDefault("tools.web_lookup.max_chars", 20000)
	viper.SetDefault("tools.github.max_results", 5)
	viper.SetDefault("tools.arxiv.max_results", 5)
	viper.SetDefault("tools.file_analysis.chunk_size", 1200)
	viper.SetDefault("tools.file_analysis.chunk_overlap", 200)
	viper.SetDefault("tools.file_analysis.max_passages", 4)
	viper.SetDefault("storage.backend", "none")
	viper.SetDefault("storage.redis.ttl", "168h")
	viper.SetDefault("telemetry.enabled", true)
	viper.SetDefault("telemetry.cost_tracking", true)

	if path == "" {
		viper.AddConfigPath("./config")
		viper.AddConfigPath(".")
		exe, _ := os.Executable()
		exeDir := filepath.Dir(exe)
		viper.AddConfigPath(exeDir)
		viper.AddConfigPath(filepath.Join(exeDir, ".."))
	} else {
		viper.SetConfigFile(path)
	}

	viper.SetEnvPrefix("ERRAND")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		panic(fmt.Errorf("fatal error config file: %w", err))
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		panic(fmt.Errorf("fatal error config file: %w", err))
	}
	if err := config.Validate(); err != nil {
		panic(err)
	}
	return &config
}
