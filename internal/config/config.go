// config.go - Application configuration

package config

import (
	"time"
)

type SummarizerConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Temperature float64       `mapstructure:"temperature"`
	MaxAttempts uint          `mapstructure:"max_attempts"`
	RetryDelay  time.Duration `mapstructure:"retry_delay"`
	MaxDelay    time.Duration `mapstructure:"max_delay"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type PageStoreConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	Email        string        `mapstructure:"email"`
	APIToken     string        `mapstructure:"api_token"`
	SpaceKey     string        `mapstructure:"space_key"`
	RootParentID string        `mapstructure:"root_parent_id"`
	MaxAttempts  uint          `mapstructure:"max_attempts"`
	RetryDelay   time.Duration `mapstructure:"retry_delay"`
	MaxDelay     time.Duration `mapstructure:"max_delay"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

type PublishConfig struct {
	CodeRootPath   string   `mapstructure:"code_root_path"`
	RootTitle      string   `mapstructure:"root_title"`
	Workspace      string   `mapstructure:"workspace"`
	FileSuffixes   []string `mapstructure:"file_suffixes"`
	IgnorePatterns []string `mapstructure:"ignore_patterns"`
	UseGitignore   bool     `mapstructure:"use_gitignore"`
	MaxFileSizeKB  int      `mapstructure:"max_file_size_kb"`
	SummaryWorkers int      `mapstructure:"summary_workers"`
	MetricsFile    string   `mapstructure:"metrics_file"`
}

type ServerConfig struct {
	Address       string        `mapstructure:"address"`
	Port          string        `mapstructure:"port"`
	CustomMessage string        `mapstructure:"custom_message"`
	RateLimit     float64       `mapstructure:"rate_limit"`
	RateBurst     int           `mapstructure:"rate_burst"`
	ReadTimeout   time.Duration `mapstructure:"read_timeout"`
	WriteTimeout  time.Duration `mapstructure:"write_timeout"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	Dir   string `mapstructure:"dir"`
}

// Config is loaded once at startup and passed by value to every component.
type Config struct {
	Summarizer SummarizerConfig `mapstructure:"summarizer"`
	PageStore  PageStoreConfig  `mapstructure:"pagestore"`
	Publish    PublishConfig    `mapstructure:"publish"`
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
}

const DefaultCustomMessage = "Welcome to the App deployed via GitHub Actions!"

var DefaultSummarizerConfig = SummarizerConfig{
	BaseURL:     "https://api.openai.com/v1",
	Model:       "gpt-3.5-turbo",
	MaxTokens:   2048,
	Temperature: 0.2,
	MaxAttempts: 3,
	RetryDelay:  5 * time.Second,
	MaxDelay:    time.Minute,
	Timeout:     120 * time.Second,
}

var DefaultPageStoreConfig = PageStoreConfig{
	MaxAttempts: 3,
	RetryDelay:  5 * time.Second,
	MaxDelay:    time.Minute,
	Timeout:     30 * time.Second,
}

// DefaultPublishConfig mirrors every directory and every .py file. Ignore rules,
// the root .gitignore and the size ceiling are opt-in.
var DefaultPublishConfig = PublishConfig{
	CodeRootPath:   "app",
	RootTitle:      "Project Documentation",
	Workspace:      ".",
	FileSuffixes:   []string{".py"},
	SummaryWorkers: 1,
}

var DefaultServerConfig = ServerConfig{
	Address:       ":8000",
	CustomMessage: DefaultCustomMessage,
	RateLimit:     100,
	RateBurst:     100,
	ReadTimeout:   30 * time.Second,
	WriteTimeout:  30 * time.Second,
}

var DefaultLogConfig = LogConfig{
	Level: "info",
}

var DefaultConfig = Config{
	Summarizer: DefaultSummarizerConfig,
	PageStore:  DefaultPageStoreConfig,
	Publish:    DefaultPublishConfig,
	Server:     DefaultServerConfig,
	Log:        DefaultLogConfig,
}
