package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"codebase-docgen/internal/errs"
)

// envBindings maps config keys to the environment variables the CI workflow exports.
var envBindings = map[string][]string{
	"summarizer.api_key":      {"OPENAI_API_KEY"},
	"summarizer.base_url":     {"OPENAI_BASE_URL"},
	"summarizer.model":        {"OPENAI_MODEL"},
	"summarizer.max_tokens":   {"OPENAI_MAX_TOKENS"},
	"summarizer.temperature":  {"OPENAI_TEMPERATURE"},
	"summarizer.max_attempts": {"SUMMARIZER_MAX_ATTEMPTS"},
	"summarizer.retry_delay":  {"SUMMARIZER_RETRY_DELAY"},
	"summarizer.max_delay":    {"SUMMARIZER_MAX_DELAY"},
	"summarizer.timeout":      {"SUMMARIZER_TIMEOUT"},

	"pagestore.base_url":       {"CONFLUENCE_URL"},
	"pagestore.email":          {"CONFLUENCE_EMAIL"},
	"pagestore.api_token":      {"CONFLUENCE_API_TOKEN"},
	"pagestore.space_key":      {"CONFLUENCE_SPACE_KEY"},
	"pagestore.root_parent_id": {"CONFLUENCE_ROOT_PARENT_ID"},
	"pagestore.max_attempts":   {"PAGESTORE_MAX_ATTEMPTS"},
	"pagestore.retry_delay":    {"PAGESTORE_RETRY_DELAY"},
	"pagestore.max_delay":      {"PAGESTORE_MAX_DELAY"},
	"pagestore.timeout":        {"PAGESTORE_TIMEOUT"},

	"publish.code_root_path":   {"CODE_ROOT_PATH"},
	"publish.root_title":       {"ROOT_DOC_TITLE"},
	"publish.workspace":        {"GITHUB_WORKSPACE"},
	"publish.file_suffixes":    {"DOCGEN_FILE_SUFFIXES"},
	"publish.ignore_patterns":  {"DOCGEN_IGNORE_PATTERNS"},
	"publish.use_gitignore":    {"DOCGEN_USE_GITIGNORE"},
	"publish.max_file_size_kb": {"DOCGEN_MAX_FILE_SIZE_KB"},
	"publish.summary_workers":  {"DOCGEN_SUMMARY_WORKERS"},
	"publish.metrics_file":     {"DOCGEN_METRICS_FILE"},

	"server.address":        {"SERVER_ADDRESS"},
	"server.port":           {"PORT"},
	"server.custom_message": {"CUSTOM_MESSAGE"},
	"server.rate_limit":     {"SERVER_RATE_LIMIT"},
	"server.rate_burst":     {"SERVER_RATE_BURST"},
	"server.read_timeout":   {"SERVER_READ_TIMEOUT"},
	"server.write_timeout":  {"SERVER_WRITE_TIMEOUT"},

	"log.level": {"LOG_LEVEL"},
	"log.dir":   {"LOG_DIR"},
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig
	v.SetDefault("summarizer.base_url", d.Summarizer.BaseURL)
	v.SetDefault("summarizer.model", d.Summarizer.Model)
	v.SetDefault("summarizer.max_tokens", d.Summarizer.MaxTokens)
	v.SetDefault("summarizer.temperature", d.Summarizer.Temperature)
	v.SetDefault("summarizer.max_attempts", d.Summarizer.MaxAttempts)
	v.SetDefault("summarizer.retry_delay", d.Summarizer.RetryDelay)
	v.SetDefault("summarizer.max_delay", d.Summarizer.MaxDelay)
	v.SetDefault("summarizer.timeout", d.Summarizer.Timeout)

	v.SetDefault("pagestore.max_attempts", d.PageStore.MaxAttempts)
	v.SetDefault("pagestore.retry_delay", d.PageStore.RetryDelay)
	v.SetDefault("pagestore.max_delay", d.PageStore.MaxDelay)
	v.SetDefault("pagestore.timeout", d.PageStore.Timeout)

	v.SetDefault("publish.code_root_path", d.Publish.CodeRootPath)
	v.SetDefault("publish.root_title", d.Publish.RootTitle)
	v.SetDefault("publish.workspace", d.Publish.Workspace)
	v.SetDefault("publish.file_suffixes", d.Publish.FileSuffixes)
	v.SetDefault("publish.ignore_patterns", d.Publish.IgnorePatterns)
	v.SetDefault("publish.use_gitignore", d.Publish.UseGitignore)
	v.SetDefault("publish.max_file_size_kb", d.Publish.MaxFileSizeKB)
	v.SetDefault("publish.summary_workers", d.Publish.SummaryWorkers)

	v.SetDefault("server.custom_message", d.Server.CustomMessage)
	v.SetDefault("server.rate_limit", d.Server.RateLimit)
	v.SetDefault("server.rate_burst", d.Server.RateBurst)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)

	v.SetDefault("log.level", d.Log.Level)
}

// Load reads configuration from the environment and, when configFile is not empty,
// from that file. Environment variables win over file values.
func Load(configFile string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	for key, envs := range envBindings {
		args := append([]string{key}, envs...)
		if err := v.BindEnv(args...); err != nil {
			return Config{}, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse configuration: %w", err)
	}
	if cfg.Server.Address == "" {
		cfg.Server.Address = DefaultServerConfig.Address
		if cfg.Server.Port != "" {
			cfg.Server.Address = ":" + cfg.Server.Port
		}
	}
	cfg.Publish.FileSuffixes = splitList(cfg.Publish.FileSuffixes)
	cfg.Publish.IgnorePatterns = splitList(cfg.Publish.IgnorePatterns)
	return cfg, nil
}

// splitList trims entries and drops empty ones; env values arrive comma separated.
func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// ValidatePublish checks every setting the publish command cannot run without.
func (c Config) ValidatePublish() error {
	var missing []string
	required := []struct {
		value string
		env   string
	}{
		{c.Summarizer.APIKey, "OPENAI_API_KEY"},
		{c.PageStore.BaseURL, "CONFLUENCE_URL"},
		{c.PageStore.Email, "CONFLUENCE_EMAIL"},
		{c.PageStore.APIToken, "CONFLUENCE_API_TOKEN"},
		{c.PageStore.SpaceKey, "CONFLUENCE_SPACE_KEY"},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			missing = append(missing, r.env)
		}
	}
	if len(missing) > 0 {
		return errs.NewMissingConfigError(missing...)
	}
	return nil
}
