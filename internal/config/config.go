package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ChatModels is the set of chat models the application accepts.
var ChatModels = []string{"gpt-3.5-turbo", "gpt-4o-mini", "gpt-4o"}

// OpenAIEmbedderConfig holds configuration for the OpenAI-compatible embedder.
type OpenAIEmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
	BatchSize   int    `yaml:"batch_size"`
}

// EmbedderConfig selects and configures the text embedder implementation.
type EmbedderConfig struct {
	Type   string                `yaml:"type"` // "openai" or "mock"
	OpenAI *OpenAIEmbedderConfig `yaml:"openai,omitempty"`
}

// ChatConfig configures the language model used to answer questions.
// Temperature must lie in [0, 1].
type ChatConfig struct {
	BaseURL   string `yaml:"base_url"`
	APIKeyEnv string `yaml:"api_key_env"`
	Model     string `yaml:"model"`
	// Pointer so an explicit 0.0 survives defaulting.
	Temperature *float64 `yaml:"temperature"`
	MaxTokens   int      `yaml:"max_tokens"`
	TimeoutSecs int      `yaml:"timeout_secs"`
}

// CacheConfig selects and configures the persistent index cache backend.
type CacheConfig struct {
	Type string `yaml:"type"` // "file" or "sqlite"
	Dir  string `yaml:"dir"`  // file backend: cache directory
	Path string `yaml:"path"` // sqlite backend: database file
}

// ChunkerConfig configures how pages are split into segments.
type ChunkerConfig struct {
	MaxChars int `yaml:"max_chars"`
	// Pointer so an explicit 0 survives defaulting.
	OverlapSentences *int `yaml:"overlap_sentences"`
}

// RetrievalConfig configures similarity search.
type RetrievalConfig struct {
	TopK int `yaml:"top_k"`
}

// LogConfig configures application logging.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`  // optional rotating log file
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Embedder  EmbedderConfig  `yaml:"embedder"`
	Chat      ChatConfig      `yaml:"chat"`
	Cache     CacheConfig     `yaml:"cache"`
	Chunker   ChunkerConfig   `yaml:"chunker"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Log       LogConfig       `yaml:"log"`
}

// Load reads a config from a specified path. If the file does not exist,
// returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDefault tries ./robby.yaml first, then ~/.config/robby/config.yaml.
// If neither exists, it writes defaults to the user path and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "robby.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "robby", "config.yaml"), nil
}

func defaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".robby-cache"
	}
	return filepath.Join(home, ".cache", "robby")
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		Embedder: EmbedderConfig{Type: "openai"},
		Cache:    CacheConfig{Type: "file"},
	}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = "openai"
	}
	if cfg.Embedder.Type == "openai" {
		if cfg.Embedder.OpenAI == nil {
			cfg.Embedder.OpenAI = &OpenAIEmbedderConfig{}
		}
		o := cfg.Embedder.OpenAI
		if o.BaseURL == "" {
			o.BaseURL = "https://api.openai.com/v1"
		}
		if o.APIKeyEnv == "" {
			o.APIKeyEnv = "OPENAI_API_KEY"
		}
		if o.Model == "" {
			o.Model = "text-embedding-3-small"
		}
		if o.TimeoutSecs == 0 {
			o.TimeoutSecs = 30
		}
		if o.BatchSize == 0 {
			o.BatchSize = 32
		}
	}
	if cfg.Chat.BaseURL == "" {
		cfg.Chat.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Chat.APIKeyEnv == "" {
		cfg.Chat.APIKeyEnv = "OPENAI_API_KEY"
	}
	if cfg.Chat.Model == "" {
		cfg.Chat.Model = "gpt-3.5-turbo"
	}
	if cfg.Chat.Temperature == nil {
		t := 0.618
		cfg.Chat.Temperature = &t
	}
	if cfg.Chat.TimeoutSecs == 0 {
		cfg.Chat.TimeoutSecs = 120
	}
	if cfg.Cache.Type == "" {
		cfg.Cache.Type = "file"
	}
	if cfg.Cache.Dir == "" {
		cfg.Cache.Dir = defaultCacheDir()
	}
	if cfg.Cache.Path == "" {
		cfg.Cache.Path = filepath.Join(cfg.Cache.Dir, "index.db")
	}
	if cfg.Chunker.MaxChars == 0 {
		cfg.Chunker.MaxChars = 2000
	}
	if cfg.Chunker.OverlapSentences == nil {
		o := 1
		cfg.Chunker.OverlapSentences = &o
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 4
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

func (cfg *AppConfig) validate() error {
	if t := *cfg.Chat.Temperature; t < 0 || t > 1 {
		return fmt.Errorf("chat.temperature %.2f out of range [0, 1]", t)
	}
	if *cfg.Chunker.OverlapSentences < 0 {
		return fmt.Errorf("chunker.overlap_sentences must not be negative")
	}
	if !validChatModel(cfg.Chat.Model) {
		return fmt.Errorf("chat.model %q is not one of %v", cfg.Chat.Model, ChatModels)
	}
	switch cfg.Embedder.Type {
	case "openai", "mock":
	default:
		return fmt.Errorf("unknown embedder type %q", cfg.Embedder.Type)
	}
	switch cfg.Cache.Type {
	case "file", "sqlite":
	default:
		return fmt.Errorf("unknown cache type %q", cfg.Cache.Type)
	}
	return nil
}

func validChatModel(model string) bool {
	for _, m := range ChatModels {
		if m == model {
			return true
		}
	}
	return false
}
