// Package config loads the application configuration from YAML files with
// environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// CorpusConfig describes where FAQ documents live and how they are chunked.
type CorpusConfig struct {
	Dir       string   `yaml:"dir"`
	Include   []string `yaml:"include"`
	ChunkSize int      `yaml:"chunk_size"`
}

// OpenAIConfig names the models passed to the embedding and generation
// capabilities. The names are opaque to the rest of the system.
type OpenAIConfig struct {
	EmbedModel string `yaml:"embed_model"`
	LLMModel   string `yaml:"llm_model"`
}

// RetrievalConfig controls how many chunks back each answer when the caller
// does not say.
type RetrievalConfig struct {
	TopKDefault int `yaml:"top_k_default"`
}

// ServerConfig holds the HTTP listen address.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Corpus    CorpusConfig    `yaml:"corpus"`
	OpenAI    OpenAIConfig    `yaml:"openai"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Server    ServerConfig    `yaml:"server"`
}

// Addr returns the host:port the HTTP server listens on.
func (c *AppConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Load reads a config from the specified path. If the file does not exist,
// defaults are used. Environment variables override values from the file;
// the result is validated before return.
func Load(path string) (*AppConfig, error) {
	var cfg *AppConfig
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		cfg = defaultConfig()
	} else {
		cfg = &AppConfig{}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		applyConfigDefaults(cfg)
	}
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/faqrag/config.yaml.
// If neither exists, it writes defaults to ~/.config/faqrag/config.yaml and
// loads them from there.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err != nil {
		if err := Save(userPath, defaultConfig()); err != nil {
			return nil, "", err
		}
	}
	cfg, err := Load(userPath)
	return cfg, userPath, err
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
	return filepath.Join(home, ".config", "faqrag", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	return &AppConfig{
		Corpus:    CorpusConfig{Dir: "faqs", Include: []string{"*.md"}, ChunkSize: 200},
		OpenAI:    OpenAIConfig{EmbedModel: "text-embedding-3-small", LLMModel: "gpt-4o-mini"},
		Retrieval: RetrievalConfig{TopKDefault: 4},
		Server:    ServerConfig{Host: "0.0.0.0", Port: 8000},
	}
}

func applyConfigDefaults(cfg *AppConfig) {
	def := defaultConfig()
	if cfg.Corpus.Dir == "" {
		cfg.Corpus.Dir = def.Corpus.Dir
	}
	if len(cfg.Corpus.Include) == 0 {
		cfg.Corpus.Include = def.Corpus.Include
	}
	if cfg.Corpus.ChunkSize == 0 {
		cfg.Corpus.ChunkSize = def.Corpus.ChunkSize
	}
	if cfg.OpenAI.EmbedModel == "" {
		cfg.OpenAI.EmbedModel = def.OpenAI.EmbedModel
	}
	if cfg.OpenAI.LLMModel == "" {
		cfg.OpenAI.LLMModel = def.OpenAI.LLMModel
	}
	if cfg.Retrieval.TopKDefault == 0 {
		cfg.Retrieval.TopKDefault = def.Retrieval.TopKDefault
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = def.Server.Host
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = def.Server.Port
	}
}

// applyEnvOverrides maps the recognized environment variables onto the
// config. Env values beat file values.
func applyEnvOverrides(cfg *AppConfig) error {
	if v := os.Getenv("FAQ_DIR"); v != "" {
		cfg.Corpus.Dir = v
	}
	if v := os.Getenv("EMBED_MODEL"); v != "" {
		cfg.OpenAI.EmbedModel = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.OpenAI.LLMModel = v
	}
	if v := os.Getenv("HOST"); v != "" {
		cfg.Server.Host = v
	}
	for _, override := range []struct {
		name string
		dst  *int
	}{
		{"CHUNK_SIZE", &cfg.Corpus.ChunkSize},
		{"TOP_K_DEFAULT", &cfg.Retrieval.TopKDefault},
		{"PORT", &cfg.Server.Port},
	} {
		v := os.Getenv(override.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", override.name, v, err)
		}
		*override.dst = n
	}
	return nil
}

func validate(cfg *AppConfig) error {
	if cfg.Corpus.Dir == "" {
		return errors.New("corpus dir must not be empty")
	}
	if cfg.Corpus.ChunkSize < 1 {
		return fmt.Errorf("chunk_size must be positive, got %d", cfg.Corpus.ChunkSize)
	}
	for _, p := range cfg.Corpus.Include {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid include pattern %q", p)
		}
	}
	if k := cfg.Retrieval.TopKDefault; k < 1 || k > 10 {
		return fmt.Errorf("top_k_default must be between 1 and 10, got %d", k)
	}
	if cfg.OpenAI.EmbedModel == "" {
		return errors.New("embed_model must not be empty")
	}
	if cfg.OpenAI.LLMModel == "" {
		return errors.New("llm_model must not be empty")
	}
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("port out of range: %d", cfg.Server.Port)
	}
	return nil
}
