// Package config loads the grading tables and application settings. Both are
// built once at process start and passed explicitly to the components that
// need them.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	logLevelEnv    = "REPORTSYNTH_LOG_LEVEL"
	promptDirEnv   = "REPORTSYNTH_PROMPT_DIR"
	llmProviderEnv = "REPORTSYNTH_LLM_PROVIDER"
)

// Config holds application settings.
type Config struct {
	LLM              LLMConfig       `yaml:"llm"`
	Synthesis        SynthesisConfig `yaml:"synthesis"`
	Logging          LoggingConfig   `yaml:"logging"`
	PromptDir        string          `yaml:"promptDir"`
	BenchmarkCatalog string          `yaml:"benchmarkCatalog"`
	GradingFile      string          `yaml:"gradingFile"`
	Grading          *GradingConfig  `yaml:"-"`
}

// LLMConfig controls calls to the AI-completion collaborator.
type LLMConfig struct {
	// Provider forces a backend; empty selects one from the model name.
	Provider  string        `yaml:"provider"`
	MaxTokens int           `yaml:"maxTokens"`
	Timeout   time.Duration `yaml:"timeout"`
}

// SynthesisConfig caps how many raw issues flow into each stage.
type SynthesisConfig struct {
	FallbackIssuesPerModule int `yaml:"fallbackIssuesPerModule"`
	GradingIssuesPerModule  int `yaml:"gradingIssuesPerModule"`
}

// LoggingConfig selects the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default returns the built-in application settings.
func Default() Config {
	return Config{
		LLM: LLMConfig{
			MaxTokens: 4096,
			Timeout:   2 * time.Minute,
		},
		Synthesis: SynthesisConfig{
			FallbackIssuesPerModule: 5,
			GradingIssuesPerModule:  5,
		},
		Logging: LoggingConfig{Level: "info"},
		Grading: DefaultGrading(),
	}
}

// Load reads YAML settings from path (when non-empty), applies environment
// overrides, and loads the grading tables. Errors wrap ErrInvalidConfig.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("%w: read %s: %v", ErrInvalidConfig, path, err)
		}
		var fileCfg Config
		if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
			return Config{}, fmt.Errorf("%w: parse %s: %v", ErrInvalidConfig, path, err)
		}
		cfg = mergeConfig(cfg, fileCfg)
	}

	cfg.applyEnvOverrides()

	if cfg.GradingFile != "" {
		g, err := LoadGrading(cfg.GradingFile)
		if err != nil {
			return Config{}, err
		}
		cfg.Grading = g
	} else if err := cfg.Grading.Validate(); err != nil {
		return Config{}, err
	}

	if cfg.Synthesis.FallbackIssuesPerModule <= 0 || cfg.Synthesis.GradingIssuesPerModule <= 0 {
		return Config{}, fmt.Errorf("%w: synthesis issue caps must be positive", ErrInvalidConfig)
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(promptDirEnv); v != "" {
		c.PromptDir = v
	}
	if v := os.Getenv(llmProviderEnv); v != "" {
		c.LLM.Provider = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.LLM.Provider != "" {
		base.LLM.Provider = override.LLM.Provider
	}
	if override.LLM.MaxTokens > 0 {
		base.LLM.MaxTokens = override.LLM.MaxTokens
	}
	if override.LLM.Timeout > 0 {
		base.LLM.Timeout = override.LLM.Timeout
	}
	if override.Synthesis.FallbackIssuesPerModule != 0 {
		base.Synthesis.FallbackIssuesPerModule = override.Synthesis.FallbackIssuesPerModule
	}
	if override.Synthesis.GradingIssuesPerModule != 0 {
		base.Synthesis.GradingIssuesPerModule = override.Synthesis.GradingIssuesPerModule
	}
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.PromptDir != "" {
		base.PromptDir = override.PromptDir
	}
	if override.BenchmarkCatalog != "" {
		base.BenchmarkCatalog = override.BenchmarkCatalog
	}
	if override.GradingFile != "" {
		base.GradingFile = override.GradingFile
	}
	return base
}
