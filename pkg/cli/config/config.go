package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/medassist-dev/medassist/pkg/usecase"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
)

// AppConfig represents the optional TOML configuration file
type AppConfig struct {
	Assistant Assistant `toml:"assistant"`
	Summary   Summary   `toml:"summary"`
}

// Assistant tunes how the assistant is prompted
type Assistant struct {
	SystemPrompt     string `toml:"system_prompt"`
	SystemPromptFile string `toml:"system_prompt_file"`
	HistoryLimit     int    `toml:"history_limit"`
	LLMTimeout       string `toml:"llm_timeout"`
}

// Summary overrides the texts used when a drafted summary is incomplete
type Summary struct {
	Fallback          string `toml:"fallback"`
	DiagnosesFallback string `toml:"diagnoses_fallback"`
	PendingDiagnoses  string `toml:"pending_diagnoses"`
}

// Validate checks if the AppConfig is valid
func (a *AppConfig) Validate() error {
	if a.Assistant.SystemPrompt != "" && a.Assistant.SystemPromptFile != "" {
		return goerr.Wrap(ErrInvalidConfig, "system_prompt and system_prompt_file are exclusive")
	}
	if a.Assistant.HistoryLimit < 0 {
		return goerr.Wrap(ErrInvalidConfig, "history_limit must not be negative",
			goerr.V("history_limit", a.Assistant.HistoryLimit))
	}
	if a.Assistant.LLMTimeout != "" {
		d, err := time.ParseDuration(a.Assistant.LLMTimeout)
		if err != nil {
			return goerr.Wrap(errors.Join(ErrInvalidConfig, err), "invalid llm_timeout",
				goerr.V("llm_timeout", a.Assistant.LLMTimeout))
		}
		if d <= 0 {
			return goerr.Wrap(ErrInvalidConfig, "llm_timeout must be positive",
				goerr.V("llm_timeout", a.Assistant.LLMTimeout))
		}
	}
	return nil
}

// LLMTimeout returns the parsed timeout, or zero when unset. Call Validate first.
func (a *AppConfig) LLMTimeout() time.Duration {
	if a.Assistant.LLMTimeout == "" {
		return 0
	}
	d, _ := time.ParseDuration(a.Assistant.LLMTimeout)
	return d
}

// LoadAppConfiguration loads the application configuration from a TOML file
func LoadAppConfiguration(path string) (*AppConfig, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, goerr.Wrap(ErrConfigNotFound, "config file does not exist", goerr.V(ConfigPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V(ConfigPathKey, path))
	}

	var config AppConfig
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, goerr.Wrap(errors.Join(ErrInvalidConfig, err), "failed to parse TOML config", goerr.V(ConfigPathKey, path))
	}

	if err := config.Validate(); err != nil {
		return nil, goerr.Wrap(err, "config validation failed", goerr.V(ConfigPathKey, path))
	}

	if config.Assistant.SystemPromptFile != "" {
		// #nosec G304 - path comes from the operator's config file
		prompt, err := os.ReadFile(config.Assistant.SystemPromptFile)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read system prompt file",
				goerr.V(ConfigPathKey, path),
				goerr.V("system_prompt_file", config.Assistant.SystemPromptFile))
		}
		config.Assistant.SystemPrompt = strings.TrimSpace(string(prompt))
	}

	return &config, nil
}

// App holds CLI flags that tune the consultation use cases. Flags win over
// the TOML file when both are given.
type App struct {
	configPath   string
	historyLimit int
	llmTimeout   time.Duration
}

// Flags returns CLI flags for application configuration
func (a *App) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to the TOML configuration file",
			Sources:     cli.EnvVars("MEDASSIST_CONFIG"),
			Destination: &a.configPath,
		},
		&cli.IntFlag{
			Name:        "history-limit",
			Usage:       "Number of past visits included in each prompt",
			Sources:     cli.EnvVars("MEDASSIST_HISTORY_LIMIT"),
			Destination: &a.historyLimit,
		},
		&cli.DurationFlag{
			Name:        "llm-timeout",
			Usage:       "Timeout of a single language model call",
			Sources:     cli.EnvVars("MEDASSIST_LLM_TIMEOUT"),
			Destination: &a.llmTimeout,
		},
	}
}

// LogAttrs returns log attributes for the application configuration
func (a *App) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("config", a.configPath),
		slog.Int("history_limit", a.historyLimit),
		slog.Duration("llm_timeout", a.llmTimeout),
	}
}

// Configure loads the config file if given and returns use case options
func (a *App) Configure() ([]usecase.Option, error) {
	cfg := &AppConfig{}
	if a.configPath != "" {
		loaded, err := LoadAppConfiguration(a.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if a.historyLimit < 0 {
		return nil, goerr.Wrap(ErrInvalidConfig, "history-limit must not be negative", goerr.V(OptionKey, "history-limit"))
	}
	if a.llmTimeout < 0 {
		return nil, goerr.Wrap(ErrInvalidConfig, "llm-timeout must not be negative", goerr.V(OptionKey, "llm-timeout"))
	}

	var opts []usecase.Option
	if cfg.Assistant.SystemPrompt != "" {
		opts = append(opts, usecase.WithSystemPrompt(cfg.Assistant.SystemPrompt))
	}

	historyLimit := cfg.Assistant.HistoryLimit
	if a.historyLimit > 0 {
		historyLimit = a.historyLimit
	}
	if historyLimit > 0 {
		opts = append(opts, usecase.WithHistoryLimit(historyLimit))
	}

	timeout := cfg.LLMTimeout()
	if a.llmTimeout > 0 {
		timeout = a.llmTimeout
	}
	if timeout > 0 {
		opts = append(opts, usecase.WithLLMTimeout(timeout))
	}

	opts = append(opts, usecase.WithSummaryDefaults(usecase.SummaryDefaults{
		Summary:          cfg.Summary.Fallback,
		Diagnoses:        cfg.Summary.DiagnosesFallback,
		PendingDiagnoses: cfg.Summary.PendingDiagnoses,
	}))

	return opts, nil
}
