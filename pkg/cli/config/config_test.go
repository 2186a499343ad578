package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/medassist-dev/medassist/pkg/cli/config"
	"github.com/medassist-dev/medassist/pkg/repository/memory"
	"github.com/medassist-dev/medassist/pkg/usecase"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	gt.NoError(t, os.WriteFile(path, []byte(content), 0o600)).Required()
	return path
}

func TestLoadAppConfiguration(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{
			name: "valid configuration",
			content: `
[assistant]
system_prompt = "You are a careful assistant."
history_limit = 3
llm_timeout = "90s"

[summary]
fallback = "No summary"
`,
		},
		{
			name:    "empty file",
			content: "",
		},
		{
			name: "negative history limit",
			content: `
[assistant]
history_limit = -1
`,
			wantErr: config.ErrInvalidConfig,
		},
		{
			name: "invalid timeout",
			content: `
[assistant]
llm_timeout = "soon"
`,
			wantErr: config.ErrInvalidConfig,
		},
		{
			name: "prompt and prompt file together",
			content: `
[assistant]
system_prompt = "a"
system_prompt_file = "b.md"
`,
			wantErr: config.ErrInvalidConfig,
		},
		{
			name:    "broken TOML",
			content: `[assistant`,
			wantErr: config.ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := config.LoadAppConfiguration(writeConfig(t, tt.content))
			if tt.wantErr != nil {
				gt.Error(t, err).Is(tt.wantErr)
				return
			}
			gt.NoError(t, err).Required()
			gt.Value(t, cfg).NotNil()
		})
	}

	t.Run("parses values", func(t *testing.T) {
		cfg, err := config.LoadAppConfiguration(writeConfig(t, `
[assistant]
history_limit = 3
llm_timeout = "90s"

[summary]
diagnoses_fallback = "Unknown"
`))
		gt.NoError(t, err).Required()
		gt.Number(t, cfg.Assistant.HistoryLimit).Equal(3)
		gt.Value(t, cfg.LLMTimeout()).Equal(90 * time.Second)
		gt.Value(t, cfg.Summary.DiagnosesFallback).Equal("Unknown")
	})

	t.Run("reads system prompt file", func(t *testing.T) {
		promptPath := filepath.Join(t.TempDir(), "system.md")
		gt.NoError(t, os.WriteFile(promptPath, []byte("Custom instructions\n"), 0o600)).Required()

		cfg, err := config.LoadAppConfiguration(writeConfig(t, `
[assistant]
system_prompt_file = "`+filepath.ToSlash(promptPath)+`"
`))
		gt.NoError(t, err).Required()
		gt.Value(t, cfg.Assistant.SystemPrompt).Equal("Custom instructions")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := config.LoadAppConfiguration(filepath.Join(t.TempDir(), "absent.toml"))
		gt.Error(t, err).Is(config.ErrConfigNotFound)
	})
}

func TestApp_Configure(t *testing.T) {
	t.Run("file values apply", func(t *testing.T) {
		path := writeConfig(t, `
[assistant]
history_limit = 2
`)
		opts, err := config.NewAppForTest(path, 0, 0).Configure()
		gt.NoError(t, err).Required()

		uc := usecase.New(memory.New(), opts...)
		gt.Number(t, uc.Consultation.Builder().HistoryLimit()).Equal(2)
	})

	t.Run("flags override file", func(t *testing.T) {
		path := writeConfig(t, `
[assistant]
history_limit = 2
`)
		opts, err := config.NewAppForTest(path, 7, time.Second).Configure()
		gt.NoError(t, err).Required()

		uc := usecase.New(memory.New(), opts...)
		gt.Number(t, uc.Consultation.Builder().HistoryLimit()).Equal(7)
	})

	t.Run("no file keeps defaults", func(t *testing.T) {
		opts, err := config.NewAppForTest("", 0, 0).Configure()
		gt.NoError(t, err).Required()

		uc := usecase.New(memory.New(), opts...)
		gt.Number(t, uc.Consultation.Builder().HistoryLimit()).Equal(5)
	})

	t.Run("negative flag is rejected", func(t *testing.T) {
		_, err := config.NewAppForTest("", -1, 0).Configure()
		gt.Error(t, err).Is(config.ErrInvalidConfig)
	})
}
