package config

import (
	"context"
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem/llm/gemini"
	"github.com/medassist-dev/medassist/pkg/domain/interfaces"
	"github.com/medassist-dev/medassist/pkg/service/llm"
	"github.com/urfave/cli/v3"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// LLM holds configuration for the language model client
type LLM struct {
	provider string

	geminiProject  string
	geminiLocation string
	geminiModel    string

	openaiAPIKey      string
	openaiBaseURL     string
	openaiModel       string
	openaiHTTPTimeout time.Duration
}

// Flags returns CLI flags for LLM configuration
func (l *LLM) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "llm-provider",
			Usage:       "Language model provider (gemini, openai). Empty disables the assistant",
			Category:    "LLM",
			Sources:     cli.EnvVars("MEDASSIST_LLM_PROVIDER"),
			Destination: &l.provider,
		},
		&cli.StringFlag{
			Name:        "gemini-project",
			Usage:       "Google Cloud project ID for Gemini API",
			Category:    "LLM",
			Sources:     cli.EnvVars("MEDASSIST_GEMINI_PROJECT"),
			Destination: &l.geminiProject,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Google Cloud location for Gemini API",
			Value:       "us-central1",
			Category:    "LLM",
			Sources:     cli.EnvVars("MEDASSIST_GEMINI_LOCATION"),
			Destination: &l.geminiLocation,
		},
		&cli.StringFlag{
			Name:        "gemini-model",
			Usage:       "Gemini model name",
			Value:       "gemini-2.5-flash",
			Category:    "LLM",
			Sources:     cli.EnvVars("MEDASSIST_GEMINI_MODEL"),
			Destination: &l.geminiModel,
		},
		&cli.StringFlag{
			Name:        "openai-api-key",
			Usage:       "API key of the OpenAI compatible endpoint",
			Category:    "LLM",
			Sources:     cli.EnvVars("MEDASSIST_OPENAI_API_KEY"),
			Destination: &l.openaiAPIKey,
		},
		&cli.StringFlag{
			Name:        "openai-base-url",
			Usage:       "Base URL of the OpenAI compatible endpoint",
			Category:    "LLM",
			Sources:     cli.EnvVars("MEDASSIST_OPENAI_BASE_URL"),
			Destination: &l.openaiBaseURL,
		},
		&cli.StringFlag{
			Name:        "openai-model",
			Usage:       "OpenAI model name",
			Category:    "LLM",
			Sources:     cli.EnvVars("MEDASSIST_OPENAI_MODEL"),
			Destination: &l.openaiModel,
		},
		&cli.DurationFlag{
			Name:        "openai-http-timeout",
			Usage:       "HTTP client timeout of the OpenAI compatible endpoint",
			Category:    "LLM",
			Sources:     cli.EnvVars("MEDASSIST_OPENAI_HTTP_TIMEOUT"),
			Destination: &l.openaiHTTPTimeout,
		},
	}
}

// LogAttrs returns log attributes for the LLM configuration. The API key is never included.
func (l *LLM) LogAttrs() []slog.Attr {
	attrs := []slog.Attr{slog.String("provider", l.provider)}
	switch l.provider {
	case ProviderGemini:
		attrs = append(attrs,
			slog.String("project_id", l.geminiProject),
			slog.String("location", l.geminiLocation),
			slog.String("model", l.geminiModel),
		)
	case ProviderOpenAI:
		attrs = append(attrs,
			slog.String("base_url", l.openaiBaseURL),
			slog.String("model", l.openaiModel),
		)
	}
	return attrs
}

// Configure creates the LLM client from the configured flags.
// Returns nil if no provider is configured (consultation features will be disabled).
func (l *LLM) Configure(ctx context.Context) (interfaces.LLM, error) {
	switch l.provider {
	case "":
		return nil, nil

	case ProviderGemini:
		if l.geminiProject == "" {
			return nil, goerr.Wrap(ErrMissingOption, "gemini-project is required for gemini provider",
				goerr.V(OptionKey, "gemini-project"))
		}
		var opts []gemini.Option
		if l.geminiModel != "" {
			opts = append(opts, gemini.WithModel(l.geminiModel))
		}
		client, err := gemini.New(ctx, l.geminiProject, l.geminiLocation, opts...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create Gemini client")
		}
		svc, err := llm.NewGollem(client)
		if err != nil {
			return nil, err
		}
		return svc, nil

	case ProviderOpenAI:
		if l.openaiAPIKey == "" {
			return nil, goerr.Wrap(ErrMissingOption, "openai-api-key is required for openai provider",
				goerr.V(OptionKey, "openai-api-key"))
		}
		var opts []llm.OpenAIOption
		if l.openaiBaseURL != "" {
			opts = append(opts, llm.WithBaseURL(l.openaiBaseURL))
		}
		if l.openaiModel != "" {
			opts = append(opts, llm.WithModel(l.openaiModel))
		}
		if l.openaiHTTPTimeout > 0 {
			opts = append(opts, llm.WithHTTPTimeout(l.openaiHTTPTimeout))
		}
		svc, err := llm.NewOpenAI(l.openaiAPIKey, opts...)
		if err != nil {
			return nil, err
		}
		return svc, nil

	default:
		return nil, goerr.Wrap(ErrUnknownProvider, "invalid LLM provider", goerr.V(ProviderKey, l.provider))
	}
}
