package llm

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/medassist-dev/medassist/pkg/domain/interfaces"
	"github.com/medassist-dev/medassist/pkg/domain/model"
	"github.com/sashabaranov/go-openai"
)

const (
	DefaultOpenAIModel   = openai.GPT4oMini
	DefaultOpenAITimeout = 60 * time.Second
)

// OpenAI completes prompts with the chat completion API of OpenAI or any
// compatible endpoint.
type OpenAI struct {
	client *openai.Client
	model  string
}

var _ interfaces.LLM = &OpenAI{}

type OpenAIOption func(*openAIConfig)

type openAIConfig struct {
	baseURL string
	model   string
	timeout time.Duration
}

// WithBaseURL points the client to an OpenAI compatible endpoint
func WithBaseURL(url string) OpenAIOption {
	return func(c *openAIConfig) {
		c.baseURL = url
	}
}

func WithModel(model string) OpenAIOption {
	return func(c *openAIConfig) {
		c.model = model
	}
}

// WithHTTPTimeout bounds each HTTP request to the endpoint
func WithHTTPTimeout(d time.Duration) OpenAIOption {
	return func(c *openAIConfig) {
		c.timeout = d
	}
}

func NewOpenAI(apiKey string, opts ...OpenAIOption) (*OpenAI, error) {
	if apiKey == "" {
		return nil, goerr.New("OpenAI API key is required")
	}

	cfg := &openAIConfig{
		model:   DefaultOpenAIModel,
		timeout: DefaultOpenAITimeout,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	clientCfg := openai.DefaultConfig(apiKey)
	if cfg.baseURL != "" {
		clientCfg.BaseURL = cfg.baseURL
	}
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.timeout}

	return &OpenAI{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.model,
	}, nil
}

func (o *OpenAI) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", unavailable(err, "failed to create chat completion", goerr.V("model", o.model))
	}

	if len(resp.Choices) == 0 {
		return "", goerr.Wrap(model.ErrLLMUnavailable, "no choices in chat completion", goerr.V("model", o.model))
	}

	text := resp.Choices[0].Message.Content
	if strings.TrimSpace(text) == "" {
		return "", goerr.Wrap(model.ErrLLMUnavailable, "empty chat completion", goerr.V("model", o.model))
	}
	return text, nil
}
