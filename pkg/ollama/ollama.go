// Package ollama configures clients for a local Ollama runtime through its
// OpenAI-compatible API surface.
package ollama

import (
	"context"
	"fmt"
	"strings"
	"time"

	openaimodel "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type Config struct {
	BaseURL string        `envconfig:"BASE_URL" split_words:"true" default:"http://localhost:11434/v1"`
	APIKey  string        `envconfig:"API_KEY" split_words:"true" default:"ollama"`
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
}

// ChatModel creates an eino chat model bound to one Ollama model.
func (c Config) ChatModel(ctx context.Context, modelName string, temperature float32, maxTokens int) (model.ToolCallingChatModel, error) {
	modelName = strings.TrimSpace(modelName)
	if modelName == "" {
		return nil, fmt.Errorf("ollama: model name is required")
	}

	conf := &openaimodel.ChatModelConfig{
		BaseURL:     strings.TrimRight(c.BaseURL, "/"),
		APIKey:      strings.TrimSpace(c.APIKey),
		Model:       modelName,
		Temperature: &temperature,
		Timeout:     c.Timeout,
	}
	if maxTokens > 0 {
		conf.MaxTokens = &maxTokens
	}

	m, err := openaimodel.NewChatModel(ctx, conf)
	if err != nil {
		return nil, fmt.Errorf("ollama: create chat model %s: %w", modelName, err)
	}
	return m, nil
}

// NewClient creates a raw OpenAI SDK client pointed at the Ollama server.
// Used for model listing; generation goes through ChatModel.
func NewClient(cfg Config) *openaisdk.Client {
	opts := []option.RequestOption{
		option.WithAPIKey(strings.TrimSpace(cfg.APIKey)),
	}
	if trimmed := strings.TrimRight(cfg.BaseURL, "/"); trimmed != "" {
		opts = append(opts, option.WithBaseURL(trimmed))
	}

	client := openaisdk.NewClient(opts...)
	return &client
}

// ListModels returns the model identifiers the runtime currently serves.
func ListModels(ctx context.Context, client *openaisdk.Client) ([]string, error) {
	page, err := client.Models.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("ollama: list models: %w", err)
	}
	names := make([]string, 0, len(page.Data))
	for _, m := range page.Data {
		names = append(names, m.ID)
	}
	return names, nil
}
