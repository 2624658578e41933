package enrich

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	openaigo "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	openaiDefaultBaseURL = "https://api.openai.com/v1"
	openaiMaxRetries     = 3
)

// OpenAIClient summarizes comments through any OpenAI-compatible
// chat-completions endpoint.
type OpenAIClient struct {
	client openaigo.Client
	model  string
}

// NewOpenAIClient builds a client. baseURL may be empty for the public API.
func NewOpenAIClient(baseURL, apiKey, model string, timeout time.Duration) (*OpenAIClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("apiKey is required")
	}
	model = strings.TrimSpace(model)
	if model == "" {
		return nil, fmt.Errorf("model is required")
	}
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = openaiDefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client := openaigo.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(strings.TrimSpace(apiKey)),
		option.WithHTTPClient(&http.Client{Timeout: timeout}),
		option.WithMaxRetries(openaiMaxRetries),
		option.WithRequestTimeout(timeout),
	)
	return &OpenAIClient{client: client, model: model}, nil
}

// Summarize sends the comment as a single user message.
func (c *OpenAIClient) Summarize(ctx context.Context, comment string) (string, error) {
	completion, err := c.client.Chat.Completions.New(ctx, openaigo.ChatCompletionNewParams{
		Model: openaigo.ChatModel(c.model),
		Messages: []openaigo.ChatCompletionMessageParamUnion{
			openaigo.UserMessage(SummaryPrompt + comment),
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	content := strings.TrimSpace(completion.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("chat completion returned empty content")
	}
	return content, nil
}
