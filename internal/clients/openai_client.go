package clients

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"workpulse/internal/analysis"
	"workpulse/internal/apperrors"
)

// Timeout for individual OpenAI API requests
const openAIRequestTimeout = 60 * time.Second

// OpenAIClient implements analysis.TextGenerator against the OpenAI chat
// completions API.
type OpenAIClient struct {
	client *openai.Client
}

func NewOpenAIClient(apiKey string) *OpenAIClient {
	return &OpenAIClient{
		client: openai.NewClient(
			option.WithAPIKey(apiKey),
			option.WithHTTPClient(&http.Client{Timeout: openAIRequestTimeout}),
		),
	}
}

func (c *OpenAIClient) Generate(ctx context.Context, prompt string, params analysis.ModelParams) (string, error) {
	completion, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		}),
		Model:       openai.F(params.Model),
		MaxTokens:   openai.Int(params.MaxTokens),
		Temperature: openai.Float(params.Temperature),
	})
	if err != nil {
		return "", fmt.Errorf("[OpenAIClient] chat completion failed: %w: %w", apperrors.ErrUpstream, err)
	}
	if len(completion.Choices) == 0 {
		return "", nil
	}
	return completion.Choices[0].Message.Content, nil
}
