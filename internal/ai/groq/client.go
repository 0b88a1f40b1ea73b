package groq

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/spigell/liquidhire/internal/ai"
)

const (
	providerName = "groq"
	// DefaultBaseURL is the OpenAI-compatible Groq endpoint.
	DefaultBaseURL = "https://api.groq.com/openai/v1"
	defaultModel   = "llama-3.3-70b-versatile"
)

type completer interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Client sends chat completions to Groq.
type Client struct {
	api   completer
	model string
}

// New creates a Groq client. An empty baseURL selects DefaultBaseURL.
func New(apiKey, baseURL, model string) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("groq api key is required")
	}

	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = DefaultBaseURL
	if baseURL = strings.TrimSpace(baseURL); baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}

	return newClient(openai.NewClientWithConfig(cfg), model), nil
}

func newClient(api completer, model string) *Client {
	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}
	return &Client{api: api, model: model}
}

func (c *Client) Name() string  { return providerName }
func (c *Client) Model() string { return c.model }

// Generate renders the conversation with a leading system message.
func (c *Client) Generate(ctx context.Context, conv ai.Conversation, opts ai.Options) (string, error) {
	rendered := ai.ChatCompletionsDialect.Render(conv)

	messages := make([]openai.ChatCompletionMessage, 0, len(rendered.Turns)+1)
	if rendered.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: rendered.System,
		})
	}
	for _, turn := range rendered.Turns {
		messages = append(messages, openai.ChatCompletionMessage{Role: turn.Role, Content: turn.Text})
	}

	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: ai.DefaultSampling.Temperature,
		TopP:        ai.DefaultSampling.TopP,
		MaxTokens:   ai.DefaultSampling.MaxTokens,
	}
	if opts.JSON {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("create chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ai.ErrEmptyResponse
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", ai.ErrEmptyResponse
	}

	return content, nil
}
