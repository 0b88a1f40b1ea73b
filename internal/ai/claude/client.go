package claude

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/spigell/liquidhire/internal/ai"
)

const (
	providerName = "anthropic"
	defaultModel = "claude-3-5-haiku-latest"

	// Anthropic has no JSON response mode.
	jsonInstruction = "Respond with a single valid JSON object and nothing else."
)

type messageCreator interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// Client sends conversations to the Anthropic Messages API.
type Client struct {
	messages messageCreator
	model    string
}

// New creates a Claude client.
func New(apiKey, model string) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("anthropic api key is required")
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return newClient(&client.Messages, model), nil
}

func newClient(messages messageCreator, model string) *Client {
	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}
	return &Client{messages: messages, model: model}
}

func (c *Client) Name() string  { return providerName }
func (c *Client) Model() string { return c.model }

func (c *Client) Generate(ctx context.Context, conv ai.Conversation, opts ai.Options) (string, error) {
	rendered := ai.ChatCompletionsDialect.Render(conv)
	if len(rendered.Turns) == 0 {
		return "", errors.New("conversation must not be empty")
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   int64(ai.DefaultSampling.MaxTokens),
		Temperature: anthropic.Float(float64(ai.DefaultSampling.Temperature)),
		TopP:        anthropic.Float(float64(ai.DefaultSampling.TopP)),
		Messages:    make([]anthropic.MessageParam, 0, len(rendered.Turns)),
	}

	system := rendered.System
	if opts.JSON {
		system = strings.TrimSpace(system + "\n\n" + jsonInstruction)
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	for _, turn := range rendered.Turns {
		role := anthropic.MessageParamRoleUser
		if turn.Role == ai.ChatCompletionsDialect.Model {
			role = anthropic.MessageParamRoleAssistant
		}
		params.Messages = append(params.Messages, anthropic.MessageParam{
			Role: role,
			Content: []anthropic.ContentBlockParamUnion{{
				OfText: &anthropic.TextBlockParam{Text: turn.Text},
			}},
		})
	}

	msg, err := c.messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("create message: %w", err)
	}

	var builder strings.Builder
	for _, block := range msg.Content {
		if block.Type != "text" {
			continue
		}
		builder.WriteString(block.Text)
	}

	text := strings.TrimSpace(builder.String())
	if text == "" {
		return "", ai.ErrEmptyResponse
	}
	return text, nil
}
