package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spigell/liquidhire/internal/ai"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	providerName = "gemini"
	defaultModel = "gemini-2.5-flash"
	jsonMIMEType = "application/json"
)

type chatSession interface {
	SendMessage(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

type chatCreator interface {
	Create(ctx context.Context, model string, config *genai.GenerateContentConfig, history []*genai.Content) (chatSession, error)
}

type genaiChats struct {
	client *genai.Client
}

func (g genaiChats) Create(ctx context.Context, model string, config *genai.GenerateContentConfig, history []*genai.Content) (chatSession, error) {
	chat, err := g.client.Chats.Create(ctx, model, config, history)
	if err != nil {
		return nil, err
	}
	return chat, nil
}

// Generator is one Gemini API model in the fallback chain.
type Generator struct {
	chats  chatCreator
	model  string
	logger *zap.Logger
}

// NewGenerator creates a Generator configured for the Gemini API backend.
func NewGenerator(ctx context.Context, apiKey, model string, logger *zap.Logger) (*Generator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return newGenerator(genaiChats{client: client}, model, logger), nil
}

func newGenerator(chats chatCreator, model string, logger *zap.Logger) *Generator {
	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{chats: chats, model: model, logger: logger}
}

func (g *Generator) Name() string { return providerName }

func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.model
}

// Dialect reports how this model accepts roles and the system instruction.
// Gemma models have no system instruction support.
func (g *Generator) Dialect() ai.Dialect {
	if g.isGemma() {
		return ai.GemmaDialect
	}
	return ai.GeminiDialect
}

func (g *Generator) isGemma() bool {
	return strings.HasPrefix(strings.ToLower(g.model), "gemma")
}

// Generate replays the conversation as chat history and sends the newest turn.
func (g *Generator) Generate(ctx context.Context, conv ai.Conversation, opts ai.Options) (string, error) {
	if g == nil || g.chats == nil {
		return "", errors.New("gemini generator is not initialized")
	}

	rendered := g.Dialect().Render(conv)
	if len(rendered.Turns) == 0 {
		return "", errors.New("conversation must not be empty")
	}

	config := g.config(rendered.System, opts)

	history := make([]*genai.Content, 0, len(rendered.Turns)-1)
	for _, turn := range rendered.Turns[:len(rendered.Turns)-1] {
		history = append(history, genai.NewContentFromText(turn.Text, genai.Role(turn.Role)))
	}
	last := rendered.Turns[len(rendered.Turns)-1]

	chat, err := g.chats.Create(ctx, g.model, config, history)
	if err != nil {
		return "", fmt.Errorf("create chat: %w", err)
	}

	resp, err := chat.SendMessage(ctx, genai.Part{Text: last.Text})
	if err != nil {
		return "", fmt.Errorf("send message: %w", err)
	}

	output := responseText(resp)
	if output == "" {
		return "", ai.ErrEmptyResponse
	}

	return output, nil
}

func (g *Generator) config(system string, opts ai.Options) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(ai.DefaultSampling.Temperature),
		TopP:            genai.Ptr(ai.DefaultSampling.TopP),
		MaxOutputTokens: int32(ai.DefaultSampling.MaxTokens),
	}

	if system != "" {
		config.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	// Gemma rejects JSON mode; the prompt itself asks for JSON there.
	if opts.JSON && !g.isGemma() {
		config.ResponseMIMEType = jsonMIMEType
	}

	return config
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil || part.Thought {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
		// Only the first candidate with content is used.
		if builder.Len() > 0 {
			break
		}
	}

	return strings.TrimSpace(builder.String())
}
