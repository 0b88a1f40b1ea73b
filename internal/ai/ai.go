package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyResponse is returned by providers when the model produced no text.
var ErrEmptyResponse = errors.New("model returned empty response")

// Role is the speaker of a conversation turn.
type Role int

const (
	RoleUser Role = iota
	RoleModel
	RoleSystem
)

func (r Role) String() string {
	switch r {
	case RoleUser:
		return "user"
	case RoleModel:
		return "model"
	case RoleSystem:
		return "system"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// ParseRole maps the wire role names accepted from clients. "assistant" is an
// alias of "model"; an empty role means user.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "user":
		return RoleUser, nil
	case "model", "assistant":
		return RoleModel, nil
	case "system":
		return RoleSystem, nil
	default:
		return RoleUser, fmt.Errorf("unknown role %q", s)
	}
}

// Message is a single vendor-neutral turn.
type Message struct {
	Role Role
	Text string
}

// Conversation is the input of one generation: a system instruction plus
// chronological turns.
type Conversation struct {
	System   string
	Messages []Message
}

// Options tune a single generation call.
type Options struct {
	// JSON asks the provider for a structured JSON response.
	JSON bool
}

// Sampling holds the fixed sampling parameters used for every call.
type Sampling struct {
	Temperature float32
	TopP        float32
	MaxTokens   int
}

// DefaultSampling is applied by every provider.
var DefaultSampling = Sampling{
	Temperature: 0.6,
	TopP:        1,
	MaxTokens:   1024,
}

// Provider is a single candidate of the fallback chain: one vendor and one model.
type Provider interface {
	Name() string
	Model() string
	Generate(ctx context.Context, conv Conversation, opts Options) (string, error)
}

// Generator produces text for a conversation. ok is false when no candidate
// produced usable output.
type Generator interface {
	Generate(ctx context.Context, conv Conversation, opts Options) (text string, ok bool)
}
