package ai

import "strings"

// Placement controls where a dialect puts the system instruction.
type Placement int

const (
	// PlacementSystemRole passes the instruction through the vendor's own system slot.
	PlacementSystemRole Placement = iota
	// PlacementFirstUserTurn prepends the instruction to the first user turn.
	PlacementFirstUserTurn
)

// Dialect describes the role vocabulary a vendor accepts.
type Dialect struct {
	User      string
	Model     string
	Placement Placement
}

// Turn is a rendered message in vendor vocabulary.
type Turn struct {
	Role string
	Text string
}

// Rendered is a conversation ready to be sent to a vendor. System is empty
// when the instruction was inlined into Turns.
type Rendered struct {
	System string
	Turns  []Turn
}

var (
	// GeminiDialect is used by Gemini models.
	GeminiDialect = Dialect{User: "user", Model: "model", Placement: PlacementSystemRole}
	// GemmaDialect is used by Gemma models served through the Gemini API,
	// which reject system instructions.
	GemmaDialect = Dialect{User: "user", Model: "model", Placement: PlacementFirstUserTurn}
	// ChatCompletionsDialect is used by OpenAI-compatible and Anthropic APIs.
	ChatCompletionsDialect = Dialect{User: "user", Model: "assistant", Placement: PlacementSystemRole}
)

// Render maps a conversation to the dialect. Turns only ever carry the two
// dialect roles: system turns found in history collapse to the user role.
func (d Dialect) Render(conv Conversation) Rendered {
	system := strings.TrimSpace(conv.System)
	out := Rendered{Turns: make([]Turn, 0, len(conv.Messages)+1)}

	injected := false
	if d.Placement == PlacementSystemRole || system == "" {
		out.System = system
		injected = true
	}

	for _, msg := range conv.Messages {
		role := d.User
		if msg.Role == RoleModel {
			role = d.Model
		}

		text := msg.Text
		if !injected && role == d.User {
			text = system + "\n\n" + text
			injected = true
		}

		out.Turns = append(out.Turns, Turn{Role: role, Text: text})
	}

	if !injected {
		out.Turns = append([]Turn{{Role: d.User, Text: system}}, out.Turns...)
	}

	return out
}
