package interview

import (
	"github.com/spigell/liquidhire/internal/ai"
)

// StartSentinel is sent by the client instead of an answer to open the interview.
const StartSentinel = "START_INTERVIEW"

// HistoryItem is one transcript turn as sent by the client.
type HistoryItem struct {
	Role    string `json:"role" validate:"omitempty,oneof=user model system assistant"`
	Content string `json:"content" validate:"max=20000"`
}

// Speaker returns the parsed role. Unknown roles are treated as user turns.
func (h HistoryItem) Speaker() ai.Role {
	role, err := ai.ParseRole(h.Role)
	if err != nil {
		return ai.RoleUser
	}
	return role
}

// State is the chat request body. The client owns it and resends the full
// history on every turn. The resume_text bound equals resume.MaxTextRunes.
type State struct {
	ResumeText    string        `json:"resume_text" validate:"max=50000"`
	JobRole       string        `json:"job_role" validate:"max=200"`
	History       []HistoryItem `json:"history" validate:"max=200,dive"`
	CurrentAnswer string        `json:"current_answer" validate:"max=20000"`
}

// EndRequest is the end-of-interview request body.
type EndRequest struct {
	History    []HistoryItem `json:"history" validate:"max=200,dive"`
	JobRole    string        `json:"job_role" validate:"max=200"`
	ResumeText string        `json:"resume_text" validate:"max=50000"`
}

// ChatReply is the chat response body.
type ChatReply struct {
	NextQuestion        string `json:"next_question"`
	Feedback            string `json:"feedback"`
	FacialAnalysisAlert bool   `json:"facial_analysis_alert"`
}
