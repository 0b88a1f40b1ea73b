package interview

import (
	_ "embed"
	"strings"

	"github.com/spigell/liquidhire/internal/ai"
)

// Opener replaces StartSentinel as the newest user turn.
const Opener = "I am ready for the interview. Please start."

//go:embed prompts/interviewer.md
var interviewerTemplate string

// SystemInstruction renders the interviewer instruction for a role and résumé.
func SystemInstruction(jobRole, resumeText string) string {
	prompt := strings.ReplaceAll(interviewerTemplate, "{{JOB_ROLE}}", strings.TrimSpace(jobRole))
	prompt = strings.ReplaceAll(prompt, "{{RESUME_TEXT}}", strings.TrimSpace(resumeText))
	return strings.TrimSpace(prompt)
}

// BuildConversation maps the client state to a vendor-neutral conversation.
// The newest user turn is the current answer, or Opener when the client sent
// StartSentinel.
func BuildConversation(state State) ai.Conversation {
	conv := ai.Conversation{
		System:   SystemInstruction(state.JobRole, state.ResumeText),
		Messages: make([]ai.Message, 0, len(state.History)+1),
	}

	for _, item := range state.History {
		conv.Messages = append(conv.Messages, ai.Message{Role: item.Speaker(), Text: item.Content})
	}

	answer := state.CurrentAnswer
	if answer == StartSentinel {
		answer = Opener
	}
	conv.Messages = append(conv.Messages, ai.Message{Role: ai.RoleUser, Text: answer})

	return conv
}

// RenderTranscript prints the history as "Interviewer:"/"Candidate:" lines.
func RenderTranscript(history []HistoryItem) string {
	var b strings.Builder
	for _, item := range history {
		speaker := "Candidate"
		if item.Speaker() == ai.RoleModel {
			speaker = "Interviewer"
		}
		b.WriteString(speaker)
		b.WriteString(": ")
		b.WriteString(item.Content)
		b.WriteString("\n")
	}
	return b.String()
}

const multiplePeopleMarker = "multiple people"

// FacialAnalysisAlert reports whether the concatenated history mentions
// multiple people, case-insensitively. It is a placeholder signal, not image
// analysis.
func FacialAnalysisAlert(history []HistoryItem) bool {
	contents := make([]string, 0, len(history))
	for _, item := range history {
		contents = append(contents, item.Content)
	}
	return strings.Contains(strings.ToLower(strings.Join(contents, " ")), multiplePeopleMarker)
}
