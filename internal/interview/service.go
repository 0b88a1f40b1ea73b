package interview

import (
	"context"
	_ "embed"
	"strings"
	"unicode/utf8"

	"github.com/spigell/liquidhire/internal/ai"
	"github.com/spigell/liquidhire/internal/utils"
	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"
)

const (
	// Unavailable is returned as the next question when no model answered.
	Unavailable = "I'm unable to respond right now."
	// LiveFeedback is the fixed feedback text of every chat reply.
	LiveFeedback = "Live evaluation updated"

	scoringSystem = "You are a strict technical interviewer. Output valid JSON only."

	defaultMaxLogLength = 200
)

var (
	//go:embed prompts/scoring.md
	scoringTemplate string

	//go:embed prompts/score_report.schema.json
	scoreReportSchema string
)

// Service conducts interview turns and scores finished transcripts.
type Service struct {
	generator ai.Generator
	logger    *zap.Logger
	maxLogLen int
	schema    *gojsonschema.Schema
}

// NewService builds a Service on top of a generator, usually an *ai.Chain.
func NewService(generator ai.Generator, logger *zap.Logger, maxLogLength int) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(scoreReportSchema))
	if err != nil {
		// The schema is embedded; a failure here only disables diagnostics.
		logger.Warn("score report schema disabled", zap.Error(err))
		schema = nil
	}

	return &Service{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
		schema:    schema,
	}
}

// Reply produces the next interviewer turn. It never fails: when no model
// answered the reply carries Unavailable.
func (s *Service) Reply(ctx context.Context, state State) ChatReply {
	conv := BuildConversation(state)

	s.logger.Debug("chat turn",
		zap.String("job_role", state.JobRole),
		zap.Int("history", len(state.History)),
		zap.Bool("start", state.CurrentAnswer == StartSentinel),
	)

	reply := ChatReply{
		NextQuestion:        Unavailable,
		Feedback:            LiveFeedback,
		FacialAnalysisAlert: FacialAnalysisAlert(state.History),
	}

	if text, ok := s.generator.Generate(ctx, conv, ai.Options{}); ok {
		reply.NextQuestion = text
	}

	return reply
}

// ScoringPrompt renders the scoring request for a transcript.
func ScoringPrompt(history []HistoryItem, jobRole string) string {
	prompt := strings.ReplaceAll(scoringTemplate, "{{TRANSCRIPT}}", strings.TrimRight(RenderTranscript(history), "\n"))
	return strings.ReplaceAll(prompt, "{{JOB_ROLE}}", strings.TrimSpace(jobRole))
}

// Score asks the model for a JSON report of the transcript and normalizes it.
// Every failure degrades to FailedScoreReport.
func (s *Service) Score(ctx context.Context, req EndRequest) ScoreReport {
	prompt := ScoringPrompt(req.History, req.JobRole)

	s.logger.Debug("scoring request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, s.maxLogLen)),
	)

	conv := ai.Conversation{
		System:   scoringSystem,
		Messages: []ai.Message{{Role: ai.RoleUser, Text: prompt}},
	}

	raw, ok := s.generator.Generate(ctx, conv, ai.Options{JSON: true})
	if !ok {
		s.logger.Warn("scoring failed", zap.String("reason", "no model produced a report"))
		return FailedScoreReport()
	}

	report, err := ParseScoreReport(raw)
	if err != nil {
		s.logger.Warn("scoring failed",
			zap.Error(err),
			zap.String("response_preview", utils.TruncateForLog(raw, s.maxLogLen)),
		)
		return FailedScoreReport()
	}

	s.checkSchema(raw)

	return report
}

// checkSchema logs deviations from the expected report shape. The report is
// returned regardless since every field has a default.
func (s *Service) checkSchema(raw string) {
	if s.schema == nil {
		return
	}

	result, err := s.schema.Validate(gojsonschema.NewStringLoader(ai.StripFences(raw)))
	if err != nil {
		s.logger.Debug("score report schema check failed", zap.Error(err))
		return
	}
	if result.Valid() {
		return
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		problems = append(problems, desc.String())
	}
	s.logger.Info("score report deviates from schema, using defaults", zap.Strings("problems", problems))
}
