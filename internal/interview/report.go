package interview

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spigell/liquidhire/internal/ai"
)

const (
	// NoSummary is used when the model omitted the overall summary.
	NoSummary = "No summary provided."
	// ScoreFailedSummary is used when the model output could not be parsed.
	ScoreFailedSummary = "Error generating score."
)

// QuestionReport is the per-question part of a score report.
type QuestionReport struct {
	Question    string `json:"question"`
	UserAnswer  string `json:"user_answer"`
	Score       int    `json:"score"`
	Feedback    string `json:"feedback"`
	IdealAnswer string `json:"ideal_answer"`
}

// ScoreReport is the end-of-interview response body.
type ScoreReport struct {
	Score      int              `json:"score"`
	Summary    string           `json:"summary"`
	JSONReport []QuestionReport `json:"json_report"`
}

// FailedScoreReport is returned whenever scoring could not produce a report.
func FailedScoreReport() ScoreReport {
	return ScoreReport{Score: 0, Summary: ScoreFailedSummary, JSONReport: []QuestionReport{}}
}

// flexNumber accepts JSON numbers and numeric strings. Anything else decodes
// to NaN and is later replaced by the default.
type flexNumber float64

func (n *flexNumber) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*n = flexNumber(coerceFloat(v))
	return nil
}

// flexString accepts any JSON value and keeps strings as is.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v == nil {
		return nil
	}
	*s = flexString(coerceString(v))
	return nil
}

type questionPayload struct {
	Question    flexString `json:"question"`
	UserAnswer  flexString `json:"user_answer"`
	Score       flexNumber `json:"score"`
	Feedback    flexString `json:"feedback"`
	IdealAnswer flexString `json:"ideal_answer"`
}

type reportPayload struct {
	OverallScore   flexNumber        `json:"overall_score"`
	OverallSummary *flexString       `json:"overall_summary"`
	Questions      []questionPayload `json:"questions"`
}

// ParseScoreReport strips code fences and decodes the model output. Missing
// fields take their defaults: score 0, NoSummary and no questions.
func ParseScoreReport(raw string) (ScoreReport, error) {
	cleaned := ai.StripFences(raw)
	if cleaned == "" {
		return FailedScoreReport(), fmt.Errorf("parse score report: %w", ai.ErrEmptyResponse)
	}

	var payload reportPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return FailedScoreReport(), fmt.Errorf("parse score report: %w", err)
	}

	report := ScoreReport{
		Score:      clampScore(float64(payload.OverallScore), 100),
		Summary:    NoSummary,
		JSONReport: make([]QuestionReport, 0, len(payload.Questions)),
	}
	if payload.OverallSummary != nil {
		report.Summary = string(*payload.OverallSummary)
	}

	for _, q := range payload.Questions {
		report.JSONReport = append(report.JSONReport, QuestionReport{
			Question:    string(q.Question),
			UserAnswer:  string(q.UserAnswer),
			Score:       clampScore(float64(q.Score), 10),
			Feedback:    string(q.Feedback),
			IdealAnswer: string(q.IdealAnswer),
		})
	}

	return report, nil
}

// NormalizeScoreReport never fails: unparsable output yields FailedScoreReport.
func NormalizeScoreReport(raw string) ScoreReport {
	report, err := ParseScoreReport(raw)
	if err != nil {
		return FailedScoreReport()
	}
	return report
}

func clampScore(v float64, limit int) int {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > float64(limit):
		return limit
	}
	return int(math.Round(v))
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(encoded)
	}
}
