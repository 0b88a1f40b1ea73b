package interview

import "testing"

func TestParseScoreReportFenced(t *testing.T) {
	t.Parallel()

	report, err := ParseScoreReport("```json\n{\"overall_score\": 42, \"questions\": []}\n```")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Score != 42 {
		t.Fatalf("expected score 42, got %d", report.Score)
	}
	if report.JSONReport == nil || len(report.JSONReport) != 0 {
		t.Fatalf("expected empty non-nil questions, got %#v", report.JSONReport)
	}
	if report.Summary != NoSummary {
		t.Fatalf("expected default summary, got %q", report.Summary)
	}
}

func TestNormalizeScoreReportMalformed(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"not json", "", "```json\n{\"overall_score\": \n```", `["list"]`} {
		report := NormalizeScoreReport(raw)
		if report.Score != 0 || report.Summary != ScoreFailedSummary || report.JSONReport == nil || len(report.JSONReport) != 0 {
			t.Fatalf("unexpected report for %q: %#v", raw, report)
		}
	}
}

func TestParseScoreReportRejectsTrailingData(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{
		`{"overall_score": 5} junk`,
		`{"overall_score": 5}{"overall_score": 7}`,
		"```json\n{\"overall_score\": 5}\n``` and some notes",
	} {
		if _, err := ParseScoreReport(raw); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
		if report := NormalizeScoreReport(raw); report.Summary != ScoreFailedSummary {
			t.Fatalf("expected failed report for %q, got %#v", raw, report)
		}
	}
}

func TestParseScoreReportCoercesFields(t *testing.T) {
	t.Parallel()

	raw := `{
		"overall_score": "87.6",
		"overall_summary": "Solid fundamentals.",
		"questions": [
			{"question": "What is a channel?", "user_answer": "A pipe", "score": 12, "feedback": "ok", "ideal_answer": "typed conduit"},
			{"question": "Explain GC", "score": "n/a"},
			{"question": 5, "score": -3}
		]
	}`

	report, err := ParseScoreReport(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Score != 88 {
		t.Fatalf("expected rounded score 88, got %d", report.Score)
	}
	if report.Summary != "Solid fundamentals." {
		t.Fatalf("unexpected summary %q", report.Summary)
	}
	if len(report.JSONReport) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(report.JSONReport))
	}
	if report.JSONReport[0].Score != 10 {
		t.Fatalf("per-question score must clamp to 10, got %d", report.JSONReport[0].Score)
	}
	if report.JSONReport[1].Score != 0 || report.JSONReport[1].Feedback != "" {
		t.Fatalf("unexpected defaults: %#v", report.JSONReport[1])
	}
	if report.JSONReport[2].Question != "5" || report.JSONReport[2].Score != 0 {
		t.Fatalf("unexpected coercion: %#v", report.JSONReport[2])
	}
}

func TestParseScoreReportNullSummary(t *testing.T) {
	t.Parallel()

	report, err := ParseScoreReport(`{"overall_score": 150, "overall_summary": null, "questions": null}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Score != 100 || report.Summary != NoSummary || len(report.JSONReport) != 0 {
		t.Fatalf("unexpected report: %#v", report)
	}
}
