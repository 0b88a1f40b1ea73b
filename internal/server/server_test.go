package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/spigell/liquidhire/internal/interview"
	"github.com/spigell/liquidhire/internal/jobs"
	"github.com/spigell/liquidhire/internal/resume"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeInterviewer struct {
	state interview.State
	end   interview.EndRequest
}

func (f *fakeInterviewer) Reply(_ context.Context, state interview.State) interview.ChatReply {
	f.state = state
	return interview.ChatReply{NextQuestion: "Why Go?", Feedback: interview.LiveFeedback, FacialAnalysisAlert: interview.FacialAnalysisAlert(state.History)}
}

func (f *fakeInterviewer) Score(_ context.Context, req interview.EndRequest) interview.ScoreReport {
	f.end = req
	return interview.FailedScoreReport()
}

type fakeCoach struct {
	roasted  string
	tailored resume.TailorRequest
}

func (f *fakeCoach) Roast(_ context.Context, text string) resume.Roast {
	f.roasted = text
	return resume.Roast{Summary: "meh", BurnScore: 80, WeakPoints: []string{}}
}

func (f *fakeCoach) Tailor(_ context.Context, req resume.TailorRequest) resume.Tailored {
	f.tailored = req
	return resume.Tailored{ProfessionalSummary: "tailored", ExperienceBullets: []resume.ExperienceBullets{}, SkillsToHighlight: []string{}}
}

type fakeJobs struct {
	query, location string
	listings        []jobs.Listing
	err             error
}

func (f *fakeJobs) Search(_ context.Context, query, location string) ([]jobs.Listing, error) {
	f.query, f.location = query, location
	return f.listings, f.err
}

type fixture struct {
	srv       *Server
	interview *fakeInterviewer
	coach     *fakeCoach
	jobs      *fakeJobs
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{interview: &fakeInterviewer{}, coach: &fakeCoach{}, jobs: &fakeJobs{}}
	f.srv = New(zaptest.NewLogger(t), Config{}, Deps{Interview: f.interview, Coach: f.coach, Jobs: f.jobs})
	return f
}

func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.srv.Handler().ServeHTTP(rec, req)
	return rec
}

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func uploadRequest(t *testing.T, contentType string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="resume.pdf"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/parse-resume", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestHealth(t *testing.T) {
	rec := newFixture(t).do(httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestCORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type, X-Custom")

	rec := newFixture(t).do(req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
	assert.Equal(t, "Content-Type, X-Custom", rec.Header().Get("Access-Control-Allow-Headers"))
}

func TestChat(t *testing.T) {
	f := newFixture(t)
	body := `{"resume_text":"Go dev","job_role":"Backend","history":[{"role":"assistant","content":"Multiple People detected"}],"current_answer":"START_INTERVIEW"}`

	rec := f.do(jsonRequest(http.MethodPost, "/api/chat", body))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"next_question":"Why Go?","feedback":"Live evaluation updated","facial_analysis_alert":true}`, rec.Body.String())
	assert.Equal(t, "Backend", f.interview.state.JobRole)
	assert.Equal(t, interview.StartSentinel, f.interview.state.CurrentAnswer)
}

func TestChatRejectsBadBodies(t *testing.T) {
	tests := []struct {
		name string
		body string
		code string
	}{
		{name: "malformed json", body: `{"history":`, code: errInvalidRequest},
		{name: "unknown role", body: `{"history":[{"role":"narrator","content":"x"}]}`, code: errValidationFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := newFixture(t).do(jsonRequest(http.MethodPost, "/api/chat", tt.body))

			require.Equal(t, http.StatusBadRequest, rec.Code)
			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.code, resp.Error)
			assert.NotEmpty(t, resp.RequestID)
			assert.False(t, resp.Timestamp.IsZero())
		})
	}
}

func TestInterviewAcceptsExtractedResumeLength(t *testing.T) {
	for _, path := range []string{"/api/chat", "/api/end-interview"} {
		t.Run(path, func(t *testing.T) {
			f := newFixture(t)

			full := strings.Repeat("é", resume.MaxTextRunes)
			rec := f.do(jsonRequest(http.MethodPost, path, `{"job_role":"QA","resume_text":"`+full+`"}`))
			assert.Equal(t, http.StatusOK, rec.Code)

			rec = f.do(jsonRequest(http.MethodPost, path, `{"job_role":"QA","resume_text":"`+full+`x"}`))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestEndInterview(t *testing.T) {
	f := newFixture(t)
	body := `{"history":[{"role":"model","content":"Q"},{"role":"user","content":"A"}],"job_role":"QA"}`

	rec := f.do(jsonRequest(http.MethodPost, "/api/end-interview", body))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"score":0,"summary":"Error generating score.","json_report":[]}`, rec.Body.String())
	assert.Len(t, f.interview.end.History, 2)
}

func TestParseResumeRejectsPlainText(t *testing.T) {
	rec := newFixture(t).do(uploadRequest(t, "text/plain", []byte("hello")))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"text":""}`, rec.Body.String())
}

func TestParseResumeUnreadablePDF(t *testing.T) {
	rec := newFixture(t).do(uploadRequest(t, "application/pdf", []byte("%PDF-1.4 garbage")))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"text":""}`, rec.Body.String())
}

func TestParseResumeMissingFile(t *testing.T) {
	rec := newFixture(t).do(jsonRequest(http.MethodPost, "/api/parse-resume", `{}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestJobs(t *testing.T) {
	f := newFixture(t)
	f.jobs.listings = []jobs.Listing{{ID: "li-1", Title: "Go Intern", Company: "Acme", Location: "Remote", URL: "#", Description: "...", Source: "external", Relevance: 4}}

	rec := f.do(jsonRequest(http.MethodPost, "/api/jobs", `{"query":"Python, SQL"}`))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Python, SQL", f.jobs.query)
	assert.Equal(t, "Remote", f.jobs.location)
	assert.JSONEq(t, `{"jobs":[{"id":"li-1","title":"Go Intern","company":"Acme","location":"Remote","url":"#","description":"...","source":"external","relevance":4}]}`, rec.Body.String())
}

func TestJobsFailure(t *testing.T) {
	f := newFixture(t)
	f.jobs.err = errors.New("search interrupted: context canceled")

	rec := f.do(jsonRequest(http.MethodPost, "/api/jobs", `{"query":"Go","location":"Berlin"}`))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Berlin", f.jobs.location)
	assert.JSONEq(t, `{"jobs":[],"error":"search interrupted: context canceled"}`, rec.Body.String())
}

func TestJobsEmpty(t *testing.T) {
	rec := newFixture(t).do(jsonRequest(http.MethodPost, "/api/jobs", `{"query":""}`))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"jobs":[]}`, rec.Body.String())
}

func TestRoastValidation(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
	}{
		{name: "invalid json", body: `not json`, status: http.StatusBadRequest},
		{name: "missing file", body: `{}`, status: http.StatusBadRequest},
		{name: "bad base64", body: `{"fileBase64":"***"}`, status: http.StatusBadRequest},
		{name: "not a pdf", body: `{"fileBase64":"` + base64.StdEncoding.EncodeToString([]byte("plain text")) + `"}`, status: http.StatusInternalServerError},
		{name: "data url broken pdf", body: `{"fileBase64":"data:application/pdf;base64,` + base64.StdEncoding.EncodeToString([]byte("%PDF-1.4 junk")) + `"}`, status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			rec := f.do(jsonRequest(http.MethodPost, "/api/roast", tt.body))

			assert.Equal(t, tt.status, rec.Code)
			assert.Empty(t, f.coach.roasted)
		})
	}
}

func TestTailor(t *testing.T) {
	f := newFixture(t)

	rec := f.do(jsonRequest(http.MethodPost, "/api/tailor", `{"job_description":"Go role","resume_text":"Go dev"}`))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Go role", f.coach.tailored.JobDescription)
	assert.JSONEq(t, `{"professional_summary":"tailored","experience_bullets":[],"skills_to_highlight":[],"cover_letter_snippet":""}`, rec.Body.String())
}

func TestTailorRequiresFields(t *testing.T) {
	rec := newFixture(t).do(jsonRequest(http.MethodPost, "/api/tailor", `{"job_description":"Go role"}`))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, errValidationFailed, resp.Error)
}
